// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"time"
)

const (
	// DefaultMaxTTL is used when no maximum TTL is configured.
	DefaultMaxTTL = 5
	// DefaultTimeout is used when no per hop timeout is configured.
	DefaultTimeout = time.Second
	// unknownHopIP is the placeholder address of a hop that did not answer.
	unknownHopIP = "*"
)

// Result represents the result of a traceroute, mapping each target to its hops.
type Result map[Target][]Hop

// Options contains the optional configuration for the traceroute.
type Options struct {
	// MaxTTL bounds the probed TTLs to [1, MaxTTL).
	MaxTTL int `json:"maxHops" yaml:"maxHops" mapstructure:"maxHops"`
	// Timeout is the time to wait for a matching reply per hop.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// withDefaults returns a copy of the options with unset fields defaulted.
func (o Options) withDefaults() Options {
	if o.MaxTTL == 0 {
		o.MaxTTL = DefaultMaxTTL
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

func (o Options) Validate() error {
	if o.MaxTTL < 0 {
		return fmt.Errorf("invalid max hops: %d, must not be negative", o.MaxTTL)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %v, must not be negative", o.Timeout)
	}
	return nil
}

// Target represents a target for the traceroute.
type Target struct {
	// Address is the host name or IPv4 address to trace to.
	Address string `json:"address" yaml:"address" mapstructure:"address"`
}

func (t Target) String() string {
	return t.Address
}

func (t Target) Validate() error {
	if t.Address == "" {
		return errors.New("target address cannot be empty")
	}
	if addr, err := netip.ParseAddr(t.Address); err == nil && !addr.Unmap().Is4() {
		return fmt.Errorf("invalid target address: %s, only IPv4 is supported", t.Address)
	}
	return nil
}

// Hop is the outcome of probing a single TTL.
type Hop struct {
	Latency time.Duration `json:"-" yaml:"-"`
	Addr    HopAddress    `json:"addr" yaml:"addr"`
	Name    string        `json:"name" yaml:"name"`
	TTL     int           `json:"ttl" yaml:"ttl"`
	Reached bool          `json:"reached" yaml:"reached"`
}

// absentHop returns the hop recorded when nothing answered for ttl.
func absentHop(ttl int, latency time.Duration) Hop {
	return Hop{
		Latency: latency,
		Addr:    HopAddress{IP: unknownHopIP},
		TTL:     ttl,
	}
}

// Absent reports whether no router answered for this hop.
func (h Hop) Absent() bool {
	return h.Addr.IP == unknownHopIP || h.Addr.IP == ""
}

func (h Hop) MarshalJSON() ([]byte, error) {
	type alias Hop
	return json.Marshal(&struct {
		Latency string `json:"latency"`
		alias
	}{
		Latency: h.Latency.String(),
		alias:   alias(h),
	})
}

func (h Hop) String() string {
	if h.Absent() {
		return fmt.Sprintf("%-2d  %s", h.TTL, unknownHopIP)
	}

	reached := ""
	if h.Reached {
		reached = "  (reached)"
	}

	const maxNameLength = 45
	name := h.Name
	if name == "" || len(name) > maxNameLength {
		name = h.Addr.String()
	}

	return fmt.Sprintf("%-2d  %-45.45s  %s%s",
		h.TTL, name, h.Latency.String(), reached)
}

type HopAddress struct {
	IP string `json:"ip" yaml:"ip"`
}

func newHopAddress(addr netip.Addr) HopAddress {
	if !addr.IsValid() {
		return HopAddress{}
	}
	return HopAddress{IP: addr.String()}
}

func (a HopAddress) String() string {
	return a.IP
}

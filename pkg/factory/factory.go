// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package factory

import (
	"errors"
	"fmt"

	"github.com/telekom/icmptrace/pkg/checks"
	"github.com/telekom/icmptrace/pkg/checks/traceroute"
)

var (
	// ErrNilConfig is returned when a check is created without configuration
	ErrNilConfig = errors.New("config is nil")
	// ErrUnknownCheck is returned when no check is registered for a configuration
	ErrUnknownCheck = errors.New("unknown check type")
)

// NewCheck creates a new check instance configured with cfg
func NewCheck(cfg checks.Runtime) (checks.Check, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	f, ok := registry[cfg.For()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCheck, cfg.For())
	}

	c := f()
	if err := c.UpdateConfig(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// registry is a convenience map to create new checks
var registry = map[string]func() checks.Check{
	traceroute.CheckName: traceroute.NewCheck,
}

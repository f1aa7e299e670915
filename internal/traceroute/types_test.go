// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"encoding/json"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHopAddress(t *testing.T) {
	tests := []struct {
		name string
		addr netip.Addr
		want HopAddress
	}{
		{name: "ipv4", addr: netip.MustParseAddr("100.1.1.7"), want: HopAddress{IP: "100.1.1.7"}},
		{name: "invalid", addr: netip.Addr{}, want: HopAddress{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newHopAddress(tt.addr)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.IP, got.String())
		})
	}
}

func TestHop_String(t *testing.T) {
	tests := []struct {
		name     string
		hop      Hop
		expected string
	}{
		{
			name:     "Resolved host, reached",
			hop:      Hop{TTL: 1, Addr: HopAddress{IP: "192.168.0.1"}, Name: "router.local", Latency: 12 * time.Millisecond, Reached: true},
			expected: "1   router.local",
		},
		{
			name:     "Unresolved host, not reached",
			hop:      Hop{TTL: 2, Addr: HopAddress{IP: "10.0.0.1"}, Latency: 25 * time.Millisecond},
			expected: "2   10.0.0.1",
		},
		{
			name: "Long hostname falls back to address",
			hop: Hop{
				TTL:     3,
				Addr:    HopAddress{IP: "1.2.3.4"},
				Name:    "254-254-254-254.very.long.name.example.telekom.com",
				Latency: 123456 * time.Microsecond,
				Reached: true,
			},
			expected: "3   1.2.3.4",
		},
		{
			name:     "Very high TTL",
			hop:      Hop{TTL: 123, Addr: HopAddress{IP: "9.9.9.9"}, Name: "gateway", Latency: 78 * time.Millisecond, Reached: true},
			expected: "123  gateway",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.hop.String()
			assert.Equal(t, tt.expected, out[:len(tt.expected)], "Hop string should contain expected address and name")
			assert.Contains(t, out, tt.hop.Latency.String(), "Hop string should contain latency")
			if tt.hop.Reached {
				assert.Contains(t, out, "(reached)", "Hop string should indicate it was reached")
			} else {
				assert.NotContains(t, out, "(reached)", "Hop string should not indicate it was reached")
			}
		})
	}

	t.Run("Absent hop", func(t *testing.T) {
		assert.Equal(t, "7   *", absentHop(7, time.Second).String())
	})
}

func TestHop_Absent(t *testing.T) {
	assert.True(t, absentHop(1, 0).Absent())
	assert.True(t, Hop{TTL: 1}.Absent())
	assert.False(t, Hop{TTL: 1, Addr: HopAddress{IP: "10.0.0.1"}}.Absent())
}

func TestHop_MarshalJSON(t *testing.T) {
	hop := Hop{TTL: 2, Addr: HopAddress{IP: "10.0.0.1"}, Name: "gw.example.com", Latency: 1500 * time.Microsecond}

	b, err := json.Marshal(hop)
	require.NoError(t, err)
	assert.JSONEq(t, `{"latency":"1.5ms","addr":{"ip":"10.0.0.1"},"name":"gw.example.com","ttl":2,"reached":false}`, string(b))
}

func TestTarget_Validate(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr bool
	}{
		{"ipv4", Target{Address: "8.8.8.8"}, false},
		{"host name", Target{Address: "example.com"}, false},
		{"empty", Target{}, true},
		{"ipv6", Target{Address: "2001:db8::1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func TestOptions(t *testing.T) {
	assert.Equal(t, Options{MaxTTL: DefaultMaxTTL, Timeout: DefaultTimeout}, Options{}.withDefaults())
	assert.Equal(t, Options{MaxTTL: 30, Timeout: time.Millisecond}, Options{MaxTTL: 30, Timeout: time.Millisecond}.withDefaults())

	assert.NoError(t, Options{}.Validate())
	assert.Error(t, Options{MaxTTL: -1}.Validate())
	assert.Error(t, Options{Timeout: -time.Second}.Validate())
}

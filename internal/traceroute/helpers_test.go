// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// fakeResolver answers lookups from static tables.
type fakeResolver struct {
	hosts map[string][]netip.Addr
	names map[string][]string
}

func (r *fakeResolver) LookupNetIP(_ context.Context, _, host string) ([]netip.Addr, error) {
	addrs, ok := r.hosts[host]
	if !ok {
		return nil, errors.New("no such host")
	}
	return addrs, nil
}

func (r *fakeResolver) LookupAddr(_ context.Context, addr string) ([]string, error) {
	names, ok := r.names[addr]
	if !ok {
		return nil, errors.New("no PTR record")
	}
	return names, nil
}

func TestLookupIPv4(t *testing.T) {
	r := &fakeResolver{hosts: map[string][]netip.Addr{
		"dual.example.com": {netip.MustParseAddr("2001:db8::1"), netip.MustParseAddr("192.0.2.1")},
		"v6.example.com":   {netip.MustParseAddr("2001:db8::2")},
	}}

	tests := []struct {
		name    string
		host    string
		want    netip.Addr
		wantErr bool
	}{
		{"ipv4 literal", "8.8.8.8", netip.MustParseAddr("8.8.8.8"), false},
		{"ipv4 mapped literal", "::ffff:8.8.4.4", netip.MustParseAddr("8.8.4.4"), false},
		{"ipv6 literal", "2001:db8::1", netip.Addr{}, true},
		{"picks first ipv4", "dual.example.com", netip.MustParseAddr("192.0.2.1"), false},
		{"no ipv4", "v6.example.com", netip.Addr{}, true},
		{"unknown host", "nope.example.com", netip.Addr{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lookupIPv4(t.Context(), r, tt.host)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveName(t *testing.T) {
	r := &fakeResolver{names: map[string][]string{
		"10.0.0.1": {"gw.example.com.", "alias.example.com."},
		"10.0.0.2": {},
	}}

	tests := []struct {
		name string
		addr netip.Addr
		want string
	}{
		{"invalid addr", netip.Addr{}, ""},
		{"first name wins", netip.MustParseAddr("10.0.0.1"), "gw.example.com."},
		{"empty answer", netip.MustParseAddr("10.0.0.2"), ""},
		{"no reverse record", netip.MustParseAddr("203.0.113.1"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveName(t.Context(), r, tt.addr))
		})
	}
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, wrapError(t.Context(), nil, "never"))

	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	ctx, span := tp.Tracer("test").Start(t.Context(), "op")

	cause := errors.New("boom")
	err := wrapError(ctx, cause, "failed to send probe for ttl %d", 3)
	span.End()

	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "failed to send probe for ttl 3: boom")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "failed to send probe for ttl 3", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1, "the error must be recorded on the span")
}

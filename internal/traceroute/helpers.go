// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/telekom/icmptrace/internal/logger"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// resolver is the subset of [net.Resolver] used by the client.
type resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// ResolveTarget resolves a host name or IPv4 literal to an IPv4 address.
func ResolveTarget(ctx context.Context, host string) (netip.Addr, error) {
	return lookupIPv4(ctx, net.DefaultResolver, host)
}

// LookupName performs a reverse DNS lookup for the given address.
// If the lookup fails or returns no names, it returns an empty string.
func LookupName(ctx context.Context, addr netip.Addr) string {
	return resolveName(ctx, net.DefaultResolver, addr)
}

// lookupIPv4 returns the first IPv4 address of host.
func lookupIPv4(ctx context.Context, r resolver, host string) (netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if !addr.Is4() {
			return netip.Addr{}, fmt.Errorf("%s is not an IPv4 address", host)
		}
		return addr, nil
	}

	addrs, err := r.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to resolve %s: %w", host, err)
	}
	for _, addr := range addrs {
		if addr.Unmap().Is4() {
			return addr.Unmap(), nil
		}
	}
	return netip.Addr{}, fmt.Errorf("no IPv4 address found for %s", host)
}

// resolveName performs a reverse DNS lookup for the given IP address.
// If the lookup fails or returns no names, it returns an empty string.
func resolveName(ctx context.Context, r resolver, addr netip.Addr) string {
	if !addr.IsValid() {
		return ""
	}

	names, err := r.LookupAddr(ctx, addr.String())
	if err != nil || len(names) == 0 {
		return ""
	}
	return names[0]
}

// logHops logs the hops in a structured format.
func logHops(ctx context.Context, hops []Hop) {
	log := logger.FromContext(ctx)
	for _, hop := range hops {
		log.DebugContext(ctx, hop.String())
	}
}

// wrapError wraps an error with a message and logs it.
// It also records the error in the current OpenTelemetry span.
func wrapError(ctx context.Context, err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)
	caser := cases.Title(language.English)
	text := fmt.Sprintf(msg, args...)

	log.ErrorContext(ctx, caser.String(text), "error", err)
	span.SetStatus(codes.Error, text)
	span.RecordError(err)
	return fmt.Errorf("%s: %w", text, err)
}

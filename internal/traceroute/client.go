// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/google/uuid"
	"github.com/telekom/icmptrace/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ Client = (*icmpClient)(nil)

// Client is able to run a traceroute to one or more targets.
//
//go:generate go tool moq -out client_moq.go . Client
type Client interface {
	// Run executes the traceroute for the given targets with the specified options.
	// Returns a Result containing the hops for each target, or an error if the traceroute fails.
	Run(ctx context.Context, targets []Target, opts *Options) (Result, error)
}

// icmpClient traces targets one after another using ICMP echo requests.
type icmpClient struct {
	open     opener
	clock    clock
	resolver resolver
	newID    func() uint16
}

// NewClient creates a client sending probes over raw ICMP sockets.
func NewClient() Client {
	return &icmpClient{
		open:     openRawConn,
		clock:    systemClock{},
		resolver: net.DefaultResolver,
		newID:    randomID,
	}
}

// Run traces every target sequentially. A failure other than a per hop
// timeout aborts the run and returns the results collected so far.
func (c *icmpClient) Run(ctx context.Context, targets []Target, opts *Options) (Result, error) {
	for _, target := range targets {
		if err := target.Validate(); err != nil {
			return nil, fmt.Errorf("invalid target %s: %w", target, err)
		}
	}

	o := Options{}
	if opts != nil {
		o = *opts
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	o = o.withDefaults()

	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("traceroute.icmpClient")
	ctx, sp := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.Int("traceroute.targets.count", len(targets)),
		attribute.Int("traceroute.options.max_hops", o.MaxTTL),
		attribute.Stringer("traceroute.options.timeout", o.Timeout),
	))
	defer sp.End()

	res := make(Result, len(targets))
	for _, target := range targets {
		hops, err := c.trace(ctx, tracer, target, o)
		if err != nil {
			return res, err
		}
		res[target] = hops
		logHops(ctx, hops)
	}

	return res, nil
}

// trace runs the prober against a single target and resolves the hop names.
func (c *icmpClient) trace(ctx context.Context, tracer trace.Tracer, target Target, opts Options) ([]Hop, error) {
	runID := uuid.NewString()
	log := logger.FromContext(ctx).With("target", target.String(), "runID", runID)
	ctx = logger.IntoContext(ctx, log)
	ctx, span := tracer.Start(ctx, target.String(), trace.WithAttributes(
		attribute.String("traceroute.run.id", runID),
	))
	defer span.End()

	dst, err := lookupIPv4(ctx, c.resolver, target.Address)
	if err != nil {
		return nil, wrapError(ctx, err, "failed to resolve target %s", target)
	}

	id := c.newID()
	log.DebugContext(ctx, "Starting ICMP traceroute", "dst", dst, "id", id, "maxHops", opts.MaxTTL)
	span.SetAttributes(
		attribute.Stringer("traceroute.target.ip", dst),
		attribute.Int("traceroute.probe.id", int(id)),
	)

	p := newProber(id, opts.Timeout, c.open, c.clock, tracer)
	hops, err := p.execute(ctx, dst, opts.MaxTTL)
	if isCanceled(err) {
		log.DebugContext(ctx, "Traceroute canceled", "hops", len(hops))
		span.AddEvent("Traceroute canceled", trace.WithAttributes(attribute.Int("traceroute.hops.count", len(hops))))
		return hops, err
	}
	if err != nil {
		return hops, fmt.Errorf("traceroute to %s failed: %w", target, err)
	}

	for i := range hops {
		if hops[i].Absent() {
			continue
		}
		addr, pErr := netip.ParseAddr(hops[i].Addr.IP)
		if pErr != nil {
			continue
		}
		hops[i].Name = resolveName(ctx, c.resolver, addr)
	}
	return hops, nil
}

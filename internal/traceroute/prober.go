// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"net/netip"
	"time"

	"github.com/telekom/icmptrace/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sys/unix"
)

// recvBufSize is large enough for any ICMP error quoting our probe.
const recvBufSize = 1500

// clock provides the current time. It allows tests to control
// how much time passes between sending a probe and receiving replies.
type clock interface {
	Now() time.Time
}

type systemClock struct{}

// Now returns the current time including its monotonic clock reading.
func (systemClock) Now() time.Time {
	return time.Now()
}

// randomID returns a random probe identifier in the interval [1, 65535).
func randomID() uint16 {
	return uint16(rand.N(65534) + 1) // #nosec G404 G115 // math.rand is fine here, the id only correlates replies
}

// prober runs a single traceroute. It sends one ICMP echo request per TTL
// over a freshly opened raw socket and waits for the reply carrying its identifier.
//
// A prober must not be used for more than one run at a time.
type prober struct {
	// id identifies the probes of this run and is constant for its lifetime.
	id uint16
	// seq is the sequence number of the next probe.
	seq     uint16
	timeout time.Duration
	layout  layout
	open    opener
	clock   clock
	tracer  trace.Tracer

	// conn is the socket of the current TTL iteration.
	conn conn
	// sentAt is the time the last probe was sent.
	sentAt time.Time
	buf    []byte
	hops   []Hop
}

// newProber creates a prober using the given identifier for all of its probes.
func newProber(id uint16, timeout time.Duration, open opener, clk clock, tracer trace.Tracer) *prober {
	return &prober{
		id:      id,
		timeout: timeout,
		layout:  defaultLayout,
		open:    open,
		clock:   clk,
		tracer:  tracer,
		buf:     make([]byte, recvBufSize),
	}
}

// execute traces the route to dst probing the TTLs 1 to maxTTL-1.
// It stops early once the destination answered.
//
// Hops that time out or whose source cannot be resolved are recorded as absent.
// Any other error aborts the run and is returned together with the hops
// collected so far.
func (p *prober) execute(ctx context.Context, dst netip.Addr, maxTTL int) ([]Hop, error) {
	p.hops = []Hop{}

	for ttl := 1; ttl < maxTTL; ttl++ {
		if err := ctx.Err(); err != nil {
			return p.hops, err
		}

		hop, err := p.probeHop(ctx, dst, ttl)
		if err != nil {
			return p.hops, err
		}

		p.hops = append(p.hops, hop)
		if hop.Reached {
			break
		}
	}

	return p.hops, nil
}

// probeHop runs one OPEN, SEND, RECEIVE, CLOSE cycle for the given TTL.
func (p *prober) probeHop(ctx context.Context, dst netip.Addr, ttl int) (Hop, error) {
	ctx, span := p.tracer.Start(ctx, "traceroute.hop", trace.WithAttributes(
		attribute.Stringer("traceroute.target.address", dst),
		attribute.Int("traceroute.target.ttl", ttl),
		attribute.Int("traceroute.probe.id", int(p.id)),
	))
	defer span.End()
	log := logger.FromContext(ctx).With("ttl", ttl)

	c, err := p.open(unix.AF_INET, unix.IPPROTO_ICMP)
	if err != nil {
		return Hop{}, wrapError(ctx, err, "failed to open raw socket for ttl %d", ttl)
	}
	p.conn = c
	defer func() {
		if cErr := c.Close(); cErr != nil {
			log.WarnContext(ctx, "Failed to close raw socket", "error", cErr)
		}
		p.conn = nil
	}()

	if err = p.sendProbe(ctx, dst, ttl); err != nil {
		return Hop{}, wrapError(ctx, err, "failed to send probe for ttl %d", ttl)
	}

	r, err := p.awaitReply(ctx)
	if err == nil {
		var src netip.Addr
		src, err = r.sourceAddr()
		if err == nil {
			hop := Hop{
				Latency: p.clock.Now().Sub(p.sentAt),
				Addr:    newHopAddress(src),
				TTL:     ttl,
				Reached: r.reached(),
			}
			if r.kind == kindTimeExceeded && r.code != 0 {
				log.WarnContext(ctx, "Received time exceeded message with unexpected code", "code", r.code, "routerAddr", src)
			}
			log.DebugContext(ctx, "Received ICMP reply", "type", r.kind, "code", r.code, "routerAddr", src, "seq", r.echo().seq)
			span.AddEvent("ICMP reply received", trace.WithAttributes(
				attribute.String("traceroute.reply.kind", r.kind.String()),
				attribute.Int("traceroute.reply.code", int(r.code)),
				attribute.Bool("traceroute.target.reached", hop.Reached),
				attribute.Stringer("traceroute.target.hop", hop),
			))
			return hop, nil
		}
	}

	if !isHopError(err) {
		return Hop{}, wrapError(ctx, err, "failed to receive reply for ttl %d", ttl)
	}

	hop := absentHop(ttl, p.clock.Now().Sub(p.sentAt))
	log.DebugContext(ctx, "No usable reply for hop", "reason", err)
	span.AddEvent("No usable reply", trace.WithAttributes(
		attribute.Bool("traceroute.target.reached", false),
		attribute.Stringer("traceroute.target.hop", hop),
		attribute.String("traceroute.target.hop.error", err.Error()),
	))
	return hop, nil
}

// sendProbe sends one echo request with the given TTL to dst.
// The sequence number is incremented even if sending fails.
func (p *prober) sendProbe(ctx context.Context, dst netip.Addr, ttl int) error {
	ttl &= 0xff
	payload := make([]byte, p.layout.payloadLen)
	req := echoRequest{
		id:      p.id,
		seq:     p.seq,
		ttl:     ttl,
		payload: payload,
	}
	p.seq++

	p.sentAt = p.clock.Now()
	binary.BigEndian.PutUint64(payload[:timestampLen], uint64(p.sentAt.UnixNano())) // #nosec G115

	b, err := encodeEchoRequest(req)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).DebugContext(ctx, "Sending ICMP echo request", "id", req.id, "seq", req.seq, "ttl", ttl, "dst", dst)
	return p.conn.Send(dst, b, req.ttl)
}

// awaitReply receives datagrams until one carries the identifier of this run.
// Datagrams of other processes or older runs are discarded. The timeout is
// checked against the send time after every datagram, so a steady stream of
// unrelated traffic cannot extend it.
func (p *prober) awaitReply(ctx context.Context) (reply, error) {
	log := logger.FromContext(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return reply{}, err
		}

		remaining := p.timeout - p.clock.Now().Sub(p.sentAt)
		if remaining <= 0 {
			return reply{}, ErrTimeout
		}

		n, from, err := p.conn.Receive(p.buf, remaining)
		if err != nil {
			return reply{}, err
		}

		if elapsed := p.clock.Now().Sub(p.sentAt); elapsed > p.timeout {
			return reply{}, fmt.Errorf("%w: reply after %v", ErrTimeout, elapsed)
		}

		r, err := decodeReply(p.buf[:n])
		if err != nil {
			log.DebugContext(ctx, "Discarding undecodable datagram", "from", from, "error", err)
			continue
		}

		if got := r.echo().id; got != p.id {
			log.DebugContext(ctx, "Received ICMP message for another identifier, ignoring",
				"expectedID", p.id,
				"receivedID", got,
				"type", r.kind,
			)
			continue
		}

		return r, nil
	}
}

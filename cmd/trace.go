// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/telekom/icmptrace/internal/logger"
	"github.com/telekom/icmptrace/internal/traceroute"
)

const (
	// payloadSize is the echo payload in bytes
	payloadSize = 56
	// packetSize is the size of the IPv4 datagram carrying a probe
	packetSize = payloadSize + 28
	// absentHop is how a hop without reply is printed
	absentHop = "null"
)

// tracer bundles what the trace command needs from the traceroute package
type tracer struct {
	client  traceroute.Client
	resolve func(ctx context.Context, host string) (netip.Addr, error)
	lookup  func(ctx context.Context, addr netip.Addr) string
}

// NewCmdTrace creates a new trace command
func NewCmdTrace() *cobra.Command {
	return newCmdTrace(tracer{
		client:  traceroute.NewClient(),
		resolve: traceroute.ResolveTarget,
		lookup:  traceroute.LookupName,
	})
}

func newCmdTrace(t tracer) *cobra.Command {
	var (
		timeout time.Duration
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "trace <host> [maxHops]",
		Short: "Trace the route to a host once",
		Long: "Sends one ICMP echo request per TTL from 1 up to maxHops-1 and prints\n" +
			"the address of every router that answered. maxHops defaults to " + strconv.Itoa(traceroute.DefaultMaxTTL) + ".\n" +
			"Requires the privileges to open raw sockets.",
		Args: cobra.RangeArgs(1, 2), //nolint:mnd // host and optional max hops
		RunE: func(cmd *cobra.Command, args []string) error {
			maxHops := traceroute.DefaultMaxTTL
			if len(args) == 2 { //nolint:mnd // max hops given
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid maxHops %q: must be a positive integer", args[1])
				}
				maxHops = n
			}
			cmd.SilenceUsage = true

			log := logger.NewLogger(logger.NewCLIHandler(cmd.ErrOrStderr(), verbose))
			ctx := logger.IntoContext(cmd.Context(), log)
			return t.run(ctx, cmd.OutOrStdout(), args[0], traceroute.Options{MaxTTL: maxHops, Timeout: timeout}, verbose)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", traceroute.DefaultTimeout, "time to wait for a reply per hop")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every hop with its name and latency")
	return cmd
}

// run traces host and writes the banner and the hop list to w
func (t tracer) run(ctx context.Context, w io.Writer, host string, opts traceroute.Options, verbose bool) error {
	dst, err := t.resolve(ctx, host)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(t.lookup(ctx, dst), ".")
	if name == "" {
		name = host
	}
	if _, err = fmt.Fprintf(w, "TRACEROUTE %s (%s) %d(%d) bytes of data.\n", name, dst, payloadSize, packetSize); err != nil {
		return err
	}

	target := traceroute.Target{Address: dst.String()}
	res, err := t.client.Run(ctx, []traceroute.Target{target}, &opts)
	if err != nil {
		return err
	}

	hops := res[target]
	if verbose {
		for _, hop := range hops {
			if _, err = fmt.Fprintln(w, hop.String()); err != nil {
				return err
			}
		}
	}
	logger.FromContext(ctx).DebugContext(ctx, "Traceroute finished", slog.Int("hops", len(hops)))

	_, err = fmt.Fprintln(w, formatHops(hops))
	return err
}

// formatHops renders the hop addresses as a list with absent hops as null
func formatHops(hops []traceroute.Hop) string {
	addrs := make([]string, 0, len(hops))
	for _, hop := range hops {
		if hop.Absent() {
			addrs = append(addrs, absentHop)
			continue
		}
		addrs = append(addrs, hop.Addr.String())
	}
	return "[" + strings.Join(addrs, ", ") + "]"
}

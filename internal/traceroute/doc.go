// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package traceroute discovers the routers between this host and a target
// by sending ICMP echo requests with increasing TTLs over raw IPv4 sockets.
//
// Every hop is probed exactly once. A fresh socket is opened for each TTL,
// one echo request is sent, and the reply is awaited until the per hop
// timeout elapses. Routers answer with ICMP time exceeded messages quoting
// the original request, the target answers with an echo reply. Replies are
// matched to a run by the echo identifier, which is read from the quoted
// request for time exceeded messages and from the reply itself otherwise.
//
// Hops that do not answer in time, or whose source address cannot be
// determined, are reported as absent. Any other failure aborts the run.
//
// Typical usage:
//
//	client := traceroute.NewClient()
//	opts := &traceroute.Options{MaxTTL: 30, Timeout: 2 * time.Second}
//	res, err := client.Run(ctx, []traceroute.Target{{Address: "8.8.8.8"}}, opts)
//	// res maps each Target to its slice of Hop results
//
// Opening raw sockets requires CAP_NET_RAW or root privileges.
package traceroute

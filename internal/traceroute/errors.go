// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when no matching reply arrived within the
	// probe timeout. The hop is recorded as absent and the trace continues.
	ErrTimeout = errors.New("no matching ICMP reply within timeout")
	// ErrAddressResolution is returned when the source of a reply cannot be
	// converted to a usable IPv4 address. The hop is recorded as absent.
	ErrAddressResolution = errors.New("cannot resolve reply source address")
)

// errICMPNotAvailable is returned when ICMP is not available due to lack of NET_RAW capabilities.
// This typically occurs when the process does not have the necessary permissions to create a raw socket
// or when running in an environment where ICMP is restricted (e.g., some containerized environments).
var errICMPNotAvailable = errors.New("no NET_RAW capabilities, ICMP not available")

// TransportError is returned when the raw socket fails to open, send or receive
// for a reason other than a timeout. It aborts the whole traceroute.
type TransportError struct {
	// Op is the failed operation, e.g. "open", "send" or "receive".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("icmp transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// isHopError checks if the error only affects the current hop
// and the trace can continue with the next TTL.
func isHopError(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrAddressResolution)
}

// isCanceled reports whether err stems from a canceled or expired context.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

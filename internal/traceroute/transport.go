// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"net/netip"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// conn is a raw ICMP socket able to send probes with a given TTL
// and to receive whole IPv4 datagrams.
type conn interface {
	// Send writes b to dst with the IP TTL set to ttl.
	Send(dst netip.Addr, b []byte, ttl int) error
	// Receive blocks until a datagram arrives or timeout elapsed.
	// It returns [ErrTimeout] if nothing arrived in time.
	Receive(buf []byte, timeout time.Duration) (int, netip.Addr, error)
	// Close releases the socket. It is safe to call Close more than once.
	Close() error
}

// opener opens a raw socket for the given protocol family and protocol.
type opener func(family, protocol int) (conn, error)

// rawConn is a [conn] backed by a SOCK_RAW socket.
// On Linux, reading from a raw IPv4 socket yields the IP header as well.
type rawConn struct {
	fd        int
	closeOnce sync.Once
}

// openRawConn opens a raw socket. It requires NET_RAW capabilities.
func openRawConn(family, protocol int) (conn, error) {
	fd, err := unix.Socket(family, unix.SOCK_RAW|unix.SOCK_CLOEXEC, protocol)
	if err != nil {
		if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
			return nil, &TransportError{Op: "open", Err: errors.Join(errICMPNotAvailable, err)}
		}
		return nil, &TransportError{Op: "open", Err: err}
	}
	return &rawConn{fd: fd}, nil
}

func (c *rawConn) Send(dst netip.Addr, b []byte, ttl int) error {
	if !dst.Is4() {
		return &TransportError{Op: "send", Err: errors.New("destination is not an IPv4 address")}
	}

	if err := unix.SetsockoptInt(c.fd, unix.IPPROTO_IP, unix.IP_TTL, ttl); err != nil {
		return &TransportError{Op: "set ttl", Err: err}
	}

	sa := &unix.SockaddrInet4{Addr: dst.As4()}
	if err := unix.Sendto(c.fd, b, 0, sa); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

func (c *rawConn) Receive(buf []byte, timeout time.Duration) (int, netip.Addr, error) {
	if timeout <= 0 {
		return 0, netip.Addr{}, ErrTimeout
	}

	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(c.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return 0, netip.Addr{}, &TransportError{Op: "set receive timeout", Err: err}
	}

	for {
		n, from, err := unix.Recvfrom(c.fd, buf, 0)
		switch {
		case err == nil:
			return n, addrFromSockaddr(from), nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK):
			return 0, netip.Addr{}, ErrTimeout
		default:
			return 0, netip.Addr{}, &TransportError{Op: "receive", Err: err}
		}
	}
}

func (c *rawConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = unix.Close(c.fd)
		c.fd = -1
	})
	return err
}

// addrFromSockaddr converts the sender of a datagram into an address.
// It returns the zero address for non IPv4 senders.
func addrFromSockaddr(sa unix.Sockaddr) netip.Addr {
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		return netip.AddrFrom4(in4.Addr)
	}
	return netip.Addr{}
}

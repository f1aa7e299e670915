// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// newSocketPair returns a rawConn wrapping one end of a unix datagram
// socket pair and the file descriptor of the other end.
func newSocketPair(t *testing.T) (*rawConn, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_DGRAM, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Close(fds[1]) })
	return &rawConn{fd: fds[0]}, fds[1]
}

func TestRawConn_Close_Idempotent(t *testing.T) {
	c, _ := newSocketPair(t)

	require.NoError(t, c.Close())
	assert.NotPanics(t, func() {
		assert.NoError(t, c.Close(), "closing an already closed conn must not fail")
	})
	assert.Equal(t, -1, c.fd)
}

func TestRawConn_Receive(t *testing.T) {
	t.Run("datagram available", func(t *testing.T) {
		c, peer := newSocketPair(t)
		defer func() { _ = c.Close() }()

		_, err := unix.Write(peer, []byte{0x45, 0x00, 0x00, 0x54})
		require.NoError(t, err)

		buf := make([]byte, 16)
		n, from, err := c.Receive(buf, time.Second)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, []byte{0x45, 0x00, 0x00, 0x54}, buf[:n])
		assert.False(t, from.IsValid(), "unix peers have no IPv4 address")
	})

	t.Run("nothing arrives", func(t *testing.T) {
		c, _ := newSocketPair(t)
		defer func() { _ = c.Close() }()

		_, _, err := c.Receive(make([]byte, 16), 10*time.Millisecond)
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("no budget left", func(t *testing.T) {
		c, _ := newSocketPair(t)
		defer func() { _ = c.Close() }()

		_, _, err := c.Receive(make([]byte, 16), 0)
		assert.ErrorIs(t, err, ErrTimeout)
	})
}

func TestRawConn_Send(t *testing.T) {
	tests := []struct {
		name   string
		dst    netip.Addr
		wantOp string
	}{
		{"ipv6 destination", netip.MustParseAddr("2001:db8::1"), "send"},
		// IP_TTL is not supported on unix sockets
		{"ttl option rejected", netip.MustParseAddr("192.0.2.1"), "set ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newSocketPair(t)
			defer func() { _ = c.Close() }()

			err := c.Send(tt.dst, []byte{8, 0, 0, 0}, 3)
			var tErr *TransportError
			require.ErrorAs(t, err, &tErr)
			assert.Equal(t, tt.wantOp, tErr.Op)
		})
	}
}

func TestAddrFromSockaddr(t *testing.T) {
	assert.Equal(t, netip.MustParseAddr("10.0.0.1"), addrFromSockaddr(&unix.SockaddrInet4{Addr: [4]byte{10, 0, 0, 1}}))
	assert.False(t, addrFromSockaddr(&unix.SockaddrUnix{Name: "/tmp/x"}).IsValid())
	assert.False(t, addrFromSockaddr(nil).IsValid())
}

// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	// icmpHeaderLen is the length of an ICMP echo header:
	// type, code, checksum, identifier and sequence number.
	icmpHeaderLen = 8
	// echoIDOffset is the offset of the identifier within an ICMP echo header.
	echoIDOffset = 4
	// echoSeqOffset is the offset of the sequence number within an ICMP echo header.
	echoSeqOffset = 6
	// ipHeaderLengthMask is the mask to extract the IHL field
	// from the first byte of an IPv4 header.
	ipHeaderLengthMask = 0x0F
	// byteMultiplier is used to convert the header length from 4-byte words to bytes.
	byteMultiplier = 4
	// timestampLen is the number of payload bytes carrying the send timestamp.
	timestampLen = 8
)

// layout describes the sizes of the headers and the payload of a probe.
type layout struct {
	ipHeaderLen   int
	icmpHeaderLen int
	payloadLen    int
}

// defaultLayout is a 20 byte IPv4 header, an 8 byte ICMP header
// and 56 bytes of payload, resulting in 84 byte datagrams.
var defaultLayout = layout{
	ipHeaderLen:   ipv4.HeaderLen,
	icmpHeaderLen: icmpHeaderLen,
	payloadLen:    56,
}

// datagramLen returns the length of the full IPv4 datagram of a probe.
func (l layout) datagramLen() int {
	return l.ipHeaderLen + l.icmpHeaderLen + l.payloadLen
}

// messageLen returns the length of the ICMP message of a probe.
func (l layout) messageLen() int {
	return l.icmpHeaderLen + l.payloadLen
}

// echoRequest holds everything needed to build one probe.
type echoRequest struct {
	id      uint16
	seq     uint16
	ttl     int
	payload []byte
}

// encodeEchoRequest marshals the request into an ICMP echo request message.
// The checksum is computed over the complete message, so the payload
// must be fully populated before calling this.
func encodeEchoRequest(req echoRequest) ([]byte, error) {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   int(req.id),
			Seq:  int(req.seq),
			Data: req.payload,
		},
	}

	b, err := msg.Marshal(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal echo request: %w", err)
	}
	return b, nil
}

// replyKind tags a decoded reply by its ICMP type.
type replyKind uint8

const (
	kindOther replyKind = iota
	kindEchoReply
	kindTimeExceeded
)

func (k replyKind) String() string {
	switch k {
	case kindEchoReply:
		return "echo-reply"
	case kindTimeExceeded:
		return "time-exceeded"
	default:
		return "other"
	}
}

// echoFields are the identifier and sequence number of an echo header.
type echoFields struct {
	id  uint16
	seq uint16
}

// reply is a decoded inbound ICMP datagram.
//
// Both interpretations of the echo fields are kept: direct holds the fields at
// their normal position in the outer ICMP header, embedded holds the fields of
// the original probe quoted in a Time Exceeded message. Use [reply.echo] to get
// the ones that are meaningful for the reply's kind.
type reply struct {
	kind     replyKind
	typ      uint8
	code     uint8
	source   net.IP
	direct   echoFields
	embedded echoFields
	// hasEmbedded is false if the datagram was too short to carry the quoted probe.
	hasEmbedded bool
}

// echo returns the echo fields identifying the probe this reply belongs to.
func (r reply) echo() echoFields {
	if r.kind == kindTimeExceeded {
		return r.embedded
	}
	return r.direct
}

// reached reports whether the reply was sent by the destination itself.
func (r reply) reached() bool {
	return r.kind == kindEchoReply
}

// sourceAddr converts the source of the reply into an IPv4 address.
func (r reply) sourceAddr() (netip.Addr, error) {
	addr, ok := netip.AddrFromSlice(r.source)
	if !ok {
		return netip.Addr{}, fmt.Errorf("%w: %v", ErrAddressResolution, r.source)
	}
	addr = addr.Unmap()
	if !addr.Is4() || addr.IsUnspecified() {
		return netip.Addr{}, fmt.Errorf("%w: %s", ErrAddressResolution, addr)
	}
	return addr, nil
}

// decodeReply decodes a full IPv4 datagram carrying an ICMP message, as read
// from a raw IPv4 socket.
func decodeReply(buf []byte) (reply, error) {
	pkt := gopacket.NewPacket(buf, layers.LayerTypeIPv4, gopacket.DecodeOptions{NoCopy: true})
	if el := pkt.ErrorLayer(); el != nil {
		return reply{}, fmt.Errorf("failed to decode datagram: %w", el.Error())
	}

	ip, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok {
		return reply{}, errors.New("datagram has no IPv4 layer")
	}
	msg, ok := pkt.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
	if !ok {
		return reply{}, fmt.Errorf("datagram carries %s, not ICMPv4", ip.Protocol)
	}

	r := reply{
		typ:    msg.TypeCode.Type(),
		code:   msg.TypeCode.Code(),
		source: ip.SrcIP,
		direct: echoFields{id: msg.Id, seq: msg.Seq},
	}
	switch r.typ {
	case layers.ICMPv4TypeEchoReply:
		r.kind = kindEchoReply
	case layers.ICMPv4TypeTimeExceeded:
		r.kind = kindTimeExceeded
	default:
		r.kind = kindOther
	}

	outerHeaderLen := int(ip.IHL) * byteMultiplier
	r.embedded, r.hasEmbedded = embeddedEcho(buf, outerHeaderLen)
	return r, nil
}

// embeddedEcho reads the echo fields of the original probe quoted in an ICMP
// error message. The quote starts after the outer IPv4 and ICMP headers and
// consists of the original IPv4 header followed by the original echo header.
func embeddedEcho(buf []byte, outerHeaderLen int) (echoFields, bool) {
	quoteStart := outerHeaderLen + icmpHeaderLen
	if len(buf) <= quoteStart {
		return echoFields{}, false
	}

	innerHeaderLen := int(buf[quoteStart]&ipHeaderLengthMask) * byteMultiplier
	if innerHeaderLen < ipv4.HeaderLen {
		return echoFields{}, false
	}

	echoStart := quoteStart + innerHeaderLen
	if len(buf) < echoStart+icmpHeaderLen {
		return echoFields{}, false
	}

	return echoFields{
		id:  binary.BigEndian.Uint16(buf[echoStart+echoIDOffset:]),
		seq: binary.BigEndian.Uint16(buf[echoStart+echoSeqOffset:]),
	}, true
}

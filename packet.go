// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// L3Proto distinguishes the role of a Packet's L3 header, mirroring the
// wire protocol numbers the dispatcher switches on.
type L3Proto uint8

const (
	L3Data L3Proto = 0x11
	L3Ack  L3Proto = 0xFC
	L3Nack L3Proto = 0xFD
	L3Cnp  L3Proto = 0xFF
)

// minFrameBytes is the minimum Ethernet frame size (minus L1 overhead)
// that every ACK is padded up to.
const minFrameBytes Bytes = 60

// FlowKey is the five-tuple that identifies a flow. Host keys both its
// sender QP table and its receiver RxQP table by the whole FlowKey; no
// table is keyed by a subset such as (Dip, Sport, Pg).
type FlowKey struct {
	Sip, Dip     uint32
	Sport, Dport uint16
	Pg           uint8
}

// Packet is the wire representation carried between hosts: a custom L3
// header plus an embedded INT record, common to data, ACK, NACK and CNP
// packets.
type Packet struct {
	Flow    FlowKey
	L3Proto L3Proto

	// EcnMarked is set by the network when any IP-ECN bits were set on
	// this packet; CNP carries it forward as the CNP flag.
	EcnMarked bool
	CNP       bool

	// Seq is the data packet's sequence number, or the receiver's
	// cumulative next_expected for an ACK/NACK.
	Seq uint32

	// Size is the packet's payload size for data packets, used for
	// scheduling and on_the_fly accounting. ACK/NACK/CNP packets carry
	// IpID and no payload.
	Size Bytes

	// IPID is the receiver-assigned IP identifier, incremented per
	// emitted ACK/NACK.
	IPID uint32

	// Unscheduled is informational: set on data packets sent while
	// cumulative bytes sent for the flow are still within the
	// bandwidth-delay product.
	Unscheduled bool

	Int IntHeader
}

// WireSize returns the on-wire size of p, including minFrameBytes padding
// for ACK/NACK/CNP control packets.
func (p Packet) WireSize() Bytes {
	if p.L3Proto == L3Data {
		return p.Size
	}
	size := Bytes(len(p.Int.Serialize()))
	if size < minFrameBytes {
		return minFrameBytes
	}
	return size
}

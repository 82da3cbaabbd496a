// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "encoding/binary"

// IntMode selects the on-wire shape of an IntHeader. Each IntHeader
// carries its own Mode: Serialize reads h.Mode and Deserialize takes the
// mode as an argument. No codec value holds a process-wide mode, and the
// packet builders take none: NextPacket leaves a data packet's header
// zero (IntNone) and BuildAckNack copies the data packet's header.
type IntMode uint8

const (
	// IntNone carries no telemetry at all.
	IntNone IntMode = iota
	// IntNormal carries a vector of per-hop IntHop records.
	IntNormal
	// IntTS carries a single 64-bit nanosecond timestamp, for TIMELY,
	// UFCC and RTT-QCN style delay probing.
	IntTS
	// IntPint carries a 1- or 2-byte encoded power-of-utilization sample.
	IntPint
	// IntSwift carries the Swift fabric/endpoint delay triple, serialized
	// in reverse field order on the wire.
	IntSwift
)

// maxHop bounds the number of per-hop IntHop records a NORMAL header can
// carry. Trailing unused records are zeroed.
const maxHop = 5

// byteUnit and qlenUnit are the quantization units for IntHop.Bytes and
// IntHop.Qlen, in bytes. Both are further scaled by multi.
const (
	byteUnit = 128
	qlenUnit = 80
)

// multi is a global quantization scale factor applied on top of byteUnit
// and qlenUnit, mirroring the switch-side INT stamper's configuration. It
// is a process-wide constant fixed at startup.
var multi uint32 = 1

// lineRateValues maps a 3-bit line_rate_idx to a line rate. Index 5 is
// unused (reserved) and index 6 is a hard-coded marker value equal to
// index 2 (100 Gb/s), mirroring the switch-side encoding table.
var lineRateValues = [8]Bitrate{
	0: 25 * Gbps,
	1: 50 * Gbps,
	2: 100 * Gbps,
	3: 200 * Gbps,
	4: 400 * Gbps,
	5: 0,
	6: 100 * Gbps,
	7: 40 * Gbps,
}

// IntHop is one switch hop's telemetry sample, bit-packed on the wire into
// two 32-bit words as time:24, bytes:20, qlen:17, line_rate_idx:3.
type IntHop struct {
	Time        uint32 // quantized nanoseconds, 24 bits
	Bytes       uint32 // egress port transmitted-byte counter / (byteUnit*multi), 20 bits
	Qlen        uint32 // egress queue length / (qlenUnit*multi), 17 bits
	LineRateIdx uint8  // index into lineRateValues, 3 bits
}

const (
	intHopTimeBits  = 24
	intHopBytesBits = 20
	intHopQlenBits  = 17
	intHopRateBits  = 3

	intHopTimeMask  = 1<<intHopTimeBits - 1
	intHopBytesMask = 1<<intHopBytesBits - 1
	intHopQlenMask  = 1<<intHopQlenBits - 1
	intHopRateMask  = 1<<intHopRateBits - 1
)

// NewIntHop quantizes raw hop telemetry into an IntHop.
func NewIntHop(t Clock, bytes, qlen Bytes, lineRate Bitrate) IntHop {
	u := uint32(multi)
	if u == 0 {
		u = 1
	}
	return IntHop{
		Time:        uint32(t) & intHopTimeMask,
		Bytes:       uint32(uint64(bytes)/(byteUnit*uint64(u))) & intHopBytesMask,
		Qlen:        uint32(uint64(qlen)/(qlenUnit*uint64(u))) & intHopQlenMask,
		LineRateIdx: lineRateIdx(lineRate),
	}
}

// lineRateIdx returns the lineRateValues index matching rate, or 2 (100
// Gb/s) if no entry matches.
func lineRateIdx(rate Bitrate) uint8 {
	for i, r := range lineRateValues {
		if r == rate {
			return uint8(i)
		}
	}
	return 2
}

// LineRate returns the hop's line rate.
func (h IntHop) LineRate() Bitrate {
	return lineRateValues[h.LineRateIdx&intHopRateMask]
}

// GetTimeDelta returns (h.Time - prev.Time) mod 2^24.
func (h IntHop) GetTimeDelta(prev IntHop) uint32 {
	return (h.Time - prev.Time) & intHopTimeMask
}

// GetBytesDelta returns (h.Bytes - prev.Bytes) mod 2^20.
func (h IntHop) GetBytesDelta(prev IntHop) uint32 {
	return (h.Bytes - prev.Bytes) & intHopBytesMask
}

// pack encodes h into two 32-bit words, high word first.
func (h IntHop) pack() (w0, w1 uint32) {
	w0 = (h.Time&intHopTimeMask)<<8 | (h.Bytes&intHopBytesMask)>>12
	w1 = (h.Bytes&intHopBytesMask)<<20 | (h.Qlen&intHopQlenMask)<<3 | uint32(h.LineRateIdx)&intHopRateMask
	return
}

// unpackIntHop decodes an IntHop from two 32-bit words produced by pack.
func unpackIntHop(w0, w1 uint32) IntHop {
	return IntHop{
		Time:        w0 >> 8,
		Bytes:       (w0&0xff)<<12 | w1>>20,
		Qlen:        (w1 >> 3) & intHopQlenMask,
		LineRateIdx: uint8(w1 & intHopRateMask),
	}
}

// IntHeader is the in-band telemetry header carried on data packets and
// echoed verbatim on the ACK that acknowledges them. Only the fields for
// the active Mode are meaningful; the others are zero.
type IntHeader struct {
	Mode IntMode

	// IntNormal
	Hop    [maxHop]IntHop
	NHop   uint16

	// IntTS
	TS uint64

	// IntPint
	PintBytes uint8 // 1 or 2
	Pint      uint16

	// IntSwift. RemoteDelay, TS and NHop are the logical field order;
	// Serialize/Deserialize write them onto the wire in the reverse
	// order (NHop, TS, RemoteDelay). Keep this decoding in one place.
	RemoteDelay uint64
	SwiftTS     uint64
	SwiftNHop   uint64
}

// GetStaticSize returns the on-wire byte size for mode, the only
// authoritative source of INT header size. pintBytes is only consulted
// when mode is IntPint.
func GetStaticSize(mode IntMode, pintBytes uint8) int {
	switch mode {
	case IntNormal:
		return maxHop*8 + 2
	case IntTS:
		return 8
	case IntPint:
		if pintBytes == 2 {
			return 2
		}
		return 1
	case IntSwift:
		return 24
	default:
		return 0
	}
}

// Serialize encodes h according to h.Mode and returns the wire bytes.
func (h IntHeader) Serialize() []byte {
	switch h.Mode {
	case IntNormal:
		b := make([]byte, maxHop*8+2)
		for i := 0; i < maxHop; i++ {
			w0, w1 := h.Hop[i].pack()
			binary.BigEndian.PutUint32(b[i*8:], w0)
			binary.BigEndian.PutUint32(b[i*8+4:], w1)
		}
		binary.BigEndian.PutUint16(b[maxHop*8:], h.NHop)
		return b
	case IntTS:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, h.TS)
		return b
	case IntPint:
		if h.PintBytes == 2 {
			b := make([]byte, 2)
			binary.BigEndian.PutUint16(b, h.Pint)
			return b
		}
		return []byte{byte(h.Pint)}
	case IntSwift:
		// Wire order is (nhop, ts, remote_delay), the reverse of the
		// logical field order (remote_delay, ts, nhop).
		b := make([]byte, 24)
		binary.BigEndian.PutUint64(b[0:], h.SwiftNHop)
		binary.BigEndian.PutUint64(b[8:], h.SwiftTS)
		binary.BigEndian.PutUint64(b[16:], h.RemoteDelay)
		return b
	default:
		return nil
	}
}

// Deserialize decodes b, which must have mode's static size, into an
// IntHeader. pintBytes selects the IntPint width.
func Deserialize(mode IntMode, pintBytes uint8, b []byte) IntHeader {
	h := IntHeader{Mode: mode}
	switch mode {
	case IntNormal:
		for i := 0; i < maxHop; i++ {
			w0 := binary.BigEndian.Uint32(b[i*8:])
			w1 := binary.BigEndian.Uint32(b[i*8+4:])
			h.Hop[i] = unpackIntHop(w0, w1)
		}
		h.NHop = binary.BigEndian.Uint16(b[maxHop*8:])
	case IntTS:
		h.TS = binary.BigEndian.Uint64(b)
	case IntPint:
		h.PintBytes = pintBytes
		if pintBytes == 2 {
			h.Pint = binary.BigEndian.Uint16(b)
		} else {
			h.Pint = uint16(b[0])
		}
	case IntSwift:
		h.SwiftNHop = binary.BigEndian.Uint64(b[0:])
		h.SwiftTS = binary.BigEndian.Uint64(b[8:])
		h.RemoteDelay = binary.BigEndian.Uint64(b[16:])
	}
	return h
}

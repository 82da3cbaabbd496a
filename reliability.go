// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// CheckSeqResult is the receiver sequence check's verdict for one arriving
// data packet.
type CheckSeqResult int

const (
	CheckSeqBatch CheckSeqResult = iota
	CheckSeqAck
	CheckSeqNack
	CheckSeqDropDup
	CheckSeqSuppressNack
)

// CheckSeq advances rx's sequence state for a data packet carrying seq and
// size, and reports what the caller should emit, if anything. now is the
// current virtual time.
func CheckSeq(rx *RxQP, now Clock, seq, size Bytes) CheckSeqResult {
	switch {
	case seq == rx.NextExpectedSeq:
		rx.NextExpectedSeq += size
		crossedMilestone := rx.NextExpectedSeq >= rx.Milestone
		if crossedMilestone {
			rx.Milestone = rx.NextExpectedSeq + ackInterval(rx.Cfg)
		}
		crossedChunk := rx.Cfg.L2Chunk > 0 && rx.NextExpectedSeq%rx.Cfg.L2Chunk == 0
		if crossedMilestone || crossedChunk {
			return CheckSeqAck
		}
		return CheckSeqBatch
	case seq > rx.NextExpectedSeq:
		if now >= rx.NackTimer || !rx.HasLastNack || rx.LastNack != rx.NextExpectedSeq {
			rx.NackTimer = now + rx.Cfg.NackInterval
			if rx.Cfg.L2BackToZero && rx.Cfg.L2Chunk > 0 {
				rx.NextExpectedSeq = (rx.NextExpectedSeq / rx.Cfg.L2Chunk) * rx.Cfg.L2Chunk
			}
			rx.LastNack = rx.NextExpectedSeq
			rx.HasLastNack = true
			return CheckSeqNack
		}
		return CheckSeqSuppressNack
	default:
		return CheckSeqDropDup
	}
}

// BuildAckNack constructs the ACK or NACK packet for a just-processed data
// packet, carrying rx.NextExpectedSeq as its sequence and the data
// packet's INT header copied verbatim. proto selects L3Ack or L3Nack.
func BuildAckNack(rx *RxQP, proto L3Proto, dataHdr IntHeader, ecnMarked bool) Packet {
	return Packet{
		Flow:      reverseFlow(rx.Key),
		L3Proto:   proto,
		Seq:       uint32(rx.NextExpectedSeq),
		CNP:       ecnMarked,
		EcnMarked: ecnMarked,
		IPID:      rx.nextIPID(),
		Int:       dataHdr,
	}
}

// reverseFlow swaps the source and destination halves of key, since an
// ACK/NACK travels from the data receiver back to the data sender.
func reverseFlow(key FlowKey) FlowKey {
	return FlowKey{
		Sip:   key.Dip,
		Dip:   key.Sip,
		Sport: key.Dport,
		Dport: key.Sport,
		Pg:    key.Pg,
	}
}

// chunkSnap rounds s down to the nearest multiple of chunk, or returns s
// unchanged if chunk is zero (chunking disabled).
func chunkSnap(s, chunk Bytes) Bytes {
	if chunk == 0 {
		return s
	}
	return (s / chunk) * chunk
}

// SenderOnNack performs go-back-N loss recovery: snd_nxt is reset to
// snd_una so the QP resumes sending from the last acknowledged byte.
func SenderOnNack(qp *QP) {
	qp.SndNxt = qp.SndUna
}

// SenderAdvanceUna advances qp.SndUna to ackSeq (snapped to a chunk
// boundary first if back_to_zero is enabled), never moving it backward,
// and checks for completion.
func SenderAdvanceUna(qp *QP, ackSeq Bytes) {
	if qp.Cfg.L2BackToZero {
		ackSeq = chunkSnap(ackSeq, qp.Cfg.L2Chunk)
	}
	if ackSeq > qp.SndUna {
		qp.SndUna = ackSeq
	}
	qp.TryComplete()
}

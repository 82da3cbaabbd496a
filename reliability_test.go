// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "testing"

func testFlowKey() FlowKey {
	return FlowKey{Sip: 0x0a000001, Dip: 0x0a000002, Sport: 1, Dport: 1, Pg: 0}
}

func TestCheckSeqInOrderBatchThenAckOnMilestone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MTU = 1000
	cfg.L2AckInterval = 0 // falls back to one MTU per ackInterval
	rx := NewRxQP(testFlowKey(), &cfg)

	if got := CheckSeq(rx, 0, 0, 500); got != CheckSeqBatch {
		t.Fatalf("first half-MTU packet = %v, want CheckSeqBatch", got)
	}
	if rx.NextExpectedSeq != 500 {
		t.Fatalf("NextExpectedSeq = %d, want 500", rx.NextExpectedSeq)
	}

	got := CheckSeq(rx, 0, 500, 500)
	if got != CheckSeqAck {
		t.Fatalf("packet crossing milestone = %v, want CheckSeqAck", got)
	}
	if rx.NextExpectedSeq != 1000 {
		t.Fatalf("NextExpectedSeq = %d, want 1000", rx.NextExpectedSeq)
	}
	if rx.Milestone != 2000 {
		t.Fatalf("Milestone = %d, want 2000", rx.Milestone)
	}
}

func TestCheckSeqGapNacksOnceThenSuppresses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MTU = 1000
	cfg.NackInterval = 500_000
	rx := NewRxQP(testFlowKey(), &cfg)

	got := CheckSeq(rx, 0, 1000, 1000) // gap: expected 0, got 1000
	if got != CheckSeqNack {
		t.Fatalf("first gap = %v, want CheckSeqNack", got)
	}
	if rx.NextExpectedSeq != 0 {
		t.Fatalf("NextExpectedSeq moved on NACK: %d", rx.NextExpectedSeq)
	}

	got = CheckSeq(rx, 1, 1000, 1000) // same gap, inside nack_interval
	if got != CheckSeqSuppressNack {
		t.Fatalf("repeated gap before interval = %v, want CheckSeqSuppressNack", got)
	}

	got = CheckSeq(rx, rx.NackTimer, 1000, 1000) // interval elapsed
	if got != CheckSeqNack {
		t.Fatalf("gap after nack_interval elapsed = %v, want CheckSeqNack", got)
	}
}

func TestCheckSeqDropsDuplicate(t *testing.T) {
	cfg := DefaultConfig()
	rx := NewRxQP(testFlowKey(), &cfg)
	rx.NextExpectedSeq = 1000

	if got := CheckSeq(rx, 0, 500, 500); got != CheckSeqDropDup {
		t.Fatalf("old sequence = %v, want CheckSeqDropDup", got)
	}
}

func TestCheckSeqBackToZeroSnapsToChunk(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MTU = 1000
	cfg.L2Chunk = 4000
	cfg.L2BackToZero = true
	rx := NewRxQP(testFlowKey(), &cfg)
	rx.NextExpectedSeq = 3000 // mid-chunk

	got := CheckSeq(rx, 0, 5000, 1000) // gap: jumps past the chunk boundary
	if got != CheckSeqNack {
		t.Fatalf("gap = %v, want CheckSeqNack", got)
	}
	if rx.NextExpectedSeq != 0 {
		t.Fatalf("NextExpectedSeq = %d, want snapped to 0", rx.NextExpectedSeq)
	}
}

func TestCheckSeqChunkBoundaryForcesAck(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MTU = 1000
	cfg.L2Chunk = 1500
	cfg.L2AckInterval = 10000 // push milestone far out so only chunking can force the ACK
	rx := NewRxQP(testFlowKey(), &cfg)
	rx.Milestone = 10000

	if got := CheckSeq(rx, 0, 0, 1000); got != CheckSeqBatch {
		t.Fatalf("first packet = %v, want CheckSeqBatch", got)
	}
	got := CheckSeq(rx, 0, 1000, 500) // lands exactly on the chunk boundary
	if got != CheckSeqAck {
		t.Fatalf("chunk-boundary packet = %v, want CheckSeqAck", got)
	}
}

func TestBuildAckNackReversesFlowAndCopiesInt(t *testing.T) {
	cfg := DefaultConfig()
	rx := NewRxQP(testFlowKey(), &cfg)
	rx.NextExpectedSeq = 1000
	hdr := IntHeader{Mode: IntTS, TS: 42}

	pkt := BuildAckNack(rx, L3Ack, hdr, true)

	want := reverseFlow(testFlowKey())
	if pkt.Flow != want {
		t.Fatalf("flow = %+v, want %+v", pkt.Flow, want)
	}
	if pkt.L3Proto != L3Ack || pkt.Seq != 1000 || !pkt.EcnMarked || !pkt.CNP {
		t.Fatalf("unexpected packet fields: %+v", pkt)
	}
	if pkt.Int != hdr {
		t.Fatalf("Int header not copied verbatim: %+v", pkt.Int)
	}
	if pkt.IPID != 0 || rx.IPID != 1 {
		t.Fatalf("IPID = %d, rx.IPID = %d, want 0 then incremented to 1", pkt.IPID, rx.IPID)
	}
}

func TestSenderOnNackResetsToUna(t *testing.T) {
	qp := &QP{SndUna: 1000, SndNxt: 5000}
	SenderOnNack(qp)
	if qp.SndNxt != 1000 {
		t.Fatalf("SndNxt = %d, want reset to SndUna 1000", qp.SndNxt)
	}
}

func TestSenderAdvanceUnaCompletesOnce(t *testing.T) {
	cfg := DefaultConfig()
	qp := &QP{Cfg: &cfg, Size: 1000, SndUna: 0}
	calls := 0
	qp.OnComplete = func(*QP) { calls++ }

	SenderAdvanceUna(qp, 1000)
	if !qp.Completed {
		t.Fatalf("not completed after SndUna reaches Size")
	}
	if calls != 1 {
		t.Fatalf("OnComplete called %d times, want 1", calls)
	}

	SenderAdvanceUna(qp, 1000) // idempotent
	if calls != 1 {
		t.Fatalf("OnComplete called again on repeat ack: %d", calls)
	}
}

func TestSenderAdvanceUnaNeverMovesBackward(t *testing.T) {
	cfg := DefaultConfig()
	qp := &QP{Cfg: &cfg, Size: 10000, SndUna: 5000}
	SenderAdvanceUna(qp, 1000)
	if qp.SndUna != 5000 {
		t.Fatalf("SndUna moved backward to %d", qp.SndUna)
	}
}

// TestNackStormBoundedByInterval checks the invariant that a sustained
// gap produces at most ceil(duration/nack_interval)+1 NACKs: one at the
// gap's first sight, then one per elapsed interval.
func TestNackStormBoundedByInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NackInterval = 1000
	rx := NewRxQP(testFlowKey(), &cfg)

	const duration = Clock(10_500)
	const step = Clock(100)
	nacks := 0
	for now := Clock(0); now < duration; now += step {
		if CheckSeq(rx, now, 1000, 1000) == CheckSeqNack {
			nacks++
		}
	}

	maxNacks := int(duration/cfg.NackInterval) + 2 // +1 for ceil, +1 for the first sighting
	if nacks > maxNacks {
		t.Fatalf("nacks = %d, want <= %d", nacks, maxNacks)
	}
	if nacks == 0 {
		t.Fatalf("expected at least one NACK over a sustained gap")
	}
}

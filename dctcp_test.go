// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "testing"

// TestDctcpAlphaBatchUpdate drives ten batches of 100 ACKs each, all
// unmarked except the last batch where 40 of 100 are ECN-marked, and
// checks alpha after the boundary update that folds in the last batch.
func TestDctcpAlphaBatchUpdate(t *testing.T) {
	cfg := DefaultConfig()
	node := newFakeNode()
	s := newDctcpState(&cfg)
	qp := &QP{
		Cfg:     &cfg,
		Rate:    10 * Gbps,
		MaxRate: 100 * Gbps,
		MinRate: 100 * Mbps,
	}
	qp.CCA = s

	const batches = 10
	const perBatch = 100
	for b := 0; b < batches; b++ {
		marked := b == batches-1
		// Ship the whole batch up front, as DCTCP's per-window batching
		// expects: the first ack of the batch carries ackSeq past the
		// previous batch's lastUpdateSeq and triggers the update: the
		// remaining 99 acks land inside the new window and don't. That
		// update counts the acks since the previous one, so the last 40
		// acks of the final batch are the marked ones.
		qp.SndNxt = Bytes(b+1) * perBatch * Bytes(cfg.MTU)
		for i := 0; i < perBatch; i++ {
			ecn := marked && i >= perBatch-40
			ackSeq := Bytes(b)*perBatch*Bytes(cfg.MTU) + Bytes(i+1)*Bytes(cfg.MTU)
			s.OnAck(qp, node, IntHeader{}, 0, ackSeq, ecn)
		}
	}

	// The next boundary ack (unmarked) closes the marked batch's window:
	// 99 acks of the final batch plus itself, 40 of them marked.
	alphaPrev := s.alpha
	qp.SndNxt = Bytes(batches+1) * perBatch * Bytes(cfg.MTU)
	s.OnAck(qp, node, IntHeader{}, 0, Bytes(batches)*perBatch*Bytes(cfg.MTU)+Bytes(cfg.MTU), false)

	want := ewma(alphaPrev, 0.4, cfg.EwmaGain)
	if diff := s.alpha - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("alpha = %v, want ~%v", s.alpha, want)
	}
}

func TestDctcpEntersCwrOnMark(t *testing.T) {
	cfg := DefaultConfig()
	node := newFakeNode()
	s := newDctcpState(&cfg)
	qp := &QP{
		Cfg:     &cfg,
		Rate:    10 * Gbps,
		MaxRate: 100 * Gbps,
		MinRate: 100 * Mbps,
	}
	qp.CCA = s

	before := qp.Rate
	qp.SndNxt += Bytes(cfg.MTU)
	s.OnAck(qp, node, IntHeader{}, 0, qp.SndNxt, true)

	if s.state != dctcpCwr {
		t.Fatalf("state = %v, want dctcpCwr", s.state)
	}
	if qp.Rate >= before {
		t.Fatalf("rate did not decrease on mark: %s -> %s", before, qp.Rate)
	}

	qp.SndNxt += Bytes(cfg.MTU)
	s.OnAck(qp, node, IntHeader{}, 0, qp.SndNxt, false)
	if s.state != dctcpNormal {
		t.Fatalf("state = %v, want dctcpNormal after highSeq crossed", s.state)
	}
}

// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "testing"

// TestUfccBurstDetection drives an ACK whose RTT exceeds min_rtt by
// more than burst_rtt and checks the controller falls into BURST and
// floors its rate at max(0.3*low_rate, min_rate).
func TestUfccBurstDetection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ufcc.BurstRtt = 6_000
	node := newFakeNode()
	s := newUfccState(&cfg, false)
	qp := &QP{
		Cfg:     &cfg,
		Rate:    20 * Gbps,
		MaxRate: 100 * Gbps,
		MinRate: 1 * Gbps,
	}
	qp.CCA = s

	// Prime the controller at min_rtt=20us.
	qp.SndNxt = 1000
	s.OnAck(qp, node, IntHeader{}, 20_000, 1000, false)
	lowRate := s.lowRate

	qp.SndNxt = 2000
	s.OnAck(qp, node, IntHeader{}, 30_000, 2000, false)

	if s.phase != ufccBurst {
		t.Fatalf("phase = %v, want ufccBurst", s.phase)
	}
	want := clampRate(Bitrate(0.3*float64(lowRate)), qp.MinRate, qp.MaxRate)
	if s.curRate != want {
		t.Fatalf("curRate = %s, want %s", s.curRate, want)
	}
	if qp.Rate != want {
		t.Fatalf("qp.Rate = %s, want %s applied by applyRate", qp.Rate, want)
	}
}

func TestUfccCwndVariantSetsWindowNotRate(t *testing.T) {
	cfg := DefaultConfig()
	node := newFakeNode()
	s := newUfccState(&cfg, true)
	qp := &QP{
		Cfg:     &cfg,
		Rate:    20 * Gbps,
		MaxRate: 100 * Gbps,
		MinRate: 1 * Gbps,
		BaseRtt: 50_000,
	}
	qp.CCA = s

	rateBefore := qp.Rate
	qp.SndNxt = 1000
	s.OnAck(qp, node, IntHeader{}, 20_000, 1000, false)

	if qp.Rate != rateBefore {
		t.Fatalf("rate changed under UFCC_CWND: %s -> %s", rateBefore, qp.Rate)
	}
	if qp.Win == 0 {
		t.Fatalf("win not set under UFCC_CWND")
	}
}

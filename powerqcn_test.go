// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "testing"

// TestPowerQcnGradientSelectsIncreaseConstant drives two ACKs whose RTT
// drop gives a gradient below gradient_low, which should widen the
// increase constant on an unmarked sample.
func TestPowerQcnGradientSelectsIncreaseConstant(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PowerQcn.TMin = 50_000 // keep rtt below t_min so the sample is never marked
	cfg.PowerQcn.TMax = 100_000
	cfg.PowerQcn.GradientLow = -0.2
	node := newFakeNode()
	s := newPowerQcnState(&cfg)
	qp := &QP{Cfg: &cfg, Win: 2000} // at/above mtu: scaled branch

	// Prime lastRtt, then drop sharply enough to cross gradient_low.
	s.OnAck(qp, node, IntHeader{}, 10_000, 0, false)
	before := qp.Win
	s.OnAck(qp, node, IntHeader{}, 1_000, 0, false)

	gradient := (1000.0 - 10000.0) / 10000.0
	if gradient >= cfg.PowerQcn.GradientLow {
		t.Fatalf("test setup: gradient %v does not cross gradient_low %v", gradient, cfg.PowerQcn.GradientLow)
	}
	want := clampBytes(Bytes(float64(before)+20*float64(cfg.MTU)/float64(before)), 1, BytesMax)
	if qp.Win != want {
		t.Fatalf("win = %d, want %d (incConst=20 branch)", qp.Win, want)
	}
}

func TestPowerQcnDefaultConstantsWithoutGradient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PowerQcn.TMin = 50_000
	cfg.PowerQcn.TMax = 100_000
	node := newFakeNode()
	s := newPowerQcnState(&cfg)
	qp := &QP{Cfg: &cfg, Win: 2000}

	// First ACK: lastRtt is zero, so gradient is always zero regardless
	// of rtt, taking the default (unmodulated) increase constant.
	s.OnAck(qp, node, IntHeader{}, 10_000, 0, false)

	want := clampBytes(Bytes(2000+8*float64(cfg.MTU)/2000), 1, BytesMax)
	if qp.Win != want {
		t.Fatalf("win = %d, want %d (default incConst=8 branch)", qp.Win, want)
	}
}

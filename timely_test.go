// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "testing"

// TestTimelyBelowTLowRaiThenRhai drives a constant rtt below T_low and
// checks the additive-increase ladder: rai-sized steps for the first
// five updates, then rhai-sized steps.
func TestTimelyBelowTLowRaiThenRhai(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timely.TLow = 50_000
	node := newFakeNode()
	s := newTimelyState(&cfg, false)
	qp := &QP{
		Cfg:     &cfg,
		Rate:    10 * Gbps,
		MaxRate: 100 * Gbps,
		MinRate: 100 * Mbps,
	}
	qp.CCA = s

	const rtt = Clock(30_000)
	for i := 0; i < 5; i++ {
		before := qp.Rate
		s.OnAck(qp, node, IntHeader{}, rtt, 0, false)
		if got, want := qp.Rate-before, cfg.Rai; got != want {
			t.Fatalf("increment %d: rate step = %s, want rai %s", i, got, want)
		}
	}
	if s.stage < 5 {
		t.Fatalf("stage = %d, want >= 5 after five increments", s.stage)
	}

	before := qp.Rate
	s.OnAck(qp, node, IntHeader{}, rtt, 0, false)
	if got, want := qp.Rate-before, cfg.Rhai; got != want {
		t.Fatalf("sixth increment: rate step = %s, want rhai %s", got, want)
	}
}

func TestTimelyAboveTHighDecreases(t *testing.T) {
	cfg := DefaultConfig()
	node := newFakeNode()
	s := newTimelyState(&cfg, false)
	qp := &QP{
		Cfg:     &cfg,
		Rate:    10 * Gbps,
		MaxRate: 100 * Gbps,
		MinRate: 100 * Mbps,
	}
	qp.CCA = s

	before := qp.Rate
	s.OnAck(qp, node, IntHeader{}, cfg.Timely.THigh+1, 0, false)
	if qp.Rate >= before {
		t.Fatalf("rate did not decrease above t_high: %s -> %s", before, qp.Rate)
	}
	if s.stage != 0 {
		t.Fatalf("stage = %d, want reset to 0 on decrease", s.stage)
	}
}

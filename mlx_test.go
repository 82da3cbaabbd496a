// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "testing"

func TestMlxFirstCnpHalvesRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateOnFirstCnp = 0.5

	node := newFakeNode()
	qp := &QP{
		Cfg:     &cfg,
		Rate:    100 * Gbps,
		MaxRate: 100 * Gbps,
		MinRate: 100 * Mbps,
	}
	s := newMlxState(&cfg)
	qp.CCA = s

	s.OnCNP(qp, node)

	if qp.Rate != 50*Gbps {
		t.Fatalf("rate = %s, want 50Gbps", qp.Rate)
	}
	if s.targetRate != 50*Gbps {
		t.Fatalf("targetRate = %s, want 50Gbps", s.targetRate)
	}
	if got := node.liveTimers(); got != 3 {
		t.Fatalf("live timers = %d, want 3", got)
	}
}

func TestMlxSecondCnpDoesNotRescale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateOnFirstCnp = 0.5

	node := newFakeNode()
	qp := &QP{
		Cfg:     &cfg,
		Rate:    100 * Gbps,
		MaxRate: 100 * Gbps,
		MinRate: 100 * Mbps,
	}
	s := newMlxState(&cfg)
	qp.CCA = s

	s.OnCNP(qp, node)
	before := node.liveTimers()
	s.OnCNP(qp, node)

	if qp.Rate != 50*Gbps {
		t.Fatalf("rate changed on second CNP: %s", qp.Rate)
	}
	if got := node.liveTimers(); got != before {
		t.Fatalf("live timers = %d, want unchanged %d", got, before)
	}
	if !s.cnpInWindow {
		t.Fatalf("cnpInWindow not set by second CNP")
	}
}

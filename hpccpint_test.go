// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "testing"

func TestDecodePintEndpoints(t *testing.T) {
	if got := decodePint(0, 1, 1.1); got != 0 {
		t.Fatalf("decodePint(0) = %v, want 0", got)
	}
	if got := decodePint(255, 1, 1.1); got < 0.999 || got > 1.0001 {
		t.Fatalf("decodePint(max, 1-byte) = %v, want ~1", got)
	}
	if got := decodePint(65535, 2, 1.1); got < 0.999 || got > 1.0001 {
		t.Fatalf("decodePint(max, 2-byte) = %v, want ~1", got)
	}
}

func TestHpccPintIgnoresNonPintHeader(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PintSmplThresh = 65536 // always sample
	node := newFakeNode()
	s := newHpccPintState(&cfg)
	qp := &QP{Cfg: &cfg, Rate: 10 * Gbps, MaxRate: 100 * Gbps, MinRate: 100 * Mbps}
	qp.CCA = s

	before := qp.Rate
	s.OnAck(qp, node, IntHeader{Mode: IntNone}, 0, 0, false)
	if qp.Rate != before {
		t.Fatalf("rate changed on a non-PINT header: %s -> %s", before, qp.Rate)
	}
}

func TestHpccPintAppliesDecodedUtilization(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PintSmplThresh = 65536 // always sample
	cfg.TargetUtil = 0.95
	node := newFakeNode()
	s := newHpccPintState(&cfg)
	qp := &QP{Cfg: &cfg, Rate: 50 * Gbps, MaxRate: 100 * Gbps, MinRate: 100 * Mbps}
	qp.CCA = s

	// value=0 decodes to u=0, well under target_util: additive-increase branch.
	s.OnAck(qp, node, IntHeader{Mode: IntPint, PintBytes: 1, Pint: 0}, 0, 0, false)

	if s.u != 0 {
		t.Fatalf("s.u = %v, want 0", s.u)
	}
	if want := 50*Gbps + cfg.Rai; qp.Rate != want {
		t.Fatalf("rate = %s, want cur_rate+rai = %s", qp.Rate, want)
	}
	if s.incStage != 1 {
		t.Fatalf("incStage = %d, want 1", s.incStage)
	}
}

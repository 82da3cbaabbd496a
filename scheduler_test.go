// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "testing"

func TestNextPacketAdvancesSeqAndIPID(t *testing.T) {
	cfg := DefaultConfig()
	qp := &QP{Cfg: &cfg, Size: 2500, IPID: 7}

	pkt, ok := NextPacket(qp, 1000, 1000, 0)
	if !ok {
		t.Fatalf("NextPacket returned ok=false with bytes remaining")
	}
	if pkt.Seq != 0 || pkt.Size != 1000 || pkt.IPID != 7 {
		t.Fatalf("unexpected first packet: %+v", pkt)
	}
	if qp.SndNxt != 1000 || qp.IPID != 8 {
		t.Fatalf("SndNxt=%d IPID=%d, want 1000 and 8", qp.SndNxt, qp.IPID)
	}

	pkt, ok = NextPacket(qp, 1000, 1000, 1000)
	if !ok || pkt.Seq != 1000 || pkt.Size != 1000 {
		t.Fatalf("unexpected second packet: %+v ok=%v", pkt, ok)
	}

	pkt, ok = NextPacket(qp, 1000, 1000, 2000) // last 500 bytes, short of a full MTU
	if !ok || pkt.Size != 500 {
		t.Fatalf("unexpected final packet: %+v ok=%v", pkt, ok)
	}

	_, ok = NextPacket(qp, 1000, 1000, 2500)
	if ok {
		t.Fatalf("NextPacket returned ok=true with nothing left to send")
	}
}

func TestNextPacketUnscheduledFlag(t *testing.T) {
	cfg := DefaultConfig()
	qp := &QP{Cfg: &cfg, Size: 10000}

	pkt, _ := NextPacket(qp, 1000, 2000, 1500) // cumulative sent (1500) within bdp (2000)
	if !pkt.Unscheduled {
		t.Fatalf("packet within bdp should be Unscheduled")
	}
	pkt, _ = NextPacket(qp, 1000, 2000, 2500) // cumulative sent beyond bdp
	if pkt.Unscheduled {
		t.Fatalf("packet beyond bdp should not be Unscheduled")
	}
}

func TestOnPktSentAdvancesNextAvailableMonotonically(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateBound = true
	qp := &QP{Cfg: &cfg, Rate: 8 * Gbps, MaxRate: 100 * Gbps}

	OnPktSent(qp, 0, 1000, 0)
	first := qp.NextAvailable
	if first <= 0 {
		t.Fatalf("NextAvailable not advanced: %s", first)
	}
	if qp.LastPktSize != 1000 {
		t.Fatalf("LastPktSize = %d, want 1000", qp.LastPktSize)
	}

	// A second send at the same now, whose computed next time does not
	// exceed NextAvailable, must not move NextAvailable.
	OnPktSent(qp, 0, 1000, 0)
	if qp.NextAvailable != first {
		t.Fatalf("NextAvailable moved: %s -> %s", first, qp.NextAvailable)
	}
}

func TestOnPktSentUsesMaxRateWhenNotRateBound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateBound = false
	qp := &QP{Cfg: &cfg, Rate: 1 * Gbps, MaxRate: 100 * Gbps}

	OnPktSent(qp, 0, 1000, 0)
	want := TransferTimeClock(100*Gbps, 1000)
	if qp.NextAvailable != want {
		t.Fatalf("NextAvailable = %s, want max_rate-derived %s", qp.NextAvailable, want)
	}
}

func TestCanSendGatesOnPacingAndWindow(t *testing.T) {
	qp := &QP{SndNxt: 0, SndUna: 0, Win: 1000, NextAvailable: 500}

	if CanSend(qp, 400) {
		t.Fatalf("CanSend true before pacing delay elapsed")
	}
	if !CanSend(qp, 500) {
		t.Fatalf("CanSend false once pacing delay elapsed")
	}

	qp.SndNxt = 1000 // on_the_fly == win: window-bound
	if CanSend(qp, 500) {
		t.Fatalf("CanSend true while window-bound")
	}
}

// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "math"

// swiftState is Swift's per-QP substate: two congestion windows (fabric
// and endpoint) that independently track a delay target derived from the
// SWIFT INT mode's echoed remote_delay and hop count, combined into the
// QP's effective window (or, below cwnd=1, a per-packet pacing delay).
type swiftState struct {
	cfg *Config

	alpha, beta float64 // solved once from fs_min_cwnd/fs_max_cwnd/fs_range

	fabricCwnd   float64
	endpointCwnd float64

	// decreaseFabric/decreaseEndpoint gate each window to at most one
	// multiplicative decrease per delay-sample window, the same
	// add(now, now-window) rate-limit the ring buffer is built for.
	decreaseFabric   *clockRing
	decreaseEndpoint *clockRing
}

func newSwiftState(cfg *Config) *swiftState {
	s := &swiftState{
		cfg:              cfg,
		fabricCwnd:       1,
		endpointCwnd:     1,
		decreaseFabric:   newClockRing(1),
		decreaseEndpoint: newClockRing(1),
	}
	sc := cfg.Swift
	invMin := 1 / math.Sqrt(sc.FsMinCwnd)
	invMax := 1 / math.Sqrt(sc.FsMaxCwnd)
	if invMin == invMax {
		s.alpha, s.beta = 0, 0
	} else {
		s.alpha = float64(sc.FsRange) / (invMin - invMax)
		s.beta = -s.alpha * invMax
	}
	return s
}

func (s *swiftState) OnNack(qp *QP, node Node, hdr IntHeader) {}
func (s *swiftState) OnCNP(qp *QP, node Node)                 {}

func (s *swiftState) OnAck(qp *QP, node Node, hdr IntHeader, rttSample Clock, ackSeq Bytes, ecnMarked bool) {
	rtt := rttSample
	var remoteDelay Clock
	var nhop uint64
	if hdr.Mode == IntSwift {
		remoteDelay = Clock(hdr.RemoteDelay)
		nhop = hdr.SwiftNHop
	}
	fabricDelay := rtt - remoteDelay
	if fabricDelay < 0 {
		fabricDelay = 0
	}

	now := node.Now()
	targetFabric := s.cfg.Swift.BaseTarget + Clock(nhop)*s.cfg.Swift.HopScale + s.fsTerm(s.fabricCwnd)
	s.fabricCwnd = s.stepCwnd(s.fabricCwnd, fabricDelay, targetFabric, now, s.decreaseFabric)

	targetEndpoint := s.cfg.Swift.BaseTarget
	s.endpointCwnd = s.stepCwnd(s.endpointCwnd, remoteDelay, targetEndpoint, now, s.decreaseEndpoint)

	cwnd := s.fabricCwnd
	if s.endpointCwnd < cwnd {
		cwnd = s.endpointCwnd
	}
	cwnd = clampFloat(cwnd, s.cfg.Swift.MinCwnd, s.cfg.Swift.MaxCwnd)

	if cwnd < 1 {
		if rtt <= 0 {
			rtt = s.cfg.Swift.BaseTarget
		}
		pacing := Clock(float64(rtt) / cwnd)
		qp.NextAvailable = now + pacing
		qp.SetWin(BytesMax, node)
	} else {
		qp.SetWin(Bytes(cwnd*float64(qp.Cfg.MTU)), node)
	}
}

// fsTerm returns the additional-delay-budget term for cwnd, a clamp of
// alpha*cwnd^(-1/2)+beta into [0, fs_range].
func (s *swiftState) fsTerm(cwnd float64) Clock {
	if cwnd < 1 {
		cwnd = 1
	}
	v := s.alpha/math.Sqrt(cwnd) + s.beta
	return Clock(clampFloat(v, 0, float64(s.cfg.Swift.FsRange)))
}

// stepCwnd applies Swift's additive-increase-on-slack / multiplicative-
// decrease-on-congestion rule for one of the two (fabric, endpoint)
// windows. A decrease is only applied if decreaseHistory's window gate
// (keyed off the current delay sample) allows it, so a single delay
// spike can't fire more than one decrease per curr-sized interval.
func (s *swiftState) stepCwnd(cwnd float64, curr, target, now Clock, decreaseHistory *clockRing) float64 {
	sc := s.cfg.Swift
	switch {
	case curr < target:
		if cwnd < 1 {
			cwnd += sc.Ai * float64(s.cfg.MTU)
		} else {
			cwnd += sc.Ai * (float64(s.cfg.MTU) / cwnd)
		}
	case decreaseHistory.add(now, now-curr):
		dec := math.Max(1-sc.Beta*float64(curr-target)/float64(curr), 1-sc.MaxMdf)
		cwnd *= dec
	}
	return cwnd
}

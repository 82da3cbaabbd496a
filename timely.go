// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// timelyState is TIMELY's (and, with patched set, Patched TIMELY's)
// per-QP substate: a delay-gradient rate controller using the echoed TS
// INT mode.
type timelyState struct {
	cfg     *Config
	patched bool

	rttDiff float64
	lastRtt Clock
	stage   int
}

func newTimelyState(cfg *Config, patched bool) *timelyState {
	return &timelyState{cfg: cfg, patched: patched}
}

func (s *timelyState) OnNack(qp *QP, node Node, hdr IntHeader) {}
func (s *timelyState) OnCNP(qp *QP, node Node)                 {}

func (s *timelyState) OnAck(qp *QP, node Node, hdr IntHeader, rttSample Clock, ackSeq Bytes, ecnMarked bool) {
	rtt := rttSample
	if hdr.Mode == IntTS {
		rtt = node.Now() - Clock(hdr.TS)
	}
	tc := s.cfg.Timely

	rttDiff := ewma(s.rttDiff, float64(rtt-s.lastRtt), tc.Alpha)
	s.rttDiff = rttDiff
	gradient := rttDiff / float64(tc.MinRtt)

	var newRate Bitrate
	switch {
	case rtt < tc.TLow:
		newRate = s.aiStep(qp)
	case rtt > tc.THigh:
		factor := 1 - tc.Beta*(1-float64(tc.THigh)/float64(rtt))
		newRate = Bitrate(float64(qp.Rate) * factor)
		s.stage = 0
	case gradient <= 0:
		newRate = s.aiStep(qp)
	case s.patched:
		pc := s.cfg.PatchedTimely
		w := clampFloat((gradient+0.25)/0.5, 0, 1)
		e := (float64(rtt) - float64(pc.RTTRef)) / float64(pc.RTTRef)
		newRate = Bitrate(float64(s.cfg.Rai)*(1-w) + float64(qp.Rate)*(1-pc.Beta*e*w))
	default:
		factor := 1 - tc.Beta*gradient
		if factor < 0 {
			factor = 0
		}
		newRate = Bitrate(float64(qp.Rate) * factor)
	}
	qp.ChangeRate(clampRate(newRate, qp.MinRate, qp.MaxRate), node)
	s.lastRtt = rtt
}

// aiStep returns the additive-increase target, stepping from rai to rhai
// increments after five increases.
func (s *timelyState) aiStep(qp *QP) Bitrate {
	inc := s.cfg.Rai
	if s.stage >= 5 {
		inc = s.cfg.Rhai
	}
	s.stage++
	return qp.Rate + inc
}

// clampFloat clamps f into [lo, hi].
func clampFloat(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// powerQcnState is PowerQCN's per-QP substate: RTT-QCN's window update
// with the additive/subtractive constants modulated by where the RTT
// gradient falls against GradientLow and GradientHigh.
type powerQcnState struct {
	cfg     *Config
	lastRtt Clock
}

func newPowerQcnState(cfg *Config) *powerQcnState {
	return &powerQcnState{cfg: cfg}
}

func (s *powerQcnState) OnNack(qp *QP, node Node, hdr IntHeader) {}
func (s *powerQcnState) OnCNP(qp *QP, node Node)                 {}

func (s *powerQcnState) OnAck(qp *QP, node Node, hdr IntHeader, rttSample Clock, ackSeq Bytes, ecnMarked bool) {
	rtt := rttSample
	if hdr.Mode == IntTS {
		rtt = node.Now() - Clock(hdr.TS)
	}
	pc := s.cfg.PowerQcn

	var gradient float64
	if s.lastRtt > 0 {
		gradient = (float64(rtt) - float64(s.lastRtt)) / float64(s.lastRtt)
	}

	marked := probabilisticMark(rtt, pc.TMin, pc.TMax)

	decConst := 0.5
	if gradient > pc.GradientHigh {
		decConst = 0.7
	}
	incConst := 8.0
	if gradient < pc.GradientLow {
		incConst = 20
	}

	qp.SetWin(qcnStep(qp.Win, qp.Cfg.MTU, marked, pc.Beta, pc.Alpha, incConst, decConst), node)
	s.lastRtt = rtt
}

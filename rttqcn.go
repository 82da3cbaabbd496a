// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// rttQcnState is RTT-QCN's per-QP substate: a window-based controller
// using a locally computed probabilistic mark (no switch ECN) derived
// from the measured RTT against two thresholds.
type rttQcnState struct {
	cfg     *Config
	lastRtt Clock
}

func newRttQcnState(cfg *Config) *rttQcnState {
	return &rttQcnState{cfg: cfg}
}

func (s *rttQcnState) OnNack(qp *QP, node Node, hdr IntHeader) {}
func (s *rttQcnState) OnCNP(qp *QP, node Node)                 {}

func (s *rttQcnState) OnAck(qp *QP, node Node, hdr IntHeader, rttSample Clock, ackSeq Bytes, ecnMarked bool) {
	rtt := rttSample
	if hdr.Mode == IntTS {
		rtt = node.Now() - Clock(hdr.TS)
	}
	rc := s.cfg.RttQcn
	marked := probabilisticMark(rtt, rc.TMin, rc.TMax)
	qp.SetWin(qcnStep(qp.Win, qp.Cfg.MTU, marked, rc.Beta, rc.Alpha, 1, 0.5), node)
	s.lastRtt = rtt
}

// probabilisticMark decides whether rtt triggers a congestion mark: never
// below tMin, always above tMax, otherwise linearly with probability
// (rtt-tMin)/(tMax-tMin).
func probabilisticMark(rtt, tMin, tMax Clock) bool {
	switch {
	case rtt > tMax:
		return true
	case rtt < tMin:
		return false
	default:
		thresh := 1000 * float64(rtt-tMin) / float64(tMax-tMin)
		return float64(randIntn(1000)) < thresh
	}
}

// qcnStep applies the window-based increase/decrease rule common to
// RTT-QCN and PowerQCN: below one MTU, additive increase / multiplicative
// decrease; at or above one MTU, an increase of incConst*mtu/win or a
// decrease of decConst*mtu (the decrease is not scaled by win).
func qcnStep(win, mtu Bytes, marked bool, beta, alpha, incConst, decConst float64) Bytes {
	w := float64(win)
	m := float64(mtu)
	if w < m {
		if marked {
			w *= beta
		} else {
			w += alpha * m
		}
	} else {
		if marked {
			w -= decConst * m
		} else {
			w += incConst * m / w
		}
	}
	return clampBytes(Bytes(w), 1, BytesMax)
}

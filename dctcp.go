// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// dctcpCwState is DCTCP's two-state congestion-avoidance machine.
type dctcpCwState int

const (
	dctcpNormal dctcpCwState = iota
	dctcpCwr
)

// dctcpState is DCTCP's per-QP substate: a batch-smoothed ECN fraction
// (alpha) driving a multiplicative rate cut once per marked window, plus
// steady additive increase outside congestion.
type dctcpState struct {
	cfg *Config

	alpha         float64
	lastUpdateSeq Bytes
	ackCnt        int
	ecnCnt        int

	state   dctcpCwState
	highSeq Bytes
}

func newDctcpState(cfg *Config) *dctcpState {
	return &dctcpState{cfg: cfg}
}

func (s *dctcpState) OnNack(qp *QP, node Node, hdr IntHeader) {}
func (s *dctcpState) OnCNP(qp *QP, node Node)                 {}

func (s *dctcpState) OnAck(qp *QP, node Node, hdr IntHeader, rtt Clock, ackSeq Bytes, ecnMarked bool) {
	s.ackCnt++
	if ecnMarked {
		s.ecnCnt++
	}

	newBatch := ackSeq > s.lastUpdateSeq
	if newBatch {
		frac := 0.0
		if s.ackCnt > 0 {
			frac = float64(s.ecnCnt) / float64(s.ackCnt)
			if frac > 1 {
				frac = 1
			}
		}
		s.alpha = ewma(s.alpha, frac, s.cfg.EwmaGain)
		s.ackCnt, s.ecnCnt = 0, 0
		s.lastUpdateSeq = qp.SndNxt
	}

	// CWR-exit: once ackSeq passes the marked window's end, resume normal.
	if s.state == dctcpCwr && ackSeq > s.highSeq {
		s.state = dctcpNormal
	}

	// Mark-triggered multiplicative decrease / CWR-enter, using the
	// alpha just updated above.
	if s.state == dctcpNormal && ecnMarked {
		r := clampRate(Bitrate(float64(qp.Rate)*(1-s.alpha/2)), qp.MinRate, qp.MaxRate)
		qp.ChangeRate(r, node)
		s.state = dctcpCwr
		s.highSeq = qp.SndNxt
	}

	// Additive increase only if the mutations above left the state normal.
	if newBatch && s.state == dctcpNormal {
		qp.ChangeRate(clampRate(qp.Rate+s.cfg.DctcpRai, qp.MinRate, qp.MaxRate), node)
	}
}

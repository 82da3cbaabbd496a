// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// ufccPhase is one of UFCC's five controller states.
type ufccPhase int

const (
	ufccInit ufccPhase = iota
	ufccSteady
	ufccBurst
	ufccRelease
	ufccPreempt
)

// ufccLowRateStep is the small constant INIT backs low_rate off by once
// the bracket has converged and avg_rtt keeps drifting high.
const ufccLowRateStep = 1 * Mbps

// ufccBracketWideFraction is the fraction of max_rate above which BURST
// considers the (low_rate, high_rate) bracket "wide" when widening it.
const ufccBracketWideFraction = 0.1

// ufccState is UFCC's per-QP substate: a three-phase bracket-search
// controller (plus two reserved no-op phases) that converges a
// [low_rate, high_rate] bracket around the rate that keeps RTT near its
// floor, then oscillates within it, falling back to a floor rate on a
// burst-sized RTT spike. useWin selects the UFCC_CWND variant, which
// applies the controller's rate decision to the QP's window instead of
// its rate.
type ufccState struct {
	cfg    *Config
	useWin bool

	initialized bool

	highRate, lowRate, curRate Bitrate
	upRate, downRate, lastRate Bitrate

	avgRtt, minRtt, lastRtt Clock
	phase                   ufccPhase
	stateCount              int
	lastUpdateSeq           Bytes
	highFlag, lowFlag       bool

	bytesAccum   Bytes
	lastRttBytes Bytes
}

func newUfccState(cfg *Config, useWin bool) *ufccState {
	return &ufccState{cfg: cfg, useWin: useWin, minRtt: ClockMax, highFlag: true, lowFlag: true}
}

func (s *ufccState) OnNack(qp *QP, node Node, hdr IntHeader) {}
func (s *ufccState) OnCNP(qp *QP, node Node)                 {}

func (s *ufccState) OnAck(qp *QP, node Node, hdr IntHeader, rttSample Clock, ackSeq Bytes, ecnMarked bool) {
	rtt := rttSample
	if hdr.Mode == IntTS {
		rtt = node.Now() - Clock(hdr.TS)
	}
	if !s.initialized {
		s.initialized = true
		s.curRate = qp.Rate
		s.highRate = qp.MaxRate
		s.lowRate = qp.MinRate
		s.lastRate = qp.Rate
		s.avgRtt = rtt
		s.lastRtt = rtt
		s.minRtt = rtt
		s.recomputeUpDown(qp)
	}
	if rtt < s.minRtt {
		s.minRtt = rtt
	}
	if rtt > s.minRtt+s.cfg.Ufcc.BurstRtt {
		s.phase = ufccBurst
	}

	major := ackSeq > s.lastUpdateSeq
	if ackSeq > qp.SndUna {
		s.bytesAccum += ackSeq - qp.SndUna
	}

	switch s.phase {
	case ufccInit:
		s.stepInit(qp, rtt, major)
	case ufccSteady:
		s.stepSteady(qp, rtt, major)
	case ufccBurst:
		s.stepBurst(qp, rtt, major)
	case ufccRelease, ufccPreempt:
	}

	s.avgRtt = Clock(0.3*float64(s.avgRtt) + 0.7*float64(rtt))
	if major {
		s.lastUpdateSeq = qp.SndNxt
		s.lastRttBytes = s.bytesAccum
		s.bytesAccum = 0
	}
	s.lastRtt = rtt

	s.applyRate(qp, node)
}

func (s *ufccState) applyRate(qp *QP, node Node) {
	if s.useWin {
		qp.SetWin(rateToWindow(s.curRate, qp.BaseRtt), node)
		return
	}
	qp.ChangeRate(s.curRate, node)
}

// rateToWindow converts a Bitrate to an equivalent bytes window at rtt,
// the same rate*rtt/8 relation var_win uses.
func rateToWindow(r Bitrate, rtt Clock) Bytes {
	if rtt <= 0 || rtt == ClockMax {
		return Bytes(r / 8)
	}
	return Bytes(int64(r) * int64(rtt) / (8 * ClockUnitsPerSecond))
}

// recomputeUpDown sizes the INIT probe step proportional to the
// bracket's half-gap, scaled inversely by how many bytes were sent in
// the last completed RTT.
func (s *ufccState) recomputeUpDown(qp *QP) {
	halfGap := (s.highRate - s.lowRate) / 2
	bytes := s.lastRttBytes
	if bytes <= 0 {
		bytes = qp.Cfg.MTU
	}
	step := Bitrate(float64(halfGap) * float64(qp.Cfg.MTU) / float64(bytes))
	s.upRate = step
	s.downRate = step
}

func (s *ufccState) stepInit(qp *QP, rtt Clock, major bool) {
	if rtt <= s.lastRtt {
		s.curRate = clampRate(s.curRate+s.upRate, qp.MinRate, s.highRate)
		s.highFlag = false
	} else {
		s.curRate = clampRate(s.curRate-s.downRate, s.lowRate, qp.MaxRate)
		s.lowFlag = false
	}
	if !major {
		return
	}
	if s.highFlag {
		s.lowRate = s.lastRate
	} else if s.lowFlag {
		s.highRate = s.lastRate
	}
	s.highFlag, s.lowFlag = true, true
	s.lastRate = s.curRate

	if s.lowRate >= Bitrate(0.95*float64(s.highRate)) {
		mid := s.minRtt + Clock(0.5*float64(s.cfg.Ufcc.LowRtt+s.cfg.Ufcc.HighRtt))
		switch {
		case s.avgRtt <= mid:
			s.phase = ufccSteady
		case s.avgRtt > s.minRtt+s.cfg.Ufcc.HighRtt:
			s.stateCount += 3
		default:
			s.stateCount++
		}
		if s.stateCount >= 5 {
			s.lowRate = clampRate(s.lowRate-ufccLowRateStep, qp.MinRate, qp.MaxRate)
			s.stateCount = 0
		}
	}
	s.recomputeUpDown(qp)
}

func (s *ufccState) stepSteady(qp *QP, rtt Clock, major bool) {
	if rtt > s.avgRtt {
		s.curRate = s.lowRate
	} else {
		s.curRate = s.highRate
	}
	if !major {
		return
	}
	switch {
	case s.avgRtt > s.minRtt+s.cfg.Ufcc.HighRtt:
		s.lowRate = clampRate(Bitrate(float64(s.lowRate)*1.05), qp.MinRate, qp.MaxRate)
	case s.avgRtt < s.minRtt+s.cfg.Ufcc.LowRtt:
		s.highRate = clampRate(Bitrate(float64(s.highRate)*0.95), qp.MinRate, qp.MaxRate)
	}
	if rtt < s.minRtt+Clock(0.25*float64(s.cfg.Ufcc.LowRtt)) && s.curRate < qp.MaxRate {
		s.stateCount++
		if s.stateCount >= 1 {
			s.highRate = qp.MaxRate
			s.upRate = 0
			s.recomputeUpDown(qp)
			s.phase = ufccInit
			s.stateCount = 0
		}
	} else {
		s.stateCount = 0
	}
}

func (s *ufccState) stepBurst(qp *QP, rtt Clock, major bool) {
	s.curRate = clampRate(Bitrate(0.3*float64(s.lowRate)), qp.MinRate, qp.MaxRate)
	if !major || rtt > s.minRtt+s.cfg.Ufcc.BurstRtt {
		return
	}
	wide := s.highRate-s.lowRate > Bitrate(ufccBracketWideFraction*float64(qp.MaxRate))
	if wide {
		s.highRate = clampRate(s.highRate+(qp.MaxRate-s.highRate)/2, qp.MinRate, qp.MaxRate)
	} else {
		s.highRate = clampRate((s.highRate+s.lowRate)/2, qp.MinRate, qp.MaxRate)
	}
	s.lowRate = clampRate(Bitrate(float64(s.lowRate)*0.9), qp.MinRate, qp.MaxRate)
	s.curRate = clampRate((s.highRate+s.lowRate)/2, qp.MinRate, qp.MaxRate)
	s.phase = ufccInit
	s.recomputeUpDown(qp)
}

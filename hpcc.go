// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "math"

// hpccState is HPCC's (and PowerTCP's, which shares HPCC's CCMode and is
// selected by cfg.PowerTCPEnabled) per-QP substate: a smoothed per-hop
// utilization estimate driving additive-increase/multiplicative-decrease
// rate steps.
type hpccState struct {
	cfg *Config

	lastUpdateSeq Bytes
	haveLastHop   bool
	lastHop       [maxHop]IntHop
	lastNHop      uint16
	lastTime      Clock

	u        float64
	incStage int

	hopRc       [maxHop]Bitrate
	hopIncStage [maxHop]int

	lastRtt Clock
}

func newHpccState(cfg *Config) *hpccState {
	return &hpccState{cfg: cfg}
}

func (s *hpccState) OnNack(qp *QP, node Node, hdr IntHeader) {}
func (s *hpccState) OnCNP(qp *QP, node Node)                 {}

// OnAck runs the shared HandleAckHp entry point: a full update when this
// ACK covers a new RTT's worth of data, otherwise a fast react using the
// same math without persisting the smoothing state.
func (s *hpccState) OnAck(qp *QP, node Node, hdr IntHeader, rtt Clock, ackSeq Bytes, ecnMarked bool) {
	fastReact := !(ackSeq > s.lastUpdateSeq)
	if !fastReact {
		s.lastUpdateSeq = qp.SndNxt
	}
	if s.cfg.PowerTCPEnabled {
		s.handleAckPowerTcp(qp, node, hdr, rtt, fastReact)
		return
	}
	s.handleAckHp(qp, node, hdr, rtt, fastReact)
}

func (s *hpccState) handleAckHp(qp *QP, node Node, hdr IntHeader, rtt Clock, fastReact bool) {
	if !s.haveLastHop {
		s.saveHopState(hdr, node.Now())
		return
	}
	now := node.Now()
	dt := now - s.lastTime
	if dt <= 0 {
		dt = 1
	}
	if s.cfg.MultiRate {
		rate := qp.MaxRate
		for i := 0; i < int(hdr.NHop) && i < maxHop; i++ {
			if s.skipHop(hdr.Hop[i], s.lastHop[i], fastReact) {
				continue
			}
			u := hopUtil(hdr.Hop[i], s.lastHop[i], qp)
			rc := s.stepRate(qp.Rate, u, &s.hopIncStage[i], qp)
			if rc < rate {
				rate = rc
			}
		}
		qp.ChangeRate(rate, node)
	} else {
		var maxU float64
		for i := 0; i < int(hdr.NHop) && i < maxHop; i++ {
			if s.skipHop(hdr.Hop[i], s.lastHop[i], fastReact) {
				continue
			}
			u := hopUtil(hdr.Hop[i], s.lastHop[i], qp)
			if u > maxU {
				maxU = u
			}
		}
		rttSec := rtt.Seconds()
		if rttSec <= 0 {
			rttSec = dt.Seconds()
		}
		dtSec := dt.Seconds()
		if dtSec > rttSec {
			dtSec = rttSec
		}
		u := s.u*(rttSec-dtSec)/rttSec + maxU*dtSec/rttSec
		if !fastReact {
			s.u = u
		}
		rate := s.stepRate(qp.Rate, u, &s.incStage, qp)
		qp.ChangeRate(rate, node)
	}
	if !fastReact {
		s.saveHopState(hdr, now)
	}
}

// stepRate applies HPCC's max_c additive-increase/rate-divide step.
func (s *hpccState) stepRate(cur Bitrate, u float64, stage *int, qp *QP) Bitrate {
	return hpccStepRate(s.cfg, cur, u, stage, qp)
}

// hpccStepRate applies HPCC's max_c additive-increase/rate-divide step,
// shared by HPCC single-rate and HPCC-PINT.
func hpccStepRate(cfg *Config, cur Bitrate, u float64, stage *int, qp *QP) Bitrate {
	maxC := u / cfg.TargetUtil
	var r Bitrate
	if maxC >= 1 || *stage >= cfg.MiThresh {
		if maxC <= 0 {
			maxC = 1
		}
		r = Bitrate(float64(cur)/maxC) + cfg.Rai
		*stage = 0
	} else {
		r = cur + cfg.Rai
		*stage++
	}
	return clampRate(r, qp.MinRate, qp.MaxRate)
}

// skipHop applies sample_feedback: during a fast react, a hop reporting
// zero queue length on both the current and prior sample is treated as
// uninformative and skipped.
func (s *hpccState) skipHop(cur, prev IntHop, fastReact bool) bool {
	return s.cfg.SampleFeedback && fastReact && cur.Qlen == 0 && prev.Qlen == 0
}

func (s *hpccState) saveHopState(hdr IntHeader, now Clock) {
	s.lastHop = hdr.Hop
	s.lastNHop = hdr.NHop
	s.lastTime = now
	s.haveLastHop = true
}

// hopUtil computes u_hop for one hop: the transmit-rate fraction of line
// rate, plus a queueing term proportional to the smaller of the two
// samples' queue length.
func hopUtil(cur, prev IntHop, qp *QP) float64 {
	lineRate := cur.LineRate()
	if lineRate <= 0 {
		return 0
	}
	durSec := float64(cur.GetTimeDelta(prev)) * 1e-9
	if durSec <= 0 {
		durSec = 1e-9
	}
	bytesDelta := float64(cur.GetBytesDelta(prev)) * byteUnit * float64(multi)
	txRate := bytesDelta * 8 / durSec

	minQlen := cur.Qlen
	if prev.Qlen < minQlen {
		minQlen = prev.Qlen
	}
	qlenBytes := float64(minQlen) * qlenUnit * float64(multi)

	win := float64(qp.Win)
	if win <= 0 {
		win = float64(qp.Cfg.MTU)
	}
	return txRate/float64(lineRate) + qlenBytes*float64(qp.MaxRate)/(float64(lineRate)*win)
}

// handleAckPowerTcp runs PowerTCP / θ-PowerTCP's power-based rate update,
// replacing HPCC's u_hop with the (qlen, baseRtt)-weighted power term and
// blending the result into the current rate with an EWMA plus a fixed
// additive term.
func (s *hpccState) handleAckPowerTcp(qp *QP, node Node, hdr IntHeader, rtt Clock, fastReact bool) {
	now := node.Now()
	gamma := 0.9
	var power float64

	if s.cfg.PowerTCPDelay {
		gamma = 0.7
		A := 1.0
		if s.lastRtt > 0 && now > s.lastTime {
			A = math.Max(0.5, 1+(rtt.Seconds()-s.lastRtt.Seconds())/(now-s.lastTime).Seconds())
		}
		if rtt < qp.BaseRtt {
			qp.BaseRtt = rtt
		}
		power = powerUtil(0, A, qp.MaxRate, qp.BaseRtt)
		s.lastRtt = rtt
		s.lastTime = now
	} else {
		if !s.haveLastHop {
			s.saveHopState(hdr, now)
			return
		}
		var maxPower float64
		for i := 0; i < int(hdr.NHop) && i < maxHop; i++ {
			cur, prev := hdr.Hop[i], s.lastHop[i]
			durSec := float64(cur.GetTimeDelta(prev)) * 1e-9
			if durSec <= 0 {
				durSec = 1e-9
			}
			bytesDelta := float64(cur.GetBytesDelta(prev)) * byteUnit * float64(multi)
			rxRate := bytesDelta * 8 / durSec
			qlenBytes := float64(cur.Qlen) * qlenUnit * float64(multi)
			p := powerUtil(qlenBytes, rxRate, cur.LineRate(), qp.BaseRtt)
			if p > maxPower {
				maxPower = p
			}
		}
		power = maxPower
		if !fastReact {
			s.saveHopState(hdr, now)
		}
	}

	if power <= 0 {
		power = 1
	}
	target := Bitrate(float64(qp.Rate) / power)
	blended := Bitrate(gamma*float64(target)+(1-gamma)*float64(qp.Rate)) + 150*Mbps
	qp.ChangeRate(clampRate(blended, qp.MinRate, qp.MaxRate), node)
}

// powerUtil computes PowerTCP's per-hop power term
// A*(qlen*8 + line_rate*base_rtt) / (line_rate^2 * base_rtt).
func powerUtil(qlenBytes, a float64, lineRate Bitrate, baseRtt Clock) float64 {
	rtt := baseRtt.Seconds()
	if rtt <= 0 || lineRate <= 0 {
		return 0
	}
	num := a * (qlenBytes*8 + float64(lineRate)*rtt)
	den := float64(lineRate) * float64(lineRate) * rtt
	return num / den
}

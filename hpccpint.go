// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "math"

// hpccPintState is HPCC-PINT's per-QP substate: identical single-rate
// HPCC control, but driven by a 1- or 2-byte log-encoded utilization
// sample instead of per-hop telemetry, and only processed with
// probability pint_smpl_thresh/65536.
type hpccPintState struct {
	cfg *Config

	u        float64
	incStage int
}

func newHpccPintState(cfg *Config) *hpccPintState {
	return &hpccPintState{cfg: cfg}
}

func (s *hpccPintState) OnNack(qp *QP, node Node, hdr IntHeader) {}
func (s *hpccPintState) OnCNP(qp *QP, node Node)                 {}

func (s *hpccPintState) OnAck(qp *QP, node Node, hdr IntHeader, rtt Clock, ackSeq Bytes, ecnMarked bool) {
	if randIntn(65536) >= s.cfg.PintSmplThresh {
		return
	}
	if hdr.Mode != IntPint {
		return
	}
	u := decodePint(hdr.Pint, hdr.PintBytes, s.cfg.PintLogBase)
	s.u = u
	newRate := hpccStepRate(s.cfg, qp.Rate, s.u, &s.incStage, qp)
	qp.ChangeRate(newRate, node)
}

// pintExponentRange bounds the log-scale decode below so that wide
// (2-byte) samples don't overflow float64 range.
const pintExponentRange = 10.0

// decodePint reverses the switch's log-scale encoding of a utilization
// sample into [0, 1]: the value's fraction of its full range is mapped
// through base^x so that small values resolve finely and large values
// coarsely, matching a log-utilization PINT encoder.
func decodePint(value uint16, pintBytes uint8, base float64) float64 {
	width := 8
	if pintBytes == 2 {
		width = 16
	}
	maxVal := float64(uint32(1)<<width - 1)
	if maxVal <= 0 || base <= 1 {
		return 0
	}
	frac := float64(value) / maxVal
	num := math.Pow(base, frac*pintExponentRange) - 1
	den := math.Pow(base, pintExponentRange) - 1
	if den <= 0 {
		return 0
	}
	return num / den
}

// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// mlxState is MLX-DCQCN's per-QP substate: an ECN-driven rate controller
// with three recurring timers started on the first CNP.
type mlxState struct {
	cfg *Config

	gotFirstCnp bool
	targetRate  Bitrate
	alpha       float64
	rpStage     int

	cnpSinceLastAlpha bool
	cnpInWindow       bool

	alphaTimer    TimerID
	decreaseTimer TimerID
	rpTimer       TimerID
}

func newMlxState(cfg *Config) *mlxState {
	return &mlxState{cfg: cfg, alpha: 1}
}

// OnAck is a no-op for MLX-DCQCN: the rate reaction is entirely
// ECN/CNP-driven, not ACK-driven.
func (s *mlxState) OnAck(qp *QP, node Node, hdr IntHeader, rttSample Clock, ackSeq Bytes, ecnMarked bool) {
}

// OnNack is a no-op for MLX-DCQCN beyond the dispatcher's go-back-N
// recovery, which runs regardless of the active algorithm.
func (s *mlxState) OnNack(qp *QP, node Node, hdr IntHeader) {
}

// OnCNP reacts to a congestion notification packet. On the first CNP seen
// by this QP, it scales the rate down and starts the three recurring
// timers; on every CNP it marks the current alpha/decrease windows.
func (s *mlxState) OnCNP(qp *QP, node Node) {
	if !s.gotFirstCnp {
		s.gotFirstCnp = true
		r := clampRate(Bitrate(float64(qp.Rate)*s.cfg.RateOnFirstCnp), qp.MinRate, qp.MaxRate)
		s.targetRate = r
		qp.ChangeRate(r, node)
		s.scheduleAlphaUpdate(qp, node)
		s.scheduleDecreaseCheck(qp, node)
		s.scheduleRpTimer(qp, node)
	}
	s.cnpSinceLastAlpha = true
	s.cnpInWindow = true
}

func (s *mlxState) scheduleAlphaUpdate(qp *QP, node Node) {
	s.alphaTimer = node.Timer(s.cfg.AlphaResumeInterval, func(node Node) {
		seen := 0.0
		if s.cnpSinceLastAlpha {
			seen = 1
		}
		s.alpha = ewma(s.alpha, seen, s.cfg.EwmaGain)
		s.cnpSinceLastAlpha = false
		s.scheduleAlphaUpdate(qp, node)
	})
}

func (s *mlxState) scheduleDecreaseCheck(qp *QP, node Node) {
	s.decreaseTimer = node.Timer(s.cfg.RateDecreaseInterval, func(node Node) {
		if s.cnpInWindow {
			if s.cfg.ClampTargetRate && s.rpStage == 0 {
				s.targetRate = qp.Rate
			}
			r := clampRate(Bitrate(float64(qp.Rate)*(1-s.alpha/2)), qp.MinRate, qp.MaxRate)
			qp.ChangeRate(r, node)
			s.rpStage = 0
			node.CancelTimer(s.rpTimer)
			s.scheduleRpTimer(qp, node)
		}
		s.cnpInWindow = false
		s.scheduleDecreaseCheck(qp, node)
	})
}

func (s *mlxState) scheduleRpTimer(qp *QP, node Node) {
	s.rpTimer = node.Timer(s.cfg.RpTimer, func(node Node) {
		s.rpStage++
		var r Bitrate
		switch {
		case s.rpStage < s.cfg.FastRecoveryTimes:
			r = (qp.Rate + s.targetRate) / 2
		case s.rpStage == s.cfg.FastRecoveryTimes:
			s.targetRate = clampRate(s.targetRate+s.cfg.Rai, qp.MinRate, qp.MaxRate)
			r = (qp.Rate + s.targetRate) / 2
		default:
			s.targetRate = clampRate(s.targetRate+s.cfg.Rhai, qp.MinRate, qp.MaxRate)
			r = (qp.Rate + s.targetRate) / 2
		}
		qp.ChangeRate(clampRate(r, qp.MinRate, qp.MaxRate), node)
		s.scheduleRpTimer(qp, node)
	})
}

// Cancel stops all three recurring timers. Called on QP teardown.
func (s *mlxState) Cancel(node Node) {
	if !s.gotFirstCnp {
		return
	}
	node.CancelTimer(s.alphaTimer)
	node.CancelTimer(s.decreaseTimer)
	node.CancelTimer(s.rpTimer)
}

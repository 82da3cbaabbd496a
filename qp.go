// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// QP is a sender queue pair: the unit of per-flow congestion-control
// state. Exactly one CCA substate is active per QP, selected at creation
// by cfg.CCMode and held behind the CCA interface so the inactive
// algorithms' state is never materialized.
type QP struct {
	Key  FlowKey
	Cfg  *Config
	Mode CCMode
	CCA  CCA

	Size    Bytes // total payload bytes to send
	SndNxt  Bytes // next sequence to send
	SndUna  Bytes // highest acknowledged sequence

	Rate    Bitrate
	MaxRate Bitrate
	MinRate Bitrate

	Win    Bytes // on-the-fly cap
	VarWin bool  // if true, Win is recomputed from Rate*BaseRtt on every change

	BaseRtt Clock // link/path baseline RTT, refined downward by some algorithms

	NextAvailable Clock // virtual time at which the next packet may be sent
	LastPktSize   Bytes // size of the last packet scheduled, for rate-change math

	StopTime   Clock
	IncastFlow bool

	IPID uint32

	TraceID string

	Completed  bool
	OnComplete func(*QP)
}

// NewQP constructs a sender QP for key, with size bytes to send, wired to
// cfg and owning a freshly constructed CCA substate for cfg.CCMode.
// maxRate is the NIC/link ceiling the QP is assigned to, independent of
// cfg.MinRate, the floor every algorithm starts and clamps back down to.
// NewQP panics on an unknown CC mode, matching spec's "fatal at QP
// creation" disposition for that error kind — callers at the host layer
// should recover if they need to report the error instead of aborting.
func NewQP(key FlowKey, size Bytes, cfg *Config, maxRate Bitrate, now Clock) *QP {
	qp := &QP{
		Key:     key,
		Cfg:     cfg,
		Mode:    cfg.CCMode,
		Size:    size,
		Rate:    cfg.MinRate,
		MaxRate: maxRate,
		MinRate: cfg.MinRate,
		Win:     cfg.MTU,
		VarWin:  cfg.VarWin,
		BaseRtt: ClockMax,
		TraceID: NewTraceID(),
	}
	qp.CCA = newCCA(cfg.CCMode, cfg)
	_ = now
	return qp
}

// newCCA constructs the CCA substate for mode. Each case initializes its
// substate independently; none fall through to another's initializer.
func newCCA(mode CCMode, cfg *Config) CCA {
	switch mode {
	case MlxCnp:
		return newMlxState(cfg)
	case Hpcc:
		return newHpccState(cfg)
	case Timely:
		return newTimelyState(cfg, false)
	case PatchedTimely:
		return newTimelyState(cfg, true)
	case Dctcp:
		return newDctcpState(cfg)
	case HpccPint:
		return newHpccPintState(cfg)
	case Swift:
		return newSwiftState(cfg)
	case RttQcn:
		return newRttQcnState(cfg)
	case PowerQcn:
		return newPowerQcnState(cfg)
	case Ufcc:
		return newUfccState(cfg, false)
	case UfccCwnd:
		return newUfccState(cfg, true)
	default:
		panic("rocecc: unknown cc mode")
	}
}

// OnTheFly returns the bytes sent but not yet acknowledged.
func (qp *QP) OnTheFly() Bytes {
	return qp.SndNxt - qp.SndUna
}

// WinBound reports whether the QP has exhausted its window.
func (qp *QP) WinBound() bool {
	return qp.OnTheFly() >= qp.Win
}

// ChangeRate sets qp.Rate to r, clamped to [MinRate, MaxRate], recomputes
// Win if VarWin is set, and shifts NextAvailable so the rate change takes
// effect starting from the already-scheduled next packet.
func (qp *QP) ChangeRate(r Bitrate, node Node) {
	old := qp.Rate
	r = clampRate(r, qp.MinRate, qp.MaxRate)
	if r == old {
		return
	}
	qp.Rate = r
	if qp.VarWin {
		qp.Win = Bytes(int64(qp.Rate) * int64(qp.BaseRtt) / int64(8*ClockUnitsPerSecond))
	}
	if qp.LastPktSize > 0 && old > 0 {
		shift := TransferTimeClock(r, qp.LastPktSize) - TransferTimeClock(old, qp.LastPktSize)
		qp.NextAvailable += shift
	}
}

// SetWin sets qp.Win to w, clamped to at least one MTU.
func (qp *QP) SetWin(w Bytes, node Node) {
	qp.Win = clampBytes(w, qp.Cfg.MTU, BytesMax)
}

// BytesMax is the practical ceiling used when clamping a window value
// that has no meaningful upper bound (e.g. Swift below cwnd=1).
const BytesMax = Bytes(1) << 62

// TransferTimeClock returns the time to send size bytes at rate, as a
// Clock duration, avoiding the float64 round trip TransferTime takes.
func TransferTimeClock(rate Bitrate, size Bytes) Clock {
	if rate <= 0 {
		return 0
	}
	return Clock(int64(size) * 8 * int64(ClockUnitsPerSecond) / int64(rate))
}

// ClockUnitsPerSecond is the number of Clock units (nanoseconds) per
// second, used by integer rate*time arithmetic.
const ClockUnitsPerSecond = 1_000_000_000

// TryComplete checks snd_una against Size and, the first time they're
// equal, marks the QP completed and invokes OnComplete exactly once.
func (qp *QP) TryComplete() {
	if qp.Completed || qp.SndUna != qp.Size {
		return
	}
	qp.Completed = true
	if qp.OnComplete != nil {
		qp.OnComplete(qp)
	}
}

// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// RxQP is a receiver queue pair: per-flow sequence-tracking state at the
// data-receiving end. It is created lazily on the first data packet for
// its key and destroyed when the sender signals completion.
type RxQP struct {
	Key FlowKey
	Cfg *Config

	NextExpectedSeq Bytes
	Milestone       Bytes

	NackTimer   Clock
	LastNack    Bytes
	HasLastNack bool

	Ecn RxQPEcnAccount

	IPID    uint32
	TraceID string
}

// RxQPEcnAccount holds counters for IP-ECN observations at the receiver.
// CheckSeq, BuildAckNack and Host.ReceiveData do not update them.
type RxQPEcnAccount struct {
	QBits uint64
	QFB   uint64
	Total uint64
}

// NewRxQP constructs a receiver QP for key, wired to cfg.
func NewRxQP(key FlowKey, cfg *Config) *RxQP {
	return &RxQP{
		Key:       key,
		Cfg:       cfg,
		Milestone: ackInterval(cfg),
		TraceID:   NewTraceID(),
	}
}

// ackInterval returns the receiver's milestone step, falling back to one
// MTU when L2AckInterval is unset (0).
func ackInterval(cfg *Config) Bytes {
	if cfg.L2AckInterval > 0 {
		return cfg.L2AckInterval
	}
	return cfg.MTU
}

// nextIPID returns the next IP identifier and increments the counter.
func (rx *RxQP) nextIPID() uint32 {
	id := rx.IPID
	rx.IPID++
	return id
}

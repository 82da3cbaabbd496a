// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// CCMode is the opaque congestion-control mode selector, matching the
// fixed numeric mapping switches and hosts are configured with.
type CCMode int

const (
	MlxCnp        CCMode = 1
	Hpcc          CCMode = 3
	Timely        CCMode = 7
	Dctcp         CCMode = 8
	HpccPint      CCMode = 10
	PatchedTimely CCMode = 11
	Swift         CCMode = 12
	RttQcn        CCMode = 13
	PowerQcn      CCMode = 14
	Ufcc          CCMode = 15
	UfccCwnd      CCMode = 16
)

// CCA is the common reaction interface every congestion-control algorithm
// implements. The dispatcher calls exactly one CCA per QP per event, and
// never mixes substates: a QP's CCA is fixed at creation.
type CCA interface {
	// OnAck reacts to an ACK, with rttSample the measured RTT for this
	// ACK (zero if no fresh timing sample applies, e.g. a retransmit
	// echo). hdr is the ACK's echoed INT header; ackSeq is the
	// acknowledged sequence (receiver's next_expected); ecnMarked is the
	// ACK's CNP flag, set when the triggering data packet saw IP-ECN.
	OnAck(qp *QP, node Node, hdr IntHeader, rttSample Clock, ackSeq Bytes, ecnMarked bool)

	// OnNack reacts to a NACK. Loss recovery (snd_nxt ← snd_una) has
	// already been performed by the dispatcher before this is called.
	OnNack(qp *QP, node Node, hdr IntHeader)

	// OnCNP reacts to a legacy DCQCN congestion notification packet.
	// The dispatcher only calls this when qp.Mode is MlxCnp.
	OnCNP(qp *QP, node Node)
}

// ewma returns the exponentially weighted moving average update
// (1-g)*prev + g*sample, the blend DCTCP and MLX-DCQCN use for alpha and
// TIMELY uses for rtt_diff.
func ewma(prev, sample, g float64) float64 {
	return (1-g)*prev + g*sample
}

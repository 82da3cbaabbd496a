// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// Dispatch routes a received control packet to the owning QP's reaction.
// It does not transmit; Host.ReceiveControl attempts the transmit after
// Dispatch returns. pkt.L3Proto selects the path:
// L3Ack/L3Nack drive the sender-side QP, L3Cnp drives the legacy DCQCN
// CNP path only when MLX is the active algorithm. Data packets (L3Data)
// are not routed here; they're handled by the receiver path in
// reliability.go via CheckSeq.
func Dispatch(qp *QP, node Node, pkt Packet, rttSample Clock) {
	switch pkt.L3Proto {
	case L3Ack:
		ackSeq := Bytes(pkt.Seq)
		SenderAdvanceUna(qp, ackSeq)
		if qp.Completed {
			return
		}
		qp.CCA.OnAck(qp, node, pkt.Int, rttSample, ackSeq, pkt.CNP)
	case L3Nack:
		SenderOnNack(qp)
		qp.CCA.OnNack(qp, node, pkt.Int)
	case L3Cnp:
		if qp.Mode == MlxCnp {
			qp.CCA.OnCNP(qp, node)
		}
	}
}

// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

// NextPacket builds the next data packet for qp, sized to the lesser of
// the bytes remaining and mtu, and advances qp.SndNxt and the IP id
// counter. It returns ok=false if the QP has nothing left to send.
func NextPacket(qp *QP, mtu Bytes, bdp Bytes, cumulativeSent Bytes) (Packet, bool) {
	left := qp.Size - qp.SndNxt
	if left == 0 {
		return Packet{}, false
	}
	size := left
	if size > mtu {
		size = mtu
	}
	pkt := Packet{
		Flow:        qp.Key,
		L3Proto:     L3Data,
		Seq:         uint32(qp.SndNxt),
		Size:        size,
		IPID:        qp.IPID,
		Unscheduled: cumulativeSent <= bdp,
	}
	qp.SndNxt += size
	qp.IPID++
	return pkt, true
}

// OnPktSent updates qp.NextAvailable after a packet of pktSize has been
// handed to the link, with ifg the inter-frame gap. effectiveRate is rate
// if rate_bound is set, otherwise max_rate.
func OnPktSent(qp *QP, now Clock, pktSize Bytes, ifg Clock) {
	rate := qp.Rate
	if !qp.Cfg.RateBound {
		rate = qp.MaxRate
	}
	next := now + ifg + TransferTimeClock(rate, pktSize)
	if next > qp.NextAvailable {
		qp.NextAvailable = next
	}
	qp.LastPktSize = pktSize
}

// CanSend reports whether the NIC may pull a packet from qp at now: its
// pacing delay must have elapsed and it must not be window-bound.
func CanSend(qp *QP, now Clock) bool {
	return qp.NextAvailable <= now && !qp.WinBound()
}

// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Host is the shared-resource owner a NIC failure or flow migration acts
// on: the sender QP table, the receiver RxQP table, and the NIC list
// flows are hashed onto. Host methods are the only ones that take a
// FlowKey and resolve it to live state; QP and RxQP themselves never
// look each other up.
type Host struct {
	Cfg     *Config
	Node    Node
	Log     *logrus.Logger
	Metrics *MetricsCollector
	Trace   io.Writer // flow-completion trace sink; no trace output if nil

	Qps   map[FlowKey]*QP
	RxQps map[FlowKey]*RxQP
	Nics  []*Nic
}

// NewHost constructs a Host with nicCount NICs, all initially alive,
// logging through log (logrus.StandardLogger() if log is nil) and
// reporting through metrics (no reporting if metrics is nil).
func NewHost(cfg *Config, node Node, log *logrus.Logger, metrics *MetricsCollector, nicCount int) *Host {
	h := &Host{
		Cfg:     cfg,
		Node:    node,
		Log:     log,
		Metrics: metrics,
		Qps:     make(map[FlowKey]*QP),
		RxQps:   make(map[FlowKey]*RxQP),
	}
	for i := 0; i < nicCount; i++ {
		h.Nics = append(h.Nics, NewNic(i, cfg.LineRate))
	}
	return h
}

// OpenFlow creates and registers a sender QP for key with size bytes to
// send, assigns it to one of h's alive NICs by hash, and kicks off its
// first transmit burst. peer, if non-nil, has its RxQP for this flow
// (stored under the same forward key) removed when this QP completes.
func (h *Host) OpenFlow(key FlowKey, size Bytes, peer *Host) (*QP, error) {
	if _, exists := h.Qps[key]; exists {
		return nil, fmt.Errorf("rocecc: flow %+v already open", key)
	}
	nic := h.nicFor(key)
	openedAt := h.Node.Now()
	qp := NewQP(key, size, h.Cfg, nic.LineRate, openedAt)
	qp.OnComplete = func(q *QP) {
		delete(h.Qps, key)
		nic.Unregister(key)
		if c, ok := q.CCA.(interface{ Cancel(Node) }); ok {
			c.Cancel(h.Node)
		}
		if peer != nil {
			// peer's RxQP is stored under this same forward key: ReceiveData
			// keys it by pkt.Flow, which equals qp.Key, not the reversed one.
			delete(peer.RxQps, key)
		}
		NewLogger(h.Log, key, q.TraceID).Infof("flow completed: snd_una=%d", q.SndUna)
		fct := h.Node.Now() - openedAt
		if h.Metrics != nil {
			h.Metrics.RecordCompletion(q, fct)
		}
		if h.Trace != nil {
			// No standalone-FCT estimate is available from inside the
			// core (that requires the external link/topology model);
			// report the measured FCT in its place.
			WriteFlowCompletion(h.Trace, NewFlowCompletionRecord(q, int64(openedAt), int64(fct), int64(fct)))
		}
	}
	h.Qps[key] = qp
	nic.Register(key)
	NewLogger(h.Log, key, qp.TraceID).Infof("flow opened: %d bytes on nic %d", size, nic.Index)
	h.Transmit(qp)
	return qp, nil
}

// nicFor returns the alive NIC key hashes onto. It panics if no NIC is
// alive: spec treats a missing route as fatal, not a per-flow error,
// since the core assumes at least one NIC is alive at all times.
func (h *Host) nicFor(key FlowKey) *Nic {
	alive := h.aliveNics()
	if len(alive) == 0 {
		panic("rocecc: host has no alive nic")
	}
	return alive[hashFlowKey(key)%uint64(len(alive))]
}

func (h *Host) aliveNics() []*Nic {
	var alive []*Nic
	for _, n := range h.Nics {
		if n.Alive {
			alive = append(alive, n)
		}
	}
	return alive
}

// SetNicAlive marks the NIC at index alive or down. A down transition
// redistributes its flows across the remaining alive NICs; an up
// transition makes it eligible to receive flows on the next hash but
// doesn't pull any back.
func (h *Host) SetNicAlive(index int, alive bool) {
	n := h.Nics[index]
	if n.Alive == alive {
		return
	}
	n.Alive = alive
	if alive {
		h.log().Infof("nic %d up", index)
		return
	}
	h.log().Warnf("nic %d down, redistributing %d flows", index, n.QpCount())
	h.RedistributeQp(n)
}

func (h *Host) log() *Logger {
	return NewLogger(h.Log, FlowKey{}, "")
}

// RedistributeQp reassigns every flow registered on dead to one of h's
// remaining alive NICs, rehashing each flow's key mod the new alive
// count. It only moves NIC membership; the QP and RxQP tables are
// untouched, so in-flight congestion-control state survives the move.
func (h *Host) RedistributeQp(dead *Nic) {
	alive := h.aliveNics()
	if len(alive) == 0 {
		return
	}
	for key := range dead.qps {
		target := alive[hashFlowKey(key)%uint64(len(alive))]
		target.Register(key)
	}
	dead.qps = make(map[FlowKey]struct{})
}

// ReceiveData advances the receiver-side state for an inbound data
// packet, creating the RxQP lazily on first sight of the flow, and sends
// back whatever CheckSeq says to.
func (h *Host) ReceiveData(pkt Packet) {
	rx, ok := h.RxQps[pkt.Flow]
	if !ok {
		rx = NewRxQP(pkt.Flow, h.Cfg)
		h.RxQps[pkt.Flow] = rx
	}
	switch CheckSeq(rx, h.Node.Now(), Bytes(pkt.Seq), pkt.Size) {
	case CheckSeqAck:
		h.Node.Send(BuildAckNack(rx, L3Ack, pkt.Int, pkt.EcnMarked))
	case CheckSeqNack:
		h.Node.Send(BuildAckNack(rx, L3Nack, pkt.Int, pkt.EcnMarked))
	}
}

// ReceiveControl looks up the sender QP an ACK/NACK/CNP packet targets,
// dispatches it, then asks the NIC to attempt a transmit. rttSample is
// the caller's measured round-trip time for this control packet, zero
// if none applies.
func (h *Host) ReceiveControl(pkt Packet, rttSample Clock) {
	qp, ok := h.Qps[reverseFlow(pkt.Flow)]
	if !ok {
		return
	}
	if h.Metrics != nil {
		switch {
		case pkt.L3Proto == L3Cnp:
			h.Metrics.RecordCNP(qp)
		case pkt.L3Proto == L3Nack:
			h.Metrics.RecordNack(qp)
		case pkt.L3Proto == L3Ack && pkt.EcnMarked:
			h.Metrics.RecordEcn(qp)
		}
	}
	Dispatch(qp, h.Node, pkt, rttSample)
	if qp.Completed {
		return
	}
	if h.Metrics != nil {
		h.Metrics.Observe(qp)
	}
	h.Transmit(qp)
}

// Transmit pulls as many packets as CanSend allows from qp and hands
// them to the Node, using qp.Win as the flow's bandwidth-delay-product
// estimate for the unscheduled/scheduled split.
func (h *Host) Transmit(qp *QP) {
	for CanSend(qp, h.Node.Now()) {
		pkt, ok := NextPacket(qp, h.Cfg.MTU, qp.Win, qp.SndNxt)
		if !ok {
			return
		}
		OnPktSent(qp, h.Node.Now(), pkt.Size, 0)
		h.Node.Send(pkt)
	}
}

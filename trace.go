// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import (
	"fmt"
	"io"
)

// FlowCompletionRecord is one flow's entry in the flow-completion trace:
// its five-tuple (minus pg), size, and completion timings in
// nanoseconds. StandaloneFctNs is the FCT the flow would have had on an
// otherwise idle network, for slowdown analysis.
type FlowCompletionRecord struct {
	Sip, Dip        uint32
	Sport, Dport    uint16
	Size            Bytes
	StartNs         int64
	FctNs           int64
	StandaloneFctNs int64
}

// WriteFlowCompletion appends r to w in the core's ASCII flow-completion
// trace format.
func WriteFlowCompletion(w io.Writer, r FlowCompletionRecord) error {
	_, err := fmt.Fprintf(w, "%08x %08x %d %d %d %d %d %d\n",
		r.Sip, r.Dip, r.Sport, r.Dport, r.Size, r.StartNs, r.FctNs, r.StandaloneFctNs)
	return err
}

// NewFlowCompletionRecord builds a FlowCompletionRecord for a just-
// completed qp, with standaloneFctNs the caller-estimated standalone
// FCT (the link/topology model owns that estimate; the core only
// records it).
func NewFlowCompletionRecord(qp *QP, startNs, fctNs, standaloneFctNs int64) FlowCompletionRecord {
	return FlowCompletionRecord{
		Sip:             qp.Key.Sip,
		Dip:             qp.Key.Dip,
		Sport:           qp.Key.Sport,
		Dport:           qp.Key.Dport,
		Size:            qp.Size,
		StartNs:         startNs,
		FctNs:           fctNs,
		StandaloneFctNs: standaloneFctNs,
	}
}

// PfcEventRecord is one link-level pause/resume event. Field semantics
// beyond wire order are owned by the external PFC generator (spec's
// link/channel model, out of the core's scope); the core only provides
// the trace writer for whatever values that generator supplies.
type PfcEventRecord struct {
	TimeNs   int64
	NicIndex uint32
	Queue    uint32
	Type     uint32
	Duration uint32
}

// WritePfcEvent appends r to w in the core's ASCII PFC-event trace
// format.
func WritePfcEvent(w io.Writer, r PfcEventRecord) error {
	_, err := fmt.Fprintf(w, "%d %d %d %d %d\n", r.TimeNs, r.NicIndex, r.Queue, r.Type, r.Duration)
	return err
}

// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Nic is one of a Host's network interfaces. It holds flow membership
// only: a set of FlowKeys, never *QP pointers. A flow moves between NICs
// by copying its key into the new NIC's set and deleting it from the
// old one, so a NIC going down never leaves a dangling reference into
// the Host's QP table.
type Nic struct {
	Index    int
	Alive    bool
	LineRate Bitrate // ceiling handed to every QP assigned to this nic as its max_rate

	qps map[FlowKey]struct{}
}

// NewNic constructs a Nic at index with the given line rate, initially
// alive and empty.
func NewNic(index int, lineRate Bitrate) *Nic {
	return &Nic{Index: index, Alive: true, LineRate: lineRate, qps: make(map[FlowKey]struct{})}
}

// Register adds key to the set of flows assigned to n.
func (n *Nic) Register(key FlowKey) {
	n.qps[key] = struct{}{}
}

// Unregister removes key from n's flow set, if present.
func (n *Nic) Unregister(key FlowKey) {
	delete(n.qps, key)
}

// QpCount returns the number of flows currently assigned to n.
func (n *Nic) QpCount() int {
	return len(n.qps)
}

// hashFlowKey hashes key's five-tuple with xxhash. It's the hash a Host
// uses both to assign a new flow to one of its alive NICs and to
// rebalance a dead NIC's flows across the survivors. The hash depends
// only on the key; the NIC a flow sits on also depends on the alive set
// when it was opened or last moved, since flows on surviving NICs are
// not rehashed.
func hashFlowKey(key FlowKey) uint64 {
	var b [13]byte
	binary.BigEndian.PutUint32(b[0:4], key.Sip)
	binary.BigEndian.PutUint32(b[4:8], key.Dip)
	binary.BigEndian.PutUint16(b[8:10], key.Sport)
	binary.BigEndian.PutUint16(b[10:12], key.Dport)
	b[12] = key.Pg
	return xxhash.Sum64(b[:])
}

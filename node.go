// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist
// Copyright 2026 rocecc contributors

package rocecc

// Node is the seam between the CC core and the external discrete-event
// simulation kernel (event loop, virtual clock, link model). The core
// never schedules real time and never blocks; it only asks a Node for
// the current virtual time, for a timer callback at a future virtual
// time, and to hand a Packet to the link. Production code wires Node to
// a real event loop (see cmd/simharness for a minimal example); tests
// wire it to an in-memory fake that advances time explicitly.
type Node interface {
	// Now returns the current virtual time.
	Now() Clock

	// Timer schedules fn to run at Now()+delay, with fn receiving the
	// Node current at that time. It returns a TimerID that can be
	// passed to CancelTimer before the timer fires.
	Timer(delay Clock, fn func(Node)) TimerID

	// CancelTimer cancels a timer previously returned by Timer. It is a
	// no-op if the timer has already fired or was already cancelled.
	CancelTimer(id TimerID)

	// Send hands pkt to the link layer, e.g. the NIC's outbound queue
	// or wire. The core calls this only from the NIC scheduler and from
	// the reliability layer (ACK/NACK emission).
	Send(pkt Packet)

	// Logf logs a message tied to the current node and virtual time.
	Logf(format string, a ...any)
}

// TimerID identifies a scheduled timer for cancellation.
type TimerID uint64

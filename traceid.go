// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "github.com/rs/xid"

// NewTraceID returns a globally unique, sortable trace identifier for a
// QP or RxQP, used only for log/trace correlation; it never appears in
// a wire Packet.
func NewTraceID() string {
	return xid.New().String()
}

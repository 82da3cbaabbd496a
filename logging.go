// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import "github.com/sirupsen/logrus"

// Logger wraps a logrus entry tagged with a flow's identity, so call
// sites log a message without repeating the five-tuple and trace id at
// every call.
type Logger struct {
	entry *logrus.Entry
}

// NewLogger returns a Logger for key, tagged with traceID. base is the
// logrus.Logger to derive the entry from; logrus.StandardLogger() is
// used if base is nil.
func NewLogger(base *logrus.Logger, key FlowKey, traceID string) *Logger {
	if base == nil {
		base = logrus.StandardLogger()
	}
	return &Logger{entry: base.WithFields(logrus.Fields{
		"trace_id": traceID,
		"sip":      key.Sip,
		"dip":      key.Dip,
		"sport":    key.Sport,
		"dport":    key.Dport,
		"pg":       key.Pg,
	})}
}

// Infof logs an informational message.
func (l *Logger) Infof(format string, a ...any) {
	l.entry.Infof(format, a...)
}

// Warnf logs a warning, e.g. a NACK storm or a NIC going down mid-flow.
func (l *Logger) Warnf(format string, a ...any) {
	l.entry.Warnf(format, a...)
}

// Fatalf logs at fatal level and terminates the process, reserved for
// configuration errors discovered before any flow starts (e.g. an
// unknown cc_mode), matching spec's "fatal at QP creation" disposition.
func (l *Logger) Fatalf(format string, a ...any) {
	l.entry.Fatalf(format, a...)
}

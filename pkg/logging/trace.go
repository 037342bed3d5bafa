package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// traceOn gates per-tick debug records.
var traceOn atomic.Bool

// SetTrace turns per-tick records on or off.
func SetTrace(on bool) { traceOn.Store(on) }

// TraceEnabled reports whether per-tick records are emitted.
func TraceEnabled() bool { return traceOn.Load() }

// TraceDefault logs at DEBUG on the default logger when tracing is on and the
// default handler accepts DEBUG.
func TraceDefault(msg string, args ...any) {
	if !traceOn.Load() {
		return
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	slog.Debug(msg, args...)
}

package logging

import (
	"strings"
	"sync"
)

// DefaultCaptureLines is how many recent lines a capture keeps.
const DefaultCaptureLines = 50

// LogCaptureWriter is a thread-safe writer that keeps the most recent lines.
type LogCaptureWriter struct {
	mu    sync.RWMutex
	lines []string
	limit int
}

// NewCaptureWriter returns a capture holding up to limit lines.
func NewCaptureWriter(limit int) *LogCaptureWriter {
	if limit < 1 {
		limit = 1
	}
	return &LogCaptureWriter{limit: limit}
}

// GlobalLogCapture holds the latest server log lines.
var GlobalLogCapture = NewCaptureWriter(DefaultCaptureLines)

// GlobalEventCapture holds the latest journal events in short form.
var GlobalEventCapture = NewCaptureWriter(DefaultCaptureLines)

// Write implements io.Writer. Each call is recorded as one line.
func (w *LogCaptureWriter) Write(p []byte) (n int, err error) {
	line := strings.TrimRight(string(p), "\r\n")

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, line)
	if over := len(w.lines) - w.limit; over > 0 {
		w.lines = append(w.lines[:0], w.lines[over:]...)
	}
	return len(p), nil
}

// GetLastLine returns the most recent line, or "" if nothing was written.
func (w *LogCaptureWriter) GetLastLine() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.lines) == 0 {
		return ""
	}
	return w.lines[len(w.lines)-1]
}

// Lines returns up to n recent lines, oldest first. n <= 0 returns all of them.
func (w *LogCaptureWriter) Lines(n int) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	start := 0
	if n > 0 && n < len(w.lines) {
		start = len(w.lines) - n
	}
	out := make([]string, len(w.lines)-start)
	copy(out, w.lines[start:])
	return out
}

// Package covlog provides an optional diagnostic log for the coverage
// tracer's own bookkeeping.
//
// The tracer core runs once per executed line of the host program, so it
// never logs unconditionally. Callers that need to see what the tracer is
// doing attach a Log; everyone else gets Nop, whose Enabled check is the
// only cost on the hot path.
//
// Two levels are useful in practice: LevelEvents shows the raw event stream
// as delivered by the host, LevelState additionally shows how the depth
// stack reacted to each event. State lines are indented by call depth, which
// makes unbalanced CALL/RETURN sequences visible at a glance.
package covlog

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Log sinks diagnostic lines from the tracer core.
type Log interface {
	// Enabled reports whether lines at the given level are recorded.
	// Must be cheap: it guards every log call on the event hot path.
	Enabled(level Level) bool

	// Eventf records a raw host event.
	Eventf(kind string, unit string, line int)

	// Statef records a depth-stack transition. Negative line numbers are
	// printed blank (some transitions have no current line).
	Statef(depth int, line int, unit string, msg string)
}

// nopLog is a no-op implementation for zero overhead when logging is disabled.
type nopLog struct{}

func (nopLog) Enabled(Level) bool { return false }

func (nopLog) Eventf(string, string, int) {}

func (nopLog) Statef(int, int, string, string) {}

// Nop is the package-level singleton no-op log.
var Nop Log = nopLog{}

// StreamLog writes lines immediately to an io.Writer.
type StreamLog struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
}

// NewStreamLog creates a StreamLog writing to w at the given level.
func NewStreamLog(w io.Writer, level Level) *StreamLog {
	return &StreamLog{w: w, level: level}
}

// Enabled reports whether lines at the given level are recorded.
func (l *StreamLog) Enabled(level Level) bool {
	return level <= l.level && l.level > LevelOff
}

// Eventf records a raw host event.
func (l *StreamLog) Eventf(kind string, unit string, line int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	// Best-effort write: logging must never disrupt the traced program.
	_, _ = fmt.Fprintf(l.w, "event: %-4s %s %d\n", kind, unit, line)
}

// Statef records a depth-stack transition, indented two spaces per depth.
func (l *StreamLog) Statef(depth int, line int, unit string, msg string) {
	indent := ""
	if depth > 0 {
		indent = strings.Repeat("  ", depth)
	}
	lineStr := "    "
	if line >= 0 {
		lineStr = fmt.Sprintf("%4d", line)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.w, "%s%3d %s %s %s\n", indent, depth, lineStr, unit, msg)
}

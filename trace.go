package netsim

//
// Logging and trace output
//

import (
	"fmt"
	"io"
	"sync"
)

// Logger is the logger used throughout netsim. Its shape mirrors the
// leveled logger every collaborator in this codebase expects
// (apex/log's Interface satisfies it directly), so the core never
// hard-codes a concrete logging library.
type Logger interface {
	Debugf(format string, v ...any)
	Debug(message string)
	Infof(format string, v ...any)
	Info(message string)
	Warnf(format string, v ...any)
	Warn(message string)
}

// NullLogger is a [Logger] that discards everything. Useful in tests
// and as the default when no logger is supplied.
type NullLogger struct{}

var _ Logger = &NullLogger{}

func (*NullLogger) Debugf(string, ...any) {}
func (*NullLogger) Debug(string)          {}
func (*NullLogger) Infof(string, ...any)  {}
func (*NullLogger) Info(string)           {}
func (*NullLogger) Warnf(string, ...any)  {}
func (*NullLogger) Warn(string)           {}

// Category tags a debug trace with the subsystem that emitted it, so
// traces can be toggled per category instead of matching free-form
// string prefixes.
type Category int

const (
	// CategoryTCP tags traces from the TCP sender/receiver state machine.
	CategoryTCP Category = iota

	// CategoryLink tags traces from link transmission and loss.
	CategoryLink

	// CategoryQueue tags traces from link queue occupancy.
	CategoryQueue

	// CategoryAppHandler tags traces from application handlers.
	CategoryAppHandler
)

// String renders a [Category] the way it appears in legacy free-form
// trace tags ("TCP", "Link", "Queue", "AppHandler").
func (c Category) String() string {
	switch c {
	case CategoryTCP:
		return "TCP"
	case CategoryLink:
		return "Link"
	case CategoryQueue:
		return "Queue"
	case CategoryAppHandler:
		return "AppHandler"
	default:
		return "Unknown"
	}
}

// CategoryLogger wraps a [Logger]. Its Trace method forwards a
// Debug-level message only when the message's [Category] is in the
// enabled set. The plain [Logger] methods, Debugf and Debug included,
// carry no category and always pass through unfiltered.
type CategoryLogger struct {
	mu      sync.Mutex
	next    Logger
	enabled map[Category]bool
}

// NewCategoryLogger wraps next; initially no category is enabled.
func NewCategoryLogger(next Logger) *CategoryLogger {
	return &CategoryLogger{next: next, enabled: map[Category]bool{}}
}

// Enable turns on tracing for the given category.
func (cl *CategoryLogger) Enable(c Category) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.enabled[c] = true
}

// Disable turns off tracing for the given category.
func (cl *CategoryLogger) Disable(c Category) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	delete(cl.enabled, c)
}

// Trace emits a Debug-level message tagged with category, if enabled.
func (cl *CategoryLogger) Trace(category Category, format string, v ...any) {
	cl.mu.Lock()
	on := cl.enabled[category]
	cl.mu.Unlock()
	if !on {
		return
	}
	cl.next.Debugf("netsim: [%s] %s", category, fmt.Sprintf(format, v...))
}

var _ Logger = &CategoryLogger{}

func (cl *CategoryLogger) Debugf(format string, v ...any) { cl.next.Debugf(format, v...) }
func (cl *CategoryLogger) Debug(message string)           { cl.next.Debug(message) }
func (cl *CategoryLogger) Infof(format string, v ...any)  { cl.next.Infof(format, v...) }
func (cl *CategoryLogger) Info(message string)            { cl.next.Info(message) }
func (cl *CategoryLogger) Warnf(format string, v ...any)  { cl.next.Warnf(format, v...) }
func (cl *CategoryLogger) Warn(message string)            { cl.next.Warn(message) }

// SequenceTraceWriter emits the whitespace-separated sequence-trace
// records consumed by the plotting tool: "<time> <sequence> <dropped
// 0|1> <ack 0|1>", one per line.
type SequenceTraceWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSequenceTraceWriter wraps w. A nil w makes every Record a no-op.
func NewSequenceTraceWriter(w io.Writer) *SequenceTraceWriter {
	return &SequenceTraceWriter{w: w}
}

// Record appends one trace line. dropped and ack are mutually
// exclusive; when both are false the line marks a data segment sent.
func (s *SequenceTraceWriter) Record(currentTime float64, sequence int, dropped, ack bool) {
	if s == nil || s.w == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%f %d %s %s\n", currentTime, sequence, boolDigit(dropped), boolDigit(ack))
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

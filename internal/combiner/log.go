package combiner

import (
	"io"
	"log"
	"sync"
)

// LogWriters routes the combiner's three log streams. Ops receives one
// summary line per event, Diag receives fit fallbacks such as a track
// keeping its start trajectory after a failed refit, and Trace receives
// every filter verdict on a segment, train or track.
type LogWriters struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

var (
	mu          sync.RWMutex
	opsLogger   *log.Logger
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters replaces the writers of all three streams. A nil writer
// silences its stream; the combiner starts silent.
func SetLogWriters(w LogWriters) {
	mu.Lock()
	defer mu.Unlock()
	opsLogger = newLogger("[combiner] ", w.Ops)
	diagLogger = newLogger("[combiner] ", w.Diag)
	traceLogger = newLogger("[combiner] ", w.Trace)
}

// newLogger returns nil for a nil writer.
func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs an event summary.
func Opsf(format string, args ...interface{}) {
	mu.RLock()
	l := opsLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// Diagf logs a refit or reconstruction fallback.
func Diagf(format string, args ...interface{}) {
	mu.RLock()
	l := diagLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

// Tracef logs a single filter decision.
func Tracef(format string, args ...interface{}) {
	mu.RLock()
	l := traceLogger
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}

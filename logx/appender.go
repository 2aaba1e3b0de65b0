package logx

import (
	"fmt"
	"io"
	"os"

	"github.com/huangjl/fibersched/fiberrt"
)

// Appender is the sink half of a Logger: something that can take a
// formatted Event and put it somewhere. original_source/log.h keeps
// its appender list on the logger itself; here that list is guarded by
// fiberrt.Spinlock rather than sync.Mutex, so the ambient stack
// exercises the core's own short-critical-section primitive instead of
// reaching for a second one.
type Appender interface {
	Append(e *Event)
}

// WriterAppender renders an Event through a Pattern and writes the
// result to an io.Writer. A single WriterAppender is safe for
// concurrent use; its own writes are serialized with a spinlock since
// log lines are short and the lock is held only for the Write call.
type WriterAppender struct {
	w       io.Writer
	pattern *Pattern
	mu      fiberrt.Spinlock
}

// NewWriterAppender wraps w, formatting every Event with pattern (or
// DefaultPattern if nil).
func NewWriterAppender(w io.Writer, pattern *Pattern) *WriterAppender {
	if pattern == nil {
		pattern = DefaultPattern
	}
	return &WriterAppender{w: w, pattern: pattern}
}

func (a *WriterAppender) Append(e *Event) {
	line := a.pattern.Format(e)
	fiberrt.WithLock(&a.mu, func() {
		_, _ = io.WriteString(a.w, line)
	})
}

// NewConsoleAppender writes to os.Stderr, matching the original's
// default console appender.
func NewConsoleAppender(pattern *Pattern) *WriterAppender {
	return NewWriterAppender(os.Stderr, pattern)
}

// FileAppender appends to a single opened file. Distinct from
// WriterAppender mainly so callers can Close it; rolling/rotating
// appenders are out of scope (SPEC_FULL.md names no rotation policy).
type FileAppender struct {
	*WriterAppender
	f *os.File
}

// NewFileAppender opens (creating/appending to) path and returns an
// Appender backed by it.
func NewFileAppender(path string, pattern *Pattern) (*FileAppender, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logx: open %s: %w", path, err)
	}
	return &FileAppender{WriterAppender: NewWriterAppender(f, pattern), f: f}, nil
}

// Close closes the underlying file.
func (a *FileAppender) Close() error {
	return a.f.Close()
}

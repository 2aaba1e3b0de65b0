package logx

import (
	"github.com/sirupsen/logrus"
)

// LogrusAppender fans an Event out through a *logrus.Logger, the way
// joeycumines-go-utilpkg/logiface-logrus's Logger wraps a *logrus.Entry:
// build a logrus.Fields from the structured parts of the Event, then
// call entry.Log at the translated level with the free-text message.
// It is attached through LoadConfig's "logrus" appender type or
// AddAppender; the root logger's default appender (which cmd/fsctl's
// diagnostics use) is a console WriterAppender, not this one.
type LogrusAppender struct {
	backend *logrus.Logger
}

// NewLogrusAppender wraps an existing *logrus.Logger. Passing nil uses
// logrus.StandardLogger().
func NewLogrusAppender(backend *logrus.Logger) *LogrusAppender {
	if backend == nil {
		backend = logrus.StandardLogger()
	}
	return &LogrusAppender{backend: backend}
}

func (a *LogrusAppender) Append(e *Event) {
	fields := logrus.Fields{
		"logger":     e.LoggerName,
		"file":       e.File,
		"line":       e.Line,
		"thread_id":  e.ThreadID,
		"fiber_id":   e.FiberID,
		"elapsed_ms": e.ElapsedMS,
	}
	a.backend.WithFields(fields).Log(e.Level.logrus(), e.Message)
}

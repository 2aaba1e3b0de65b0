package logx

import "time"

// Event is the structured record a Logger hands to every appender,
// carrying file, line, thread id, fiber id, elapsed milliseconds and
// wall time as original_source/log.h's LogEvent does, plus the logger
// name the original leaves implicit in which Logger instance you
// called. It does not carry the thread's name.
type Event struct {
	LoggerName string
	Level      Level
	File       string
	Line       int
	ThreadID   int
	FiberID    uint64
	ElapsedMS  int64
	Time       time.Time
	Message    string
}

var processStart = time.Now()

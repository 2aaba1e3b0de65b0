package logx

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/huangjl/fibersched/fiberrt"
)

// Logger is a named, hierarchical logger: a child inherits its
// parent's level until it is given its own, the way
// original_source/log.h's Logger tree works (root logger at the top,
// Named(parent, "child") below it). Appenders accumulate rather than
// replace, matching the original's AddAppender, and a line goes to the
// logger's own appenders and to every ancestor's.
type Logger struct {
	name   string
	parent *Logger

	mu        sync.RWMutex
	level     *Level // nil: inherit from parent
	appenders []Appender
	appendMu  fiberrt.Spinlock // guards appenders specifically, held only for the append/read below
}

var (
	root     = &Logger{name: "root"}
	rootOnce sync.Once
)

func initRoot() {
	lvl := LevelInfo
	root.level = &lvl
	root.appenders = []Appender{NewConsoleAppender(DefaultPattern)}
}

// Root returns the process-wide root logger, initialized on first use
// with a single console appender at INFO, mirroring the original's
// default logging configuration before any YAML is loaded.
func Root() *Logger {
	rootOnce.Do(initRoot)
	return root
}

// Named returns a new logger named name beneath parent. Repeated calls with the same parent/name return distinct
// Logger values by design: original_source/log.h's LoggerManager
// interns loggers by name, but nothing in this codebase depends on
// pointer identity across calls, and a fresh value keeps callers from
// accidentally mutating a shared instance's appender list.
func Named(parent *Logger, name string) *Logger {
	if parent == nil {
		parent = Root()
	}
	full := name
	if parent.name != "" && parent.name != "root" {
		full = parent.name + "." + name
	}
	return &Logger{name: full, parent: parent}
}

// SetLevel gives this logger its own level, overriding inheritance.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = &level
}

// Level returns the effective level, walking up to the nearest
// ancestor (ultimately the root) that has one set.
func (l *Logger) Level() Level {
	l.mu.RLock()
	lvl := l.level
	parent := l.parent
	l.mu.RUnlock()
	if lvl != nil {
		return *lvl
	}
	if parent != nil {
		return parent.Level()
	}
	return Root().Level()
}

// AddAppender appends a to this logger's own appender list. The list
// is guarded by a spinlock rather than l.mu (which covers level/parent
// instead): appends and reads here are short, uncontended in the
// common case, and this keeps fiberrt.Spinlock genuinely exercised
// outside the core's own tests.
func (l *Logger) AddAppender(a Appender) {
	fiberrt.WithLock(&l.appendMu, func() {
		l.appenders = append(l.appenders, a)
	})
}

// effectiveAppenders collects this logger's own appenders plus every
// ancestor's, root first, matching log4j-style "appender additivity":
// a line fans out to every appender from the named logger up to root.
func (l *Logger) effectiveAppenders() []Appender {
	var chain []*Logger
	for cur := l; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	var out []Appender
	for i := len(chain) - 1; i >= 0; i-- {
		fiberrt.WithLock(&chain[i].appendMu, func() {
			out = append(out, chain[i].appenders...)
		})
	}
	return out
}

func (l *Logger) log(level Level, skip int, msg string) {
	if level < l.Level() {
		return
	}
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		file, line = "???", 0
	}
	e := &Event{
		LoggerName: l.name,
		Level:      level,
		File:       file,
		Line:       line,
		ThreadID:   fiberrt.GetThreadId(),
		FiberID:    fiberrt.GetFiberId(),
		ElapsedMS:  time.Since(processStart).Milliseconds(),
		Time:       time.Now(),
		Message:    msg,
	}
	for _, a := range l.effectiveAppenders() {
		a.Append(e)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, 3, fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, 3, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, 3, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, 3, fmt.Sprintf(format, args...))
}

func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(LevelFatal, 3, fmt.Sprintf(format, args...))
}

// Name returns the logger's dotted name.
func (l *Logger) Name() string { return l.name }

// Package logx is the hierarchical, YAML-configurable logging
// collaborator spec.md §6 names: named loggers whose events fan out to
// their own appenders and every ancestor's, each emitting a
// structured LogEvent (file/line/tid/fiber-id/elapsed-ms/wall-time)
// through a small format-pattern compiler. LogrusAppender can route
// events through github.com/sirupsen/logrus the way
// joeycumines-go-utilpkg/logiface-logrus wires the same library behind
// a facade.
//
// It is deliberately outside fiberrt's own package: it is a
// collaborator the core calls through the DiagnosticsSink interface,
// grounded on original_source/log.h's LogEvent/LogLevel split between
// "what a line carries" and "how severe it is."
package logx

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Level mirrors original_source/log.h's LogLevel enum ordinals exactly
// (DEBUG=1 .. FATAL=5) rather than logrus's own numbering.
type Level int32

const (
	LevelDebug Level = iota + 1
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel accepts any of the names returned by String, case
// insensitively.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return 0, false
	}
}

func (l Level) logrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	case LevelFatal:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

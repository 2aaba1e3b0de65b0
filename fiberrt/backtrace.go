package fiberrt

import (
	"fmt"
	"runtime"
	"strings"
)

// Backtrace formats up to frames stack frames starting skip levels
// above its own caller, one per line, each prefixed by prefix — the
// BacktraceToString(frames, skip, prefix) contract spec.md §6 names.
//
// The original ports this over backtrace()/backtrace_symbols (see
// original_source/components/utils.cpp); no example repo in the pack
// wraps a third-party backtrace/symbolication library, and Go's own
// runtime.Callers/CallersFrames is the idiomatic source for this in any
// Go codebase, so this one piece of fibersched is deliberately built on
// the standard library (see DESIGN.md).
func Backtrace(frames, skip int, prefix string) string {
	if frames <= 0 {
		frames = 32
	}
	pcs := make([]uintptr, frames)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	iter := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	for {
		fr, more := iter.Next()
		fmt.Fprintf(&b, "%s%s\n%s    %s:%d\n", prefix, fr.Function, prefix, fr.File, fr.Line)
		if !more {
			break
		}
	}
	return b.String()
}

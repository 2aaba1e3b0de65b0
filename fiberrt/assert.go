package fiberrt

import "fmt"

// assertf is the fatal-assertion primitive spec.md §7 calls for: an
// invariant violation or OS-primitive failure must abort the process
// with the failed predicate and a backtrace, never be swallowed. It
// ports original_source/components/macro.h's MY_ASSERT2, which logs
// then calls assert(); Go's process-abort primitive is panic, which a
// test harness can still recover() from to assert "this call panics"
// without the whole suite going down.
//
// It is never used for a fiber-raised error (captured into EXCEPT by
// the trampoline instead, see fiber.go) or a config type mismatch
// (non-fatal by contract, see the config package) — only for the
// invariant violations spec.md §7 names as fatal.
func assertf(cond bool, format string, args ...interface{}) {
	if cond {
		return
	}
	msg := fmt.Sprintf(format, args...)
	diagnostics.Errorf("ASSERTION FAILED: %s\nbacktrace:\n%s", msg, Backtrace(64, 1, "    "))
	panic("fiberrt: assertion failed: " + msg)
}

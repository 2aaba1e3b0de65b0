package fiberrt

import (
	"fmt"
	"os"
)

// DiagnosticsSink is the Logger collaborator contract spec.md §6
// describes: the core calls it for diagnostics only, never consults it
// for correctness, so fibersched's logx package can be wired in at
// application startup without fiberrt importing it back (logx already
// depends on fiberrt for Spinlock).
type DiagnosticsSink interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type stderrSink struct{}

func (stderrSink) Debugf(format string, args ...interface{}) { fmt.Fprintf(os.Stderr, "DEBUG "+format+"\n", args...) }
func (stderrSink) Infof(format string, args ...interface{})  { fmt.Fprintf(os.Stderr, "INFO "+format+"\n", args...) }
func (stderrSink) Errorf(format string, args ...interface{}) { fmt.Fprintf(os.Stderr, "ERROR "+format+"\n", args...) }

var diagnostics DiagnosticsSink = stderrSink{}

// SetDiagnostics installs the sink the core uses for its own internal
// logging (tickle notices, captured fiber exceptions, assertion
// failures). Passing nil restores the stderr fallback.
func SetDiagnostics(d DiagnosticsSink) {
	if d == nil {
		d = stderrSink{}
	}
	diagnostics = d
}

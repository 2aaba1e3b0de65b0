package logx

import "github.com/huangjl/fibersched/fiberrt"

// diagnosticsSink adapts a *Logger to fiberrt.DiagnosticsSink, letting
// the scheduler/fiber core log through the same named-logger/appender
// tree as application code without fiberrt importing logx directly.
type diagnosticsSink struct {
	logger *Logger
}

// AsDiagnostics wraps logger so it can be installed via
// fiberrt.SetDiagnostics.
func AsDiagnostics(logger *Logger) fiberrt.DiagnosticsSink {
	if logger == nil {
		logger = Root()
	}
	return &diagnosticsSink{logger: logger}
}

func (s *diagnosticsSink) Debugf(format string, args ...interface{}) {
	s.logger.Debugf(format, args...)
}

func (s *diagnosticsSink) Infof(format string, args ...interface{}) {
	s.logger.Infof(format, args...)
}

func (s *diagnosticsSink) Errorf(format string, args ...interface{}) {
	s.logger.Errorf(format, args...)
}

package logx

import (
	"fmt"
	"strings"
)

// Pattern is a compiled format string over an Event, e.g.
// "%d{2006-01-02 15:04:05} [%p] %c - %m%n", ported in spirit from
// original_source/log.h's formatter directives (spec.md §6: "the
// textual format-pattern parser for log lines"). Each directive is
// compiled once into a closure over the decoded layout, avoiding
// re-parsing the format string on every log call.
type Pattern struct {
	parts []func(e *Event) string
}

const defaultLayout = "2006-01-02 15:04:05.000"

// CompilePattern parses a format string into a reusable Pattern.
// Supported directives:
//
//	%d{layout}  time, Go reference layout (default "2006-01-02 15:04:05.000")
//	%p          level
//	%c          logger name
//	%t          OS thread id
//	%F          fiber id
//	%e          elapsed milliseconds since process start
//	%f          source file
//	%L          source line
//	%m          message
//	%n          newline
//	%%          literal percent
//
// Any other text is copied through verbatim.
func CompilePattern(format string) (*Pattern, error) {
	p := &Pattern{}
	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' {
			j := i
			for j < len(format) && format[j] != '%' {
				j++
			}
			lit := format[i:j]
			p.parts = append(p.parts, func(e *Event) string { return lit })
			i = j
			continue
		}
		if i+1 >= len(format) {
			return nil, fmt.Errorf("logx: pattern ends with a bare %%")
		}
		verb := format[i+1]
		i += 2
		switch verb {
		case 'd':
			layout := defaultLayout
			if i < len(format) && format[i] == '{' {
				end := strings.IndexByte(format[i:], '}')
				if end < 0 {
					return nil, fmt.Errorf("logx: unterminated %%d{...} in pattern")
				}
				layout = format[i+1 : i+end]
				i += end + 1
			}
			l := layout
			p.parts = append(p.parts, func(e *Event) string { return e.Time.Format(l) })
		case 'p':
			p.parts = append(p.parts, func(e *Event) string { return e.Level.String() })
		case 'c':
			p.parts = append(p.parts, func(e *Event) string { return e.LoggerName })
		case 't':
			p.parts = append(p.parts, func(e *Event) string { return fmt.Sprintf("%d", e.ThreadID) })
		case 'F':
			p.parts = append(p.parts, func(e *Event) string { return fmt.Sprintf("%d", e.FiberID) })
		case 'e':
			p.parts = append(p.parts, func(e *Event) string { return fmt.Sprintf("%d", e.ElapsedMS) })
		case 'f':
			p.parts = append(p.parts, func(e *Event) string { return e.File })
		case 'L':
			p.parts = append(p.parts, func(e *Event) string { return fmt.Sprintf("%d", e.Line) })
		case 'm':
			p.parts = append(p.parts, func(e *Event) string { return e.Message })
		case 'n':
			p.parts = append(p.parts, func(e *Event) string { return "\n" })
		case '%':
			p.parts = append(p.parts, func(e *Event) string { return "%" })
		default:
			return nil, fmt.Errorf("logx: unknown pattern directive %%%c", verb)
		}
	}
	return p, nil
}

// MustCompilePattern is CompilePattern but panics on a malformed
// format string, for use with package-level pattern literals.
func MustCompilePattern(format string) *Pattern {
	p, err := CompilePattern(format)
	if err != nil {
		panic(err)
	}
	return p
}

// Format renders e through the compiled pattern.
func (p *Pattern) Format(e *Event) string {
	var b strings.Builder
	for _, part := range p.parts {
		b.WriteString(part(e))
	}
	return b.String()
}

// DefaultPattern approximates the original's typical "%d [%p] %c%T%m%n"
// shape: time, level, logger name and message. It does not include the
// thread, fiber, elapsed-time or source-location directives.
var DefaultPattern = MustCompilePattern("%d [%p] %c - %m%n")

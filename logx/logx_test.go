package logx

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseLevelRoundTrips(t *testing.T) {
	for _, lvl := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal} {
		got, ok := ParseLevel(lvl.String())
		if !ok || got != lvl {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v, true", lvl.String(), got, ok, lvl)
		}
	}
	if _, ok := ParseLevel("nonsense"); ok {
		t.Fatal("ParseLevel(\"nonsense\") returned ok=true")
	}
}

func TestCompilePatternFormatsAllDirectives(t *testing.T) {
	p, err := CompilePattern("%d{2006-01-02} [%p] %c %t %F %e %f:%L %m%n%%")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	e := &Event{
		LoggerName: "svc.worker",
		Level:      LevelWarn,
		File:       "worker.go",
		Line:       42,
		ThreadID:   7,
		FiberID:    99,
		ElapsedMS:  1234,
		Time:       time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
		Message:    "hello",
	}
	got := p.Format(e)
	want := "2026-07-31 [WARN] svc.worker 7 99 1234 worker.go:42 hello\n%"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

func TestCompilePatternRejectsBadDirectives(t *testing.T) {
	if _, err := CompilePattern("%q"); err == nil {
		t.Fatal("expected error for unknown directive %q")
	}
	if _, err := CompilePattern("%d{unterminated"); err == nil {
		t.Fatal("expected error for unterminated %d{...}")
	}
	if _, err := CompilePattern("trailing %"); err == nil {
		t.Fatal("expected error for trailing bare %")
	}
}

func TestWriterAppenderWritesFormattedLine(t *testing.T) {
	var buf bytes.Buffer
	pattern := MustCompilePattern("[%p] %m%n")
	a := NewWriterAppender(&buf, pattern)

	a.Append(&Event{Level: LevelInfo, Message: "started"})

	if got, want := buf.String(), "[INFO] started\n"; got != want {
		t.Fatalf("buf = %q, want %q", got, want)
	}
}

func TestLoggerInheritsLevelAndAppenders(t *testing.T) {
	parent := &Logger{name: "parent"}
	lvl := LevelWarn
	parent.level = &lvl

	var buf bytes.Buffer
	parent.AddAppender(NewWriterAppender(&buf, MustCompilePattern("%p:%m%n")))

	child := Named(parent, "child")
	if got := child.Level(); got != LevelWarn {
		t.Fatalf("child.Level() = %v, want %v", got, LevelWarn)
	}

	child.Debugf("should be filtered")
	if buf.Len() != 0 {
		t.Fatalf("debug line passed a WARN threshold: %q", buf.String())
	}

	child.Warnf("hit %d", 1)
	if got := buf.String(); !strings.Contains(got, "WARN:hit 1") {
		t.Fatalf("buf = %q, want it to contain \"WARN:hit 1\"", got)
	}
}

func TestLoggerOwnLevelOverridesInheritance(t *testing.T) {
	parent := &Logger{name: "parent"}
	parentLvl := LevelError
	parent.level = &parentLvl

	child := Named(parent, "child")
	child.SetLevel(LevelDebug)

	if got := child.Level(); got != LevelDebug {
		t.Fatalf("child.Level() = %v, want %v (own level should win)", got, LevelDebug)
	}
}

func TestLoggerFansOutToAncestorAppenders(t *testing.T) {
	parent := &Logger{name: "parent"}
	parentLvl := LevelDebug
	parent.level = &parentLvl
	var parentBuf, childBuf bytes.Buffer
	parent.AddAppender(NewWriterAppender(&parentBuf, MustCompilePattern("%m")))

	child := Named(parent, "child")
	child.AddAppender(NewWriterAppender(&childBuf, MustCompilePattern("%m")))

	child.Infof("fanout")

	if parentBuf.String() != "fanout" {
		t.Fatalf("parent appender got %q, want \"fanout\"", parentBuf.String())
	}
	if childBuf.String() != "fanout" {
		t.Fatalf("child appender got %q, want \"fanout\"", childBuf.String())
	}
}

func TestLoadConfigAppliesLevelsAndAppenders(t *testing.T) {
	yamlDoc := `
loggers:
  - name: root
    level: warn
  - name: db
    level: debug
    pattern: "%p %m%n"
    appenders:
      - type: console
`
	registry := map[string]*Logger{}
	if err := LoadConfig(strings.NewReader(yamlDoc), registry); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if got := Root().Level(); got != LevelWarn {
		t.Fatalf("Root().Level() = %v, want %v", got, LevelWarn)
	}

	db, ok := registry["db"]
	if !ok {
		t.Fatal("LoadConfig did not register logger \"db\"")
	}
	if got := db.Level(); got != LevelDebug {
		t.Fatalf("db.Level() = %v, want %v", got, LevelDebug)
	}
}

func TestAsDiagnosticsSatisfiesSinkContract(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{name: "diag"}
	lvl := LevelDebug
	logger.level = &lvl
	logger.AddAppender(NewWriterAppender(&buf, MustCompilePattern("%p %m%n")))

	sink := AsDiagnostics(logger)
	sink.Errorf("boom %d", 7)

	if got := buf.String(); !strings.Contains(got, "ERROR boom 7") {
		t.Fatalf("buf = %q, want it to contain \"ERROR boom 7\"", got)
	}
}

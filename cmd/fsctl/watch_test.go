package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangjl/fibersched/config"
)

func TestReloadConfigAppliesYAML(t *testing.T) {
	name := config.Lookup("fsctl_test.watch_value", uint32(1), "test-only value reloaded from disk")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("fsctl_test:\n  watch_value: 42\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := reloadConfig(path); err != nil {
		t.Fatalf("reloadConfig: %v", err)
	}
	if got := name.Value(); got != 42 {
		t.Fatalf("watch_value = %d, want 42", got)
	}
}

func TestWatchCommandRequiresFileFlag(t *testing.T) {
	cmd := newWatchCommand()
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error when --file is not supplied")
	}
}

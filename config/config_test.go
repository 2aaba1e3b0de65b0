package config

import (
	"strings"
	"sync/atomic"
	"testing"
)

func TestLookupReturnsSameHandle(t *testing.T) {
	tests := []struct {
		name string
		def  int
	}{
		{name: "config.test.a", def: 1},
		{name: "config.test.b", def: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := Lookup(tt.name, tt.def, "")
			second := Lookup(tt.name, tt.def+99, "")
			if first != second {
				t.Fatalf("Lookup(%q) returned different handles on second call", tt.name)
			}
			if got := second.Value(); got != tt.def {
				t.Fatalf("Value() = %d, want original default %d (not the second call's default)", got, tt.def)
			}
		})
	}
}

func TestLookupTypeMismatchReturnsNil(t *testing.T) {
	first := Lookup("config.test.mismatch", "a string", "")

	second := Lookup("config.test.mismatch", 42, "")
	if second != nil {
		t.Fatal("expected Lookup with a different T for the same name to return nil")
	}

	if got := first.Value(); got != "a string" {
		t.Fatalf("original handle's Value() = %q, want unaffected by the mismatched re-lookup", got)
	}
}

func TestSetNotifiesListeners(t *testing.T) {
	v := Lookup("config.test.notify", 10, "")
	var calls int32
	var lastOld, lastNew int

	v.AddListener(func(old, new int) {
		atomic.AddInt32(&calls, 1)
		lastOld, lastNew = old, new
	})

	v.Set(20)

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("listener called %d times, want 1", n)
	}
	if lastOld != 10 || lastNew != 20 {
		t.Fatalf("listener saw (%d, %d), want (10, 20)", lastOld, lastNew)
	}
}

func TestLoadYAML(t *testing.T) {
	stackSize := Lookup("config.test.stack_size", uint32(128), "")
	name := Lookup("config.test.name", "default", "")

	doc := `
config:
  test:
    stack_size: 4096
    name: override
`
	if err := LoadYAML(strings.NewReader(doc)); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}

	if got := stackSize.Value(); got != 4096 {
		t.Fatalf("stack_size.Value() = %d, want 4096", got)
	}
	if got := name.Value(); got != "override" {
		t.Fatalf("name.Value() = %q, want %q", got, "override")
	}
}

func TestLoadIgnoresUnknownNames(t *testing.T) {
	Load(map[string]string{"config.test.does_not_exist": "1"})
}

// Package config implements a process-wide, type-safe configuration
// registry: call Lookup once per name to get a live handle, read it
// with Value, and be told about changes with AddListener.
//
// It ports original_source/components/ConfigVarBase.h's
// Config::Lookup<T>/ConfigVar<T> (a name -> ConfigVarBase singleton map
// with lexical_cast-based string conversion) to Go generics instead of
// C++ template specialization, and adds YAML population via
// gopkg.in/yaml.v3 the way LoadFromYaml does over yaml-cpp in the
// original.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)

// Var is the type-erased half of a ConfigVar, used only so the
// registry can hold handles of different T under one map.
type Var interface {
	Name() string
	Description() string
	TypeName() string
	fromString(s string) error
	toString() string
}

// ConfigVar is a live, listenable handle on a single named value of
// type T, exactly the lookup<T>/value()/add_listener contract spec.md
// §6 describes.
type ConfigVar[T any] struct {
	name        string
	description string

	mu        sync.RWMutex
	val       T
	listeners []func(oldVal, newVal T)
}

// Value returns the current value.
func (c *ConfigVar[T]) Value() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val
}

// Set installs a new value and notifies listeners synchronously,
// oldest-registered first.
func (c *ConfigVar[T]) Set(v T) {
	c.mu.Lock()
	old := c.val
	c.val = v
	ls := append([]func(T, T){}, c.listeners...)
	c.mu.Unlock()
	for _, l := range ls {
		l(old, v)
	}
}

// AddListener registers a callback invoked after every Set (including
// one driven by LoadYAML).
func (c *ConfigVar[T]) AddListener(fn func(oldVal, newVal T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *ConfigVar[T]) Name() string        { return c.name }
func (c *ConfigVar[T]) Description() string { return c.description }
func (c *ConfigVar[T]) TypeName() string    { return fmt.Sprintf("%T", c.val) }

func (c *ConfigVar[T]) toString() string {
	return fmt.Sprintf("%v", c.Value())
}

// fromString is a best-effort textual parse used by LoadYAML for
// scalar YAML nodes; unsupported target types are a no-op, mirroring
// the original's "catch lexical_cast exception, log, leave value
// unchanged" behavior rather than failing the whole load.
func (c *ConfigVar[T]) fromString(s string) error {
	var zero T
	switch any(zero).(type) {
	case string:
		c.Set(any(s).(T))
	case bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		c.Set(any(b).(T))
	case int:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		c.Set(any(int(n)).(T))
	case int32:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return err
		}
		c.Set(any(int32(n)).(T))
	case uint32:
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return err
		}
		c.Set(any(uint32(n)).(T))
	case int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		c.Set(any(n).(T))
	case float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		c.Set(any(f).(T))
	default:
		return fmt.Errorf("config: %q has no string conversion for %T", c.name, zero)
	}
	return nil
}

var (
	registryMu sync.Mutex
	registry   = map[string]Var{}
)

// Lookup registers name with default def on first call, or returns the
// already-registered handle on subsequent calls with the same name —
// ported from Config::Lookup<T>(name, default, description). Re-lookup
// of an existing name is not an error (the original merely logs it); a
// mismatched T for an already-registered name is a type-mismatch, not
// a fatal condition: it surfaces as a nil handle rather than a panic,
// matching spec.md §7 ("not fatal for the core"). Callers must treat a
// nil return the same as a missing handle and fall back to their own
// default.
func Lookup[T any](name string, def T, description string) *ConfigVar[T] {
	if !validName.MatchString(name) {
		panic(fmt.Sprintf("config: invalid name %q", name))
	}
	name = strings.ToLower(name)

	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := registry[name]; ok {
		if cv, ok := existing.(*ConfigVar[T]); ok {
			return cv
		}
		return nil
	}

	cv := &ConfigVar[T]{name: name, description: description, val: def}
	registry[name] = cv
	return cv
}

// lookupBase returns the type-erased handle for name, or nil.
func lookupBase(name string) Var {
	registryMu.Lock()
	defer registryMu.Unlock()
	return registry[strings.ToLower(name)]
}

// Load applies flat name -> scalar-string pairs to already-registered
// vars, silently skipping unknown names — the same behavior as
// Config::LoadFromYaml. Use LoadYAML to parse a YAML document first.
func Load(values map[string]string) {
	for name, raw := range values {
		if v := lookupBase(name); v != nil {
			if err := v.fromString(raw); err != nil {
				continue
			}
		}
	}
}

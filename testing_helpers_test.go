// testing_helpers_test.go: shared fixtures for host and measure tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestEnvironment provides temporary plugin roots and skin files.
type TestEnvironment struct {
	t        *testing.T
	dir      string
	Registry *StaticRegistry
	Roots    Roots
}

// NewTestEnvironment creates primary and user plugin roots under a temp dir
// and an empty static registry serving them.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	dir := t.TempDir()
	roots := Roots{
		Primary: filepath.Join(dir, "Plugins"),
		User:    filepath.Join(dir, "UserPlugins"),
	}
	for _, d := range []string{roots.Primary, roots.User} {
		if err := os.MkdirAll(d, 0750); err != nil {
			t.Fatalf("Failed to create plugin root %s: %v", d, err)
		}
	}
	return &TestEnvironment{t: t, dir: dir, Registry: NewStaticRegistry(), Roots: roots}
}

// TempDir returns the root of the environment.
func (te *TestEnvironment) TempDir() string { return te.dir }

// RegisterPrimary registers a module under the primary root.
func (te *TestEnvironment) RegisterPrimary(name string, symbols Symbols) string {
	path := filepath.Join(te.Roots.Primary, name)
	te.Registry.Register(path, symbols)
	return path
}

// RegisterUser registers a module under the user root.
func (te *TestEnvironment) RegisterUser(name string, symbols Symbols) string {
	path := filepath.Join(te.Roots.User, name)
	te.Registry.Register(path, symbols)
	return path
}

// Loader returns a loader over the environment roots.
func (te *TestEnvironment) Loader(logger Logger) *ModuleLoader {
	return NewModuleLoader(te.Roots, te.Registry, logger)
}

// Settings returns host settings pointing at the environment roots.
func (te *TestEnvironment) Settings() HostSettings {
	s := DefaultHostSettings()
	s.PluginPath = te.Roots.Primary
	s.UserPluginPath = te.Roots.User
	s.ModuleFormat = string(ModuleFormatStatic)
	s.UpdateInterval = 10 * time.Millisecond
	return s
}

// WriteFile writes content to name under the environment and returns the path.
func (te *TestEnvironment) WriteFile(name, content string) string {
	te.t.Helper()
	path := filepath.Join(te.dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		te.t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// callLog records entry point invocations in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

func (c *callLog) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	copy(out, c.calls)
	return out
}

// count returns how many recorded calls start with prefix.
func (c *callLog) count(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}
	return n
}

// currentModule builds a current-generation module exporting every role.
// Reload writes maxValue when it is non-negative.
func currentModule(log *callLog, maxValue float64) Symbols {
	return Symbols{
		SymbolInitialize: func(data *uintptr, host uintptr) {
			log.add("Initialize:%d", *data)
		},
		SymbolReload: func(data, host uintptr, max *float64) {
			log.add("Reload:%d", data)
			if maxValue >= 0 {
				*max = maxValue
			}
		},
		SymbolUpdate: func(data uintptr) float64 {
			log.add("Update:%d", data)
			return 42
		},
		SymbolGetString: func(data uintptr) string {
			log.add("GetString:%d", data)
			return "hello"
		},
		SymbolExecuteBang: func(data uintptr, command string) {
			log.add("ExecuteBang:%s", command)
		},
		SymbolFinalize: func(data uintptr) {
			log.add("Finalize:%d", data)
		},
	}
}

// legacyModule builds a legacy module reporting maxValue from Initialize.
func legacyModule(log *callLog, maxValue float64) Symbols {
	return Symbols{
		SymbolInitialize: func(module uintptr, filePath, section string, id uint32) float64 {
			log.add("Initialize:%s:%d", section, id)
			return maxValue
		},
		SymbolUpdate: func(id uint32) float64 {
			log.add("Update:%d", id)
			return 7
		},
		SymbolGetString: func(id, flags uint32) string {
			log.add("GetString:%d", id)
			return "legacy"
		},
		SymbolExecuteBang: func(command string, id uint32) {
			log.add("ExecuteBang:%s:%d", command, id)
		},
		SymbolFinalize: func(module uintptr, id uint32) {
			log.add("Finalize:%d", id)
		},
	}
}

// pluginSection returns a section configuring a plugin measure.
func pluginSection(name, plugin string, extra ...string) *MapSection {
	s := NewMapSection(name, nil)
	s.Set(OptionMeasure, MeasureTypePlugin)
	s.Set(OptionPlugin, plugin)
	for i := 0; i+1 < len(extra); i += 2 {
		s.Set(extra[i], extra[i+1])
	}
	return s
}

// WaitForCondition polls condition until it holds or timeout expires.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Condition not met within %v: %s", timeout, message)
}

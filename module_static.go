// module_static.go: modules linked into the host binary
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"path/filepath"
	"sync"
	"sync/atomic"
)

// Symbols maps export names to Go func values.
type Symbols map[string]any

// StaticRegistry serves modules whose entry points are compiled into the
// host. Modules are registered under the full path the loader will try,
// which keeps the primary/user root search order meaningful:
//
//	registry.Register(filepath.Join(roots.Primary, "Clock.so"), plughost.Symbols{
//	    "Reload": func(data, host uintptr, maxValue *float64) { *maxValue = 60 },
//	    "Update": func(data uintptr) float64 { return float64(time.Now().Second()) },
//	})
type StaticRegistry struct {
	mu      sync.RWMutex
	modules map[string]Symbols
	handles atomic.Uintptr
}

// DefaultStaticRegistry backs ModuleFormatStatic.
var DefaultStaticRegistry = NewStaticRegistry()

// NewStaticRegistry creates an empty registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{modules: make(map[string]Symbols)}
}

// Register makes symbols available under path, replacing any earlier entry.
func (r *StaticRegistry) Register(path string, symbols Symbols) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[filepath.Clean(path)] = symbols
}

// Unregister removes the module registered under path.
func (r *StaticRegistry) Unregister(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.modules, filepath.Clean(path))
}

// Open implements Opener.
func (r *StaticRegistry) Open(path string) (Module, error) {
	r.mu.RLock()
	symbols, ok := r.modules[filepath.Clean(path)]
	r.mu.RUnlock()
	if !ok {
		return nil, NewModuleOpenError(path, errStaticModuleMissing)
	}
	return &staticModule{
		path:    path,
		handle:  r.handles.Add(1),
		symbols: symbols,
	}, nil
}

var errStaticModuleMissing = staticModuleError("no static module registered at this path")

type staticModuleError string

func (e staticModuleError) Error() string { return string(e) }

type staticModule struct {
	path    string
	handle  uintptr
	symbols Symbols
}

func (m *staticModule) Path() string    { return m.path }
func (m *staticModule) Handle() uintptr { return m.handle }

func (m *staticModule) Bind(symbol string, fptr any) error {
	sym, ok := m.symbols[symbol]
	if !ok || sym == nil {
		return NewSymbolNotFoundError(m.path, symbol)
	}
	if err := bindSymbol(sym, fptr); err != nil {
		return NewSymbolBindError(m.path, symbol, err)
	}
	return nil
}

func (m *staticModule) Close() error {
	m.symbols = nil
	return nil
}

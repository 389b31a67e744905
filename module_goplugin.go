// module_goplugin.go: Go shared object modules loaded with the plugin package
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import "plugin"

// GoPluginOpener opens Go shared objects built with -buildmode=plugin.
//
// Exported functions are converted to the entry point signatures by type,
// so a plugin exporting
//
//	func Update(data uintptr) float64
//
// binds to the current-generation Update role. The Go runtime never unloads
// a plugin: Close releases the host's references only, and opening the same
// file again returns the already mapped image.
type GoPluginOpener struct{}

// Open implements Opener.
func (GoPluginOpener) Open(path string) (Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, NewModuleOpenError(path, err)
	}
	return &goPluginModule{path: path, plugin: p}, nil
}

type goPluginModule struct {
	path   string
	plugin *plugin.Plugin
}

func (m *goPluginModule) Path() string    { return m.path }
func (m *goPluginModule) Handle() uintptr { return 0 }

func (m *goPluginModule) Bind(symbol string, fptr any) error {
	if m.plugin == nil {
		return NewSymbolNotFoundError(m.path, symbol)
	}
	sym, err := m.plugin.Lookup(symbol)
	if err != nil {
		return NewSymbolNotFoundError(m.path, symbol)
	}
	if err := bindSymbol(sym, fptr); err != nil {
		return NewSymbolBindError(m.path, symbol, err)
	}
	return nil
}

func (m *goPluginModule) Close() error {
	m.plugin = nil
	return nil
}

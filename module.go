// module.go: plugin module loading with primary and user search roots
//
// A plugin measure names its module with the Plugin option. Only the bare
// file name is honored: it is looked up under the primary plugin root first
// and, when one is configured, under the user plugin root second. The first
// successful open wins.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
)

// Module is a loaded dynamic module.
//
// Bind resolves an exported entry point by name and stores it in fptr,
// which must be a pointer to a func variable of the expected signature.
// A missing export is reported with ErrCodeSymbolNotFound; an export that
// cannot be bound to fptr is reported with ErrCodeSymbolBindFailed.
type Module interface {
	// Path returns the file the module was opened from.
	Path() string

	// Handle returns the platform handle of the module, or 0 when the
	// module format has none. Legacy entry points receive it.
	Handle() uintptr

	// Bind resolves symbol into fptr.
	Bind(symbol string, fptr any) error

	// Close unloads the module. No entry point may be called afterwards.
	Close() error
}

// Opener opens modules of one format.
type Opener interface {
	Open(path string) (Module, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Module, error)

// Open implements Opener.
func (f OpenerFunc) Open(path string) (Module, error) {
	return f(path)
}

// ModuleFormat selects how plugin modules are opened.
type ModuleFormat string

const (
	// ModuleFormatNative opens C ABI shared libraries.
	ModuleFormatNative ModuleFormat = "native"
	// ModuleFormatGo opens Go shared objects built with -buildmode=plugin.
	ModuleFormatGo ModuleFormat = "go"
	// ModuleFormatStatic opens modules linked into the host binary.
	ModuleFormatStatic ModuleFormat = "static"
)

// ParseModuleFormat parses a module format name. Matching is case-insensitive
// and an empty name selects ModuleFormatNative.
func ParseModuleFormat(name string) (ModuleFormat, error) {
	switch ModuleFormat(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModuleFormatNative:
		return ModuleFormatNative, nil
	case ModuleFormatGo:
		return ModuleFormatGo, nil
	case ModuleFormatStatic:
		return ModuleFormatStatic, nil
	default:
		return "", NewUnsupportedModuleFormatError(name)
	}
}

// OpenerFor returns the opener for format. Static modules are served from
// DefaultStaticRegistry.
func OpenerFor(format ModuleFormat) (Opener, error) {
	switch format {
	case ModuleFormatNative:
		return NativeOpener{}, nil
	case ModuleFormatGo:
		return GoPluginOpener{}, nil
	case ModuleFormatStatic:
		return DefaultStaticRegistry, nil
	default:
		return nil, NewUnsupportedModuleFormatError(string(format))
	}
}

// Roots holds the directories searched for plugin modules.
type Roots struct {
	// Primary is the host's own plugin directory. Always searched first.
	Primary string `json:"primary" yaml:"primary"`

	// User is an optional user-configured plugin directory.
	User string `json:"user,omitempty" yaml:"user,omitempty"`
}

// HasUserPath reports whether a user plugin root is configured.
func (r Roots) HasUserPath() bool {
	return r.User != ""
}

// candidates returns the paths tried for a bare module name, in order.
func (r Roots) candidates(bare string) []string {
	paths := []string{filepath.Join(r.Primary, bare)}
	if r.HasUserPath() {
		paths = append(paths, filepath.Join(r.User, bare))
	}
	return paths
}

// BareModuleName strips every directory component from a configured plugin
// reference. Both slash and backslash separate components on every OS.
func BareModuleName(reference string) string {
	reference = strings.TrimSpace(reference)
	if i := strings.LastIndexAny(reference, `\/`); i >= 0 {
		return reference[i+1:]
	}
	return reference
}

// ModuleLoader opens plugin modules from the configured roots.
type ModuleLoader struct {
	roots  Roots
	opener Opener
	logger Logger
}

// NewModuleLoader creates a loader. logger may be nil.
func NewModuleLoader(roots Roots, opener Opener, logger any) *ModuleLoader {
	return &ModuleLoader{
		roots:  roots,
		opener: opener,
		logger: NewLogger(logger),
	}
}

// Roots returns the search roots of the loader.
func (l *ModuleLoader) Roots() Roots {
	return l.roots
}

// Load opens the module named by reference. It returns the module and the
// bare name it was searched under. The caller owns the returned module.
func (l *ModuleLoader) Load(section, reference string) (Module, string, error) {
	bare := BareModuleName(reference)
	if bare == "" {
		return nil, "", NewInvalidPluginReferenceError(section, reference)
	}

	attempts := l.roots.candidates(bare)
	var lastErr error
	for _, path := range attempts {
		module, err := l.opener.Open(path)
		if err == nil {
			l.logger.Debug("Plugin module loaded", "module", bare, "path", path, "section", section)
			return module, bare, nil
		}
		l.logger.Debug("Plugin module not loadable", "path", path, "error", err)
		lastErr = err
	}
	return nil, bare, NewModuleNotFoundError(bare, attempts, lastErr)
}

// bindSymbol stores a Go func value sym into fptr after converting it to the
// func type fptr points to. Exported variables holding a func are accepted
// through their pointer, as the plugin package returns them.
func bindSymbol(sym any, fptr any) error {
	dst := reflect.ValueOf(fptr)
	if dst.Kind() != reflect.Pointer || dst.IsNil() || dst.Elem().Kind() != reflect.Func {
		return fmt.Errorf("bind target must be a non-nil pointer to a func, got %T", fptr)
	}

	src := reflect.ValueOf(sym)
	if src.Kind() == reflect.Pointer && !src.IsNil() && src.Elem().Kind() == reflect.Func {
		src = src.Elem()
	}
	if src.Kind() != reflect.Func {
		return fmt.Errorf("symbol is %T, not a function", sym)
	}
	if src.IsNil() {
		return fmt.Errorf("symbol is a nil %s", src.Type())
	}

	want := dst.Elem().Type()
	if !src.Type().ConvertibleTo(want) {
		return fmt.Errorf("symbol type %s does not match %s", src.Type(), want)
	}
	dst.Elem().Set(src.Convert(want))
	return nil
}

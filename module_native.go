// module_native.go: C ABI shared library modules bound through purego
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

// NativeOpener opens C ABI shared libraries (.so, .dylib, .dll).
//
// Entry points are bound with purego, so the host needs no cgo toolchain.
// Strings cross the boundary as NUL-terminated UTF-8; floating point
// returns require amd64 or arm64.
type NativeOpener struct{}

// Open implements Opener.
func (NativeOpener) Open(path string) (Module, error) {
	handle, err := openNativeLibrary(path)
	if err != nil {
		return nil, NewModuleOpenError(path, err)
	}
	return &nativeModule{path: path, handle: handle}, nil
}

type nativeModule struct {
	path   string
	handle uintptr
	closed bool
}

func (m *nativeModule) Path() string    { return m.path }
func (m *nativeModule) Handle() uintptr { return m.handle }

func (m *nativeModule) Bind(symbol string, fptr any) error {
	addr, err := lookupNativeSymbol(m.handle, symbol)
	if err != nil || addr == 0 {
		return NewSymbolNotFoundError(m.path, symbol)
	}
	return registerNativeFunc(m.path, symbol, fptr, addr)
}

func (m *nativeModule) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if err := closeNativeLibrary(m.handle); err != nil {
		return NewModuleCloseError(m.path, err)
	}
	return nil
}

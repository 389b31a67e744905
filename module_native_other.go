//go:build !(darwin || freebsd || linux || windows)

// module_native_other.go: platforms without native library loading
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"fmt"
	"runtime"
)

var errNativeUnsupported = fmt.Errorf("native modules are not supported on %s/%s", runtime.GOOS, runtime.GOARCH)

func openNativeLibrary(string) (uintptr, error) {
	return 0, errNativeUnsupported
}

func lookupNativeSymbol(uintptr, string) (uintptr, error) {
	return 0, errNativeUnsupported
}

func closeNativeLibrary(uintptr) error {
	return nil
}

func registerNativeFunc(path, symbol string, _ any, _ uintptr) error {
	return NewSymbolBindError(path, symbol, errNativeUnsupported)
}

//go:build darwin || freebsd || linux || windows

// module_native_purego.go: typed binding of native entry points
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// registerNativeFunc binds addr to fptr. purego panics on signatures it
// cannot marshal; that is turned into a bind error so the entry point is
// simply treated as absent.
func registerNativeFunc(path, symbol string, fptr any, addr uintptr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewSymbolBindError(path, symbol, fmt.Errorf("%v", r))
		}
	}()
	purego.RegisterFunc(fptr, addr)
	return nil
}

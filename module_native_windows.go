//go:build windows

// module_native_windows.go: LoadLibrary based library access
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import "golang.org/x/sys/windows"

func openNativeLibrary(path string) (uintptr, error) {
	// The module's own directory is searched for its dependencies while it
	// loads; the DLL directory is reset once its entry points are resolved.
	h, err := windows.LoadLibraryEx(path, 0, windows.LOAD_WITH_ALTERED_SEARCH_PATH)
	return uintptr(h), err
}

func lookupNativeSymbol(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

func closeNativeLibrary(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}

//go:build windows

// searchpath_windows.go: DLL search path handling for Windows
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import "golang.org/x/sys/windows"

// searchPathState is empty on Windows: the DLL directory has no cheap
// getter, so it is always reset to the safe default instead of restored.
type searchPathState struct{}

func captureSearchPath() searchPathState {
	return searchPathState{}
}

// restoreSearchPath resets the DLL directory. An empty string removes the
// current directory from the DLL search order.
func restoreSearchPath(searchPathState) {
	_ = windows.SetDllDirectory("")
}

func clearSearchPath() {
	_ = windows.SetDllDirectory("")
}

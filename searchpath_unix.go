//go:build !windows

// searchpath_unix.go: dynamic loader search path handling for unix systems
//
// The loader variable is snapshotted before plugin code runs and put back
// afterwards, both in the Go environment and in the C library environment
// native plugins write to. The dynamic loader reads the variable once at
// process start, so this does not steer dlopen itself: it keeps one
// plugin's change from reaching later plugin code and child processes.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"os"
	"runtime"
)

// searchPathState is the loader environment variable as seen before a
// plugin section, on the Go side and on the C side.
type searchPathState struct {
	value string
	set   bool

	cValue string
	cSet   bool
	cBound bool
}

func searchPathVariable() string {
	if runtime.GOOS == "darwin" {
		return "DYLD_LIBRARY_PATH"
	}
	return "LD_LIBRARY_PATH"
}

func captureSearchPath() searchPathState {
	name := searchPathVariable()
	s := searchPathState{}
	s.value, s.set = os.LookupEnv(name)
	s.cValue, s.cSet, s.cBound = cLookupEnv(name)
	return s
}

// restoreSearchPath puts the Go side back first: with cgo enabled os.Setenv
// also writes the C environment, which is then corrected to its own
// snapshot.
func restoreSearchPath(s searchPathState) {
	name := searchPathVariable()
	if cur, ok := os.LookupEnv(name); ok != s.set || cur != s.value {
		if s.set {
			_ = os.Setenv(name, s.value)
		} else {
			_ = os.Unsetenv(name)
		}
	}

	if !s.cBound {
		return
	}
	if cur, ok, _ := cLookupEnv(name); ok == s.cSet && cur == s.cValue {
		return
	}
	if s.cSet {
		cSetenv(name, s.cValue)
		return
	}
	cUnsetenv(name)
}

// clearSearchPath removes the variable from both environments for the
// duration of a module load, so initializers of the loaded module see no
// directories an earlier plugin added.
func clearSearchPath() {
	name := searchPathVariable()
	_ = os.Unsetenv(name)
	cUnsetenv(name)
}

// panic_recovery.go: panic recovery for host-owned goroutines
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"runtime"
	"sync/atomic"
)

// recoveredPanics counts panics swallowed by withStackRecover.
var recoveredPanics atomic.Int64

// withStackRecover returns a func to be deferred at the top of a goroutine
// the host does not control the caller of, such as a file watcher callback.
// A panic is logged with its stack and the goroutine returns normally.
//
//	go func() {
//	    defer withStackRecover(logger, "skin_watcher")()
//	    ...
//	}()
func withStackRecover(logger Logger, component string) func() {
	return func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)
			total := recoveredPanics.Add(1)
			logger.Error("Panic recovered",
				"panic", r,
				"component", component,
				"total_panics", total,
				"stack", string(buf[:n]))
		}
	}
}

// RecoveredPanics returns how many panics host goroutines have recovered
// from since the process started.
func RecoveredPanics() int64 {
	return recoveredPanics.Load()
}

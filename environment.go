// environment.go: scoped restoration of process state around plugin calls
//
// Plugin entry points run foreign code in our process. They may change the
// working directory or the dynamic-library search path for their own needs,
// and neither may leak into the host or into other plugin instances. Every
// call into plugin code therefore runs inside enterPluginCode, which
// snapshots both and restores them on every exit path, panics included.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"os"
	"sync"
)

// pluginCallMu serializes every section of code that enters a plugin. The
// guarded state is process-global, so a per-instance lock would not do.
var pluginCallMu sync.Mutex

// environmentSnapshot holds the process state restored after a plugin call.
type environmentSnapshot struct {
	workingDir string
	searchPath searchPathState
}

func captureEnvironment() environmentSnapshot {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	return environmentSnapshot{
		workingDir: wd,
		searchPath: captureSearchPath(),
	}
}

func (s environmentSnapshot) restore() {
	if s.workingDir != "" {
		if cwd, err := os.Getwd(); err != nil || cwd != s.workingDir {
			_ = os.Chdir(s.workingDir)
		}
	}
	restoreSearchPath(s.searchPath)
}

// enterPluginCode acquires the plugin call lock and snapshots the process
// environment. The returned func must be deferred; it restores the
// environment and releases the lock.
//
// With suppressSearchPath set, the library search path is cleared for the
// duration of the section so a module load cannot pick up dependencies from
// directories an earlier plugin added.
func enterPluginCode(suppressSearchPath bool) func() {
	pluginCallMu.Lock()
	snapshot := captureEnvironment()
	if suppressSearchPath {
		clearSearchPath()
	}
	return func() {
		snapshot.restore()
		pluginCallMu.Unlock()
	}
}

// withPluginCode runs fn inside a plugin call section.
func withPluginCode(fn func()) {
	defer enterPluginCode(false)()
	fn()
}

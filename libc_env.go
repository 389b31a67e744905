//go:build darwin || freebsd || linux

// libc_env.go: access to the C library environment
//
// Native plugins read and write the environment through libc. Without cgo
// the Go runtime keeps its own copy that libc never sees, so the hygiene
// guard reaches the C side directly.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
)

type libcEnv struct {
	getenv   func(name string) uintptr
	setenv   func(name, value string, overwrite int32) int32
	unsetenv func(name string) int32
}

var (
	libcOnce sync.Once
	libc     *libcEnv
)

func libcNames() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/usr/lib/libSystem.B.dylib"}
	case "freebsd":
		return []string{"libc.so.7"}
	default:
		return []string{"libc.so.6", "libc.so", "libc.musl-x86_64.so.1", "libc.musl-aarch64.so.1"}
	}
}

// loadLibcEnv binds getenv, setenv and unsetenv once. It returns nil when
// the C library cannot be reached.
func loadLibcEnv() *libcEnv {
	libcOnce.Do(func() {
		defer func() {
			if recover() != nil {
				libc = nil
			}
		}()
		for _, name := range libcNames() {
			handle, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
			if err != nil {
				continue
			}
			env := &libcEnv{}
			purego.RegisterLibFunc(&env.getenv, handle, "getenv")
			purego.RegisterLibFunc(&env.setenv, handle, "setenv")
			purego.RegisterLibFunc(&env.unsetenv, handle, "unsetenv")
			libc = env
			return
		}
	})
	return libc
}

// cLookupEnv reads name from the C environment. bound is false when libc
// is unavailable.
func cLookupEnv(name string) (value string, set, bound bool) {
	env := loadLibcEnv()
	if env == nil {
		return "", false, false
	}
	p := env.getenv(name)
	if p == 0 {
		return "", false, true
	}
	return goString(p), true, true
}

func cSetenv(name, value string) {
	if env := loadLibcEnv(); env != nil {
		env.setenv(name, value, 1)
	}
}

func cUnsetenv(name string) {
	if env := loadLibcEnv(); env != nil {
		env.unsetenv(name)
	}
}

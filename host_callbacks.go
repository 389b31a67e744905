//go:build darwin || freebsd || windows || (linux && (amd64 || arm64))

// host_callbacks.go: C-callable host surface for native plugins
//
// Native current-generation plugins cannot call HostFromHandle. A module
// that exports SetHostCallbacks receives, before Initialize, the address of
// a table of C function pointers that take the host handle as their first
// argument. The layout is declared in examples/native-plugin/plughost.h.
//
// Strings returned to the plugin stay valid until the same option is read
// again on the same handle or the measure is closed.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"math"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// nativeCallbacks mirrors PlughostCallbacks. Every slot is a function
// pointer; size lets plugins detect slots appended later.
type nativeCallbacks struct {
	size        uintptr
	readString  uintptr
	readPath    uintptr
	readFloat   uintptr
	readInt     uintptr
	log         uintptr
	measureName uintptr
	skinPath    uintptr
}

var (
	callbackTableOnce sync.Once
	callbackTable     nativeCallbacks
	callbackTableOK   bool
)

// hostCallbackTable returns the address of the process-wide callback
// table, or 0 when trampolines cannot be created on this platform.
func hostCallbackTable() uintptr {
	callbackTableOnce.Do(func() {
		defer func() {
			if recover() != nil {
				callbackTableOK = false
			}
		}()
		callbackTable = nativeCallbacks{
			size:        unsafe.Sizeof(nativeCallbacks{}),
			readString:  purego.NewCallback(cbReadString),
			readPath:    purego.NewCallback(cbReadPath),
			readFloat:   purego.NewCallback(cbReadFloat),
			readInt:     purego.NewCallback(cbReadInt),
			log:         purego.NewCallback(cbLog),
			measureName: purego.NewCallback(cbMeasureName),
			skinPath:    purego.NewCallback(cbSkinPath),
		}
		callbackTableOK = true
	})
	if !callbackTableOK {
		return 0
	}
	return uintptr(unsafe.Pointer(&callbackTable))
}

// callbackStrings holds the buffers handed out per handle so the garbage
// collector keeps them while the plugin may still read them.
var callbackStrings = struct {
	sync.Mutex
	byHandle map[uintptr]map[string][]byte
}{byHandle: make(map[uintptr]map[string][]byte)}

func keepCString(host uintptr, slot, s string) uintptr {
	buf := cBytes(s)
	callbackStrings.Lock()
	defer callbackStrings.Unlock()
	slots := callbackStrings.byHandle[host]
	if slots == nil {
		slots = make(map[string][]byte)
		callbackStrings.byHandle[host] = slots
	}
	slots[slot] = buf
	return uintptr(unsafe.Pointer(&buf[0]))
}

func releaseCallbackStrings(host uintptr) {
	callbackStrings.Lock()
	defer callbackStrings.Unlock()
	delete(callbackStrings.byHandle, host)
}

// A panic must not unwind into C.
func recoverCallback(result *uintptr) {
	if recover() != nil {
		*result = 0
	}
}

func cbReadString(host, key, def uintptr) (result uintptr) {
	defer recoverCallback(&result)
	api, ok := HostFromHandle(host)
	if !ok {
		return def
	}
	k := goString(key)
	return keepCString(host, "string:"+k, api.ReadString(k, goString(def)))
}

func cbReadPath(host, key, def uintptr) (result uintptr) {
	defer recoverCallback(&result)
	api, ok := HostFromHandle(host)
	if !ok {
		return def
	}
	k := goString(key)
	return keepCString(host, "path:"+k, api.ReadPath(k, goString(def)))
}

// cbReadFloat treats value as in/out: it holds the default on entry and the
// option on return. It returns 1 when the option was present and numeric.
func cbReadFloat(host, key, value uintptr) (result uintptr) {
	defer recoverCallback(&result)
	api, ok := HostFromHandle(host)
	if !ok || value == 0 {
		return 0
	}
	out := (*float64)(*(*unsafe.Pointer)(unsafe.Pointer(&value)))
	v := api.ReadFloat(goString(key), math.NaN())
	if math.IsNaN(v) {
		return 0
	}
	*out = v
	return 1
}

func cbReadInt(host, key, def uintptr) (result uintptr) {
	defer recoverCallback(&result)
	api, ok := HostFromHandle(host)
	if !ok {
		return def
	}
	return uintptr(api.ReadInt(goString(key), int(def)))
}

func cbLog(host, level, message uintptr) (result uintptr) {
	defer recoverCallback(&result)
	api, ok := HostFromHandle(host)
	if !ok {
		return 0
	}
	api.Log(LogLevel(int(level)), goString(message))
	return 1
}

func cbMeasureName(host uintptr) (result uintptr) {
	defer recoverCallback(&result)
	api, ok := HostFromHandle(host)
	if !ok {
		return 0
	}
	return keepCString(host, "name", api.MeasureName())
}

func cbSkinPath(host uintptr) (result uintptr) {
	defer recoverCallback(&result)
	api, ok := HostFromHandle(host)
	if !ok {
		return 0
	}
	return keepCString(host, "skin", api.SkinPath())
}

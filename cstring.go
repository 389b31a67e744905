// cstring.go: NUL-terminated string helpers for native calls
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import "unsafe"

// goString copies the NUL-terminated C string at p.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	base := *(*unsafe.Pointer)(unsafe.Pointer(&p))
	n := 0
	for *(*byte)(unsafe.Add(base, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(base), n))
}

// cBytes returns s as a NUL-terminated buffer. Embedded NULs truncate the
// string as C would read it.
func cBytes(s string) []byte {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return buf
}

//go:build !(darwin || freebsd || windows || (linux && (amd64 || arm64)))

// host_callbacks_other.go: platforms without callback trampolines
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

func hostCallbackTable() uintptr { return 0 }

func releaseCallbackStrings(uintptr) {}

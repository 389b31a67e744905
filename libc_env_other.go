//go:build !darwin && !freebsd && !linux && !windows

// libc_env_other.go: C environment access where libc is not bound
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

func cLookupEnv(string) (value string, set, bound bool) { return "", false, false }

func cSetenv(string, string) {}

func cUnsetenv(string) {}

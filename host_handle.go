// host_handle.go: host callback surface exposed to current-generation plugins
//
// Current-generation entry points receive a host handle. The handle is a
// plain integer so it crosses any ABI unchanged; Go plugins resolve it with
// HostFromHandle to read their options and log through the host, native
// plugins pass it back through the table SetHostCallbacks delivers.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// LogLevel is the severity of a message a plugin logs through the host.
type LogLevel int

const (
	LogLevelError LogLevel = iota + 1
	LogLevelWarning
	LogLevelNotice
	LogLevelDebug
)

// HostAPI is what a plugin can ask of the measure that hosts it.
type HostAPI interface {
	// MeasureName returns the section name of the hosting measure.
	MeasureName() string

	// SkinPath returns the configuration file the measure was read from.
	SkinPath() string

	// ReadString reads an option of the measure section.
	ReadString(key, def string) string

	// ReadFloat reads a numeric option, returning def when absent or malformed.
	ReadFloat(key string, def float64) float64

	// ReadInt reads an integer option, returning def when absent or malformed.
	ReadInt(key string, def int) int

	// ReadPath reads a path option, resolving relative paths against the
	// directory of SkinPath.
	ReadPath(key, def string) string

	// Log writes a message to the host log on behalf of the plugin.
	Log(level LogLevel, message string)
}

var hostHandles = struct {
	sync.RWMutex
	next     uintptr
	byHandle map[uintptr]HostAPI
}{byHandle: make(map[uintptr]HostAPI)}

// registerHostHandle issues a new non-zero handle for api.
func registerHostHandle(api HostAPI) uintptr {
	hostHandles.Lock()
	defer hostHandles.Unlock()
	hostHandles.next++
	h := hostHandles.next
	hostHandles.byHandle[h] = api
	return h
}

func releaseHostHandle(h uintptr) {
	hostHandles.Lock()
	delete(hostHandles.byHandle, h)
	hostHandles.Unlock()
	releaseCallbackStrings(h)
}

// HostFromHandle resolves a host handle passed to a plugin entry point.
// It fails once the owning measure has been closed.
func HostFromHandle(h uintptr) (HostAPI, bool) {
	hostHandles.RLock()
	defer hostHandles.RUnlock()
	api, ok := hostHandles.byHandle[h]
	return api, ok
}

// measureHost implements HostAPI for a PluginMeasure.
type measureHost struct {
	m *PluginMeasure
}

func (h measureHost) MeasureName() string { return h.m.Name() }

func (h measureHost) SkinPath() string { return h.m.skinPath }

func (h measureHost) ReadString(key, def string) string {
	if h.m.section == nil {
		return def
	}
	return h.m.section.ReadString(key, def)
}

func (h measureHost) ReadFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(h.ReadString(key, ""))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func (h measureHost) ReadInt(key string, def int) int {
	raw := strings.TrimSpace(h.ReadString(key, ""))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return def
		}
		return int(f)
	}
	return v
}

func (h measureHost) ReadPath(key, def string) string {
	p := h.ReadString(key, def)
	if p == "" || filepath.IsAbs(p) || h.m.skinPath == "" {
		return p
	}
	return filepath.Join(filepath.Dir(h.m.skinPath), p)
}

func (h measureHost) Log(level LogLevel, message string) {
	logger := h.m.logger
	switch level {
	case LogLevelError:
		logger.Error(message, "source", "plugin")
	case LogLevelWarning:
		logger.Warn(message, "source", "plugin")
	case LogLevelDebug:
		logger.Debug(message, "source", "plugin")
	default:
		logger.Info(message, "source", "plugin")
	}
}

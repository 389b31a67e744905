// builtin.go: modules compiled into the plughost binary
//
// With --format static the plugin roots are served from the built-in
// registry instead of the file system. Two modules are provided, one per
// calling convention, so skins can be tried without building a plugin.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
	"github.com/agilira/plughost"
)

// registerBuiltins registers the built-in modules under root.
func registerBuiltins(registry *plughost.StaticRegistry, root string) {
	registry.Register(filepath.Join(root, "Uptime"), uptimeModule())
	registry.Register(filepath.Join(root, "Clock"), clockModule())
}

// uptimeModule is a legacy module reporting seconds since Initialize.
func uptimeModule() plughost.Symbols {
	var (
		mu      sync.Mutex
		started = map[uint32]time.Time{}
	)
	elapsed := func(id uint32) time.Duration {
		mu.Lock()
		defer mu.Unlock()
		return timecache.CachedTime().Sub(started[id])
	}

	return plughost.Symbols{
		plughost.SymbolInitialize: func(module uintptr, filePath, section string, id uint32) float64 {
			mu.Lock()
			defer mu.Unlock()
			started[id] = timecache.CachedTime()
			return 0
		},
		plughost.SymbolUpdate: func(id uint32) float64 {
			return elapsed(id).Seconds()
		},
		plughost.SymbolGetString: func(id, flags uint32) string {
			return elapsed(id).Truncate(time.Second).String()
		},
		plughost.SymbolFinalize: func(module uintptr, id uint32) {
			mu.Lock()
			defer mu.Unlock()
			delete(started, id)
		},
	}
}

// clockModule is a current-generation module reporting a field of the
// current time. Options: Field (second, minute or hour) and Format (a Go
// time layout for the string value). The Offset command shifts the clock
// by a duration.
func clockModule() plughost.Symbols {
	type clock struct {
		field  string
		layout string
		offset time.Duration
	}
	var (
		mu     sync.Mutex
		clocks = map[uintptr]*clock{}
	)
	get := func(data uintptr) *clock {
		mu.Lock()
		defer mu.Unlock()
		return clocks[data]
	}
	now := func(c *clock) time.Time { return timecache.CachedTime().Add(c.offset) }

	return plughost.Symbols{
		plughost.SymbolInitialize: func(data *uintptr, host uintptr) {
			mu.Lock()
			defer mu.Unlock()
			clocks[*data] = &clock{}
		},
		plughost.SymbolReload: func(data, host uintptr, maxValue *float64) {
			c := get(data)
			api, ok := plughost.HostFromHandle(host)
			if c == nil || !ok {
				return
			}
			c.field = strings.ToLower(api.ReadString("Field", "second"))
			c.layout = api.ReadString("Format", time.TimeOnly)
			switch c.field {
			case "hour":
				*maxValue = 23
			case "minute", "second":
				*maxValue = 59
			default:
				api.Log(plughost.LogLevelWarning, fmt.Sprintf("unknown Field %q, using second", c.field))
				c.field = "second"
				*maxValue = 59
			}
		},
		plughost.SymbolUpdate: func(data uintptr) float64 {
			c := get(data)
			if c == nil {
				return 0
			}
			t := now(c)
			switch c.field {
			case "hour":
				return float64(t.Hour())
			case "minute":
				return float64(t.Minute())
			default:
				return float64(t.Second())
			}
		},
		plughost.SymbolGetString: func(data uintptr) string {
			c := get(data)
			if c == nil {
				return ""
			}
			return now(c).Format(c.layout)
		},
		plughost.SymbolExecuteBang: func(data uintptr, command string) {
			c := get(data)
			name, arg, _ := strings.Cut(strings.TrimSpace(command), " ")
			if c == nil || !strings.EqualFold(name, "Offset") {
				return
			}
			if d, err := time.ParseDuration(strings.TrimSpace(arg)); err == nil {
				c.offset = d
			}
		},
		plughost.SymbolFinalize: func(data uintptr) {
			mu.Lock()
			defer mu.Unlock()
			delete(clocks, data)
		},
	}
}

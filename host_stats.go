// host_stats.go: runtime counters of a Host
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// HostStats is a point-in-time snapshot of host activity.
type HostStats struct {
	Measures       int       `json:"measures"`
	ModulesLoaded  int64     `json:"modules_loaded"`
	LoadFailures   int64     `json:"load_failures"`
	Reloads        int64     `json:"reloads"`
	Finalized      int64     `json:"finalized"`
	UpdateCycles   int64     `json:"update_cycles"`
	Commands       int64     `json:"commands"`
	StartedAt      time.Time `json:"started_at"`
	LastUpdateTime time.Time `json:"last_update_time"`
}

// hostMetrics tracks host activity with lock-free counters.
type hostMetrics struct {
	modulesLoaded atomic.Int64
	loadFailures  atomic.Int64
	reloads       atomic.Int64
	finalized     atomic.Int64
	updateCycles  atomic.Int64
	commands      atomic.Int64

	startedAt      int64
	lastUpdateNano atomic.Int64
}

func newHostMetrics() *hostMetrics {
	return &hostMetrics{startedAt: timecache.CachedTimeNano()}
}

func (m *hostMetrics) recordCycle() time.Time {
	m.updateCycles.Add(1)
	now := timecache.CachedTimeNano()
	m.lastUpdateNano.Store(now)
	return time.Unix(0, now)
}

func (m *hostMetrics) snapshot(measures int) HostStats {
	stats := HostStats{
		Measures:      measures,
		ModulesLoaded: m.modulesLoaded.Load(),
		LoadFailures:  m.loadFailures.Load(),
		Reloads:       m.reloads.Load(),
		Finalized:     m.finalized.Load(),
		UpdateCycles:  m.updateCycles.Load(),
		Commands:      m.commands.Load(),
		StartedAt:     time.Unix(0, m.startedAt),
	}
	if last := m.lastUpdateNano.Load(); last != 0 {
		stats.LastUpdateTime = time.Unix(0, last)
	}
	return stats
}

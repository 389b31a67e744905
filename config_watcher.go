// config_watcher.go: skin file hot reload powered by Argus
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// SkinWatcher reloads a Host whenever its skin file changes.
//
// Usage example:
//
//	watcher, err := NewSkinWatcher(host, "skin.ini", time.Second, logger)
//	if err != nil {
//	    return err
//	}
//	if err := watcher.Start(); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
type SkinWatcher struct {
	host     *Host
	watcher  *argus.Watcher
	skinPath string
	logger   Logger

	enabled  atomic.Bool
	mu       sync.Mutex
	stopOnce sync.Once
	stopped  atomic.Bool

	reloads  atomic.Int64
	failures atomic.Int64
}

// NewSkinWatcher creates a watcher for skinPath. It does nothing until Start.
func NewSkinWatcher(host *Host, skinPath string, pollInterval time.Duration, logger any) (*SkinWatcher, error) {
	if host == nil {
		return nil, NewConfigWatcherError("host is required", fmt.Errorf("nil host"))
	}
	if pollInterval <= 0 {
		return nil, NewConfigValidationError(fmt.Sprintf("poll_interval must be positive, got %s", pollInterval), nil)
	}
	internalLogger := NewLogger(logger)

	watcher := argus.New(argus.Config{
		PollInterval:         pollInterval,
		CacheTTL:             pollInterval / 2,
		MaxWatchedFiles:      1,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, path string) {
			internalLogger.Error("Skin file watching error", "error", err, "file", path)
		},
	})

	return &SkinWatcher{
		host:     host,
		watcher:  watcher,
		skinPath: skinPath,
		logger:   internalLogger,
	}, nil
}

// Start begins watching the skin file.
func (sw *SkinWatcher) Start() error {
	if sw.stopped.Load() {
		return NewConfigWatcherError("skin watcher has been stopped and cannot be restarted", fmt.Errorf("stopped"))
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	if !sw.enabled.CompareAndSwap(false, true) {
		return NewConfigWatcherError("skin watcher is already running", fmt.Errorf("running"))
	}
	if err := sw.watcher.Watch(sw.skinPath, sw.handleChange); err != nil {
		sw.enabled.Store(false)
		return NewConfigWatcherError("failed to watch skin file", err)
	}
	if err := sw.watcher.Start(); err != nil {
		sw.enabled.Store(false)
		return NewConfigWatcherError("failed to start Argus watcher", err)
	}

	sw.logger.Info("Skin watcher started", "skin", sw.skinPath)
	return nil
}

// Stop stops watching. Only the first call has an effect.
func (sw *SkinWatcher) Stop() error {
	var stopErr error
	sw.stopOnce.Do(func() {
		sw.mu.Lock()
		defer sw.mu.Unlock()

		sw.stopped.Store(true)
		if !sw.enabled.CompareAndSwap(true, false) {
			return
		}
		if err := sw.watcher.Stop(); err != nil {
			stopErr = NewConfigWatcherError("failed to stop Argus watcher", err)
			return
		}
		sw.logger.Info("Skin watcher stopped", "skin", sw.skinPath)
	})
	return stopErr
}

// IsRunning reports whether the watcher is active.
func (sw *SkinWatcher) IsRunning() bool {
	return sw.enabled.Load() && !sw.stopped.Load()
}

// Reloads returns how many reloads succeeded and failed.
func (sw *SkinWatcher) Reloads() (succeeded, failed int64) {
	return sw.reloads.Load(), sw.failures.Load()
}

func (sw *SkinWatcher) handleChange(event argus.ChangeEvent) {
	defer withStackRecover(sw.logger, "skin_watcher")()

	sw.logger.Debug("Skin file change detected",
		"path", event.Path,
		"mod_time", event.ModTime,
		"size", event.Size,
		"is_create", event.IsCreate,
		"is_delete", event.IsDelete,
		"is_modify", event.IsModify)

	if event.IsDelete {
		sw.logger.Warn("Skin file was deleted, keeping current measures", "path", event.Path)
		return
	}
	sw.reload(event.Path)
}

// reload parses path and applies it to the host. A skin that fails to parse
// leaves the running measures untouched.
func (sw *SkinWatcher) reload(path string) {
	cfg, err := LoadSkinConfig(path)
	if err != nil {
		sw.failures.Add(1)
		sw.logger.Error("Skin reload failed", "path", path, "error", err)
		return
	}
	if err := sw.host.Reload(cfg); err != nil {
		sw.failures.Add(1)
		sw.logger.Error("Skin reload failed", "path", path, "error", err)
		return
	}
	sw.reloads.Add(1)
	sw.logger.Info("Skin reloaded", "path", path)
}

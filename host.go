// host.go: runtime driving every plugin measure of a skin
//
// A Host owns the measures configured by one skin file. It creates a
// PluginMeasure for each section with Measure=Plugin, re-applies options
// when the skin changes, samples every measure once per update cycle and
// routes commands. All entry points are serialized so a file watcher, an
// update ticker and command callers can share one Host.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// Sample is the outcome of one update of one measure.
type Sample struct {
	Section   string    `json:"section"`
	Value     float64   `json:"value"`
	MaxValue  float64   `json:"max_value"`
	String    string    `json:"string,omitempty"`
	HasString bool      `json:"has_string"`
	Time      time.Time `json:"time"`
}

// MeasureInfo describes a hosted measure.
type MeasureInfo struct {
	Section          string      `json:"section"`
	Module           string      `json:"module"`
	Path             string      `json:"path,omitempty"`
	State            string      `json:"state"`
	LoadFailed       bool        `json:"load_failed"`
	Generation       string      `json:"generation"`
	InstanceID       uint32      `json:"instance_id"`
	HasInstanceID    bool        `json:"has_instance_id"`
	EntryPoints      EntryPoints `json:"entry_points"`
	UsesUpdateLegacy bool        `json:"uses_update2"`
	MaxValue         float64     `json:"max_value"`
	LogMaxValue      bool        `json:"log_max_value"`
}

// HostOption customizes a Host.
type HostOption func(*Host)

// WithOpener replaces the opener selected by HostSettings.ModuleFormat.
func WithOpener(opener Opener) HostOption {
	return func(h *Host) { h.opener = opener }
}

// Host runs the plugin measures of a skin.
type Host struct {
	mu       sync.Mutex
	settings HostSettings
	opener   Opener
	loader   *ModuleLoader
	logger   Logger
	metrics  *hostMetrics
	audit    *argus.AuditLogger

	skinPath string
	measures []*PluginMeasure
	byName   map[string]*PluginMeasure
	closed   bool
}

// NewHost validates settings and creates an empty host. logger may be nil.
func NewHost(settings HostSettings, logger any, opts ...HostOption) (*Host, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	h := &Host{
		settings: settings,
		logger:   NewLogger(logger),
		metrics:  newHostMetrics(),
		byName:   make(map[string]*PluginMeasure),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.opener == nil {
		format, err := ParseModuleFormat(settings.ModuleFormat)
		if err != nil {
			return nil, err
		}
		if h.opener, err = OpenerFor(format); err != nil {
			return nil, err
		}
	}
	h.loader = NewModuleLoader(settings.Roots(), h.opener, h.logger)

	if err := h.setupAudit(); err != nil {
		return nil, err
	}

	h.logger.Info("Plugin host created",
		"plugin_path", settings.PluginPath,
		"user_plugin_path", settings.UserPluginPath,
		"module_format", settings.ModuleFormat)
	return h, nil
}

func (h *Host) setupAudit() error {
	if h.settings.AuditFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.settings.AuditFile), 0750); err != nil {
		return NewAuditError("failed to create audit directory", err)
	}
	auditor, err := argus.NewAuditLogger(argus.AuditConfig{
		Enabled:       true,
		OutputFile:    h.settings.AuditFile,
		MinLevel:      argus.AuditInfo,
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
		IncludeStack:  false,
	})
	if err != nil {
		return NewAuditError("failed to create audit logger", err)
	}
	h.audit = auditor
	h.logger.Info("Plugin audit logging enabled", "file", h.settings.AuditFile)
	return nil
}

func (h *Host) auditEvent(event string, m *PluginMeasure, extra map[string]interface{}) {
	if h.audit == nil {
		return
	}
	ctx := map[string]interface{}{
		"section": m.Name(),
		"module":  m.ModuleName(),
		"skin":    h.skinPath,
	}
	for k, v := range extra {
		ctx[k] = v
	}
	h.audit.LogSecurityEvent(event, "Plugin module lifecycle event", ctx)
}

func (h *Host) measureHooks() MeasureHooks {
	return MeasureHooks{
		OnLoaded: func(m *PluginMeasure) {
			h.metrics.modulesLoaded.Add(1)
			h.auditEvent("plugin_loaded", m, map[string]interface{}{
				"path":       m.ModulePath(),
				"generation": m.Generation().String(),
			})
		},
		OnLoadFailed: func(m *PluginMeasure, err error) {
			h.metrics.loadFailures.Add(1)
			h.auditEvent("plugin_load_failed", m, map[string]interface{}{"error": err.Error()})
		},
		OnReloaded: func(m *PluginMeasure) {
			h.metrics.reloads.Add(1)
		},
		OnFinalized: func(m *PluginMeasure) {
			h.metrics.finalized.Add(1)
			h.auditEvent("plugin_unloaded", m, map[string]interface{}{"path": m.ModulePath()})
		},
	}
}

// LoadSkin creates and initializes the plugin measures of cfg. Calling it
// again behaves like Reload.
func (h *Host) LoadSkin(cfg *SkinConfig) error {
	return h.Reload(cfg)
}

// Reload applies cfg to the host. Existing measures re-read their options,
// sections new to cfg get a fresh measure and measures whose section is gone
// are finalized. A measure whose Plugin option names a different module is
// finalized and recreated.
func (h *Host) Reload(cfg *SkinConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return NewConfigValidationError("host is closed", nil)
	}
	h.skinPath = cfg.Path()

	next := make([]*PluginMeasure, 0, len(h.measures))
	nextByName := make(map[string]*PluginMeasure, len(h.measures))
	created := 0

	for _, section := range cfg.PluginSections() {
		key := strings.ToLower(section.Name())
		if _, dup := nextByName[key]; dup {
			h.logger.Warn("Duplicate measure section ignored", "section", section.Name())
			continue
		}

		m, exists := h.byName[key]
		if exists && !strings.EqualFold(BareModuleName(section.ReadString(OptionPlugin, "")), m.ModuleName()) {
			h.closeMeasure(m)
			exists = false
		}
		if !exists {
			m = NewPluginMeasure(section.Name(), h.loader, MeasureOptions{
				SkinPath: cfg.Path(),
				Logger:   h.logger,
				Hooks:    h.measureHooks(),
			})
			created++
		}
		m.ReadOptions(section)

		next = append(next, m)
		nextByName[key] = m
	}

	removed := 0
	for key, m := range h.byName {
		if nextByName[key] != m && m.State() != StateFinalized {
			h.closeMeasure(m)
			removed++
		}
	}

	h.measures = next
	h.byName = nextByName
	h.logger.Info("Skin applied",
		"skin", cfg.Path(),
		"measures", len(next),
		"created", created,
		"removed", removed)
	return nil
}

func (h *Host) closeMeasure(m *PluginMeasure) {
	if err := m.Close(); err != nil {
		h.logger.Warn("Plugin unload failed", "section", m.Name(), "error", err)
	}
}

// Update runs one update cycle over every measure in skin order.
func (h *Host) Update() []Sample {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	now := h.metrics.recordCycle()
	samples := make([]Sample, 0, len(h.measures))
	for _, m := range h.measures {
		value := m.UpdateValue()
		str, ok := m.StringValue()
		samples = append(samples, Sample{
			Section:   m.Name(),
			Value:     value,
			MaxValue:  m.MaxValue(),
			String:    str,
			HasString: ok,
			Time:      now,
		})
	}
	return samples
}

// Run updates every UpdateInterval until ctx is done, handing each cycle's
// samples to onSample. The first cycle runs immediately.
func (h *Host) Run(ctx context.Context, onSample func([]Sample)) error {
	ticker := time.NewTicker(h.settings.UpdateInterval)
	defer ticker.Stop()

	for {
		samples := h.Update()
		if onSample != nil && samples != nil {
			onSample(samples)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Command routes a command to the measure configured under section.
func (h *Host) Command(section, command string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.byName[strings.ToLower(section)]
	if !ok {
		return NewUnknownSectionError(section)
	}
	if m.State() == StateFinalized {
		return NewMeasureFinalizedError(section)
	}
	h.metrics.commands.Add(1)
	m.Command(command)
	return nil
}

// Measure returns the measure configured under section.
func (h *Host) Measure(section string) (*PluginMeasure, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.byName[strings.ToLower(section)]
	return m, ok
}

// Describe reports the state of every measure in skin order.
func (h *Host) Describe() []MeasureInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	infos := make([]MeasureInfo, 0, len(h.measures))
	for _, m := range h.measures {
		id, hasID := m.InstanceID()
		infos = append(infos, MeasureInfo{
			Section:          m.Name(),
			Module:           m.ModuleName(),
			Path:             m.ModulePath(),
			State:            m.State().String(),
			LoadFailed:       m.LoadFailed(),
			Generation:       m.Generation().String(),
			InstanceID:       id,
			HasInstanceID:    hasID,
			EntryPoints:      m.EntryPoints(),
			UsesUpdateLegacy: m.UsesSecondaryUpdateEntry(),
			MaxValue:         m.MaxValue(),
			LogMaxValue:      m.LogMaxValue(),
		})
	}
	return infos
}

// Stats returns a snapshot of host counters.
func (h *Host) Stats() HostStats {
	h.mu.Lock()
	n := len(h.measures)
	h.mu.Unlock()
	return h.metrics.snapshot(n)
}

// Close finalizes every measure in skin order and releases the audit log.
// It is idempotent.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	var errs []error
	for _, m := range h.measures {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.measures = nil
	h.byName = make(map[string]*PluginMeasure)

	if h.audit != nil {
		if err := h.audit.Close(); err != nil {
			errs = append(errs, NewAuditError("failed to close audit logger", err))
		}
		h.audit = nil
	}
	h.logger.Info("Plugin host closed")
	return stderrors.Join(errs...)
}

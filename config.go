// config.go: option sections and host settings
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Section is a named group of options, the unit a measure is configured by.
// Keys are matched case-insensitively.
type Section interface {
	Name() string
	ReadString(key, def string) string
}

// MapSection is a Section backed by a map.
type MapSection struct {
	name   string
	values map[string]string
	keys   []string
}

// NewMapSection creates a section from values. Keys are folded to lower
// case; later duplicates win.
func NewMapSection(name string, values map[string]string) *MapSection {
	s := &MapSection{name: name, values: make(map[string]string, len(values))}
	for k, v := range values {
		s.Set(k, v)
	}
	return s
}

// Name implements Section.
func (s *MapSection) Name() string { return s.name }

// ReadString implements Section. Empty values read as def.
func (s *MapSection) ReadString(key, def string) string {
	if v, ok := s.values[strings.ToLower(key)]; ok && v != "" {
		return v
	}
	return def
}

// Set stores an option.
func (s *MapSection) Set(key, value string) {
	lk := strings.ToLower(key)
	if _, exists := s.values[lk]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[lk] = value
}

// Keys returns the option keys in insertion order.
func (s *MapSection) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// HostSettings configures a Host.
type HostSettings struct {
	// PluginPath is the primary plugin root.
	PluginPath string `json:"plugin_path" yaml:"plugin_path"`

	// UserPluginPath is the optional secondary plugin root.
	UserPluginPath string `json:"user_plugin_path,omitempty" yaml:"user_plugin_path,omitempty"`

	// ModuleFormat selects the module opener: native, go or static.
	ModuleFormat string `json:"module_format" yaml:"module_format"`

	// UpdateInterval is the period of the update cycle driven by Host.Run.
	UpdateInterval time.Duration `json:"update_interval" yaml:"update_interval"`

	// AuditFile, when set, receives an argus audit record for every module
	// load, load failure and unload.
	AuditFile string `json:"audit_file,omitempty" yaml:"audit_file,omitempty"`

	// WatchConfig reloads the skin file when it changes.
	WatchConfig bool `json:"watch_config" yaml:"watch_config"`

	// PollInterval is the argus polling period used when WatchConfig is set.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
}

// DefaultHostSettings returns settings with the plugin root next to the
// executable and a one second update cycle.
func DefaultHostSettings() HostSettings {
	root := "Plugins"
	if exe, err := os.Executable(); err == nil {
		root = filepath.Join(filepath.Dir(exe), "Plugins")
	}
	return HostSettings{
		PluginPath:     root,
		ModuleFormat:   string(ModuleFormatNative),
		UpdateInterval: time.Second,
		WatchConfig:    false,
		PollInterval:   time.Second,
	}
}

// Validate checks the settings for consistency.
func (s HostSettings) Validate() error {
	if strings.TrimSpace(s.PluginPath) == "" {
		return NewConfigValidationError("plugin_path is required", nil)
	}
	if _, err := ParseModuleFormat(s.ModuleFormat); err != nil {
		return NewConfigValidationError("module_format", err)
	}
	if s.UpdateInterval <= 0 {
		return NewConfigValidationError(fmt.Sprintf("update_interval must be positive, got %s", s.UpdateInterval), nil)
	}
	if s.WatchConfig && s.PollInterval <= 0 {
		return NewConfigValidationError(fmt.Sprintf("poll_interval must be positive, got %s", s.PollInterval), nil)
	}
	return nil
}

// Roots returns the plugin search roots of the settings.
func (s HostSettings) Roots() Roots {
	return Roots{Primary: s.PluginPath, User: s.UserPluginPath}
}

// LoadHostSettings reads YAML host settings from path on top of
// DefaultHostSettings, expands ${VAR} references in the path settings and
// validates the result. Environment overrides are not applied.
func LoadHostSettings(path string) (HostSettings, error) {
	settings := DefaultHostSettings()

	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		return settings, NewConfigNotFoundError(path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, NewConfigParseError(path, err)
	}

	settings.PluginPath = expandValue(settings.PluginPath)
	settings.UserPluginPath = expandValue(settings.UserPluginPath)
	settings.AuditFile = expandValue(settings.AuditFile)

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

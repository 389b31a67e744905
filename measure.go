// measure.go: lifecycle of a measure backed by a plugin module
//
// A PluginMeasure walks Unloaded → Loaded → Initialized → Finalized. The
// first ReadOptions pass loads the module, resolves its entry points and
// initializes it; later passes only re-apply configuration, which legacy
// modules do not support. A module that cannot be found leaves the measure
// inert for its whole lifetime.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

// OptionPlugin is the section key naming the plugin module.
const OptionPlugin = "Plugin"

// State is the lifecycle state of a PluginMeasure.
type State int

const (
	// StateUnloaded is the state before a module has been loaded, and the
	// permanent state of a measure whose module could not be found.
	StateUnloaded State = iota
	// StateLoaded means the module is open and its entry points resolved.
	StateLoaded
	// StateInitialized means the module has been initialized and can be
	// updated, queried and commanded.
	StateInitialized
	// StateFinalized means the module has been finalized and unloaded.
	StateFinalized
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateInitialized:
		return "initialized"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// MeasureHooks observe lifecycle transitions. Every hook is optional.
type MeasureHooks struct {
	OnLoaded     func(m *PluginMeasure)
	OnLoadFailed func(m *PluginMeasure, err error)
	OnReloaded   func(m *PluginMeasure)
	OnFinalized  func(m *PluginMeasure)
}

// MeasureOptions configures a PluginMeasure.
type MeasureOptions struct {
	// SkinPath is the configuration file the measure is defined in. Legacy
	// modules receive it in Initialize.
	SkinPath string

	// Logger receives diagnostics. May be nil.
	Logger any

	// CommandFallback handles commands when the module exports no command
	// entry point. Defaults to MeasureBase.Command.
	CommandFallback func(command string)

	Hooks MeasureHooks
}

// PluginMeasure is a measure whose values come from a plugin module.
//
// It is driven from one goroutine. Calls into the module are additionally
// serialized host-wide, see enterPluginCode.
type PluginMeasure struct {
	MeasureBase

	loader   *ModuleLoader
	skinPath string
	section  Section
	hooks    MeasureHooks
	fallback func(command string)

	state      State
	loadFailed bool
	module     Module
	moduleName string
	abi        abiBinding
	instanceID uint32
	hostHandle uintptr

	// reportedMax is the maximum the module last reported.
	reportedMax float64
}

// NewPluginMeasure creates a measure for section name. Nothing is loaded
// until the first ReadOptions call.
func NewPluginMeasure(name string, loader *ModuleLoader, opts MeasureOptions) *PluginMeasure {
	logger := NewLogger(opts.Logger).With("measure", name)
	m := &PluginMeasure{
		MeasureBase: newMeasureBase(name, logger),
		loader:      loader,
		skinPath:    opts.SkinPath,
		hooks:       opts.Hooks,
	}
	m.fallback = opts.CommandFallback
	if m.fallback == nil {
		m.fallback = m.MeasureBase.Command
	}
	return m
}

// ReadOptions applies section to the measure. It is called on every
// configuration (re)load: the first call loads and initializes the module,
// later calls reload it.
func (m *PluginMeasure) ReadOptions(section Section) {
	m.section = section
	m.readOptions(section)

	switch {
	case m.state == StateFinalized:
		return
	case m.loadFailed:
		m.applyMaxOverride()
		return
	case m.state == StateInitialized:
		m.reload()
		return
	}

	if err := m.load(section); err != nil {
		m.fail(err)
		return
	}
	if err := m.initialize(); err != nil {
		m.unload()
		m.fail(err)
	}
}

// fail leaves the measure inert after a load or initialization error.
func (m *PluginMeasure) fail(err error) {
	m.loadFailed = true
	m.applyMaxOverride()
	switch {
	case HasErrorCode(err, ErrCodeInvalidPluginReference):
		m.logger.Error("Invalid plugin reference",
			"reference", m.section.ReadString(OptionPlugin, ""),
			"section", m.name,
			"error", err)
	case HasErrorCode(err, ErrCodeInstanceIDsSpent):
		m.logger.Error("Plugin not initialized",
			"module", m.moduleName,
			"section", m.name,
			"error", err)
	default:
		m.logger.Error("Plugin not found",
			"module", m.moduleName,
			"section", m.name,
			"error", err)
	}
	if m.hooks.OnLoadFailed != nil {
		m.hooks.OnLoadFailed(m, err)
	}
}

// unload closes a module that was opened but never initialized.
func (m *PluginMeasure) unload() {
	if m.module == nil {
		return
	}
	var err error
	withPluginCode(func() {
		err = m.module.Close()
	})
	if err != nil {
		m.logger.Warn("Plugin unload failed", "module", m.moduleName, "error", err)
	}
	m.module = nil
	m.abi = nil
	m.state = StateUnloaded
}

// load opens the module and resolves its entry points with the library
// search path suppressed.
func (m *PluginMeasure) load(section Section) (err error) {
	defer enterPluginCode(true)()

	module, bare, err := m.loader.Load(m.name, section.ReadString(OptionPlugin, ""))
	m.moduleName = bare
	if err != nil {
		return err
	}
	m.module = module
	m.abi = resolveEntryPoints(module, m.logger)
	m.state = StateLoaded
	return nil
}

func (m *PluginMeasure) initialize() error {
	id, ok := allocateInstanceID()
	if !ok {
		return NewInstanceIDsSpentError(m.name)
	}
	m.instanceID = id
	m.hostHandle = registerHostHandle(measureHost{m: m})

	args := initializeArgs{
		module:   m.module.Handle(),
		filePath: m.skinPath,
		section:  m.name,
		id:       m.instanceID,
		host:     m.hostHandle,
	}
	withPluginCode(func() {
		m.reportedMax = m.abi.initialize(args)
	})
	m.state = StateInitialized
	m.inferMaxValue(m.reportedMax)

	m.logger.Info("Plugin initialized",
		"module", m.moduleName,
		"path", m.module.Path(),
		"generation", m.abi.generation().String(),
		"instance_id", m.instanceID,
		"max_value", m.maxValue)
	if m.hooks.OnLoaded != nil {
		m.hooks.OnLoaded(m)
	}
	return nil
}

// reload re-applies configuration to an initialized module. Legacy modules
// cannot be reconfigured and keep the scale computed at load.
func (m *PluginMeasure) reload() {
	if m.abi.generation() != GenerationCurrent {
		return
	}
	var reported float64
	var ran bool
	withPluginCode(func() {
		reported, ran = m.abi.reload(m.hostHandle, m.reportedMax)
	})
	if ran {
		m.reportedMax = reported
	}
	m.inferMaxValue(m.reportedMax)
	if m.hooks.OnReloaded != nil {
		m.hooks.OnReloaded(m)
	}
}

// UpdateValue takes one sample from the module. Without a module or an
// update entry point the previous value is returned unchanged.
func (m *PluginMeasure) UpdateValue() float64 {
	if m.state != StateInitialized {
		return m.value
	}
	var v float64
	var ran bool
	withPluginCode(func() {
		v, ran = m.abi.update()
	})
	if ran {
		m.value = v
	}
	return m.value
}

// StringValue asks the module for its string value. The second result is
// false when the module exports no string entry point or returned nothing.
func (m *PluginMeasure) StringValue() (string, bool) {
	if m.state != StateInitialized {
		return "", false
	}
	var s string
	var ok bool
	withPluginCode(func() {
		s, ok = m.abi.getString()
	})
	return s, ok
}

// Command sends command to the module, or to the fallback handler when the
// module exports no command entry point.
func (m *PluginMeasure) Command(command string) {
	if m.state == StateInitialized {
		var ran bool
		withPluginCode(func() {
			ran = m.abi.executeCommand(command)
		})
		if ran {
			return
		}
	}
	m.fallback(command)
}

// Close finalizes and unloads the module. It is idempotent; the measure is
// unusable afterwards.
func (m *PluginMeasure) Close() error {
	if m.state == StateFinalized {
		return nil
	}
	m.state = StateFinalized
	if m.module == nil {
		return nil
	}

	if m.abi != nil {
		withPluginCode(func() {
			m.abi.finalize()
		})
	}
	if m.hostHandle != 0 {
		releaseHostHandle(m.hostHandle)
		m.hostHandle = 0
	}

	var err error
	withPluginCode(func() {
		err = m.module.Close()
	})
	m.logger.Debug("Plugin finalized", "module", m.moduleName)
	if m.hooks.OnFinalized != nil {
		m.hooks.OnFinalized(m)
	}
	return err
}

// State returns the lifecycle state.
func (m *PluginMeasure) State() State { return m.state }

// LoadFailed reports whether the module could not be loaded. Such a
// measure stays inert until it is recreated.
func (m *PluginMeasure) LoadFailed() bool { return m.loadFailed }

// ModuleName returns the bare module file name from the Plugin option.
func (m *PluginMeasure) ModuleName() string { return m.moduleName }

// ModulePath returns the path the module was loaded from.
func (m *PluginMeasure) ModulePath() string {
	if m.module == nil {
		return ""
	}
	return m.module.Path()
}

// Generation returns the ABI generation of the loaded module.
func (m *PluginMeasure) Generation() Generation {
	if m.abi == nil {
		return GenerationUnknown
	}
	return m.abi.generation()
}

// EntryPoints reports which entry points the module provides.
func (m *PluginMeasure) EntryPoints() EntryPoints {
	if m.abi == nil {
		return EntryPoints{}
	}
	return m.abi.entryPoints()
}

// InstanceID returns the identifier drawn when the module was initialized.
// The second result is false before initialization.
func (m *PluginMeasure) InstanceID() (uint32, bool) {
	return m.instanceID, m.state == StateInitialized || (m.state == StateFinalized && m.abi != nil)
}

// UsesSecondaryUpdateEntry reports whether a legacy module lacked Update and
// the Update2 export was used instead.
func (m *PluginMeasure) UsesSecondaryUpdateEntry() bool {
	b, ok := m.abi.(*legacyBinding)
	return ok && b.usesUpdate2
}

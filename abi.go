// abi.go: the two plugin calling conventions behind one call surface
//
// Modules implement one of two mutually exclusive ABI generations. Legacy
// modules address their per-instance state with a numeric identifier that
// the host hands to every call; current modules hand the host an opaque
// context value during Initialize and get it back on every call. The
// generation is detected once when entry points are resolved and the
// measure talks to the module only through abiBinding afterwards.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

// Generation identifies the calling convention a module implements.
type Generation int

const (
	// GenerationUnknown is reported before a module has been loaded.
	GenerationUnknown Generation = iota
	// GenerationLegacy modules are addressed by numeric identifier.
	GenerationLegacy
	// GenerationCurrent modules are addressed by opaque context and export Reload.
	GenerationCurrent
)

// String returns the string representation of the generation
func (g Generation) String() string {
	switch g {
	case GenerationLegacy:
		return "legacy"
	case GenerationCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// Export names of the entry point roles.
const (
	SymbolInitialize  = "Initialize"
	SymbolReload      = "Reload"
	SymbolUpdate      = "Update"
	SymbolUpdate2     = "Update2"
	SymbolGetString   = "GetString"
	SymbolExecuteBang = "ExecuteBang"
	SymbolFinalize    = "Finalize"

	// SymbolSetHostCallbacks is optional and current-generation only. It
	// receives the native host callback table before Initialize.
	SymbolSetHostCallbacks = "SetHostCallbacks"
)

// Legacy generation entry point signatures.
type (
	LegacyInitializeFunc  func(module uintptr, filePath, section string, id uint32) float64
	LegacyUpdateFunc      func(id uint32) float64
	LegacyGetStringFunc   func(id uint32, flags uint32) string
	LegacyExecuteBangFunc func(command string, id uint32)
	LegacyFinalizeFunc    func(module uintptr, id uint32)
)

// Current generation entry point signatures.
type (
	InitializeFunc  func(data *uintptr, host uintptr)
	ReloadFunc      func(data uintptr, host uintptr, maxValue *float64)
	UpdateFunc      func(data uintptr) float64
	GetStringFunc   func(data uintptr) string
	ExecuteBangFunc func(data uintptr, command string)
	FinalizeFunc    func(data uintptr)

	SetHostCallbacksFunc func(table uintptr)
)

// EntryPoints reports which entry point roles a module provides.
type EntryPoints struct {
	Initialize     bool `json:"initialize"`
	Reload         bool `json:"reload"`
	Update         bool `json:"update"`
	UpdateFallback bool `json:"update_fallback"`
	GetString      bool `json:"get_string"`
	ExecuteCommand bool `json:"execute_command"`
	Finalize       bool `json:"finalize"`
	HostCallbacks  bool `json:"host_callbacks"`
}

// initializeArgs carries everything either generation may need on first entry.
type initializeArgs struct {
	module   uintptr
	filePath string
	section  string
	id       uint32
	host     uintptr
}

// abiBinding is the single call surface over both generations. Each method
// reports whether an entry point was actually invoked; an absent entry
// point is a silent no-op.
type abiBinding interface {
	generation() Generation
	entryPoints() EntryPoints

	// initialize runs the first-entry sequence and returns the maximum
	// value the module reported.
	initialize(args initializeArgs) float64

	// reload re-applies configuration. previous is the last reported
	// maximum and is what the module sees if it does not write one.
	reload(host uintptr, previous float64) (float64, bool)

	update() (float64, bool)
	getString() (string, bool)
	executeCommand(command string) bool
	finalize() bool
}

// abi_legacy.go: binding for modules addressed by numeric identifier
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

// legacyBinding addresses the module by numeric identifier.
type legacyBinding struct {
	module uintptr
	id     uint32

	initializeFn  LegacyInitializeFunc
	updateFn      LegacyUpdateFunc
	getStringFn   LegacyGetStringFunc
	executeBangFn LegacyExecuteBangFunc
	finalizeFn    LegacyFinalizeFunc

	// usesUpdate2 records that Update was absent and the Update2 export
	// was consulted instead.
	usesUpdate2 bool
}

func (b *legacyBinding) generation() Generation { return GenerationLegacy }

func (b *legacyBinding) entryPoints() EntryPoints {
	return EntryPoints{
		Initialize:     b.initializeFn != nil,
		Update:         b.updateFn != nil && !b.usesUpdate2,
		UpdateFallback: b.updateFn != nil && b.usesUpdate2,
		GetString:      b.getStringFn != nil,
		ExecuteCommand: b.executeBangFn != nil,
		Finalize:       b.finalizeFn != nil,
	}
}

func (b *legacyBinding) initialize(args initializeArgs) float64 {
	b.id = args.id
	if b.initializeFn == nil {
		return 0
	}
	return b.initializeFn(b.module, args.filePath, args.section, b.id)
}

// reload is never supported by legacy modules: they read their options
// once in Initialize.
func (b *legacyBinding) reload(uintptr, float64) (float64, bool) {
	return 0, false
}

func (b *legacyBinding) update() (float64, bool) {
	if b.updateFn == nil {
		return 0, false
	}
	return b.updateFn(b.id), true
}

func (b *legacyBinding) getString() (string, bool) {
	if b.getStringFn == nil {
		return "", false
	}
	s := b.getStringFn(b.id, 0)
	return s, s != ""
}

func (b *legacyBinding) executeCommand(command string) bool {
	if b.executeBangFn == nil {
		return false
	}
	b.executeBangFn(command, b.id)
	return true
}

func (b *legacyBinding) finalize() bool {
	if b.finalizeFn == nil {
		return false
	}
	b.finalizeFn(b.module, b.id)
	return true
}


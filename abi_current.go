// abi_current.go: binding for modules addressed by opaque context
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

// currentBinding addresses the module by the opaque context it returned
// from Initialize. The host never dereferences the context.
type currentBinding struct {
	context uintptr

	initializeFn  InitializeFunc
	reloadFn      ReloadFunc
	updateFn      UpdateFunc
	getStringFn   GetStringFunc
	executeBangFn ExecuteBangFunc
	finalizeFn    FinalizeFunc

	setCallbacksFn SetHostCallbacksFunc
}

func (b *currentBinding) generation() Generation { return GenerationCurrent }

func (b *currentBinding) entryPoints() EntryPoints {
	return EntryPoints{
		Initialize:     b.initializeFn != nil,
		Reload:         b.reloadFn != nil,
		Update:         b.updateFn != nil,
		GetString:      b.getStringFn != nil,
		ExecuteCommand: b.executeBangFn != nil,
		Finalize:       b.finalizeFn != nil,
		HostCallbacks:  b.setCallbacksFn != nil,
	}
}

// initialize hands over the callback table when the module asks for it,
// seeds the context with the instance identifier, lets the module replace
// it, then always runs Reload once so the module reads its options.
func (b *currentBinding) initialize(args initializeArgs) float64 {
	if b.setCallbacksFn != nil {
		if table := hostCallbackTable(); table != 0 {
			b.setCallbacksFn(table)
		}
	}
	b.context = uintptr(args.id)
	if b.initializeFn != nil {
		b.initializeFn(&b.context, args.host)
	}
	maxValue, _ := b.reload(args.host, 0)
	return maxValue
}

func (b *currentBinding) reload(host uintptr, previous float64) (float64, bool) {
	if b.reloadFn == nil {
		return previous, false
	}
	maxValue := previous
	b.reloadFn(b.context, host, &maxValue)
	return maxValue, true
}

func (b *currentBinding) update() (float64, bool) {
	if b.updateFn == nil {
		return 0, false
	}
	return b.updateFn(b.context), true
}

func (b *currentBinding) getString() (string, bool) {
	if b.getStringFn == nil {
		return "", false
	}
	s := b.getStringFn(b.context)
	return s, s != ""
}

func (b *currentBinding) executeCommand(command string) bool {
	if b.executeBangFn == nil {
		return false
	}
	b.executeBangFn(b.context, command)
	return true
}

func (b *currentBinding) finalize() bool {
	if b.finalizeFn == nil {
		return false
	}
	b.finalizeFn(b.context)
	return true
}

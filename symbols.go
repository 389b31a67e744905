// symbols.go: entry point resolution and ABI generation detection
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

// resolveEntryPoints binds every known export of module and picks the
// generation. The rule is structural and fixed: a module exporting Reload is
// current-generation, any other module is legacy. Entry points that are
// missing or fail to bind are left nil.
func resolveEntryPoints(module Module, logger Logger) abiBinding {
	var reload ReloadFunc
	if bindEntryPoint(module, SymbolReload, &reload, logger) {
		b := &currentBinding{reloadFn: reload}
		bindEntryPoint(module, SymbolInitialize, &b.initializeFn, logger)
		bindEntryPoint(module, SymbolUpdate, &b.updateFn, logger)
		bindEntryPoint(module, SymbolGetString, &b.getStringFn, logger)
		bindEntryPoint(module, SymbolExecuteBang, &b.executeBangFn, logger)
		bindEntryPoint(module, SymbolFinalize, &b.finalizeFn, logger)
		bindEntryPoint(module, SymbolSetHostCallbacks, &b.setCallbacksFn, logger)
		return b
	}

	b := &legacyBinding{module: module.Handle()}
	bindEntryPoint(module, SymbolInitialize, &b.initializeFn, logger)
	if !bindEntryPoint(module, SymbolUpdate, &b.updateFn, logger) {
		b.usesUpdate2 = true
		bindEntryPoint(module, SymbolUpdate2, &b.updateFn, logger)
	}
	bindEntryPoint(module, SymbolGetString, &b.getStringFn, logger)
	bindEntryPoint(module, SymbolExecuteBang, &b.executeBangFn, logger)
	bindEntryPoint(module, SymbolFinalize, &b.finalizeFn, logger)
	return b
}

func bindEntryPoint(module Module, symbol string, fptr any, logger Logger) bool {
	err := module.Bind(symbol, fptr)
	if err == nil {
		return true
	}
	if HasErrorCode(err, ErrCodeSymbolNotFound) {
		logger.Debug("Entry point not exported", "symbol", symbol, "path", module.Path())
	} else {
		logger.Warn("Entry point ignored", "symbol", symbol, "path", module.Path(), "error", err)
	}
	return false
}

// errors.go: structured error definitions for the plughost system
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/agilira/go-errors"
)

// Error codes for the plughost system
const (
	// Plugin reference and loading errors (1000-1099)
	ErrCodeInvalidPluginReference  = "PLUGIN_1001"
	ErrCodeModuleNotFound          = "PLUGIN_1002"
	ErrCodeModuleOpenFailed        = "PLUGIN_1003"
	ErrCodeUnsupportedModuleFormat = "PLUGIN_1004"
	ErrCodeModuleCloseFailed       = "PLUGIN_1005"

	// Symbol binding errors (1100-1199)
	ErrCodeSymbolNotFound   = "SYMBOL_1101"
	ErrCodeSymbolBindFailed = "SYMBOL_1102"

	// Lifecycle errors (1200-1299)
	ErrCodeMeasureFinalized = "LIFECYCLE_1201"
	ErrCodeUnknownSection   = "LIFECYCLE_1202"
	ErrCodeInstanceIDsSpent = "LIFECYCLE_1203"

	// Configuration errors (1700-1799)
	ErrCodeConfigNotFound        = "CONFIG_1701"
	ErrCodeConfigParseError      = "CONFIG_1702"
	ErrCodeConfigValidationError = "CONFIG_1703"
	ErrCodeConfigWatcherError    = "CONFIG_1704"

	// Audit errors (1800-1899)
	ErrCodeAuditError = "AUDIT_1801"
)

// Plugin reference and loading error constructors

func NewInvalidPluginReferenceError(section, reference string) *errors.Error {
	return errors.New(ErrCodeInvalidPluginReference, "Invalid plugin reference").
		WithUserMessage("The Plugin option must name a module file").
		WithContext("section", section).
		WithContext("reference", reference).
		WithSeverity("error")
}

// NewModuleNotFoundError reports that a module could not be loaded from any
// search root. attempts holds every path that was tried, in order.
func NewModuleNotFoundError(module string, attempts []string, cause error) *errors.Error {
	var err *errors.Error
	if cause != nil {
		err = errors.Wrap(cause, ErrCodeModuleNotFound, "Plugin: \""+module+"\" not found")
	} else {
		err = errors.New(ErrCodeModuleNotFound, "Plugin: \""+module+"\" not found")
	}
	return err.
		WithUserMessage("The plugin module was not found in any plugin directory").
		WithContext("module", module).
		WithContext("attempts", strings.Join(attempts, string(os.PathListSeparator))).
		WithSeverity("error")
}

func NewModuleOpenError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeModuleOpenFailed, "Module open failed").
		WithUserMessage("The plugin module could not be opened").
		WithContext("path", path).
		WithSeverity("error")
}

func NewUnsupportedModuleFormatError(format string) *errors.Error {
	return errors.New(ErrCodeUnsupportedModuleFormat, "Unsupported module format").
		WithUserMessage("Module format must be one of: native, go, static").
		WithContext("format", format).
		WithSeverity("error")
}

func NewModuleCloseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeModuleCloseFailed, "Module close failed").
		WithUserMessage("The plugin module could not be unloaded").
		WithContext("path", path).
		WithSeverity("warning")
}

// Symbol binding error constructors

func NewSymbolNotFoundError(module, symbol string) *errors.Error {
	return errors.New(ErrCodeSymbolNotFound, "Symbol not found").
		WithUserMessage("The module does not export the requested entry point").
		WithContext("module", module).
		WithContext("symbol", symbol).
		WithSeverity("info")
}

func NewSymbolBindError(module, symbol string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeSymbolBindFailed, "Symbol bind failed").
		WithUserMessage("The exported entry point has an incompatible signature").
		WithContext("module", module).
		WithContext("symbol", symbol).
		WithSeverity("warning")
}

// Lifecycle error constructors

func NewMeasureFinalizedError(section string) *errors.Error {
	return errors.New(ErrCodeMeasureFinalized, "Measure already finalized").
		WithUserMessage("The plugin measure has been finalized and cannot be used").
		WithContext("section", section).
		WithSeverity("warning")
}

func NewUnknownSectionError(section string) *errors.Error {
	return errors.New(ErrCodeUnknownSection, "Unknown section").
		WithUserMessage("No plugin measure is configured under this section").
		WithContext("section", section).
		WithSeverity("error")
}

func NewInstanceIDsSpentError(section string) *errors.Error {
	return errors.New(ErrCodeInstanceIDsSpent, "Instance identifiers exhausted").
		WithUserMessage("The host has handed out every plugin instance identifier and must be restarted").
		WithContext("section", section).
		WithSeverity("critical")
}

// Configuration error constructors

func NewConfigNotFoundError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigNotFound, "Configuration file not found").
		WithUserMessage("The configuration file could not be read").
		WithContext("path", path).
		WithSeverity("error")
}

func NewConfigParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigParseError, "Configuration parse error").
		WithUserMessage("The configuration file is malformed").
		WithContext("path", path).
		WithSeverity("error")
}

func NewConfigValidationError(message string, cause error) *errors.Error {
	if cause == nil {
		return errors.New(ErrCodeConfigValidationError, "Configuration validation error: "+message).
			WithUserMessage("Host settings are invalid").
			WithSeverity("error")
	}
	return errors.Wrap(cause, ErrCodeConfigValidationError, "Configuration validation error: "+message).
		WithUserMessage("Host settings are invalid").
		WithSeverity("error")
}

func NewConfigWatcherError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigWatcherError, "Config watcher error: "+message).
		WithUserMessage("Configuration file watching failed").
		WithSeverity("error")
}

func NewAuditError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeAuditError, "Audit error: "+message).
		WithUserMessage("Audit logging failed").
		WithSeverity("warning")
}

// HasErrorCode reports whether err, or any error it wraps, is a structured
// error carrying code.
func HasErrorCode(err error, code string) bool {
	var structured *errors.Error
	if !stderrors.As(err, &structured) {
		return false
	}
	return structured.ErrorCode() == errors.ErrorCode(code)
}

// env_config.go: Environment variable expansion and host setting overrides
//
// Option values in skin files and host settings may reference environment
// variables with ${VAR} or ${VAR:-default}. Host settings can additionally
// be overridden wholesale through PLUGHOST_* variables, which is how
// deployments relocate plugin directories without editing files.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// variablePattern matches ${VAR} and ${VAR:-default}.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// EnvConfigOptions configures environment variable processing behavior.
type EnvConfigOptions struct {
	// Prefix for environment variables (e.g., "PLUGHOST_")
	Prefix string `json:"prefix" yaml:"prefix"`

	// Whether to fail when required environment variables are missing
	FailOnMissing bool `json:"fail_on_missing" yaml:"fail_on_missing"`

	// Whether to validate environment variable values for security
	ValidateValues bool `json:"validate_values" yaml:"validate_values"`

	// Default values for undefined environment variables
	Defaults map[string]string `json:"defaults,omitempty" yaml:"defaults,omitempty"`

	// Environment-specific override values
	Overrides map[string]string `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// DefaultEnvConfigOptions returns the defaults used for skin and host
// setting expansion.
func DefaultEnvConfigOptions() EnvConfigOptions {
	return EnvConfigOptions{
		Prefix:         EnvPrefix,
		FailOnMissing:  false,
		ValidateValues: true,
		Defaults:       make(map[string]string),
		Overrides:      make(map[string]string),
	}
}

// ExpandEnvironmentVariables replaces ${VAR} and ${VAR:-default} references
// in input. A reference that cannot be resolved, because its value fails
// validation or because it is missing under FailOnMissing, is left as
// written and the first such error is returned with the partial result.
//
//	path, err := ExpandEnvironmentVariables("${HOME}/Skins/${SKIN:-Default}", DefaultEnvConfigOptions())
func ExpandEnvironmentVariables(input string, options EnvConfigOptions) (string, error) {
	if input == "" {
		return input, nil
	}

	var firstErr error
	result := variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		submatches := variablePattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		inlineDefault := ""
		if len(submatches) >= 4 {
			inlineDefault = submatches[3]
		}

		expanded, err := expandSingleEnvironmentVariable(varName, inlineDefault, options)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return match
		}

		return expanded
	})

	return result, firstErr
}

// expandSingleEnvironmentVariable resolves one variable. Lookup order is
// the prefixed variable, the bare variable, Overrides, the inline default
// and Defaults. A missing variable expands to "" unless FailOnMissing is set.
func expandSingleEnvironmentVariable(varName, inlineDefault string, options EnvConfigOptions) (string, error) {
	prefixedName := options.Prefix + varName
	if value := os.Getenv(prefixedName); value != "" {
		return validateAndSanitizeValue(value, options)
	}

	if value := os.Getenv(varName); value != "" {
		return validateAndSanitizeValue(value, options)
	}

	if value, exists := options.Overrides[varName]; exists {
		return validateAndSanitizeValue(value, options)
	}

	if inlineDefault != "" {
		return validateAndSanitizeValue(inlineDefault, options)
	}

	if value, exists := options.Defaults[varName]; exists {
		return validateAndSanitizeValue(value, options)
	}

	if options.FailOnMissing {
		return "", NewConfigValidationError(fmt.Sprintf("required environment variable not found: %s (also tried %s)", varName, prefixedName), nil)
	}

	return "", nil
}

// validateAndSanitizeValue rejects values carrying NUL bytes, control
// characters other than whitespace, or more than 4 KiB.
func validateAndSanitizeValue(value string, options EnvConfigOptions) (string, error) {
	if !options.ValidateValues {
		return value, nil
	}

	if strings.Contains(value, "\x00") {
		return "", NewConfigValidationError("environment variable value contains null byte", nil)
	}

	const maxLength = 4096
	if len(value) > maxLength {
		return "", NewConfigValidationError(fmt.Sprintf("environment variable value too long: %d bytes (max %d)", len(value), maxLength), nil)
	}

	for i, r := range value {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return "", NewConfigValidationError(fmt.Sprintf("environment variable contains control character at position %d", i), nil)
		}
	}

	return value, nil
}

// EnvPrefix prefixes every host setting environment variable.
const EnvPrefix = "PLUGHOST_"

// Host setting environment variables, without EnvPrefix.
const (
	EnvPluginPath     = "PLUGIN_PATH"
	EnvUserPluginPath = "USER_PLUGIN_PATH"
	EnvModuleFormat   = "MODULE_FORMAT"
	EnvUpdateInterval = "UPDATE_INTERVAL"
	EnvAuditFile      = "AUDIT_FILE"
)

// ApplyEnvOverrides overrides settings from prefix-named environment
// variables. Values are validated with the same rules as ${VAR} expansion.
func (s *HostSettings) ApplyEnvOverrides(prefix string) error {
	opts := DefaultEnvConfigOptions()

	lookup := func(name string) (string, bool, error) {
		raw, ok := os.LookupEnv(prefix + name)
		if !ok || raw == "" {
			return "", false, nil
		}
		v, err := validateAndSanitizeValue(raw, opts)
		if err != nil {
			return "", false, err
		}
		return v, true, nil
	}

	if v, ok, err := lookup(EnvPluginPath); err != nil {
		return err
	} else if ok {
		s.PluginPath = v
	}
	if v, ok, err := lookup(EnvUserPluginPath); err != nil {
		return err
	} else if ok {
		s.UserPluginPath = v
	}
	if v, ok, err := lookup(EnvModuleFormat); err != nil {
		return err
	} else if ok {
		s.ModuleFormat = v
	}
	if v, ok, err := lookup(EnvUpdateInterval); err != nil {
		return err
	} else if ok {
		d, perr := time.ParseDuration(v)
		if perr != nil {
			return NewConfigValidationError(fmt.Sprintf("invalid %s%s", prefix, EnvUpdateInterval), perr)
		}
		s.UpdateInterval = d
	}
	if v, ok, err := lookup(EnvAuditFile); err != nil {
		return err
	} else if ok {
		s.AuditFile = v
	}
	return nil
}

// expandValue expands ${VAR} references in a configuration value, leaving
// the value untouched when expansion fails.
func expandValue(value string) string {
	if !strings.Contains(value, "${") {
		return value
	}
	expanded, err := ExpandEnvironmentVariables(value, DefaultEnvConfigOptions())
	if err != nil {
		return value
	}
	return expanded
}

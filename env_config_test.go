// env_config_test.go: environment expansion and override tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvironmentVariables(t *testing.T) {
	t.Setenv("PLUGHOST_SKIN_ROOT", "/srv/skins")
	t.Setenv("THEME", "dark")

	opts := DefaultEnvConfigOptions()
	opts.Overrides["ACCENT"] = "blue"
	opts.Defaults["FONT"] = "mono"

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Empty", "", ""},
		{"NoReferences", "plain value", "plain value"},
		{"PrefixedFirst", "${SKIN_ROOT}/clock", "/srv/skins/clock"},
		{"Unprefixed", "theme-${THEME}", "theme-dark"},
		{"Override", "${ACCENT}", "blue"},
		{"InlineDefault", "${MISSING_VALUE:-fallback}", "fallback"},
		{"GlobalDefault", "${FONT}", "mono"},
		{"MissingIsEmpty", "[${NOT_SET_ANYWHERE}]", "[]"},
		{"Several", "${THEME}/${ACCENT}", "dark/blue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnvironmentVariables(tt.input, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandEnvironmentVariables_RejectedValueKeptVerbatim(t *testing.T) {
	t.Setenv("BAD_VALUE", "a\x01b")

	got, err := ExpandEnvironmentVariables("x=${BAD_VALUE}", DefaultEnvConfigOptions())
	assert.True(t, HasErrorCode(err, ErrCodeConfigValidationError))
	assert.Equal(t, "x=${BAD_VALUE}", got)
}

func TestExpandEnvironmentVariables_FailOnMissingPropagates(t *testing.T) {
	t.Setenv("THEME", "dark")
	opts := DefaultEnvConfigOptions()
	opts.FailOnMissing = true

	got, err := ExpandEnvironmentVariables("${THEME}/${SURELY_NOT_DEFINED}", opts)
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeConfigValidationError))
	assert.Equal(t, "dark/${SURELY_NOT_DEFINED}", got, "resolved references are still expanded")

	got, err = ExpandEnvironmentVariables("${SURELY_NOT_DEFINED:-fallback}", opts)
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
}

func TestExpandValue_KeepsInputOnError(t *testing.T) {
	t.Setenv("BAD_VALUE", "a\x01b")
	assert.Equal(t, "x=${BAD_VALUE}", expandValue("x=${BAD_VALUE}"))
}

func TestExpandSingleEnvironmentVariable_FailOnMissing(t *testing.T) {
	opts := DefaultEnvConfigOptions()
	opts.FailOnMissing = true

	_, err := expandSingleEnvironmentVariable("SURELY_NOT_DEFINED", "", opts)
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeConfigValidationError))
}

func TestValidateAndSanitizeValue(t *testing.T) {
	opts := DefaultEnvConfigOptions()

	for _, ok := range []string{"plain", "tab\tand\nnewline", strings.Repeat("a", 4096)} {
		_, err := validateAndSanitizeValue(ok, opts)
		assert.NoError(t, err)
	}
	for _, bad := range []string{"nul\x00byte", "bell\x07", strings.Repeat("a", 4097)} {
		_, err := validateAndSanitizeValue(bad, opts)
		assert.Error(t, err)
	}

	opts.ValidateValues = false
	v, err := validateAndSanitizeValue("nul\x00byte", opts)
	assert.NoError(t, err)
	assert.Equal(t, "nul\x00byte", v)
}

func TestHostSettings_ApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+EnvPluginPath, "/env/plugins")
	t.Setenv(EnvPrefix+EnvUserPluginPath, "/env/user")
	t.Setenv(EnvPrefix+EnvModuleFormat, "go")
	t.Setenv(EnvPrefix+EnvUpdateInterval, "250ms")
	t.Setenv(EnvPrefix+EnvAuditFile, "/env/audit.jsonl")

	s := DefaultHostSettings()
	require.NoError(t, s.ApplyEnvOverrides(EnvPrefix))

	assert.Equal(t, "/env/plugins", s.PluginPath)
	assert.Equal(t, "/env/user", s.UserPluginPath)
	assert.Equal(t, "go", s.ModuleFormat)
	assert.Equal(t, 250*time.Millisecond, s.UpdateInterval)
	assert.Equal(t, "/env/audit.jsonl", s.AuditFile)
	assert.Equal(t, Roots{Primary: "/env/plugins", User: "/env/user"}, s.Roots())
}

func TestHostSettings_ApplyEnvOverrides_Unset(t *testing.T) {
	s := DefaultHostSettings()
	s.PluginPath = "/keep"
	require.NoError(t, s.ApplyEnvOverrides("PLUGHOST_TEST_UNUSED_"))
	assert.Equal(t, "/keep", s.PluginPath)
}

func TestHostSettings_ApplyEnvOverrides_BadInterval(t *testing.T) {
	t.Setenv(EnvPrefix+EnvUpdateInterval, "soon")

	s := DefaultHostSettings()
	err := s.ApplyEnvOverrides(EnvPrefix)
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeConfigValidationError))
}

// host_test.go: host runtime tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoMeasureSkin = `
MeasureCounter:
  Measure: Plugin
  Plugin: Counter.so
  MaxValue: 50
MeasureCalc:
  Measure: Calc
MeasureOld:
  Measure: Plugin
  Plugin: C:\Plugins\Old.dll
`

func newTestHost(t *testing.T, env *TestEnvironment, logger Logger) *Host {
	t.Helper()
	host, err := NewHost(env.Settings(), logger, WithOpener(env.Registry))
	require.NoError(t, err)
	t.Cleanup(func() { _ = host.Close() })
	return host
}

func parseSkin(t *testing.T, content string) *SkinConfig {
	t.Helper()
	cfg, err := ParseSkinConfig("skin.yaml", []byte(content))
	require.NoError(t, err)
	return cfg
}

func TestNewHost_InvalidSettings(t *testing.T) {
	s := DefaultHostSettings()
	s.UpdateInterval = 0
	_, err := NewHost(s, nil)
	assert.True(t, HasErrorCode(err, ErrCodeConfigValidationError))
}

func TestNewHost_OpenerFromFormat(t *testing.T) {
	s := DefaultHostSettings()
	s.ModuleFormat = "static"
	host, err := NewHost(s, nil)
	require.NoError(t, err)
	defer host.Close()
	assert.Same(t, DefaultStaticRegistry, host.opener)
}

func TestHost_LoadSkinAndUpdate(t *testing.T) {
	env := NewTestEnvironment(t)
	var counter, old callLog
	env.RegisterPrimary("Counter.so", currentModule(&counter, 500))
	env.RegisterPrimary("Old.dll", legacyModule(&old, 0))

	host := newTestHost(t, env, nil)
	require.NoError(t, host.LoadSkin(parseSkin(t, twoMeasureSkin)))

	samples := host.Update()
	require.Len(t, samples, 2)

	assert.Equal(t, "MeasureCounter", samples[0].Section)
	assert.Equal(t, 42.0, samples[0].Value)
	assert.Equal(t, 50.0, samples[0].MaxValue)
	assert.True(t, samples[0].HasString)
	assert.Equal(t, "hello", samples[0].String)

	assert.Equal(t, "MeasureOld", samples[1].Section)
	assert.Equal(t, 7.0, samples[1].Value)
	assert.Equal(t, 1.0, samples[1].MaxValue)
	assert.False(t, samples[1].Time.IsZero())

	stats := host.Stats()
	assert.Equal(t, 2, stats.Measures)
	assert.Equal(t, int64(2), stats.ModulesLoaded)
	assert.Equal(t, int64(1), stats.UpdateCycles)
}

func TestHost_Describe(t *testing.T) {
	env := NewTestEnvironment(t)
	env.RegisterPrimary("Counter.so", currentModule(&callLog{}, 500))

	host := newTestHost(t, env, nil)
	require.NoError(t, host.LoadSkin(parseSkin(t, twoMeasureSkin)))

	infos := host.Describe()
	require.Len(t, infos, 2)

	assert.Equal(t, "current", infos[0].Generation)
	assert.True(t, infos[0].HasInstanceID)
	assert.True(t, infos[0].EntryPoints.Reload)
	assert.Equal(t, 50.0, infos[0].MaxValue)

	assert.Equal(t, "Old.dll", infos[1].Module)
	assert.True(t, infos[1].LoadFailed)
	assert.Equal(t, "unloaded", infos[1].State)
	assert.Equal(t, "unknown", infos[1].Generation)
	assert.False(t, infos[1].HasInstanceID)
}

func TestHost_ReloadAddsRemovesAndReapplies(t *testing.T) {
	env := NewTestEnvironment(t)
	var counter, old, extra callLog
	env.RegisterPrimary("Counter.so", currentModule(&counter, 500))
	env.RegisterPrimary("Old.dll", legacyModule(&old, 0))
	env.RegisterPrimary("Extra.so", currentModule(&extra, 5))

	host := newTestHost(t, env, nil)
	require.NoError(t, host.LoadSkin(parseSkin(t, twoMeasureSkin)))
	first, ok := host.Measure("measurecounter")
	require.True(t, ok)

	require.NoError(t, host.Reload(parseSkin(t, `
MeasureExtra:
  Measure: Plugin
  Plugin: Extra.so
MeasureCounter:
  Measure: Plugin
  Plugin: Counter.so
`)))

	second, ok := host.Measure("MeasureCounter")
	require.True(t, ok)
	assert.Same(t, first, second, "an unchanged section keeps its measure")
	assert.Equal(t, 1, counter.count("Initialize"))
	assert.Equal(t, 2, counter.count("Reload"))
	assert.Equal(t, 500.0, second.MaxValue(), "the override was removed")

	assert.Equal(t, 1, old.count("Finalize"), "removed sections are finalized")
	_, ok = host.Measure("MeasureOld")
	assert.False(t, ok)

	samples := host.Update()
	require.Len(t, samples, 2)
	assert.Equal(t, "MeasureExtra", samples[0].Section)
	assert.Equal(t, "MeasureCounter", samples[1].Section)

	stats := host.Stats()
	assert.Equal(t, int64(3), stats.ModulesLoaded)
	assert.Equal(t, int64(1), stats.Reloads)
	assert.Equal(t, int64(1), stats.Finalized)
}

func TestHost_ReloadWithNewModuleRecreatesMeasure(t *testing.T) {
	env := NewTestEnvironment(t)
	var a, b callLog
	env.RegisterPrimary("A.so", currentModule(&a, 1))
	env.RegisterPrimary("B.so", currentModule(&b, 2))

	host := newTestHost(t, env, nil)
	skin := "MeasureX:\n  Measure: Plugin\n  Plugin: %s\n"
	require.NoError(t, host.LoadSkin(parseSkin(t, strings.Replace(skin, "%s", "A.so", 1))))
	require.NoError(t, host.Reload(parseSkin(t, strings.Replace(skin, "%s", "B.so", 1))))

	assert.Equal(t, 1, a.count("Finalize"))
	assert.Equal(t, 1, b.count("Initialize"))
	m, _ := host.Measure("MeasureX")
	assert.Equal(t, 2.0, m.MaxValue())
}

func TestHost_Command(t *testing.T) {
	env := NewTestEnvironment(t)
	var counter callLog
	env.RegisterPrimary("Counter.so", currentModule(&counter, 1))

	host := newTestHost(t, env, nil)
	require.NoError(t, host.LoadSkin(parseSkin(t, twoMeasureSkin)))

	require.NoError(t, host.Command("measurecounter", "Reset"))
	assert.Equal(t, 1, counter.count("ExecuteBang:Reset"))

	err := host.Command("MeasureNope", "Reset")
	assert.True(t, HasErrorCode(err, ErrCodeUnknownSection))

	// A measure whose module is missing accepts the command through its fallback.
	assert.NoError(t, host.Command("MeasureOld", "Reset"))
	assert.Equal(t, int64(2), host.Stats().Commands)
}

func TestHost_Run(t *testing.T) {
	env := NewTestEnvironment(t)
	env.RegisterPrimary("Counter.so", currentModule(&callLog{}, 1))

	host := newTestHost(t, env, nil)
	require.NoError(t, host.LoadSkin(parseSkin(t, twoMeasureSkin)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cycles := 0
	err := host.Run(ctx, func(samples []Sample) {
		assert.Len(t, samples, 2)
		cycles++
		if cycles == 3 {
			cancel()
		}
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cycles, 3)
	assert.GreaterOrEqual(t, host.Stats().UpdateCycles, int64(3))
}

func TestHost_CloseFinalizesEverything(t *testing.T) {
	env := NewTestEnvironment(t)
	var counter callLog
	env.RegisterPrimary("Counter.so", currentModule(&counter, 1))

	host, err := NewHost(env.Settings(), nil, WithOpener(env.Registry))
	require.NoError(t, err)
	require.NoError(t, host.LoadSkin(parseSkin(t, twoMeasureSkin)))

	m, _ := host.Measure("MeasureCounter")
	require.NoError(t, host.Close())
	require.NoError(t, host.Close())

	assert.Equal(t, 1, counter.count("Finalize"))
	assert.Equal(t, StateFinalized, m.State())
	assert.Nil(t, host.Update())
	assert.True(t, HasErrorCode(host.LoadSkin(parseSkin(t, twoMeasureSkin)), ErrCodeConfigValidationError))
}

func TestHost_AuditTrail(t *testing.T) {
	env := NewTestEnvironment(t)
	env.RegisterPrimary("Counter.so", currentModule(&callLog{}, 1))

	settings := env.Settings()
	settings.AuditFile = filepath.Join(env.TempDir(), "audit", "plugins.jsonl")

	host, err := NewHost(settings, nil, WithOpener(env.Registry))
	require.NoError(t, err)
	require.NoError(t, host.LoadSkin(parseSkin(t, twoMeasureSkin)))
	require.NoError(t, host.Close())

	info, err := os.Stat(settings.AuditFile)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestHost_LogsModuleLifecycle(t *testing.T) {
	env := NewTestEnvironment(t)
	env.RegisterPrimary("Counter.so", currentModule(&callLog{}, 1))
	logger := NewTestLogger()

	host := newTestHost(t, env, logger)
	require.NoError(t, host.LoadSkin(parseSkin(t, twoMeasureSkin)))

	assert.True(t, logger.HasMessage("INFO", "Plugin initialized"))
	assert.Equal(t, 1, logger.CountMessages("ERROR", "Plugin not found"))
	assert.True(t, logger.HasMessage("INFO", "Skin applied"))

	WaitForCondition(t, func() bool { return host.Stats().Measures == 2 }, time.Second, "measures registered")
}

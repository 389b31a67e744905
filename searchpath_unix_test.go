//go:build !windows

// searchpath_unix_test.go: loader search path suppression tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterPluginCode_SuppressesSearchPathDuringLoad(t *testing.T) {
	name := searchPathVariable()
	t.Setenv(name, "/opt/host/lib")

	func() {
		defer enterPluginCode(true)()
		_, ok := os.LookupEnv(name)
		assert.False(t, ok, "search path must be cleared while loading")
		require.NoError(t, os.Setenv(name, "/opt/plugin/lib"))
	}()

	assert.Equal(t, "/opt/host/lib", os.Getenv(name))
}

func TestEnterPluginCode_RestoresUnsetSearchPath(t *testing.T) {
	name := searchPathVariable()
	t.Setenv(name, "")
	require.NoError(t, os.Unsetenv(name))

	withPluginCode(func() {
		_ = os.Setenv(name, "/tmp/leak")
	})

	_, ok := os.LookupEnv(name)
	assert.False(t, ok)
}

func TestPluginMeasure_LoadSeesClearedSearchPath(t *testing.T) {
	name := searchPathVariable()
	t.Setenv(name, "/opt/host/lib")

	env := NewTestEnvironment(t)
	var seen []bool
	opener := OpenerFunc(func(path string) (Module, error) {
		_, ok := os.LookupEnv(name)
		seen = append(seen, ok)
		return env.Registry.Open(path)
	})
	env.RegisterUser("Late.so", Symbols{})

	m := NewPluginMeasure("MeasureLate", NewModuleLoader(env.Roots, opener, nil), MeasureOptions{})
	m.ReadOptions(pluginSection("MeasureLate", "Late.so"))
	defer m.Close()

	assert.Equal(t, []bool{false, false}, seen)
	assert.Equal(t, "/opt/host/lib", os.Getenv(name))
}

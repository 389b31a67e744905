//go:build darwin || freebsd || windows || (linux && (amd64 || arm64))

// host_callbacks_test.go: native host callback table tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cArg(t *testing.T, s string) uintptr {
	t.Helper()
	buf := cBytes(s)
	// keeps buf reachable for the rest of the test
	t.Cleanup(func() { _ = buf[0] })
	return uintptr(unsafe.Pointer(&buf[0]))
}

func registerTestHost(t *testing.T, options map[string]string) (uintptr, *TestLogger) {
	t.Helper()
	logger := NewTestLogger()
	m := NewPluginMeasure("MeasureNative", nil, MeasureOptions{
		SkinPath: "/skins/demo/demo.ini",
		Logger:   logger,
	})
	m.section = NewMapSection("MeasureNative", options)
	h := registerHostHandle(measureHost{m: m})
	t.Cleanup(func() { releaseHostHandle(h) })
	return h, logger
}

func TestHostCallbackTable_Layout(t *testing.T) {
	table := hostCallbackTable()
	require.NotZero(t, table)
	assert.Equal(t, table, hostCallbackTable(), "table is created once")

	cb := (*nativeCallbacks)(unsafe.Pointer(&callbackTable))
	assert.Equal(t, unsafe.Sizeof(nativeCallbacks{}), cb.size)
	for i, slot := range []uintptr{cb.readString, cb.readPath, cb.readFloat, cb.readInt, cb.log, cb.measureName, cb.skinPath} {
		assert.NotZero(t, slot, "slot %d", i)
	}
}

func TestHostCallbacks_ReadOptions(t *testing.T) {
	h, _ := registerTestHost(t, map[string]string{
		"Label": "0012",
		"Data":  "data/values.txt",
		"Step":  "2.5",
		"Limit": "40",
	})

	assert.Equal(t, "0012", goString(cbReadString(h, cArg(t, "Label"), cArg(t, "none"))))
	assert.Equal(t, "none", goString(cbReadString(h, cArg(t, "Missing"), cArg(t, "none"))))
	assert.Equal(t, filepath.Join("/skins/demo", "data/values.txt"), goString(cbReadPath(h, cArg(t, "Data"), 0)))
	assert.Equal(t, uintptr(40), cbReadInt(h, cArg(t, "Limit"), 7))
	assert.Equal(t, uintptr(7), cbReadInt(h, cArg(t, "Missing"), 7))
	assert.Equal(t, "MeasureNative", goString(cbMeasureName(h)))
	assert.Equal(t, "/skins/demo/demo.ini", goString(cbSkinPath(h)))
}

func TestHostCallbacks_ReadFloatInOut(t *testing.T) {
	h, _ := registerTestHost(t, map[string]string{"Step": "2.5", "Bad": "x"})

	value := 1.0
	ptr := uintptr(unsafe.Pointer(&value))
	assert.Equal(t, uintptr(1), cbReadFloat(h, cArg(t, "Step"), ptr))
	assert.Equal(t, 2.5, value)

	value = 1.0
	assert.Equal(t, uintptr(0), cbReadFloat(h, cArg(t, "Bad"), ptr))
	assert.Equal(t, 1.0, value, "default left untouched")

	assert.Equal(t, uintptr(0), cbReadFloat(h, cArg(t, "Step"), 0))
}

func TestHostCallbacks_Log(t *testing.T) {
	h, logger := registerTestHost(t, nil)

	assert.Equal(t, uintptr(1), cbLog(h, uintptr(LogLevelWarning), cArg(t, "counter reloaded")))
	assert.True(t, logger.HasMessage("WARN", "counter reloaded"))
}

func TestHostCallbacks_UnknownHandle(t *testing.T) {
	def := cArg(t, "fallback")
	assert.Equal(t, def, cbReadString(0, cArg(t, "Label"), def))
	assert.Equal(t, uintptr(3), cbReadInt(0, cArg(t, "Limit"), 3))
	assert.Zero(t, cbLog(0, 1, cArg(t, "lost")))
	assert.Zero(t, cbMeasureName(0))
}

func TestHostCallbacks_StringsReleasedWithHandle(t *testing.T) {
	h, _ := registerTestHost(t, map[string]string{"Label": "a"})
	cbReadString(h, cArg(t, "Label"), 0)

	callbackStrings.Lock()
	_, held := callbackStrings.byHandle[h]
	callbackStrings.Unlock()
	require.True(t, held)

	releaseHostHandle(h)

	callbackStrings.Lock()
	_, held = callbackStrings.byHandle[h]
	callbackStrings.Unlock()
	assert.False(t, held)
}

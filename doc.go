// Package plughost hosts measure plugins: dynamic modules that compute a
// numeric value, and optionally a string, once per update cycle.
//
// A module implements one of two calling conventions. Legacy modules are
// addressed by a numeric instance identifier the host passes to every entry
// point and read their options once, in Initialize. Current modules export
// Reload, are addressed by an opaque context they hand back from Initialize
// and are told to re-read their options whenever the configuration changes.
// The host detects the convention from the exports and drives both through
// the same lifecycle:
//
//	load → initialize → reload* → (update | string | command)* → finalize → unload
//
// Key Features:
//   - Module lookup under a primary plugin root, then an optional user root
//   - C ABI shared libraries (purego), Go plugins and statically linked modules
//   - Working directory and library search path restored around plugin calls
//   - Maximum value inference with a MaxValue override
//   - Skin files in INI, YAML, JSON or TOML with Argus hot reload
//   - Argus audit trail of module loads and unloads
//
// Basic Usage:
//
//	settings := plughost.DefaultHostSettings()
//	settings.PluginPath = "/opt/skins/Plugins"
//
//	host, err := plughost.NewHost(settings, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer host.Close()
//
//	skin, err := plughost.LoadSkinConfig("clock.ini")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := host.LoadSkin(skin); err != nil {
//		log.Fatal(err)
//	}
//
//	for _, s := range host.Update() {
//		fmt.Println(s.Section, s.Value, s.String)
//	}
//
// Plugin code is trusted. A module that crashes, hangs or corrupts memory
// takes the host down with it.
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package plughost

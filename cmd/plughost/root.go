// root.go: root command and shared host setup
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"os"
	"time"

	"github.com/agilira/plughost"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	settingsFile   string
	pluginPath     string
	userPluginPath string
	format         string
	interval       time.Duration
	auditFile      string
	logLevel       string
	logJSON        bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "plughost",
		Short: "Host measure plugins defined in a skin file",
		Long: `plughost loads the plugin measures of a skin file, drives their
lifecycle and prints the values they produce.

Plugin modules are searched in the primary plugin directory first and in
the user plugin directory second. Settings come from --settings, then
PLUGHOST_* environment variables, then command line flags.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.settingsFile, "settings", "", "host settings file (YAML)")
	pf.StringVar(&flags.pluginPath, "plugins", "", "primary plugin directory")
	pf.StringVar(&flags.userPluginPath, "user-plugins", "", "user plugin directory searched after the primary one")
	pf.StringVar(&flags.format, "format", "", "module format: native, go or static")
	pf.DurationVar(&flags.interval, "interval", 0, "update interval")
	pf.StringVar(&flags.auditFile, "audit-file", "", "write an audit record of module loads to this file")
	pf.StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.BoolVar(&flags.logJSON, "log-json", false, "log as JSON instead of console text")

	root.AddCommand(
		newRunCmd(flags),
		newInspectCmd(flags),
		newBangCmd(flags),
	)
	return root
}

// settings resolves host settings from file, environment and flags.
func (f *globalFlags) settings(cmd *cobra.Command) (plughost.HostSettings, error) {
	settings := plughost.DefaultHostSettings()
	if f.settingsFile != "" {
		loaded, err := plughost.LoadHostSettings(f.settingsFile)
		if err != nil {
			return settings, err
		}
		settings = loaded
	}
	if err := settings.ApplyEnvOverrides(plughost.EnvPrefix); err != nil {
		return settings, err
	}

	pf := cmd.Flags()
	if pf.Changed("plugins") {
		settings.PluginPath = f.pluginPath
	}
	if pf.Changed("user-plugins") {
		settings.UserPluginPath = f.userPluginPath
	}
	if pf.Changed("format") {
		settings.ModuleFormat = f.format
	}
	if pf.Changed("interval") {
		settings.UpdateInterval = f.interval
	}
	if pf.Changed("audit-file") {
		settings.AuditFile = f.auditFile
	}
	return settings, settings.Validate()
}

func (f *globalFlags) logger() plughost.Logger {
	return newZerologAdapter(os.Stderr, f.logLevel, !f.logJSON)
}

// openSkin builds a host and applies the skin at path to it.
func (f *globalFlags) openSkin(cmd *cobra.Command, path string) (*plughost.Host, *plughost.SkinConfig, plughost.HostSettings, error) {
	settings, err := f.settings(cmd)
	if err != nil {
		return nil, nil, settings, err
	}
	skin, err := plughost.LoadSkinConfig(path)
	if err != nil {
		return nil, nil, settings, err
	}
	if format, _ := plughost.ParseModuleFormat(settings.ModuleFormat); format == plughost.ModuleFormatStatic {
		registerBuiltins(plughost.DefaultStaticRegistry, settings.PluginPath)
	}
	host, err := plughost.NewHost(settings, f.logger())
	if err != nil {
		return nil, nil, settings, err
	}
	if err := host.LoadSkin(skin); err != nil {
		_ = host.Close()
		return nil, nil, settings, err
	}
	return host, skin, settings, nil
}

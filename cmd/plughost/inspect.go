// inspect.go: inspect command
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agilira/plughost"
	"github.com/spf13/cobra"
)

func newInspectCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <skin>",
		Short: "Load the plugin measures of a skin and describe them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, _, _, err := flags.openSkin(cmd, args[0])
			if err != nil {
				return err
			}
			infos := host.Describe()
			if err := host.Close(); err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			for _, info := range infos {
				printInfo(cmd.OutOrStdout(), info)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func printInfo(w io.Writer, info plughost.MeasureInfo) {
	fmt.Fprintf(w, "[%s]\n", info.Section)
	fmt.Fprintf(w, "  module:      %s\n", info.Module)
	if info.LoadFailed {
		fmt.Fprintf(w, "  status:      not found\n\n")
		return
	}
	fmt.Fprintf(w, "  path:        %s\n", info.Path)
	fmt.Fprintf(w, "  generation:  %s\n", info.Generation)
	if info.HasInstanceID {
		fmt.Fprintf(w, "  instance id: %d\n", info.InstanceID)
	}
	fmt.Fprintf(w, "  entry points: %s\n", strings.Join(entryPointNames(info.EntryPoints), ", "))
	fmt.Fprintf(w, "  max value:   %g (log scale: %t)\n\n", info.MaxValue, info.LogMaxValue)
}

func entryPointNames(ep plughost.EntryPoints) []string {
	var names []string
	add := func(present bool, name string) {
		if present {
			names = append(names, name)
		}
	}
	add(ep.Initialize, plughost.SymbolInitialize)
	add(ep.Reload, plughost.SymbolReload)
	add(ep.Update, plughost.SymbolUpdate)
	add(ep.UpdateFallback, plughost.SymbolUpdate2)
	add(ep.GetString, plughost.SymbolGetString)
	add(ep.ExecuteCommand, plughost.SymbolExecuteBang)
	add(ep.Finalize, plughost.SymbolFinalize)
	add(ep.HostCallbacks, plughost.SymbolSetHostCallbacks)
	if len(names) == 0 {
		return []string{"none"}
	}
	return names
}

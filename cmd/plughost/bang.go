// bang.go: bang command
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newBangCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bang <skin> <section> <command...>",
		Short: "Send a command to a plugin measure and print its string value",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, _, _, err := flags.openSkin(cmd, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = host.Close() }()

			section := args[1]
			if err := host.Command(section, strings.Join(args[2:], " ")); err != nil {
				return err
			}

			host.Update()
			m, _ := host.Measure(section)
			if s, ok := m.StringValue(); ok {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%g\n", m.Value())
			}
			return nil
		},
	}
}

// run.go: run command
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/agilira/plughost"
	"github.com/spf13/cobra"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		watch  bool
		cycles int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "run <skin>",
		Short: "Update the plugin measures of a skin and print their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, skin, settings, err := flags.openSkin(cmd, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = host.Close() }()

			if watch || settings.WatchConfig {
				watcher, err := plughost.NewSkinWatcher(host, skin.Path(), settings.PollInterval, flags.logger())
				if err != nil {
					return err
				}
				if err := watcher.Start(); err != nil {
					return err
				}
				defer func() { _ = watcher.Stop() }()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if cycles > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithCancel(ctx)
				defer cancel()
				remaining := cycles
				return host.Run(ctx, func(samples []plughost.Sample) {
					printSamples(cmd.OutOrStdout(), samples, asJSON)
					if remaining--; remaining == 0 {
						cancel()
					}
				})
			}
			return host.Run(ctx, func(samples []plughost.Sample) {
				printSamples(cmd.OutOrStdout(), samples, asJSON)
			})
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "reload the skin when the file changes")
	cmd.Flags().IntVar(&cycles, "cycles", 0, "stop after this many update cycles (0 runs until interrupted)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print samples as JSON lines")
	return cmd
}

func printSamples(w io.Writer, samples []plughost.Sample, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(w)
		for _, s := range samples {
			_ = enc.Encode(s)
		}
		return
	}
	for _, s := range samples {
		if s.HasString {
			fmt.Fprintf(w, "%s\t%g\t%g\t%s\n", s.Section, s.Value, s.MaxValue, s.String)
		} else {
			fmt.Fprintf(w, "%s\t%g\t%g\n", s.Section, s.Value, s.MaxValue)
		}
	}
}

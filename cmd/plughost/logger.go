// logger.go: zerolog adapter for the plughost Logger interface
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agilira/plughost"
	"github.com/rs/zerolog"
)

// zerologAdapter forwards host diagnostics to a zerolog.Logger.
type zerologAdapter struct {
	zl zerolog.Logger
}

func newZerologAdapter(out io.Writer, level string, console bool) *zerologAdapter {
	zerolog.TimeFieldFormat = time.RFC3339
	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(out).Level(parseLevel(level)).With().Timestamp().Logger()
	return &zerologAdapter{zl: zl}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (a *zerologAdapter) log(e *zerolog.Event, msg string, args []any) {
	addFields(e, args).Msg(msg)
}

// addFields attaches key-value pairs to e. A dangling key is logged under
// "extra".
func addFields(e *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			e = e.Interface("extra", args[i])
			break
		}
		key := fmt.Sprint(args[i])
		if err, ok := args[i+1].(error); ok {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	return e
}

func (a *zerologAdapter) Debug(msg string, args ...any) { a.log(a.zl.Debug(), msg, args) }
func (a *zerologAdapter) Info(msg string, args ...any) { a.log(a.zl.Info(), msg, args) }
func (a *zerologAdapter) Warn(msg string, args ...any) { a.log(a.zl.Warn(), msg, args) }
func (a *zerologAdapter) Error(msg string, args ...any) { a.log(a.zl.Error(), msg, args) }

func (a *zerologAdapter) With(args ...any) plughost.Logger {
	ctx := a.zl.With()
	for i := 0; i+1 < len(args); i += 2 {
		ctx = ctx.Interface(fmt.Sprint(args[i]), args[i+1])
	}
	return &zerologAdapter{zl: ctx.Logger()}
}

// measure_base.go: numeric value, scale inference and command fallback
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"strconv"
	"strings"
)

// OptionMaxValue is the section key holding the scale override.
const OptionMaxValue = "MaxValue"

// MeasureBase holds the state every measure shares: the last numeric sample
// and the scale ceiling used to normalize it.
type MeasureBase struct {
	name   string
	logger Logger

	value       float64
	maxValue    float64
	logMaxValue bool

	// maxOverride is the MaxValue option of the last ReadOptions pass.
	maxOverride    float64
	hasMaxOverride bool
}

func newMeasureBase(name string, logger Logger) MeasureBase {
	return MeasureBase{
		name:     name,
		logger:   logger,
		maxValue: 1.0,
	}
}

// Name returns the section name of the measure.
func (b *MeasureBase) Name() string { return b.name }

// Value returns the last numeric sample.
func (b *MeasureBase) Value() float64 { return b.value }

// MaxValue returns the scale ceiling.
func (b *MeasureBase) MaxValue() float64 { return b.maxValue }

// LogMaxValue reports whether the ceiling is inferred from observed values
// on a logarithmic scale because nothing configured or reported one.
func (b *MeasureBase) LogMaxValue() bool { return b.logMaxValue }

// readOptions reads the options common to all measures. It only records
// the MaxValue override; inferMaxValue applies it.
func (b *MeasureBase) readOptions(section Section) {
	raw := strings.TrimSpace(section.ReadString(OptionMaxValue, ""))
	if raw == "" {
		b.hasMaxOverride = false
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		b.logger.Warn("Invalid MaxValue ignored", "section", b.name, "value", raw)
		b.hasMaxOverride = false
		return
	}
	b.maxOverride = v
	b.hasMaxOverride = true
}

// inferMaxValue applies the plugin-reported maximum unless MaxValue is
// configured. A report of exactly zero means "unknown": the ceiling falls
// back to 1.0 on a logarithmic scale.
func (b *MeasureBase) inferMaxValue(reported float64) {
	if b.hasMaxOverride {
		b.maxValue = b.maxOverride
		b.logMaxValue = false
		return
	}
	if reported == 0.0 {
		b.maxValue = 1.0
		b.logMaxValue = true
		return
	}
	b.maxValue = reported
	b.logMaxValue = false
}

// applyMaxOverride applies a configured MaxValue without any plugin report,
// for measures that never got a module.
func (b *MeasureBase) applyMaxOverride() {
	if b.hasMaxOverride {
		b.maxValue = b.maxOverride
		b.logMaxValue = false
	}
}

// Command handles a command the measure itself does not understand.
func (b *MeasureBase) Command(command string) {
	b.logger.Warn("Command not supported", "section", b.name, "command", command)
}

// identity.go: process-wide instance identifiers for plugin measures
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"math"
	"sync/atomic"
)

// instanceIDs counts identifiers drawn so far. It starts at zero with the
// process and is never reset: legacy modules key their own instance tables
// by the identifier, so handing one out twice would alias two measures
// inside the plugin. The counter is wider than an identifier so exhaustion
// is detected instead of wrapping.
var instanceIDs atomic.Uint64

// allocateInstanceID draws the next identifier. Called once per measure, at
// the transition from loaded to initialized. It fails once all 2^32
// identifiers have been handed out.
func allocateInstanceID() (uint32, bool) {
	n := instanceIDs.Add(1) - 1
	if n > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

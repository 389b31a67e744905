// identity_test.go: instance identifier allocation tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package plughost

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAllocate(t *testing.T) uint32 {
	t.Helper()
	id, ok := allocateInstanceID()
	require.True(t, ok)
	return id
}

// withInstanceCounter runs fn with the identifier counter at start and puts
// the real counter back afterwards.
func withInstanceCounter(t *testing.T, start uint64, fn func()) {
	t.Helper()
	saved := instanceIDs.Load()
	instanceIDs.Store(start)
	defer instanceIDs.Store(saved)
	fn()
}

func TestAllocateInstanceID_StrictlyIncreasing(t *testing.T) {
	prev := mustAllocate(t)
	for i := 0; i < 100; i++ {
		next := mustAllocate(t)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestAllocateInstanceID_UniqueUnderConcurrency(t *testing.T) {
	const workers, perWorker = 8, 200

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[uint32]struct{}, workers*perWorker)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uint32, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				id, ok := allocateInstanceID()
				if ok {
					local = append(local, id)
				}
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestAllocateInstanceID_NeverWraps(t *testing.T) {
	withInstanceCounter(t, math.MaxUint32, func() {
		last, ok := allocateInstanceID()
		require.True(t, ok)
		assert.Equal(t, uint32(math.MaxUint32), last)

		for i := 0; i < 3; i++ {
			id, ok := allocateInstanceID()
			assert.False(t, ok, "identifier space is spent")
			assert.Zero(t, id)
		}
	})
}

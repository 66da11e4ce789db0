package blocksync

import (
	"sync"
	gosync "sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOp(t *testing.T) {
	var s Sync = NoOp{}
	s.SyncBlockThreads()

	assert.Equal(t, 1, s.SyncBlockThreadsPredicate(Count, 7))
	assert.Equal(t, 0, s.SyncBlockThreadsPredicate(Count, 0))
	assert.Equal(t, 1, s.SyncBlockThreadsPredicate(LogicalAnd, 3))
	assert.Equal(t, 0, s.SyncBlockThreadsPredicate(LogicalAnd, 0))
	assert.Equal(t, 1, s.SyncBlockThreadsPredicate(LogicalOr, -1))
}

// runParticipants runs fn on n goroutines and waits for all of them.
func runParticipants(n int, fn func(id int)) {
	var wg sync.WaitGroup
	for id := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(id)
		}()
	}
	wg.Wait()
}

func TestBarrier_PhasesDoNotOverlap(t *testing.T) {
	const n, phases = 8, 50
	b := NewBarrier(n)
	require.Equal(t, n, b.Participants())

	var arrived [phases]gosync.Int32
	var violations gosync.Int32

	runParticipants(n, func(int) {
		for p := range phases {
			arrived[p].Add(1)
			b.SyncBlockThreads()
			if arrived[p].Load() != n {
				violations.Add(1)
			}
		}
	})
	assert.Zero(t, violations.Load())
}

func TestBarrier_Predicate(t *testing.T) {
	const n = 6
	b := NewBarrier(n)

	results := make([][3]int, n)
	runParticipants(n, func(id int) {
		even := 0
		if id%2 == 0 {
			even = 1
		}
		results[id][0] = b.SyncBlockThreadsPredicate(Count, even)
		results[id][1] = b.SyncBlockThreadsPredicate(LogicalAnd, even)
		results[id][2] = b.SyncBlockThreadsPredicate(LogicalOr, even)
	})

	for id := range n {
		assert.Equal(t, [3]int{3, 0, 1}, results[id], "thread %d", id)
	}
}

func TestBarrier_BreakReleasesWaiters(t *testing.T) {
	b := NewBarrier(3)

	var panics gosync.Int32
	done := make(chan struct{})
	go func() {
		runParticipants(2, func(int) {
			defer func() {
				if r := recover(); r == ErrBarrierBroken {
					panics.Add(1)
				}
			}()
			b.SyncBlockThreads()
		})
		close(done)
	}()

	// the third participant never arrives
	time.Sleep(10 * time.Millisecond)
	b.Break()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("waiters were not released by Break")
	}
	assert.Equal(t, int32(2), panics.Load())
	assert.True(t, b.Broken())
	assert.PanicsWithValue(t, ErrBarrierBroken, func() { b.SyncBlockThreads() })
}

func TestNewBarrier_Invalid(t *testing.T) {
	assert.Panics(t, func() { NewBarrier(0) })
}

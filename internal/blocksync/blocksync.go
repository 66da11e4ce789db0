// Package blocksync implements the synchronization of threads within a
// block.
package blocksync

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBarrierBroken is the panic value raised in threads waiting on a
// barrier that another participant abandoned.
var ErrBarrierBroken = errors.New("blocksync: barrier broken")

// PredicateOp reduces the predicates of all threads of a block.
type PredicateOp int

// Predicate reductions.
const (
	// Count returns the number of threads whose predicate is non-zero.
	Count PredicateOp = iota
	// LogicalAnd returns 1 if every predicate is non-zero.
	LogicalAnd
	// LogicalOr returns 1 if any predicate is non-zero.
	LogicalOr
)

// String returns the reduction name.
func (op PredicateOp) String() string {
	switch op {
	case Count:
		return "Count"
	case LogicalAnd:
		return "LogicalAnd"
	case LogicalOr:
		return "LogicalOr"
	}
	return fmt.Sprintf("PredicateOp(%d)", int(op))
}

// Sync synchronizes the threads of one block.
type Sync interface {
	// SyncBlockThreads returns once every thread of the block has called
	// it. Shared memory writes before the call are visible after it.
	SyncBlockThreads()
	// SyncBlockThreadsPredicate synchronizes and reduces pred over all
	// threads of the block with op. Every thread receives the same result.
	SyncBlockThreadsPredicate(op PredicateOp, pred int) int
}

// NoOp is the Sync of blocks with a single thread.
type NoOp struct{}

// SyncBlockThreads implements Sync.
func (NoOp) SyncBlockThreads() {}

// SyncBlockThreadsPredicate implements Sync.
func (NoOp) SyncBlockThreadsPredicate(op PredicateOp, pred int) int {
	return reduce(op, identity(op), pred)
}

// Barrier is a reusable barrier for a fixed number of participants.
//
// A participant that stops participating must call Break; every thread
// blocked in the current or a later generation then panics with
// ErrBarrierBroken instead of waiting forever.
type Barrier struct {
	n int

	mu      sync.Mutex
	cond    *sync.Cond
	arrived int
	gen     uint64
	broken  bool

	// reduction state of the current generation and the published result
	// of the previous one
	acc    int
	result int
}

// NewBarrier returns a barrier for n participants.
func NewBarrier(n int) *Barrier {
	if n < 1 {
		panic(fmt.Sprintf("blocksync: barrier needs at least one participant, got %d", n))
	}
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Participants returns the number of threads the barrier waits for.
func (b *Barrier) Participants() int {
	return b.n
}

// SyncBlockThreads implements Sync.
func (b *Barrier) SyncBlockThreads() {
	b.SyncBlockThreadsPredicate(Count, 0)
}

// SyncBlockThreadsPredicate implements Sync.
func (b *Barrier) SyncBlockThreadsPredicate(op PredicateOp, pred int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.broken {
		panic(ErrBarrierBroken)
	}

	if b.arrived == 0 {
		b.acc = identity(op)
	}
	b.acc = reduce(op, b.acc, pred)
	b.arrived++

	if b.arrived == b.n {
		b.result = b.acc
		b.arrived = 0
		b.gen++
		b.cond.Broadcast()
		return b.result
	}

	gen := b.gen
	for gen == b.gen && !b.broken {
		b.cond.Wait()
	}
	if gen == b.gen {
		panic(ErrBarrierBroken)
	}
	return b.result
}

// Break marks the barrier broken and wakes all waiters.
func (b *Barrier) Break() {
	b.mu.Lock()
	b.broken = true
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Broken reports whether Break was called.
func (b *Barrier) Broken() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.broken
}

func identity(op PredicateOp) int {
	if op == LogicalAnd {
		return 1
	}
	return 0
}

func reduce(op PredicateOp, acc, pred int) int {
	switch op {
	case Count:
		if pred != 0 {
			return acc + 1
		}
		return acc
	case LogicalAnd:
		if acc != 0 && pred != 0 {
			return 1
		}
		return 0
	case LogicalOr:
		if acc != 0 || pred != 0 {
			return 1
		}
		return 0
	}
	panic(fmt.Sprintf("blocksync: unknown predicate op %v", op))
}

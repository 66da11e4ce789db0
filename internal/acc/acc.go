// Package acc implements the accelerator: the object a kernel receives for
// every execution unit, and the variants that decide how units map onto
// goroutines.
//
// An Acc is created by the variant for one (grid block, block thread)
// position and carries that position for its whole life. It must not be
// copied or retained after the kernel body returns.
package acc

import (
	"github.com/born-ml/accel/internal/atomic"
	"github.com/born-ml/accel/internal/blocksync"
	"github.com/born-ml/accel/internal/clock"
	"github.com/born-ml/accel/internal/intrinsic"
	"github.com/born-ml/accel/internal/mathfn"
	"github.com/born-ml/accel/internal/rand"
	"github.com/born-ml/accel/internal/shared"
	"github.com/born-ml/accel/internal/vec"
	"github.com/born-ml/accel/internal/warp"
	"github.com/born-ml/accel/internal/workdiv"
)

// noCopy may be embedded into structs which must not be copied after first
// use. See go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Acc is the view of one execution unit on the launch.
type Acc[D vec.Dim, I vec.Index] struct {
	noCopy noCopy

	name           string
	workDiv        workdiv.WorkDiv[D, I]
	gridBlockIdx   vec.Vec[D, I]
	blockThreadIdx vec.Vec[D, I]

	atomics atomic.Hierarchy
	sync    blocksync.Sync
	dyn     *shared.Dyn
	st      *shared.St
	caps    *capabilities
	warp    warp.Warp
}

// Name returns the accelerator name, e.g. "AccCpuSerial<1,int>".
func (a *Acc[D, I]) Name() string { return a.name }

// WorkDiv returns the work division of the launch.
func (a *Acc[D, I]) WorkDiv() workdiv.WorkDiv[D, I] { return a.workDiv }

// GridBlockIdx returns the index of the calling block within the grid.
func (a *Acc[D, I]) GridBlockIdx() vec.Vec[D, I] { return a.gridBlockIdx }

// BlockThreadIdx returns the index of the calling thread within its block.
func (a *Acc[D, I]) BlockThreadIdx() vec.Vec[D, I] { return a.blockThreadIdx }

// GridThreadIdx returns the index of the calling thread within the grid.
func (a *Acc[D, I]) GridThreadIdx() vec.Vec[D, I] {
	return a.gridBlockIdx.Mul(a.workDiv.BlockThreadExtent).Add(a.blockThreadIdx)
}

// LinearGridThreadIdx returns GridThreadIdx in row-major linear form.
func (a *Acc[D, I]) LinearGridThreadIdx() I {
	return vec.IndexToLinear(a.workDiv.GridThreadExtent(), a.GridThreadIdx())
}

// LinearBlockThreadIdx returns BlockThreadIdx in row-major linear form.
func (a *Acc[D, I]) LinearBlockThreadIdx() I {
	return vec.IndexToLinear(a.workDiv.BlockThreadExtent, a.blockThreadIdx)
}

func (a *Acc[D, I]) GridBlockExtent() vec.Vec[D, I]   { return a.workDiv.GridBlockExtent }
func (a *Acc[D, I]) BlockThreadExtent() vec.Vec[D, I] { return a.workDiv.BlockThreadExtent }
func (a *Acc[D, I]) ThreadElemExtent() vec.Vec[D, I]  { return a.workDiv.ThreadElemExtent }
func (a *Acc[D, I]) GridThreadExtent() vec.Vec[D, I]  { return a.workDiv.GridThreadExtent() }
func (a *Acc[D, I]) GridElemExtent() vec.Vec[D, I]    { return a.workDiv.GridElemExtent() }
func (a *Acc[D, I]) BlockElemExtent() vec.Vec[D, I]   { return a.workDiv.BlockElemExtent() }

// Atomics returns the strategy of each atomic level.
func (a *Acc[D, I]) Atomics() atomic.Hierarchy { return a.atomics }

// SyncBlockThreads waits until every thread of the block has reached it.
func (a *Acc[D, I]) SyncBlockThreads() { a.sync.SyncBlockThreads() }

// SyncBlockThreadsPredicate synchronizes the block and reduces pred over
// its threads.
func (a *Acc[D, I]) SyncBlockThreadsPredicate(op blocksync.PredicateOp, pred int) int {
	return a.sync.SyncBlockThreadsPredicate(op, pred)
}

// Math returns the math capability.
func (a *Acc[D, I]) Math() *mathfn.Table { return a.caps.math }

// Rand returns a generator for seed whose subsequence is the linear grid
// thread index, so every thread draws an independent stream.
func (a *Acc[D, I]) Rand(seed uint64) rand.Generator {
	return a.caps.rand(seed, uint64(a.LinearGridThreadIdx()))
}

// Clock returns the time capability.
func (a *Acc[D, I]) Clock() *clock.Table { return a.caps.clock }

// Intrinsic returns the bit-manipulation capability.
func (a *Acc[D, I]) Intrinsic() *intrinsic.Table { return a.caps.intrinsic }

// Warp returns the warp capability of the calling thread.
func (a *Acc[D, I]) Warp() warp.Warp { return a.warp }

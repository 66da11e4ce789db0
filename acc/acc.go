// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package acc provides the accelerator a kernel runs against and the
// variants that map blocks and threads onto goroutines.
//
// Variants:
//   - CpuSerial: blocks run one after another, one thread per block
//   - CpuThreads: blocks run one after another, threads run concurrently
//   - CpuBlocks: blocks run concurrently, one thread per block
//   - GpuSim: blocks and threads run concurrently, threads form warps
//
// Inside a kernel the Acc gives the thread its indices, atomics, block
// synchronization, shared memory and the math, random, clock, intrinsic
// and warp capabilities of the variant:
//
//	func (k histogram) Run(a *acc.Acc[vec.D1, int]) {
//		local := acc.DynSharedMem[uint32](a)
//		acc.ForEachElemWithin(a, vec.Of[vec.D1](len(k.data)), func(idx vec.Vec[vec.D1, int]) {
//			acc.AtomicOpAt(a, acc.Blocks, acc.AtomicAdd, &local[k.bin(idx)], 1)
//		})
//		a.SyncBlockThreads()
//		...
//	}
package acc

import (
	"github.com/born-ml/accel/dev"
	"github.com/born-ml/accel/internal/acc"
	"github.com/born-ml/accel/internal/atomic"
	"github.com/born-ml/accel/internal/blocksync"
	"github.com/born-ml/accel/internal/parallel"
	"github.com/born-ml/accel/internal/shared"
	"github.com/born-ml/accel/queue"
	"github.com/born-ml/accel/vec"
)

// Acc is the view of one execution unit on the launch.
type Acc[D vec.Dim, I vec.Index] = acc.Acc[D, I]

// Variant is the dimension-independent description of an accelerator.
type Variant = acc.Variant

// Kind is an accelerator variant for dimension D and index type I.
type Kind[D vec.Dim, I vec.Index] = acc.Kind[D, I]

// Accelerator variants.
type (
	CpuSerial[D vec.Dim, I vec.Index]  = acc.CpuSerial[D, I]
	CpuThreads[D vec.Dim, I vec.Index] = acc.CpuThreads[D, I]
	CpuBlocks[D vec.Dim, I vec.Index]  = acc.CpuBlocks[D, I]
	GpuSim[D vec.Dim, I vec.Index]     = acc.GpuSim[D, I]
)

// Op is an atomic read-modify-write operation.
type Op = atomic.Op

// Atomic operations.
const (
	AtomicAdd  Op = atomic.Add
	AtomicSub  Op = atomic.Sub
	AtomicMin  Op = atomic.Min
	AtomicMax  Op = atomic.Max
	AtomicExch Op = atomic.Exch
	AtomicInc  Op = atomic.Inc
	AtomicDec  Op = atomic.Dec
	AtomicAnd  Op = atomic.And
	AtomicOr   Op = atomic.Or
	AtomicXor  Op = atomic.Xor
)

// Level is the scope an atomic operation is atomic within.
type Level = atomic.Level

// Atomic levels.
const (
	Grids   Level = atomic.Grids
	Blocks  Level = atomic.Blocks
	Threads Level = atomic.Threads
)

// AtomicValue is the operand set of atomic operations.
type AtomicValue = atomic.Value

// PredicateOp reduces the predicates of SyncBlockThreadsPredicate.
type PredicateOp = blocksync.PredicateOp

// Predicate reductions.
const (
	SyncCount      PredicateOp = blocksync.Count
	SyncLogicalAnd PredicateOp = blocksync.LogicalAnd
	SyncLogicalOr  PredicateOp = blocksync.LogicalOr
)

// Float is the operand set of the math helpers.
type Float = acc.Float

// PanicError is returned by a launch whose kernel panicked.
type PanicError = parallel.PanicError

// Errors raised by launches and kernels.
var (
	ErrDeviceKind      = acc.ErrDeviceKind
	ErrBarrierBroken   = blocksync.ErrBarrierBroken
	ErrStaticExhausted = shared.ErrStaticExhausted
	ErrBitwiseFloat    = atomic.ErrBitwiseFloat
)

// GetProps returns the properties of variant A on d.
func GetProps[A Kind[D, I], D vec.Dim, I vec.Index](d *dev.Device) (dev.Props[D, I], error) {
	return acc.GetProps[A, D, I](d)
}

// NewQueue returns a queue on d with the default behavior of A.
func NewQueue[A Variant](d *dev.Device) *queue.Queue { return acc.NewQueue[A](d) }

// AtomicOp applies op to *addr atomically across the grid and returns the
// previous value.
func AtomicOp[T AtomicValue, D vec.Dim, I vec.Index](a *Acc[D, I], op Op, addr *T, v T) T {
	return acc.AtomicOp(a, op, addr, v)
}

// AtomicOpAt applies op with the atomicity of level.
func AtomicOpAt[T AtomicValue, D vec.Dim, I vec.Index](a *Acc[D, I], level Level, op Op, addr *T, v T) T {
	return acc.AtomicOpAt(a, level, op, addr, v)
}

// AtomicCas stores v at addr if *addr equals compare and returns the
// previous value.
func AtomicCas[T AtomicValue, D vec.Dim, I vec.Index](a *Acc[D, I], addr *T, compare, v T) T {
	return acc.AtomicCas(a, addr, compare, v)
}

// AtomicCasAt is AtomicCas with the atomicity of level.
func AtomicCasAt[T AtomicValue, D vec.Dim, I vec.Index](a *Acc[D, I], level Level, addr *T, compare, v T) T {
	return acc.AtomicCasAt(a, level, addr, compare, v)
}

// SharedVar returns the block shared variable declared under id.
func SharedVar[T any, D vec.Dim, I vec.Index](a *Acc[D, I], id uint64) *T {
	return acc.SharedVar[T](a, id)
}

// DynSharedMem returns the dynamic shared memory of the block.
func DynSharedMem[T any, D vec.Dim, I vec.Index](a *Acc[D, I]) []T {
	return acc.DynSharedMem[T](a)
}

// ForEachElem calls fn for every grid element the thread owns.
func ForEachElem[D vec.Dim, I vec.Index](a *Acc[D, I], fn func(idx vec.Vec[D, I])) {
	acc.ForEachElem(a, fn)
}

// ForEachElemWithin is ForEachElem restricted to extent.
func ForEachElemWithin[D vec.Dim, I vec.Index](a *Acc[D, I], extent vec.Vec[D, I], fn func(idx vec.Vec[D, I])) {
	acc.ForEachElemWithin(a, extent, fn)
}

// Sqrt returns the square root of x using the math capability of a.
func Sqrt[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F { return acc.Sqrt(a, x) }

// Floor returns the floor of x using the math capability of a.
func Floor[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F { return acc.Floor(a, x) }

// Exp returns e**x using the math capability of a.
func Exp[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F { return acc.Exp(a, x) }

// Min returns the smaller of x and y using the math capability of a.
func Min[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x, y F) F { return acc.Min(a, x, y) }

// Max returns the larger of x and y using the math capability of a.
func Max[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x, y F) F { return acc.Max(a, x, y) }

// Package samples contains reference kernels and a name-based launcher
// shared by the CLI, the example programs and the tests.
package samples

import (
	"unsafe"

	"github.com/born-ml/accel/internal/acc"
	"github.com/born-ml/accel/internal/atomic"
	"github.com/born-ml/accel/internal/rand"
	"github.com/born-ml/accel/internal/vec"
)

// VecAdd computes C[i] = A[i] + B[i] over len(C) elements.
type VecAdd[T atomic.Value, I vec.Index] struct {
	A, B, C []T
}

func (k VecAdd[T, I]) Run(a *acc.Acc[vec.D1, I]) {
	acc.ForEachElemWithin(a, vec.Of[vec.D1](I(len(k.C))), func(idx vec.Vec[vec.D1, I]) {
		i := idx.At(0)
		k.C[i] = k.A[i] + k.B[i]
	})
}

// Histogram counts Data into len(Bins) equal-width bins over [Lo, Hi).
// Values outside the range land in the first or last bin. Every block
// builds a private histogram in dynamic shared memory and merges it into
// Bins with grid atomics.
type Histogram[I vec.Index] struct {
	Data   []float64
	Lo, Hi float64
	Bins   []uint32
}

func (k Histogram[I]) BlockSharedMemDynSizeBytes(_, _ vec.Vec[vec.D1, I]) uintptr {
	return uintptr(len(k.Bins)) * 4
}

func (k Histogram[I]) Run(a *acc.Acc[vec.D1, I]) {
	local := acc.DynSharedMem[uint32](a)
	n := len(k.Bins)
	scale := float64(n) / (k.Hi - k.Lo)

	acc.ForEachElemWithin(a, vec.Of[vec.D1](I(len(k.Data))), func(idx vec.Vec[vec.D1, I]) {
		b := int(acc.Floor(a, (k.Data[idx.At(0)]-k.Lo)*scale))
		b = min(max(b, 0), n-1)
		acc.AtomicOpAt(a, atomic.Blocks, atomic.Add, &local[b], 1)
	})
	a.SyncBlockThreads()

	threads := int(a.BlockThreadExtent().Prod())
	for b := int(a.LinearBlockThreadIdx()); b < n; b += threads {
		if local[b] != 0 {
			acc.AtomicOp(a, atomic.Add, &k.Bins[b], local[b])
		}
	}
}

// Sum adds Data into *Out. Threads reduce their elements, blocks reduce
// the thread partials in shared memory as a tree and thread 0 of every
// block adds the block total atomically.
type Sum[T atomic.Value, I vec.Index] struct {
	Data []T
	Out  *T
}

func (k Sum[T, I]) BlockSharedMemDynSizeBytes(blockThreadExtent, _ vec.Vec[vec.D1, I]) uintptr {
	var zero T
	return uintptr(blockThreadExtent.Prod()) * unsafe.Sizeof(zero)
}

func (k Sum[T, I]) Run(a *acc.Acc[vec.D1, I]) {
	threads := int(a.BlockThreadExtent().Prod())
	partial := acc.DynSharedMem[T](a)[:threads]
	tid := int(a.LinearBlockThreadIdx())

	var s T
	acc.ForEachElemWithin(a, vec.Of[vec.D1](I(len(k.Data))), func(idx vec.Vec[vec.D1, I]) {
		s += k.Data[idx.At(0)]
	})
	partial[tid] = s
	a.SyncBlockThreads()

	for stride := ceilPow2(threads) / 2; stride > 0; stride /= 2 {
		if tid < stride && tid+stride < threads {
			partial[tid] += partial[tid+stride]
		}
		a.SyncBlockThreads()
	}
	if tid == 0 {
		acc.AtomicOp(a, atomic.Add, k.Out, partial[0])
	}
}

func ceilPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Pi estimates pi by Monte Carlo. Every thread draws Samples points in the
// unit square from its own random stream and counts those inside the
// quarter circle into *Hits.
type Pi[I vec.Index] struct {
	Seed    uint64
	Samples int
	Hits    *uint64
}

func (k Pi[I]) Run(a *acc.Acc[vec.D1, I]) {
	g := a.Rand(k.Seed)
	var hits uint64
	for range k.Samples {
		x, y := rand.Uniform[float64](g), rand.Uniform[float64](g)
		if x*x+y*y <= 1 {
			hits++
		}
	}
	acc.AtomicOp(a, atomic.Add, k.Hits, hits)
}

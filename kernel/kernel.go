// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package kernel turns a kernel and a work division into a task for an
// accelerator variant.
//
// A kernel is any type with a Run method; its fields are the arguments:
//
//	type scale struct {
//		data   []float32
//		factor float32
//	}
//
//	func (k scale) Run(a *acc.Acc[vec.D1, int]) {
//		acc.ForEachElemWithin(a, vec.Of[vec.D1](len(k.data)), func(idx vec.Vec[vec.D1, int]) {
//			k.data[idx.At(0)] *= k.factor
//		})
//	}
//
//	task := kernel.Create[acc.CpuBlocks[vec.D1, int]](wd, scale{data, 2})
//	err := kernel.Enqueue(ctx, q, task)
//
// The task validates the work division and shared memory request against
// the device before any thread runs.
package kernel

import (
	"context"

	"github.com/born-ml/accel/acc"
	"github.com/born-ml/accel/internal/kernel"
	"github.com/born-ml/accel/queue"
	"github.com/born-ml/accel/vec"
	"github.com/born-ml/accel/workdiv"
)

// Kernel is the body run by every execution unit.
type Kernel[D vec.Dim, I vec.Index] = kernel.Kernel[D, I]

// Func adapts a function to Kernel.
type Func[D vec.Dim, I vec.Index] = kernel.Func[D, I]

// DynSharedMemSizer is implemented by kernels that need dynamic block
// shared memory.
type DynSharedMemSizer[D vec.Dim, I vec.Index] = kernel.DynSharedMemSizer[D, I]

// StaticSharedMemSizer is implemented by kernels that declare the size of
// their static shared variables.
type StaticSharedMemSizer = kernel.StaticSharedMemSizer

// Task is a kernel launch on variant A.
type Task[A acc.Kind[D, I], D vec.Dim, I vec.Index] = kernel.Task[A, D, I]

// Create binds k and wd to variant A.
func Create[A acc.Kind[D, I], D vec.Dim, I vec.Index](wd workdiv.WorkDiv[D, I], k Kernel[D, I]) *Task[A, D, I] {
	return kernel.Create[A](wd, k)
}

// CreateFunc is Create for a kernel given as a function.
func CreateFunc[A acc.Kind[D, I], D vec.Dim, I vec.Index](wd workdiv.WorkDiv[D, I], fn func(a *acc.Acc[D, I])) *Task[A, D, I] {
	return kernel.CreateFunc[A](wd, fn)
}

// Enqueue submits task to q.
func Enqueue(ctx context.Context, q *queue.Queue, task queue.Task) error {
	return kernel.Enqueue(ctx, q, task)
}

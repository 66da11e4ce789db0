// Package kernel binds a kernel, its work division and an accelerator
// variant into a task that a queue can execute.
package kernel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/born-ml/accel/internal/acc"
	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/queue"
	"github.com/born-ml/accel/internal/vec"
	"github.com/born-ml/accel/internal/workdiv"
)

// Kernel is the body run by every execution unit. Its fields are the
// kernel arguments.
type Kernel[D vec.Dim, I vec.Index] interface {
	Run(a *acc.Acc[D, I])
}

// Func adapts a function to Kernel.
type Func[D vec.Dim, I vec.Index] func(a *acc.Acc[D, I])

// Run implements Kernel.
func (f Func[D, I]) Run(a *acc.Acc[D, I]) { f(a) }

// DynSharedMemSizer is implemented by kernels that need dynamic block
// shared memory.
type DynSharedMemSizer[D vec.Dim, I vec.Index] interface {
	BlockSharedMemDynSizeBytes(blockThreadExtent, threadElemExtent vec.Vec[D, I]) uintptr
}

// StaticSharedMemSizer is implemented by kernels that declare the total
// size of their static shared variables. Kernels without it may use the
// device shared memory left after the dynamic part.
type StaticSharedMemSizer interface {
	BlockSharedMemStSizeBytes() uintptr
}

// Task is a kernel launch on accelerator variant A.
type Task[A acc.Kind[D, I], D vec.Dim, I vec.Index] struct {
	workDiv workdiv.WorkDiv[D, I]
	kernel  Kernel[D, I]
}

// Create binds k and wd to the accelerator variant A:
//
//	task := kernel.Create[acc.CpuThreads[vec.D1, int]](wd, VecAdd{...})
func Create[A acc.Kind[D, I], D vec.Dim, I vec.Index](wd workdiv.WorkDiv[D, I], k Kernel[D, I]) *Task[A, D, I] {
	return &Task[A, D, I]{workDiv: wd, kernel: k}
}

// CreateFunc is Create for a kernel given as a function.
func CreateFunc[A acc.Kind[D, I], D vec.Dim, I vec.Index](wd workdiv.WorkDiv[D, I], fn func(a *acc.Acc[D, I])) *Task[A, D, I] {
	return Create[A](wd, Func[D, I](fn))
}

// WorkDiv returns the work division of the task.
func (t *Task[A, D, I]) WorkDiv() workdiv.WorkDiv[D, I] { return t.workDiv }

// Kernel returns the bound kernel.
func (t *Task[A, D, I]) Kernel() Kernel[D, I] { return t.kernel }

// SharedMemBytes returns the dynamic and static shared memory the kernel
// requests per block.
func (t *Task[A, D, I]) SharedMemBytes() (dyn, st uintptr) {
	if s, ok := t.kernel.(DynSharedMemSizer[D, I]); ok {
		dyn = s.BlockSharedMemDynSizeBytes(t.workDiv.BlockThreadExtent, t.workDiv.ThreadElemExtent)
	}
	if s, ok := t.kernel.(StaticSharedMemSizer); ok {
		st = s.BlockSharedMemStSizeBytes()
	}
	return dyn, st
}

// Exec validates the launch against the properties of A on d and runs it.
// No execution unit runs when validation fails.
func (t *Task[A, D, I]) Exec(ctx context.Context, d *dev.Device) error {
	var a A
	name := a.Name()

	props, err := a.Props(d)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := workdiv.Validate(t.workDiv, props); err != nil {
		slog.Debug("Kernel rejected", "acc", name, "device", d.ID(), "work_div", t.workDiv.String(), "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}

	dyn, st := t.SharedMemBytes()
	total := dyn + st
	if total < dyn {
		total = ^uintptr(0)
	}
	if err := workdiv.ValidateSharedMem(total, props.SharedMemSizeBytes); err != nil {
		slog.Debug("Kernel rejected", "acc", name, "device", d.ID(), "shared_mem_bytes", total, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}

	slog.Debug("Kernel launch", "acc", name, "device", d.ID(), "work_div", t.workDiv.String(), "dyn_shared_bytes", dyn)
	start := time.Now()
	err = acc.Launch[A](ctx, d, props, acc.Params[D, I]{
		WorkDiv:           t.workDiv,
		DynSharedMemBytes: dyn,
		StSharedMemBytes:  st,
		Body:              t.kernel.Run,
	})
	if err != nil {
		slog.Debug("Kernel failed", "acc", name, "device", d.ID(), "elapsed", time.Since(start), "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	slog.Debug("Kernel done", "acc", name, "device", d.ID(), "elapsed", time.Since(start))
	return nil
}

// Enqueue submits task to q.
func Enqueue(ctx context.Context, q *queue.Queue, task queue.Task) error {
	return q.Enqueue(ctx, task)
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mem allocates device buffers and wraps caller memory as views.
//
// Rows of a view may be padded; PitchBytes reports the byte distance
// between consecutive rows and slabs:
//
//	buf := mem.Alloc[float32](d, vec.Of[vec.D2](rows, cols))
//	*buf.At(vec.Of[vec.D2](1, 2)) = 3
//	view, err := mem.NewViewPlainPtr(buf.Data(), d, buf.Extent(), buf.PitchBytes())
package mem

import (
	"github.com/born-ml/accel/dev"
	"github.com/born-ml/accel/internal/mem"
	"github.com/born-ml/accel/queue"
	"github.com/born-ml/accel/vec"
)

// View is a typed window onto device memory.
type View[T any, D vec.Dim, I vec.Index] = mem.View[T, D, I]

// Buf is memory allocated for a device.
type Buf[T any, D vec.Dim, I vec.Index] = mem.Buf[T, D, I]

// ViewPlainPtr is a view over memory the caller owns.
type ViewPlainPtr[T any, D vec.Dim, I vec.Index] = mem.ViewPlainPtr[T, D, I]

// Errors returned by view construction and memory tasks.
var (
	ErrExtent    = mem.ErrExtent
	ErrPitch     = mem.ErrPitch
	ErrShortData = mem.ErrShortData
)

// Alloc allocates a zeroed buffer with rows padded for d.
func Alloc[T any, D vec.Dim, I vec.Index](d *dev.Device, extent vec.Vec[D, I]) *Buf[T, D, I] {
	return mem.Alloc[T](d, extent)
}

// NewViewPlainPtr wraps data as a view on d.
func NewViewPlainPtr[T any, D vec.Dim, I vec.Index](data []T, d *dev.Device, extent, pitchBytes vec.Vec[D, I]) (*ViewPlainPtr[T, D, I], error) {
	return mem.NewViewPlainPtr(data, d, extent, pitchBytes)
}

// PitchBytesMinimum returns the pitch of a packed layout of extent.
func PitchBytesMinimum[T any, D vec.Dim, I vec.Index](extent vec.Vec[D, I]) vec.Vec[D, I] {
	return mem.PitchBytesMinimum[T](extent)
}

// At returns a pointer to the element of v at idx.
func At[T any, D vec.Dim, I vec.Index](v View[T, D, I], idx vec.Vec[D, I]) *T {
	return mem.At(v, idx)
}

// Packed copies the elements of v without padding.
func Packed[T any, D vec.Dim, I vec.Index](v View[T, D, I]) []T { return mem.Packed(v) }

// CreateTaskSet returns a task that fills the leading extent of v.
func CreateTaskSet[T any, D vec.Dim, I vec.Index](v View[T, D, I], value T, extent vec.Vec[D, I]) (queue.Task, error) {
	return mem.CreateTaskSet(v, value, extent)
}

// CreateTaskCopy returns a task that copies the leading extent of src to dst.
func CreateTaskCopy[T any, D vec.Dim, I vec.Index](dst, src View[T, D, I], extent vec.Vec[D, I]) (queue.Task, error) {
	return mem.CreateTaskCopy(dst, src, extent)
}

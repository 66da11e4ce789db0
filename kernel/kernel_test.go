// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package kernel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/born-ml/accel/acc"
	"github.com/born-ml/accel/dev"
	"github.com/born-ml/accel/kernel"
	"github.com/born-ml/accel/mem"
	"github.com/born-ml/accel/queue"
	"github.com/born-ml/accel/vec"
	"github.com/born-ml/accel/workdiv"
)

// transpose writes the transpose of in into out, both pitched views.
type transpose struct {
	in, out *mem.Buf[float32, vec.D2, int]
}

func (k transpose) Run(a *acc.Acc[vec.D2, int]) {
	acc.ForEachElemWithin(a, k.in.Extent(), func(idx vec.Vec[vec.D2, int]) {
		*k.out.At(vec.Of[vec.D2](idx.At(1), idx.At(0))) = *k.in.At(idx)
	})
}

// TestPublicAPI_Transpose runs a 2D kernel on a simulated GPU device using
// only the public packages.
func TestPublicAPI_Transpose(t *testing.T) {
	const rows, cols = 5, 9
	ctx := context.Background()

	d, err := dev.DeviceByIndex(dev.GPUSim, 0)
	if err != nil {
		t.Fatalf("DeviceByIndex failed: %v", err)
	}
	host := dev.Host()

	in := mem.Alloc[float32](d, vec.Of[vec.D2](rows, cols))
	out := mem.Alloc[float32](d, vec.Of[vec.D2](cols, rows))
	src := make([]float32, rows*cols)
	for i := range src {
		src[i] = float32(i)
	}
	srcView, err := mem.NewViewPlainPtr(src, host, vec.Of[vec.D2](rows, cols), mem.PitchBytesMinimum[float32](vec.Of[vec.D2](rows, cols)))
	if err != nil {
		t.Fatalf("NewViewPlainPtr failed: %v", err)
	}

	type gpu = acc.GpuSim[vec.D2, int]
	q := acc.NewQueue[gpu](d)
	if q.Behavior() != queue.NonBlocking {
		t.Errorf("Behavior() = %v, want non-blocking", q.Behavior())
	}

	upload, err := mem.CreateTaskCopy[float32](in, srcView, in.Extent())
	if err != nil {
		t.Fatalf("CreateTaskCopy failed: %v", err)
	}
	props, err := acc.GetProps[gpu, vec.D2, int](d)
	if err != nil {
		t.Fatalf("GetProps failed: %v", err)
	}
	wd, err := workdiv.Suggest(props, in.Extent(), vec.Ones[vec.D2, int](), workdiv.Relaxed)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if err := q.Enqueue(ctx, upload); err != nil {
		t.Fatalf("Enqueue upload failed: %v", err)
	}
	if err := kernel.Enqueue(ctx, q, kernel.Create[gpu](wd, transpose{in: in, out: out})); err != nil {
		t.Fatalf("Enqueue kernel failed: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for r := range rows {
		for c := range cols {
			if got, want := *out.At(vec.Of[vec.D2](c, r)), float32(r*cols+c); got != want {
				t.Errorf("out[%d][%d] = %v, want %v", c, r, got, want)
			}
		}
	}
}

// TestPublicAPI_InvalidWorkDiv checks that a rejected launch reports the
// violated limit through the public error types.
func TestPublicAPI_InvalidWorkDiv(t *testing.T) {
	wd := workdiv.New(vec.Of[vec.D1](1), vec.Of[vec.D1](2), vec.Ones[vec.D1, int]())
	task := kernel.CreateFunc[acc.CpuSerial[vec.D1, int]](wd, func(*acc.Acc[vec.D1, int]) {
		t.Error("kernel body ran")
	})

	q := queue.New(dev.Host(), queue.Blocking)
	err := kernel.Enqueue(context.Background(), q, task)

	var le *workdiv.LimitError
	if !errors.As(err, &le) {
		t.Fatalf("Enqueue error = %v, want *workdiv.LimitError", err)
	}
	if le.Axis != 0 {
		t.Errorf("Axis = %d, want 0", le.Axis)
	}
	if !errors.Is(err, workdiv.ErrInvalid) {
		t.Errorf("Enqueue error = %v, want ErrInvalid", err)
	}
}

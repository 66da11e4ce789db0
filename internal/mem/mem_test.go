package mem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/queue"
	"github.com/born-ml/accel/internal/vec"
)

func gpuSim(t *testing.T) *dev.Device {
	t.Helper()
	d, err := dev.DeviceByIndex(dev.GPUSim, 0)
	require.NoError(t, err)
	return d
}

func TestAlloc_HostIsPacked(t *testing.T) {
	extent := vec.Of[vec.D3, int](2, 3, 5)
	buf := Alloc[float32](dev.Host(), extent)

	assert.Same(t, dev.Host(), buf.Device())
	assert.Equal(t, extent, buf.Extent())
	assert.Equal(t, vec.Of[vec.D3, int](120, 60, 20), buf.PitchBytes())
	assert.Equal(t, PitchBytesMinimum[float32](extent), buf.PitchBytes())
	assert.Len(t, buf.Data(), 30)
}

func TestAlloc_GpuSimPadsRows(t *testing.T) {
	buf := Alloc[float64](gpuSim(t), vec.Of[vec.D2, int](3, 5))

	assert.Equal(t, vec.Of[vec.D2, int](768, 256), buf.PitchBytes())
	assert.Len(t, buf.Data(), 96)
	assert.Len(t, buf.Row(vec.Of[vec.D2, int](1, 0)), 5)
}

func TestAlloc_OddElementSize(t *testing.T) {
	type rgb struct{ R, G, B uint8 }
	buf := Alloc[rgb](gpuSim(t), vec.Of[vec.D1, int](10))

	assert.Zero(t, buf.PitchBytes().At(0)%3, "row pitch must hold whole elements")
	assert.Zero(t, buf.PitchBytes().At(0)%256)
}

func TestAt_Layout(t *testing.T) {
	buf := Alloc[int32](gpuSim(t), vec.Of[vec.D2, int](2, 3))
	for y := range 2 {
		for x := range 3 {
			*buf.At(vec.Of[vec.D2, int](y, x)) = int32(10*y + x)
		}
	}

	assert.Equal(t, []int32{0, 1, 2, 10, 11, 12}, buf.Packed())
	assert.Equal(t, int32(10), buf.Data()[64], "second row starts after 256 bytes")
	assert.Equal(t, []int32{10, 11, 12}, buf.Row(vec.Of[vec.D2, int](1, 2)))
}

func TestAt_OutOfRangePanics(t *testing.T) {
	buf := Alloc[int](dev.Host(), vec.Of[vec.D2, int](2, 2))

	assert.PanicsWithError(t, "index out of range: (2, 0) outside extent (2, 2)", func() {
		buf.At(vec.Of[vec.D2, int](2, 0))
	})
	assert.Panics(t, func() { buf.At(vec.Of[vec.D2, int](0, -1)) })
}

func TestNewViewPlainPtr_WrapsBuffer(t *testing.T) {
	buf := Alloc[float32](gpuSim(t), vec.Of[vec.D2, int](4, 3))
	*buf.At(vec.Of[vec.D2, int](3, 2)) = 7

	view, err := NewViewPlainPtr(buf.Data(), buf.Device(), buf.Extent(), buf.PitchBytes())
	require.NoError(t, err)

	assert.Same(t, buf.Device(), view.Device())
	assert.Equal(t, buf.Extent(), view.Extent())
	assert.Equal(t, buf.PitchBytes(), view.PitchBytes())
	assert.Equal(t, float32(7), *view.At(vec.Of[vec.D2, int](3, 2)))

	*view.At(vec.Of[vec.D2, int](0, 0)) = 1
	assert.Equal(t, float32(1), buf.Data()[0], "view aliases the buffer")
}

func TestNewViewPlainPtr_Errors(t *testing.T) {
	extent := vec.Of[vec.D2, int](2, 4)
	data := make([]float32, 8)

	tests := []struct {
		name  string
		data  []float32
		pitch vec.Vec[vec.D2, int]
		want  error
	}{
		{"row pitch not whole elements", data, vec.Of[vec.D2, int](36, 18), ErrPitch},
		{"row pitch below packed", data, vec.Of[vec.D2, int](24, 12), ErrPitch},
		{"slab pitch below packed", data, vec.Of[vec.D2, int](16, 16), ErrPitch},
		{"short data", data[:7], vec.Of[vec.D2, int](32, 16), ErrShortData},
		{"slab pitch below padded rows", data, vec.Of[vec.D2, int](36, 20), ErrPitch},
		{"short data for padded rows", data, vec.Of[vec.D2, int](40, 20), ErrShortData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewViewPlainPtr(tt.data, dev.Host(), extent, tt.pitch)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewViewPlainPtr_InconsistentPitch(t *testing.T) {
	_, err := NewViewPlainPtr(make([]float32, 12), dev.Host(), vec.Of[vec.D2, int](3, 4), vec.Of[vec.D2, int](48, 32))
	require.ErrorIs(t, err, ErrPitch)

	// The last row needs no trailing padding.
	data := make([]float32, 9)
	data[8] = 7
	v, err := NewViewPlainPtr(data, dev.Host(), vec.Of[vec.D2, int](2, 4), vec.Of[vec.D2, int](48, 20))
	require.NoError(t, err)
	assert.Equal(t, float32(7), *v.At(vec.Of[vec.D2, int](1, 3)))
}

func TestPackedEmpty(t *testing.T) {
	buf := Alloc[int](dev.Host(), vec.Of[vec.D2, int](3, 0))
	assert.Empty(t, buf.Packed())
}

func TestTaskSetAndCopy(t *testing.T) {
	ctx := context.Background()
	q := queue.New(dev.Host(), queue.Blocking)
	t.Cleanup(func() { _ = q.Close() })

	extent := vec.Of[vec.D2, int](3, 4)
	src := Alloc[int64](gpuSim(t), extent)
	dst := Alloc[int64](dev.Host(), extent)

	set, err := CreateTaskSet[int64](src, 9, vec.Of[vec.D2, int](2, 3))
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(ctx, set))

	cp, err := CreateTaskCopy[int64](dst, src, extent)
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(ctx, cp))

	assert.Equal(t, []int64{
		9, 9, 9, 0,
		9, 9, 9, 0,
		0, 0, 0, 0,
	}, dst.Packed())
}

func TestTaskExtentErrors(t *testing.T) {
	small := Alloc[int](dev.Host(), vec.Of[vec.D1, int](4))
	big := Alloc[int](dev.Host(), vec.Of[vec.D1, int](8))

	_, err := CreateTaskSet[int](small, 1, vec.Of[vec.D1, int](5))
	assert.ErrorIs(t, err, ErrExtent)

	_, err = CreateTaskCopy[int](small, big, big.Extent())
	assert.ErrorIs(t, err, ErrExtent)

	_, err = CreateTaskCopy[int](big, small, big.Extent())
	assert.ErrorIs(t, err, ErrExtent)

	_, err = CreateTaskCopy[int](big, small, small.Extent())
	assert.NoError(t, err)
}

package dev

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/accel/internal/config"
	"github.com/born-ml/accel/internal/vec"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "cpu", CPU.String())
	assert.Equal(t, "gpusim", GPUSim.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}

func TestCPUPlatform(t *testing.T) {
	p := PlatformOf(CPU)
	assert.Equal(t, "PltfCpu", p.Name())
	assert.Equal(t, 1, p.CountDevices())

	d, err := p.DeviceByIndex(0)
	require.NoError(t, err)
	assert.Same(t, Host(), d)
	assert.Equal(t, CPU, d.Kind())
	assert.Equal(t, "cpu:0", d.ID())
	assert.Positive(t, d.Cores)
	assert.Equal(t, 1, d.WarpSize)
	assert.Same(t, p, d.Platform())

	_, err = p.DeviceByIndex(1)
	assert.ErrorIs(t, err, ErrDeviceIndex)
	_, err = DeviceByIndex(CPU, -1)
	assert.ErrorIs(t, err, ErrDeviceIndex)
}

func TestGPUSimPlatform(t *testing.T) {
	require.GreaterOrEqual(t, CountDevices(GPUSim), 1)

	d, err := DeviceByIndex(GPUSim, 0)
	require.NoError(t, err)
	assert.Equal(t, GPUSim, d.Kind())
	assert.Equal(t, "gpusim-0", d.Name())
	assert.Equal(t, gpuSimPitchAlignment, d.PitchAlignment)
	assert.Positive(t, d.Limits.MaxInvocations)
	assert.Positive(t, d.Limits.WorkgroupStorageBytes)
	for axis, v := range d.Limits.MaxWorkgroupSize {
		assert.Positive(t, v, "axis %d", axis)
	}
}

func TestSimLimits_Overrides(t *testing.T) {
	base := SimLimits(config.GPUSimConfig{})
	got := SimLimits(config.GPUSimConfig{
		MaxWorkgroupSize:      [3]uint32{8, 0, 0},
		WorkgroupStorageBytes: 1024,
	})

	assert.Equal(t, uint32(8), got.MaxWorkgroupSize[0])
	assert.Equal(t, base.MaxWorkgroupSize[1], got.MaxWorkgroupSize[1])
	assert.Equal(t, uint32(1024), got.WorkgroupStorageBytes)
	assert.Equal(t, base.MaxInvocations, got.MaxInvocations)
}

func TestPlatforms_Ordered(t *testing.T) {
	ps := Platforms()
	require.Len(t, ps, 2)
	assert.Equal(t, CPU, ps[0].Kind())
	assert.Equal(t, GPUSim, ps[1].Kind())
}

func TestRegister_Duplicate(t *testing.T) {
	assert.Panics(t, func() { Register(&cpuPlatform{}) })
}

func TestCachedProps_Idempotent(t *testing.T) {
	var calls atomic.Int32
	query := func(d *Device) (Props[vec.D2, int], error) {
		calls.Add(1)
		return Props[vec.D2, int]{
			MultiProcessorCount:  d.Cores,
			BlockThreadExtentMax: vec.Of[vec.D2](4, 4),
			SharedMemSizeBytes:   1024,
		}, nil
	}

	var wg sync.WaitGroup
	results := make([]Props[vec.D2, int], 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := CachedProps("TestIdempotent", Host(), query)
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, p := range results {
		assert.Equal(t, results[0], p)
	}
}

func TestCachedProps_ErrorNotCached(t *testing.T) {
	fail := errors.New("boom")
	var calls int
	query := func(*Device) (Props[vec.D1, int], error) {
		calls++
		if calls == 1 {
			return Props[vec.D1, int]{}, fail
		}
		return Props[vec.D1, int]{SharedMemSizeBytes: 7}, nil
	}

	_, err := CachedProps("TestErrorNotCached", Host(), query)
	require.ErrorIs(t, err, fail)

	p, err := CachedProps("TestErrorNotCached", Host(), query)
	require.NoError(t, err)
	assert.Equal(t, uintptr(7), p.SharedMemSizeBytes)
}

func TestCachedProps_RequeriesAfterConfigSet(t *testing.T) {
	prev := config.Current()
	t.Cleanup(func() { require.NoError(t, config.Set(prev)) })

	var calls int
	query := func(*Device) (Props[vec.D1, int], error) {
		calls++
		return Props[vec.D1, int]{SharedMemSizeBytes: uintptr(config.Current().CPU.SharedMemBytes)}, nil
	}

	_, err := CachedProps("TestRequeries", Host(), query)
	require.NoError(t, err)
	_, err = CachedProps("TestRequeries", Host(), query)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	cfg := config.Default()
	cfg.CPU.SharedMemBytes = 4096
	require.NoError(t, config.Set(cfg))

	p, err := CachedProps("TestRequeries", Host(), query)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, uintptr(4096), p.SharedMemSizeBytes)
}

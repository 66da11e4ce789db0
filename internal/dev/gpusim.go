package dev

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/born-ml/accel/internal/config"
)

// gpuSimPitchAlignment mirrors the 256-byte row alignment of pitched
// allocations on discrete GPUs.
const gpuSimPitchAlignment = 256

// gpuSimPlatform enumerates simulated GPU devices. The device list is built
// lazily from the configuration current at first use and then fixed.
type gpuSimPlatform struct {
	once    sync.Once
	devices []*Device
}

func init() {
	Register(&gpuSimPlatform{})
}

func (p *gpuSimPlatform) Name() string { return "PltfGpuSim" }
func (p *gpuSimPlatform) Kind() Kind   { return GPUSim }

func (p *gpuSimPlatform) CountDevices() int {
	p.once.Do(p.enumerate)
	return len(p.devices)
}

func (p *gpuSimPlatform) DeviceByIndex(i int) (*Device, error) {
	if err := checkIndex(p, i); err != nil {
		return nil, err
	}
	return p.devices[i], nil
}

func (p *gpuSimPlatform) enumerate() {
	sc := config.Current().GPUSim
	limits := SimLimits(sc)
	mp := sc.MultiProcessors
	if mp <= 0 {
		mp = Host().Cores
	}
	for i := range sc.Devices {
		p.devices = append(p.devices, &Device{
			kind:           GPUSim,
			index:          i,
			name:           fmt.Sprintf("gpusim-%d", i),
			Cores:          mp,
			WarpSize:       sc.WarpSize,
			PitchAlignment: gpuSimPitchAlignment,
			Limits:         limits,
		})
	}
}

// SimLimits derives the compute limits of a simulated device from the
// WebGPU default limits, overridden by non-zero configuration fields.
func SimLimits(sc config.GPUSimConfig) ComputeLimits {
	def := gputypes.DefaultLimits()
	out := ComputeLimits{
		MaxWorkgroupSize: [3]uint32{
			def.MaxComputeWorkgroupSizeX,
			def.MaxComputeWorkgroupSizeY,
			def.MaxComputeWorkgroupSizeZ,
		},
		MaxInvocations:            def.MaxComputeInvocationsPerWorkgroup,
		MaxWorkgroupsPerDimension: def.MaxComputeWorkgroupsPerDimension,
		WorkgroupStorageBytes:     def.MaxComputeWorkgroupStorageSize,
	}
	for i, v := range sc.MaxWorkgroupSize {
		if v != 0 {
			out.MaxWorkgroupSize[i] = v
		}
	}
	if sc.MaxInvocations != 0 {
		out.MaxInvocations = sc.MaxInvocations
	}
	if sc.MaxWorkgroupsPerDimension != 0 {
		out.MaxWorkgroupsPerDimension = sc.MaxWorkgroupsPerDimension
	}
	if sc.WorkgroupStorageBytes != 0 {
		out.WorkgroupStorageBytes = sc.WorkgroupStorageBytes
	}
	return out
}

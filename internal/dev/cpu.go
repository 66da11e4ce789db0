package dev

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

type cpuPlatform struct {
	device *Device
}

func init() {
	Register(&cpuPlatform{device: newHostDevice()})
}

func newHostDevice() *Device {
	features, vectorBytes := hostFeatures()
	return &Device{
		kind:        CPU,
		index:       0,
		name:        runtime.GOOS + "/" + runtime.GOARCH,
		Cores:       runtime.NumCPU(),
		VectorBytes: vectorBytes,
		Features:    features,
		WarpSize:    1,
	}
}

// hostFeatures reports the SIMD extensions of the host and the widest
// vector register in bytes.
func hostFeatures() ([]string, int) {
	var features []string
	width := 8
	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasSSE2 {
			features = append(features, "sse2")
			width = 16
		}
		if cpu.X86.HasSSE41 {
			features = append(features, "sse4.1")
		}
		if cpu.X86.HasAVX {
			features = append(features, "avx")
			width = 32
		}
		if cpu.X86.HasAVX2 {
			features = append(features, "avx2")
		}
		if cpu.X86.HasFMA {
			features = append(features, "fma")
		}
		if cpu.X86.HasAVX512F {
			features = append(features, "avx512f")
			width = 64
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			features = append(features, "asimd")
			width = 16
		}
		if cpu.ARM64.HasFPHP {
			features = append(features, "fphp")
		}
		if cpu.ARM64.HasSVE {
			features = append(features, "sve")
		}
	}
	return features, width
}

func (p *cpuPlatform) Name() string      { return "PltfCpu" }
func (p *cpuPlatform) Kind() Kind        { return CPU }
func (p *cpuPlatform) CountDevices() int { return 1 }

func (p *cpuPlatform) DeviceByIndex(i int) (*Device, error) {
	if err := checkIndex(p, i); err != nil {
		return nil, err
	}
	return p.device, nil
}

// Host returns the CPU device of the running process.
func Host() *Device {
	d, _ := DeviceByIndex(CPU, 0)
	return d
}

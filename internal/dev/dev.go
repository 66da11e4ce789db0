// Package dev describes platforms, the devices they enumerate, and the
// per-accelerator device properties used to validate launches.
package dev

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Kind identifies a device type. Every accelerator variant maps to exactly
// one Kind, and every Kind to exactly one Platform.
type Kind int

// Device kinds.
const (
	CPU Kind = iota
	GPUSim
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case GPUSim:
		return "gpusim"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrDeviceIndex is returned for a device index outside [0, CountDevices).
var ErrDeviceIndex = errors.New("device index out of range")

// Platform enumerates the devices of one Kind.
type Platform interface {
	Name() string
	Kind() Kind
	CountDevices() int
	DeviceByIndex(i int) (*Device, error)
}

// Device is one physical (or simulated) execution resource.
// Devices are created once by their platform and compared by identity.
type Device struct {
	kind  Kind
	index int
	name  string

	// Cores is the number of hardware threads (CPU) or multiprocessors (GPU).
	Cores int
	// VectorBytes is the widest SIMD register width detected, in bytes.
	VectorBytes int
	// Features lists detected instruction set extensions.
	Features []string
	// WarpSize is the lane count of one warp; 1 for CPUs.
	WarpSize int
	// PitchAlignment is the row alignment in bytes used for pitched buffers;
	// 0 means rows are packed.
	PitchAlignment int
	// Limits are the compute limits reported for GPU-style devices.
	Limits ComputeLimits
}

// ComputeLimits are the workgroup limits of a GPU-style device.
type ComputeLimits struct {
	MaxWorkgroupSize          [3]uint32
	MaxInvocations            uint32
	MaxWorkgroupsPerDimension uint32
	WorkgroupStorageBytes     uint32
}

// Kind returns the device kind.
func (d *Device) Kind() Kind { return d.kind }

// Index returns the device ordinal within its platform.
func (d *Device) Index() int { return d.index }

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// ID returns a string unique among all devices of the process.
func (d *Device) ID() string {
	return fmt.Sprintf("%s:%d", d.kind, d.index)
}

// Platform returns the platform owning the device.
func (d *Device) Platform() Platform {
	return PlatformOf(d.kind)
}

// String implements fmt.Stringer.
func (d *Device) String() string {
	return fmt.Sprintf("%s (%s)", d.name, d.ID())
}

var (
	platformsMu sync.RWMutex
	platforms   = map[Kind]Platform{}
)

// Register associates a platform with its kind. Registering the same kind
// twice panics. Call Register from package init.
func Register(p Platform) {
	platformsMu.Lock()
	defer platformsMu.Unlock()
	if _, dup := platforms[p.Kind()]; dup {
		panic(fmt.Sprintf("dev: platform for kind %s registered twice", p.Kind()))
	}
	platforms[p.Kind()] = p
}

// PlatformOf returns the platform registered for kind.
// It panics if none is registered.
func PlatformOf(kind Kind) Platform {
	platformsMu.RLock()
	p, ok := platforms[kind]
	platformsMu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("dev: no platform registered for kind %s", kind))
	}
	return p
}

// Platforms returns all registered platforms ordered by kind.
func Platforms() []Platform {
	platformsMu.RLock()
	defer platformsMu.RUnlock()
	out := make([]Platform, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind() < out[j].Kind() })
	return out
}

// CountDevices returns the number of devices of the platform for kind.
func CountDevices(kind Kind) int {
	return PlatformOf(kind).CountDevices()
}

// DeviceByIndex returns device i of the platform for kind.
func DeviceByIndex(kind Kind, i int) (*Device, error) {
	return PlatformOf(kind).DeviceByIndex(i)
}

func checkIndex(p Platform, i int) error {
	if i < 0 || i >= p.CountDevices() {
		return fmt.Errorf("%s: device %d of %d: %w", p.Name(), i, p.CountDevices(), ErrDeviceIndex)
	}
	return nil
}

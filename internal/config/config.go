// Package config holds the process-wide runtime configuration: worker
// counts, lock table size, device limits of the simulated GPU platform and
// logging settings. It is loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"math/bits"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultLockSlots             = 16
	DefaultCPUSharedMemBytes     = 48 << 10
	DefaultCPUBlockThreads       = 256
	DefaultGPUSimDevices         = 1
	DefaultWarpSize              = 32
	DefaultWorkgroupStorageBytes = 16 << 10
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration document.
type Config struct {
	// Workers bounds the number of goroutines running blocks concurrently.
	// 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
	// LockSlots is the size of the address-hashed mutex table used by
	// lock-based atomics. Must be a power of two.
	LockSlots int          `yaml:"lock_slots"`
	CPU       CPUConfig    `yaml:"cpu"`
	GPUSim    GPUSimConfig `yaml:"gpusim"`
	Log       LogConfig    `yaml:"log"`
}

// CPUConfig configures the CPU platform.
type CPUConfig struct {
	SharedMemBytes int `yaml:"shared_mem_bytes"`
	// BlockThreads is the block thread count limit of the threaded CPU
	// accelerator.
	BlockThreads int `yaml:"block_threads"`
}

// GPUSimConfig configures the simulated GPU platform. Zero values fall back
// to the WebGPU default limits.
type GPUSimConfig struct {
	Devices                   int       `yaml:"devices"`
	WarpSize                  int       `yaml:"warp_size"`
	MaxWorkgroupSize          [3]uint32 `yaml:"max_workgroup_size"`
	MaxInvocations            uint32    `yaml:"max_invocations"`
	MaxWorkgroupsPerDimension uint32    `yaml:"max_workgroups_per_dimension"`
	WorkgroupStorageBytes     uint32    `yaml:"workgroup_storage_bytes"`
	MultiProcessors           int       `yaml:"multiprocessors"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LockSlots: DefaultLockSlots,
		CPU: CPUConfig{
			SharedMemBytes: DefaultCPUSharedMemBytes,
			BlockThreads:   DefaultCPUBlockThreads,
		},
		GPUSim: GPUSimConfig{
			Devices:  DefaultGPUSimDevices,
			WarpSize: DefaultWarpSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads and validates a YAML configuration file. Missing fields keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalid, c.Workers)
	}
	if c.LockSlots <= 0 || bits.OnesCount(uint(c.LockSlots)) != 1 {
		return fmt.Errorf("%w: lock_slots must be a power of two, got %d", ErrInvalid, c.LockSlots)
	}
	if c.CPU.SharedMemBytes < 0 {
		return fmt.Errorf("%w: cpu.shared_mem_bytes must be >= 0, got %d", ErrInvalid, c.CPU.SharedMemBytes)
	}
	if c.CPU.BlockThreads < 1 {
		return fmt.Errorf("%w: cpu.block_threads must be >= 1, got %d", ErrInvalid, c.CPU.BlockThreads)
	}
	if c.GPUSim.Devices < 0 {
		return fmt.Errorf("%w: gpusim.devices must be >= 0, got %d", ErrInvalid, c.GPUSim.Devices)
	}
	if c.GPUSim.WarpSize <= 0 || c.GPUSim.WarpSize > 64 {
		return fmt.Errorf("%w: gpusim.warp_size must be in [1, 64], got %d", ErrInvalid, c.GPUSim.WarpSize)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

var (
	current    atomic.Pointer[Config]
	generation atomic.Uint64
)

func init() {
	current.Store(Default())
}

// Current returns the process-wide configuration.
func Current() *Config {
	return current.Load()
}

// Set replaces the process-wide configuration after validating it and
// advances Generation. Devices already enumerated keep their limits.
func Set(c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	current.Store(c)
	generation.Add(1)
	return nil
}

// Generation counts successful calls to Set. Values derived from Current
// can be cached under it.
func Generation() uint64 {
	return generation.Load()
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dev enumerates platforms and their devices.
//
// Every accelerator variant runs on the devices of exactly one platform:
//
//	for _, p := range dev.Platforms() {
//		for i := range p.CountDevices() {
//			d, _ := p.DeviceByIndex(i)
//			fmt.Println(p.Name(), d)
//		}
//	}
package dev

import (
	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/vec"
)

// Dim and Index are the vector constraints, repeated so Props can be
// named without importing vec.
type (
	Dim   = vec.Dim
	Index = vec.Index
)

// Kind identifies a device type.
type Kind = dev.Kind

// Device kinds.
const (
	CPU    Kind = dev.CPU
	GPUSim Kind = dev.GPUSim
)

// Platform enumerates the devices of one Kind.
type Platform = dev.Platform

// Device is one physical or simulated execution resource.
type Device = dev.Device

// ComputeLimits are the workgroup limits of a GPU-style device.
type ComputeLimits = dev.ComputeLimits

// Props are the limits of one accelerator variant on one device.
type Props[D Dim, I Index] = dev.Props[D, I]

// ErrDeviceIndex is returned for a device index outside [0, CountDevices).
var ErrDeviceIndex = dev.ErrDeviceIndex

// Host returns the CPU device of the process.
func Host() *Device { return dev.Host() }

// Platforms returns all registered platforms ordered by kind.
func Platforms() []Platform { return dev.Platforms() }

// PlatformOf returns the platform for kind.
func PlatformOf(kind Kind) Platform { return dev.PlatformOf(kind) }

// CountDevices returns the number of devices of kind.
func CountDevices(kind Kind) int { return dev.CountDevices(kind) }

// DeviceByIndex returns device i of kind.
func DeviceByIndex(kind Kind, i int) (*Device, error) { return dev.DeviceByIndex(kind, i) }

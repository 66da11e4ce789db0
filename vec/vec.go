// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package vec provides fixed-dimension index vectors used for extents,
// indices and pitches.
//
// The dimension is a type parameter, so vectors of different dimension do
// not mix:
//
//	extent := vec.Of[vec.D2](480, 640)
//	idx := vec.ExtentToIndex(extent, 1000) // (1, 360)
//	linear := vec.IndexToLinear(extent, idx)
package vec

import (
	"github.com/born-ml/accel/internal/vec"
)

// MaxDim is the largest supported dimension.
const MaxDim = vec.MaxDim

// Dim is the constraint satisfied by the dimension markers D1..D4.
type Dim = vec.Dim

// Index is the constraint on index component types.
type Index = vec.Index

// Dimension markers.
type (
	D1 = vec.D1
	D2 = vec.D2
	D3 = vec.D3
	D4 = vec.D4
)

// Vec is a D-dimensional vector of I. The last component is the fastest
// varying one.
type Vec[D Dim, I Index] = vec.Vec[D, I]

// ErrIndexOutOfRange is wrapped by index panics.
var ErrIndexOutOfRange = vec.ErrIndexOutOfRange

// Of builds a vector from exactly D components.
func Of[D Dim, I Index](values ...I) Vec[D, I] { return vec.Of[D](values...) }

// Zeros returns the all-zero vector.
func Zeros[D Dim, I Index]() Vec[D, I] { return vec.Zeros[D, I]() }

// Ones returns the all-one vector.
func Ones[D Dim, I Index]() Vec[D, I] { return vec.Ones[D, I]() }

// All returns a vector with every component set to value.
func All[D Dim, I Index](value I) Vec[D, I] { return vec.All[D](value) }

// Max returns the vector of largest I values.
func Max[D Dim, I Index]() Vec[D, I] { return vec.Max[D, I]() }

// FromFn builds a vector from fn(axis).
func FromFn[D Dim, I Index](fn func(axis int) I) Vec[D, I] { return vec.FromFn[D](fn) }

// MaxValue returns the largest value of I.
func MaxValue[I Index]() I { return vec.MaxValue[I]() }

// DimOf returns the dimension of marker D.
func DimOf[D Dim]() int { return vec.DimOf[D]() }

// ExtentToIndex maps a row-major linear index into extent.
func ExtentToIndex[D Dim, I Index](extent Vec[D, I], linear I) Vec[D, I] {
	return vec.ExtentToIndex(extent, linear)
}

// IndexToLinear maps index to its row-major linear position in extent.
func IndexToLinear[D Dim, I Index](extent, index Vec[D, I]) I {
	return vec.IndexToLinear(extent, index)
}

// ForEach calls fn for every index of extent in row-major order.
func ForEach[D Dim, I Index](extent Vec[D, I], fn func(idx Vec[D, I])) {
	vec.ForEach(extent, fn)
}

// Package vec provides the fixed-dimension index vectors used for extents,
// offsets and coordinates across the grid/block/thread hierarchy.
package vec

import (
	"fmt"
	"strings"
	"unsafe"
)

// MaxDim is the largest supported dimensionality.
const MaxDim = 4

// Dim is implemented by the dimension marker types D1..D4.
// The dimensionality is part of the type, so extents of different
// dimensionality can never be mixed in one work division.
type Dim interface {
	Dim() int
}

// Dimension markers.
type (
	D1 struct{}
	D2 struct{}
	D3 struct{}
	D4 struct{}
)

// Dim returns 1.
func (D1) Dim() int { return 1 }

// Dim returns 2.
func (D2) Dim() int { return 2 }

// Dim returns 3.
func (D3) Dim() int { return 3 }

// Dim returns 4.
func (D4) Dim() int { return 4 }

// Index is the set of integral types usable as index type.
// Types narrower than 32 bits are not supported.
type Index interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

// DimOf returns the dimensionality of D.
func DimOf[D Dim]() int {
	var d D
	return d.Dim()
}

// MaxValue returns the largest value representable by I.
func MaxValue[I Index]() I {
	var zero I
	allOnes := ^zero
	if allOnes > 0 {
		return allOnes
	}
	bits := unsafe.Sizeof(zero) * 8
	return I(uint64(1)<<(bits-1) - 1)
}

// Vec is an immutable tuple of Dim index values.
//
// Vec is a value type: copies are independent and two vectors can be
// compared with ==.
type Vec[D Dim, I Index] struct {
	v [MaxDim]I
}

// Zeros returns a vector with all components 0.
func Zeros[D Dim, I Index]() Vec[D, I] {
	return Vec[D, I]{}
}

// Ones returns a vector with all components 1.
func Ones[D Dim, I Index]() Vec[D, I] {
	return All[D](I(1))
}

// All returns a vector with every component set to value.
func All[D Dim, I Index](value I) Vec[D, I] {
	var out Vec[D, I]
	for i := range DimOf[D]() {
		out.v[i] = value
	}
	return out
}

// Max returns a vector filled with the largest value of I.
func Max[D Dim, I Index]() Vec[D, I] {
	return All[D](MaxValue[I]())
}

// FromFn builds a vector by calling fn once per axis.
func FromFn[D Dim, I Index](fn func(axis int) I) Vec[D, I] {
	var out Vec[D, I]
	for i := range DimOf[D]() {
		out.v[i] = fn(i)
	}
	return out
}

// Of builds a vector from explicit values.
// It panics if the number of values does not match the dimensionality.
func Of[D Dim, I Index](values ...I) Vec[D, I] {
	dim := DimOf[D]()
	if len(values) != dim {
		panic(fmt.Sprintf("vec: %d values given for a %d-dimensional vector", len(values), dim))
	}
	var out Vec[D, I]
	copy(out.v[:], values)
	return out
}

// Dim returns the number of components.
func (v Vec[D, I]) Dim() int {
	return DimOf[D]()
}

// At returns the component on the given axis.
func (v Vec[D, I]) At(axis int) I {
	v.checkAxis(axis)
	return v.v[axis]
}

// With returns a copy of v with the component on axis replaced.
func (v Vec[D, I]) With(axis int, value I) Vec[D, I] {
	v.checkAxis(axis)
	v.v[axis] = value
	return v
}

// Prod returns the product of all components.
func (v Vec[D, I]) Prod() I {
	p := I(1)
	for i := range v.Dim() {
		p *= v.v[i]
	}
	return p
}

// Add returns the elementwise sum.
func (v Vec[D, I]) Add(o Vec[D, I]) Vec[D, I] {
	return v.zip(o, func(a, b I) I { return a + b })
}

// Sub returns the elementwise difference.
func (v Vec[D, I]) Sub(o Vec[D, I]) Vec[D, I] {
	return v.zip(o, func(a, b I) I { return a - b })
}

// Mul returns the elementwise product.
func (v Vec[D, I]) Mul(o Vec[D, I]) Vec[D, I] {
	return v.zip(o, func(a, b I) I { return a * b })
}

// Div returns the elementwise quotient.
func (v Vec[D, I]) Div(o Vec[D, I]) Vec[D, I] {
	return v.zip(o, func(a, b I) I { return a / b })
}

// CeilDiv returns the elementwise quotient rounded up.
func (v Vec[D, I]) CeilDiv(o Vec[D, I]) Vec[D, I] {
	return v.zip(o, func(a, b I) I { return (a + b - 1) / b })
}

// Min returns the elementwise minimum.
func (v Vec[D, I]) Min(o Vec[D, I]) Vec[D, I] {
	return v.zip(o, func(a, b I) I { return min(a, b) })
}

// Slice returns the components as a new slice.
func (v Vec[D, I]) Slice() []I {
	out := make([]I, v.Dim())
	copy(out, v.v[:])
	return out
}

// String formats the vector as "(a, b, c)".
func (v Vec[D, I]) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := range v.Dim() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, v.v[i])
	}
	sb.WriteByte(')')
	return sb.String()
}

func (v Vec[D, I]) zip(o Vec[D, I], fn func(a, b I) I) Vec[D, I] {
	var out Vec[D, I]
	for i := range v.Dim() {
		out.v[i] = fn(v.v[i], o.v[i])
	}
	return out
}

func (v Vec[D, I]) checkAxis(axis int) {
	if axis < 0 || axis >= v.Dim() {
		panic(fmt.Sprintf("vec: axis %d out of range for %d-dimensional vector", axis, v.Dim()))
	}
}

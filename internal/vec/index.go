package vec

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is the panic value wrapped when an index conversion
// is given a coordinate outside its extent.
var ErrIndexOutOfRange = errors.New("index out of range")

// ExtentToIndex decomposes a linear index into coordinates within extent.
// The last axis varies fastest (row-major).
//
// It panics if linear is not in [0, extent.Prod()).
func ExtentToIndex[D Dim, I Index](extent Vec[D, I], linear I) Vec[D, I] {
	if linear < 0 || linear >= extent.Prod() {
		panic(fmt.Errorf("vec: linear index %v for extent %v: %w", linear, extent, ErrIndexOutOfRange))
	}
	var out Vec[D, I]
	for i := extent.Dim() - 1; i >= 0; i-- {
		out.v[i] = linear % extent.v[i]
		linear /= extent.v[i]
	}
	return out
}

// IndexToLinear is the inverse of ExtentToIndex.
//
// It panics if any coordinate of index lies outside extent.
func IndexToLinear[D Dim, I Index](extent, index Vec[D, I]) I {
	var linear I
	for i := range extent.Dim() {
		if index.v[i] < 0 || index.v[i] >= extent.v[i] {
			panic(fmt.Errorf("vec: index %v for extent %v: %w", index, extent, ErrIndexOutOfRange))
		}
		linear = linear*extent.v[i] + index.v[i]
	}
	return linear
}

// ForEach calls fn for every index within extent in row-major order.
func ForEach[D Dim, I Index](extent Vec[D, I], fn func(idx Vec[D, I])) {
	n := extent.Prod()
	for linear := I(0); linear < n; linear++ {
		fn(ExtentToIndex(extent, linear))
	}
}

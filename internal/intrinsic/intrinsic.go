// Package intrinsic is the bit-manipulation capability available to
// kernels.
package intrinsic

import (
	"math/bits"

	"github.com/born-ml/accel/internal/trait"
)

// Table is the function set of the intrinsic capability.
type Table struct {
	Name string

	Popcount32 func(uint32) int
	Popcount64 func(uint64) int
	// Ffs32 and Ffs64 return the 1-based position of the least significant
	// set bit, or 0 for a zero argument.
	Ffs32 func(int32) int
	Ffs64 func(int64) int
}

// Cpu selects the math/bits implementation.
type Cpu struct{}

// Registry resolves the Table of an intrinsic capability object.
var Registry = trait.New[*Table]("intrinsic")

func init() {
	Registry.SetDefault(&Table{
		Name:       "IntrinsicCpu",
		Popcount32: bits.OnesCount32,
		Popcount64: bits.OnesCount64,
		Ffs32: func(v int32) int {
			if v == 0 {
				return 0
			}
			return bits.TrailingZeros32(uint32(v)) + 1
		},
		Ffs64: func(v int64) int {
			if v == 0 {
				return 0
			}
			return bits.TrailingZeros64(uint64(v)) + 1
		},
	})
}

// For returns the table of impl. It panics if impl has no implementation.
func For(impl any) *Table {
	return Registry.MustResolve(impl)
}

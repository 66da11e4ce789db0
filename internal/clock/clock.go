// Package clock is the time capability available to kernels.
package clock

import (
	"time"

	"github.com/born-ml/accel/internal/trait"
)

// Table is the function set of the time capability.
type Table struct {
	Name string
	// Clock returns a monotonic tick count.
	Clock func() uint64
	// TicksPerSecond is the Clock frequency.
	TicksPerSecond uint64
}

// StdLib selects the monotonic standard library clock in nanoseconds.
type StdLib struct{}

// Registry resolves the Table of a time capability object.
var Registry = trait.New[*Table]("time")

var epoch = time.Now()

func init() {
	Registry.SetDefault(&Table{
		Name:           "TimeStdLib",
		Clock:          func() uint64 { return uint64(time.Since(epoch)) },
		TicksPerSecond: uint64(time.Second),
	})
}

// For returns the table of impl. It panics if impl has no implementation.
func For(impl any) *Table {
	return Registry.MustResolve(impl)
}

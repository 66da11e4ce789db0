// Package workdiv implements the work division: how many blocks form the
// grid, how many threads form a block, and how many elements each thread
// processes. It validates a division against device properties before
// anything runs.
package workdiv

import (
	"fmt"
	"math/bits"

	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/vec"
)

// WorkDiv is the three-level extent of a kernel launch.
type WorkDiv[D vec.Dim, I vec.Index] struct {
	GridBlockExtent   vec.Vec[D, I]
	BlockThreadExtent vec.Vec[D, I]
	ThreadElemExtent  vec.Vec[D, I]
}

// New returns a work division with the given extents.
func New[D vec.Dim, I vec.Index](gridBlocks, blockThreads, threadElems vec.Vec[D, I]) WorkDiv[D, I] {
	return WorkDiv[D, I]{
		GridBlockExtent:   gridBlocks,
		BlockThreadExtent: blockThreads,
		ThreadElemExtent:  threadElems,
	}
}

// GridThreadExtent returns the number of threads per axis across the grid.
func (w WorkDiv[D, I]) GridThreadExtent() vec.Vec[D, I] {
	return w.GridBlockExtent.Mul(w.BlockThreadExtent)
}

// BlockElemExtent returns the number of elements per axis of one block.
func (w WorkDiv[D, I]) BlockElemExtent() vec.Vec[D, I] {
	return w.BlockThreadExtent.Mul(w.ThreadElemExtent)
}

// GridElemExtent returns the number of elements per axis across the grid.
func (w WorkDiv[D, I]) GridElemExtent() vec.Vec[D, I] {
	return w.GridThreadExtent().Mul(w.ThreadElemExtent)
}

// String formats the division as "grid{...} block{...} elem{...}".
func (w WorkDiv[D, I]) String() string {
	return fmt.Sprintf("grid%v block%v elem%v", w.GridBlockExtent, w.BlockThreadExtent, w.ThreadElemExtent)
}

// Validate checks w against props. The first violated limit is returned
// as a *LimitError.
func Validate[D vec.Dim, I vec.Index](w WorkDiv[D, I], props dev.Props[D, I]) error {
	levels := []struct {
		extent, extentMax vec.Vec[D, I]
		countMax          I
		extentName        string
		countName         string
	}{
		{w.GridBlockExtent, props.GridBlockExtentMax, props.GridBlockCountMax, LimitGridBlockExtent, LimitGridBlockCount},
		{w.BlockThreadExtent, props.BlockThreadExtentMax, props.BlockThreadCountMax, LimitBlockThreadExtent, LimitBlockThreadCount},
		{w.ThreadElemExtent, props.ThreadElemExtentMax, props.ThreadElemCountMax, LimitThreadElemExtent, LimitThreadElemCount},
	}
	for _, l := range levels {
		for axis := range l.extent.Dim() {
			if l.extent.At(axis) < 1 {
				return &LimitError{Violation: NonPositive, Limit: l.extentName, Axis: axis, Requested: uint64(max(l.extent.At(axis), 0))}
			}
		}
	}
	for _, l := range levels {
		for axis := range l.extent.Dim() {
			if v, m := l.extent.At(axis), l.extentMax.At(axis); v > m {
				return &LimitError{Violation: Exceeded, Limit: l.extentName, Axis: axis, Requested: uint64(v), Max: uint64(m)}
			}
		}
		count, ok := checkedProd(l.extent)
		if !ok {
			return &LimitError{Violation: Overflow, Limit: l.countName, Axis: -1, Max: uint64(vec.MaxValue[I]())}
		}
		if count > l.countMax {
			return &LimitError{Violation: Exceeded, Limit: l.countName, Axis: -1, Requested: uint64(count), Max: uint64(l.countMax)}
		}
	}
	for axis := range w.GridBlockExtent.Dim() {
		v, ok := checkedMul(w.GridBlockExtent.At(axis), w.BlockThreadExtent.At(axis))
		if ok {
			v, ok = checkedMul(v, w.ThreadElemExtent.At(axis))
		}
		if !ok {
			return &LimitError{Violation: Overflow, Limit: LimitGridElemExtent, Axis: axis, Max: uint64(vec.MaxValue[I]())}
		}
	}
	if _, ok := checkedProd(w.GridElemExtent()); !ok {
		return &LimitError{Violation: Overflow, Limit: LimitGridElemExtent, Axis: -1, Max: uint64(vec.MaxValue[I]())}
	}
	return nil
}

// ValidateSharedMem checks that requested bytes of block shared memory fit
// the device capacity.
func ValidateSharedMem(requested, capacity uintptr) error {
	if requested > capacity {
		return &LimitError{Violation: Exceeded, Limit: LimitSharedMemBytes, Axis: -1, Requested: uint64(requested), Max: uint64(capacity)}
	}
	return nil
}

// checkedMul multiplies two positive values, reporting overflow of I.
func checkedMul[I vec.Index](a, b I) (I, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > uint64(vec.MaxValue[I]()) {
		return 0, false
	}
	return I(lo), true
}

func checkedProd[D vec.Dim, I vec.Index](v vec.Vec[D, I]) (I, bool) {
	p := I(1)
	for axis := range v.Dim() {
		var ok bool
		if p, ok = checkedMul(p, v.At(axis)); !ok {
			return 0, false
		}
	}
	return p, true
}

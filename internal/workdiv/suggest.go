package workdiv

import (
	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/vec"
)

// Mode controls how Suggest chooses the block extent.
type Mode int

// Suggest modes.
const (
	// Relaxed lets the last block of an axis be partially filled.
	Relaxed Mode = iota
	// Exact requires the block thread extent to divide the grid thread
	// extent on every axis.
	Exact
)

// Suggest returns a valid work division covering gridElemExtent elements
// when every thread processes threadElemExtent elements.
//
// The block thread extent starts as large as the device allows on each axis
// and the largest axis is halved until the thread count fits.
func Suggest[D vec.Dim, I vec.Index](props dev.Props[D, I], gridElemExtent, threadElemExtent vec.Vec[D, I], mode Mode) (WorkDiv[D, I], error) {
	for axis := range gridElemExtent.Dim() {
		if gridElemExtent.At(axis) < 1 {
			return WorkDiv[D, I]{}, &LimitError{Violation: NonPositive, Limit: LimitGridElemExtent, Axis: axis}
		}
		if threadElemExtent.At(axis) < 1 {
			return WorkDiv[D, I]{}, &LimitError{Violation: NonPositive, Limit: LimitThreadElemExtent, Axis: axis}
		}
	}

	elems := threadElemExtent.Min(props.ThreadElemExtentMax).Min(gridElemExtent)
	gridThreads := gridElemExtent.CeilDiv(elems)
	block := gridThreads.Min(props.BlockThreadExtentMax)

	for block.Prod() > props.BlockThreadCountMax && block.Prod() > 1 {
		axis := largestAxis(block)
		block = block.With(axis, max(block.At(axis)/2, 1))
	}

	if mode == Exact {
		block = vec.FromFn[D](func(axis int) I {
			b, g := block.At(axis), gridThreads.At(axis)
			for b > 1 && g%b != 0 {
				b--
			}
			return b
		})
	}

	wd := New(gridThreads.CeilDiv(block), block, elems)
	if err := Validate(wd, props); err != nil {
		return WorkDiv[D, I]{}, err
	}
	return wd, nil
}

func largestAxis[D vec.Dim, I vec.Index](v vec.Vec[D, I]) int {
	best := 0
	for axis := 1; axis < v.Dim(); axis++ {
		if v.At(axis) > v.At(best) {
			best = axis
		}
	}
	return best
}

package mem

import (
	"context"
	"fmt"

	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/queue"
	"github.com/born-ml/accel/internal/vec"
)

// CreateTaskSet returns a task that stores value into every element of the
// leading extent of v.
func CreateTaskSet[T any, D vec.Dim, I vec.Index](v View[T, D, I], value T, extent vec.Vec[D, I]) (queue.Task, error) {
	if err := checkExtent(extent, v.Extent(), "view"); err != nil {
		return nil, err
	}
	return queue.TaskFunc(func(ctx context.Context, _ *dev.Device) error {
		forEachRow(extent, func(idx vec.Vec[D, I]) {
			row := Row(v, idx)[:extent.At(extent.Dim()-1)]
			for i := range row {
				row[i] = value
			}
		})
		return nil
	}), nil
}

// CreateTaskCopy returns a task that copies the leading extent of src into
// dst. Views may live on different devices.
func CreateTaskCopy[T any, D vec.Dim, I vec.Index](dst, src View[T, D, I], extent vec.Vec[D, I]) (queue.Task, error) {
	if err := checkExtent(extent, dst.Extent(), "destination"); err != nil {
		return nil, err
	}
	if err := checkExtent(extent, src.Extent(), "source"); err != nil {
		return nil, err
	}
	width := int(extent.At(extent.Dim() - 1))
	return queue.TaskFunc(func(ctx context.Context, _ *dev.Device) error {
		forEachRow(extent, func(idx vec.Vec[D, I]) {
			copy(Row(dst, idx)[:width], Row(src, idx)[:width])
		})
		return nil
	}), nil
}

func checkExtent[D vec.Dim, I vec.Index](extent, bound vec.Vec[D, I], what string) error {
	for axis := range extent.Dim() {
		if extent.At(axis) > bound.At(axis) {
			return fmt.Errorf("%w: %v exceeds %s extent %v on axis %d", ErrExtent, extent, what, bound, axis)
		}
	}
	return nil
}

// Package mem implements device buffers and views over existing memory.
//
// A view has an extent and a pitch vector. PitchBytes()[D-1] is the byte
// length of one row including padding, and PitchBytes()[i] for i < D-1 is
// the byte size of one slab along axis i, at least
// PitchBytes()[i+1] * Extent()[i]. Buffers from Alloc use exactly that.
package mem

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/vec"
)

// Sentinel errors.
var (
	// ErrExtent is returned when an extent does not fit a view.
	ErrExtent = errors.New("mem: extent exceeds view")
	// ErrPitch is returned for a pitch that is smaller than the packed
	// layout or not a whole number of elements.
	ErrPitch = errors.New("mem: invalid pitch")
	// ErrShortData is returned when the backing slice is smaller than the
	// layout requires.
	ErrShortData = errors.New("mem: backing slice too short")
)

// View is a typed window onto device memory.
type View[T any, D vec.Dim, I vec.Index] interface {
	Device() *dev.Device
	Extent() vec.Vec[D, I]
	PitchBytes() vec.Vec[D, I]
	// Data returns the backing storage, padding included.
	Data() []T
}

// layout is the storage and geometry shared by every view type.
type layout[T any, D vec.Dim, I vec.Index] struct {
	device *dev.Device
	extent vec.Vec[D, I]
	pitch  vec.Vec[D, I]
	data   []T
}

func (l *layout[T, D, I]) Device() *dev.Device       { return l.device }
func (l *layout[T, D, I]) Extent() vec.Vec[D, I]     { return l.extent }
func (l *layout[T, D, I]) PitchBytes() vec.Vec[D, I] { return l.pitch }
func (l *layout[T, D, I]) Data() []T                 { return l.data }

// At returns a pointer to the element at idx.
func (l *layout[T, D, I]) At(idx vec.Vec[D, I]) *T { return At[T](View[T, D, I](l), idx) }

// Row returns the row starting at idx, without padding.
func (l *layout[T, D, I]) Row(idx vec.Vec[D, I]) []T { return Row[T](View[T, D, I](l), idx) }

// Packed copies the elements without padding in row-major order.
func (l *layout[T, D, I]) Packed() []T { return Packed[T](View[T, D, I](l)) }

// Buf is memory owned by the package, allocated for a device.
type Buf[T any, D vec.Dim, I vec.Index] struct {
	layout[T, D, I]
}

// Alloc allocates a zeroed buffer of extent elements on d. Rows are padded
// to the pitch alignment of d.
func Alloc[T any, D vec.Dim, I vec.Index](d *dev.Device, extent vec.Vec[D, I]) *Buf[T, D, I] {
	size := elemSize[T]()
	rowBytes := uintptr(extent.At(extent.Dim()-1)) * size
	if align := uintptr(d.PitchAlignment); align > 0 && rowBytes > 0 {
		padded := (rowBytes + align - 1) / align * align
		for padded%size != 0 {
			padded += align
		}
		rowBytes = padded
	}
	pitch := pitchFromRow(extent, I(rowBytes))
	return &Buf[T, D, I]{layout[T, D, I]{
		device: d,
		extent: extent,
		pitch:  pitch,
		data:   make([]T, uintptr(pitch.At(0))/size),
	}}
}

// ViewPlainPtr is a view over memory the caller owns.
type ViewPlainPtr[T any, D vec.Dim, I vec.Index] struct {
	layout[T, D, I]
}

// NewViewPlainPtr wraps data, laid out with extent and pitchBytes, as a
// view on d.
func NewViewPlainPtr[T any, D vec.Dim, I vec.Index](data []T, d *dev.Device, extent, pitchBytes vec.Vec[D, I]) (*ViewPlainPtr[T, D, I], error) {
	size := elemSize[T]()
	minimum := PitchBytesMinimum[T](extent)
	last := extent.Dim() - 1
	if uintptr(pitchBytes.At(last))%size != 0 {
		return nil, fmt.Errorf("%w: row pitch %d is not a multiple of the element size %d", ErrPitch, pitchBytes.At(last), size)
	}
	for axis := range extent.Dim() {
		if pitchBytes.At(axis) < minimum.At(axis) {
			return nil, fmt.Errorf("%w: axis %d pitch %d is below the packed pitch %d", ErrPitch, axis, pitchBytes.At(axis), minimum.At(axis))
		}
		if axis < last {
			if inner := pitchBytes.At(axis+1) * extent.At(axis); pitchBytes.At(axis) < inner {
				return nil, fmt.Errorf("%w: axis %d pitch %d is below %d rows of pitch %d", ErrPitch, axis, pitchBytes.At(axis), extent.At(axis), pitchBytes.At(axis+1))
			}
		}
	}
	if need := span[T](extent, pitchBytes); len(data) < need {
		return nil, fmt.Errorf("%w: need %d elements, have %d", ErrShortData, need, len(data))
	}
	return &ViewPlainPtr[T, D, I]{layout[T, D, I]{device: d, extent: extent, pitch: pitchBytes, data: data}}, nil
}

// PitchBytesMinimum returns the pitch of a packed layout of extent.
func PitchBytesMinimum[T any, D vec.Dim, I vec.Index](extent vec.Vec[D, I]) vec.Vec[D, I] {
	last := extent.Dim() - 1
	return pitchFromRow(extent, extent.At(last)*I(elemSize[T]()))
}

func pitchFromRow[D vec.Dim, I vec.Index](extent vec.Vec[D, I], rowBytes I) vec.Vec[D, I] {
	last := extent.Dim() - 1
	pitch := vec.Zeros[D, I]().With(last, rowBytes)
	for axis := last - 1; axis >= 0; axis-- {
		pitch = pitch.With(axis, pitch.At(axis+1)*extent.At(axis))
	}
	return pitch
}

// span returns the number of elements up to and including the last one
// reachable in a view of extent with pitch.
func span[T any, D vec.Dim, I vec.Index](extent, pitch vec.Vec[D, I]) int {
	if extent.Prod() == 0 {
		return 0
	}
	return offset[T](pitch, extent.Sub(vec.Ones[D, I]())) + 1
}

// offset returns the element offset of idx in a view with pitch.
func offset[T any, D vec.Dim, I vec.Index](pitch, idx vec.Vec[D, I]) int {
	size := elemSize[T]()
	last := idx.Dim() - 1
	off := uintptr(idx.At(last))
	for axis := range last {
		off += uintptr(idx.At(axis)) * uintptr(pitch.At(axis+1)) / size
	}
	return int(off)
}

// At returns a pointer to the element at idx. It panics with an error
// wrapping vec.ErrIndexOutOfRange if idx is outside the extent.
func At[T any, D vec.Dim, I vec.Index](v View[T, D, I], idx vec.Vec[D, I]) *T {
	extent := v.Extent()
	for axis := range idx.Dim() {
		if idx.At(axis) < 0 || idx.At(axis) >= extent.At(axis) {
			panic(fmt.Errorf("%w: %v outside extent %v", vec.ErrIndexOutOfRange, idx, extent))
		}
	}
	return &v.Data()[offset[T](v.PitchBytes(), idx)]
}

// Row returns the elements of the row that starts at idx with the last
// component ignored. Padding is excluded.
func Row[T any, D vec.Dim, I vec.Index](v View[T, D, I], idx vec.Vec[D, I]) []T {
	last := idx.Dim() - 1
	start := offset[T](v.PitchBytes(), idx.With(last, 0))
	return v.Data()[start : start+int(v.Extent().At(last))]
}

// Packed copies the elements of v, without padding, in row-major order.
func Packed[T any, D vec.Dim, I vec.Index](v View[T, D, I]) []T {
	extent := v.Extent()
	out := make([]T, 0, int(extent.Prod()))
	forEachRow(extent, func(idx vec.Vec[D, I]) {
		out = append(out, Row(v, idx)...)
	})
	return out
}

// forEachRow calls fn with the index of the first element of every row.
func forEachRow[D vec.Dim, I vec.Index](extent vec.Vec[D, I], fn func(idx vec.Vec[D, I])) {
	last := extent.Dim() - 1
	if extent.At(last) == 0 {
		return
	}
	vec.ForEach(extent.With(last, 1), fn)
}

func elemSize[T any]() uintptr {
	var zero T
	return max(unsafe.Sizeof(zero), 1)
}

package acc

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/born-ml/accel/internal/atomic"
	"github.com/born-ml/accel/internal/blocksync"
	"github.com/born-ml/accel/internal/clock"
	"github.com/born-ml/accel/internal/config"
	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/intrinsic"
	"github.com/born-ml/accel/internal/mathfn"
	"github.com/born-ml/accel/internal/queue"
	"github.com/born-ml/accel/internal/rand"
	"github.com/born-ml/accel/internal/shared"
	"github.com/born-ml/accel/internal/vec"
	"github.com/born-ml/accel/internal/warp"
	"github.com/born-ml/accel/internal/workdiv"
)

// ErrDeviceKind is returned when a variant is asked about or launched on a
// device of another platform.
var ErrDeviceKind = errors.New("accelerator does not run on device")

// Variant is the dimension-independent description of an accelerator.
type Variant interface {
	Name() string
	DeviceKind() dev.Kind
	Platform() dev.Platform
	QueueBehavior() queue.Behavior
}

// Kind is an accelerator variant for dimension D and index type I. The
// set of variants is closed; each selects the strategies and capabilities
// of its Acc and how execution units map onto goroutines.
type Kind[D vec.Dim, I vec.Index] interface {
	Variant
	// Props returns the cached limits of the variant on d.
	Props(d *dev.Device) (dev.Props[D, I], error)
	launch(l *launch[D, I]) error
}

// GetProps returns the properties of variant A on d. It is the same as
// calling Props on a zero A.
func GetProps[A Kind[D, I], D vec.Dim, I vec.Index](d *dev.Device) (dev.Props[D, I], error) {
	var a A
	return a.Props(d)
}

// NewQueue returns a queue on d with the default behavior of A.
func NewQueue[A Variant](d *dev.Device) *queue.Queue {
	var a A
	return queue.New(d, a.QueueBehavior())
}

// Params describes one launch.
type Params[D vec.Dim, I vec.Index] struct {
	WorkDiv workdiv.WorkDiv[D, I]
	// DynSharedMemBytes is the dynamic shared memory of every block.
	DynSharedMemBytes uintptr
	// StSharedMemBytes is the static shared memory capacity of every block.
	// Zero leaves the rest of the device shared memory to static variables.
	StSharedMemBytes uintptr
	// Body runs once per execution unit.
	Body func(a *Acc[D, I])
}

// Launch runs p on d with the variant A. The work division and shared
// memory sizes must already be validated against props.
func Launch[A Kind[D, I], D vec.Dim, I vec.Index](ctx context.Context, d *dev.Device, props dev.Props[D, I], p Params[D, I]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var a A
	if err := checkDevice(a, d); err != nil {
		return err
	}
	st := p.StSharedMemBytes
	if st == 0 && props.SharedMemSizeBytes > p.DynSharedMemBytes {
		st = props.SharedMemSizeBytes - p.DynSharedMemBytes
	}
	return a.launch(&launch[D, I]{
		name:   a.Name(),
		device: d,
		Params: p,
		st:     st,
	})
}

type launch[D vec.Dim, I vec.Index] struct {
	Params[D, I]
	name   string
	device *dev.Device
	st     uintptr
}

// block is the state shared by the threads of one block.
type block[D vec.Dim, I vec.Index] struct {
	l       *launch[D, I]
	idx     vec.Vec[D, I]
	atomics atomic.Hierarchy
	sync    blocksync.Sync
	dyn     *shared.Dyn
	st      *shared.St
	caps    *capabilities
}

func (l *launch[D, I]) newBlock(h atomic.Hierarchy, s blocksync.Sync, caps *capabilities) *block[D, I] {
	return &block[D, I]{
		l:       l,
		atomics: h,
		sync:    s,
		dyn:     shared.NewDyn(l.DynSharedMemBytes),
		st:      shared.NewSt(l.st),
		caps:    caps,
	}
}

// reuse prepares the arenas of b for the block at idx.
func (b *block[D, I]) reuse(idx vec.Vec[D, I]) {
	b.idx = idx
	b.dyn.Reset()
	b.st.Reset()
}

func (b *block[D, I]) run(threadIdx vec.Vec[D, I], w warp.Warp) {
	b.l.Body(&Acc[D, I]{
		name:           b.l.name,
		workDiv:        b.l.WorkDiv,
		gridBlockIdx:   b.idx,
		blockThreadIdx: threadIdx,
		atomics:        b.atomics,
		sync:           b.sync,
		dyn:            b.dyn,
		st:             b.st,
		caps:           b.caps,
		warp:           w,
	})
}

// capabilities are the resolved capability tables of a variant.
type capabilities struct {
	math      *mathfn.Table
	rand      rand.Factory
	clock     *clock.Table
	intrinsic *intrinsic.Table
}

// resolveCaps panics if any capability has no implementation, so a
// variant with a missing registration fails at startup.
func resolveCaps(math, rng, clk, intr any) *capabilities {
	return &capabilities{
		math:      mathfn.For(math),
		rand:      rand.For(rng),
		clock:     clock.For(clk),
		intrinsic: intrinsic.For(intr),
	}
}

var (
	cpuCaps    = resolveCaps(mathfn.StdLib{}, rand.StdLib{}, clock.StdLib{}, intrinsic.Cpu{})
	gpuSimCaps = resolveCaps(mathfn.Builtin{}, rand.Philox{}, clock.StdLib{}, intrinsic.Cpu{})
)

// gridLock is the process-wide mutex table of lock-based atomics. All
// launches share it so that an address maps to the same mutex everywhere.
var gridLock = sync.OnceValue(func() *atomic.Lock {
	return atomic.NewLock(config.Current().LockSlots)
})

func variantName[D vec.Dim, I vec.Index](base string) string {
	return fmt.Sprintf("%s<%d,%s>", base, vec.DimOf[D](), reflect.TypeFor[I]().String())
}

func checkDevice(v Variant, d *dev.Device) error {
	if d == nil {
		return fmt.Errorf("%w: %s: nil device", ErrDeviceKind, v.Name())
	}
	if d.Kind() != v.DeviceKind() {
		return fmt.Errorf("%w: %s needs a %s device, got %s", ErrDeviceKind, v.Name(), v.DeviceKind(), d)
	}
	return nil
}

// clampIndex converts v to I, saturating at the largest I.
func clampIndex[I vec.Index](v uint64) I {
	if m := vec.MaxValue[I](); v > uint64(m) {
		return m
	}
	return I(v)
}

// cpuProps are the limits shared by the CPU variants.
func cpuProps[D vec.Dim, I vec.Index](multiProcessors I, blockThreadExtentMax vec.Vec[D, I], blockThreadCountMax I) dev.Props[D, I] {
	return dev.Props[D, I]{
		MultiProcessorCount:  multiProcessors,
		GridBlockExtentMax:   vec.Max[D, I](),
		GridBlockCountMax:    vec.MaxValue[I](),
		BlockThreadExtentMax: blockThreadExtentMax,
		BlockThreadCountMax:  blockThreadCountMax,
		ThreadElemExtentMax:  vec.Max[D, I](),
		ThreadElemCountMax:   vec.MaxValue[I](),
		SharedMemSizeBytes:   uintptr(config.Current().CPU.SharedMemBytes),
	}
}

func cachedProps[D vec.Dim, I vec.Index](v Variant, d *dev.Device, query func(d *dev.Device) dev.Props[D, I]) (dev.Props[D, I], error) {
	if err := checkDevice(v, d); err != nil {
		return dev.Props[D, I]{}, err
	}
	return dev.CachedProps(v.Name(), d, func(d *dev.Device) (dev.Props[D, I], error) {
		return query(d), nil
	})
}

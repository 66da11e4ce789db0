package samples

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/born-ml/accel/internal/acc"
	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/kernel"
	"github.com/born-ml/accel/internal/queue"
	"github.com/born-ml/accel/internal/vec"
	"github.com/born-ml/accel/internal/workdiv"
)

// ErrUnknown is returned for an accelerator or kernel name that Run does
// not know.
var ErrUnknown = errors.New("samples: unknown name")

// Accelerator and kernel names accepted by Run.
var (
	Accs    = []string{"serial", "threads", "blocks", "gpusim"}
	Kernels = []string{"vecadd", "histogram", "reduce", "pi"}
)

// Request selects a sample launch.
type Request struct {
	Acc    string
	Kernel string
	// N is the problem size in elements, or the total sample count for pi.
	N int
	// BlockThreads fixes the block thread extent. Zero lets the work
	// division helper choose.
	BlockThreads int
	// ThreadElems is the number of elements per thread; zero means 1.
	ThreadElems int
	Seed        uint64
}

// Report is the outcome of one launch.
type Report struct {
	Acc     string
	Device  string
	WorkDiv workdiv.WorkDiv[vec.D1, int]
	Elapsed time.Duration
	// Result summarizes the output, OK tells whether it matched the
	// host-side reference.
	Result string
	OK     bool
}

// Run launches the requested sample kernel on the first device of the
// accelerator's platform and checks the result.
func Run(ctx context.Context, r Request) (Report, error) {
	switch r.Acc {
	case "serial":
		return run[acc.CpuSerial[vec.D1, int]](ctx, r)
	case "threads":
		return run[acc.CpuThreads[vec.D1, int]](ctx, r)
	case "blocks":
		return run[acc.CpuBlocks[vec.D1, int]](ctx, r)
	case "gpusim":
		return run[acc.GpuSim[vec.D1, int]](ctx, r)
	default:
		return Report{}, fmt.Errorf("%w: accelerator %q (want one of %v)", ErrUnknown, r.Acc, Accs)
	}
}

func run[A acc.Kind[vec.D1, int]](ctx context.Context, r Request) (Report, error) {
	var a A
	d, err := dev.DeviceByIndex(a.DeviceKind(), 0)
	if err != nil {
		return Report{}, err
	}
	if r.N < 1 {
		return Report{}, fmt.Errorf("%w: n must be >= 1, got %d", workdiv.ErrInvalid, r.N)
	}
	wd, err := workDiv[A](d, r)
	if err != nil {
		return Report{}, err
	}

	var check func() (string, bool)
	var task queue.Task
	switch r.Kernel {
	case "vecadd":
		k := VecAdd[float32, int]{A: make([]float32, r.N), B: make([]float32, r.N), C: make([]float32, r.N)}
		for i := range r.N {
			k.A[i], k.B[i] = float32(i), float32(2*i)
		}
		task = kernel.Create[A](wd, k)
		check = func() (string, bool) {
			for i, c := range k.C {
				if c != float32(3*i) {
					return fmt.Sprintf("C[%d] = %v, want %v", i, c, float32(3*i)), false
				}
			}
			return fmt.Sprintf("C[%d] = %v", r.N-1, k.C[r.N-1]), true
		}
	case "histogram":
		k := Histogram[int]{Data: make([]float64, r.N), Lo: 0, Hi: 1, Bins: make([]uint32, 16)}
		for i := range r.N {
			k.Data[i] = float64(i%16)/16 + 1.0/32
		}
		task = kernel.Create[A](wd, k)
		check = func() (string, bool) {
			var total uint64
			for b, c := range k.Bins {
				total += uint64(c)
				if want := uint32(r.N/16 + boolInt(b < r.N%16)); c != want {
					return fmt.Sprintf("bin %d = %d, want %d", b, c, want), false
				}
			}
			return fmt.Sprintf("%d samples in %d bins", total, len(k.Bins)), true
		}
	case "reduce":
		var out int64
		k := Sum[int64, int]{Data: make([]int64, r.N), Out: &out}
		for i := range r.N {
			k.Data[i] = int64(i + 1)
		}
		task = kernel.Create[A](wd, k)
		check = func() (string, bool) {
			want := int64(r.N) * int64(r.N+1) / 2
			return fmt.Sprintf("sum = %d, want %d", out, want), out == want
		}
	case "pi":
		var hits uint64
		k := Pi[int]{Seed: r.Seed, Samples: max(r.N/piThreads, 1), Hits: &hits}
		task = kernel.Create[A](wd, k)
		check = func() (string, bool) {
			total := float64(k.Samples) * float64(wd.GridThreadExtent().Prod())
			est := 4 * float64(hits) / total
			return fmt.Sprintf("pi ~ %.5f", est), math.Abs(est-math.Pi) < 0.1
		}
	default:
		return Report{}, fmt.Errorf("%w: kernel %q (want one of %v)", ErrUnknown, r.Kernel, Kernels)
	}

	q := acc.NewQueue[A](d)
	start := time.Now()
	if err := kernel.Enqueue(ctx, q, task); err != nil {
		_ = q.Close()
		return Report{}, err
	}
	if err := q.Close(); err != nil {
		return Report{}, err
	}
	elapsed := time.Since(start)

	result, ok := check()
	slog.Debug("Sample done", "acc", a.Name(), "kernel", r.Kernel, "n", r.N, "elapsed", elapsed, "ok", ok)
	return Report{
		Acc:     a.Name(),
		Device:  d.ID(),
		WorkDiv: wd,
		Elapsed: elapsed,
		Result:  result,
		OK:      ok,
	}, nil
}

// piThreads is the grid thread count of the pi sample; N is split among
// them.
const piThreads = 256

// workDiv returns the work division of r. The pi sample runs piThreads
// threads, the other kernels cover N elements.
func workDiv[A acc.Kind[vec.D1, int]](d *dev.Device, r Request) (workdiv.WorkDiv[vec.D1, int], error) {
	var a A
	props, err := a.Props(d)
	if err != nil {
		return workdiv.WorkDiv[vec.D1, int]{}, err
	}
	elems := max(r.ThreadElems, 1)
	n := r.N
	if r.Kernel == "pi" {
		n, elems = piThreads, 1
	}
	if r.BlockThreads > 0 {
		threads := (n + elems - 1) / elems
		wd := workdiv.New(
			vec.Of[vec.D1]((threads+r.BlockThreads-1)/r.BlockThreads),
			vec.Of[vec.D1](r.BlockThreads),
			vec.Of[vec.D1](elems),
		)
		return wd, workdiv.Validate(wd, props)
	}
	return workdiv.Suggest(props, vec.Of[vec.D1](n), vec.Of[vec.D1](elems), workdiv.Relaxed)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

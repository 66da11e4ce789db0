package acc

import (
	"github.com/born-ml/accel/internal/atomic"
	"github.com/born-ml/accel/internal/blocksync"
	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/parallel"
	"github.com/born-ml/accel/internal/queue"
	"github.com/born-ml/accel/internal/vec"
	"github.com/born-ml/accel/internal/warp"
)

// GpuSim simulates a GPU: blocks run in parallel, every thread of a block
// runs on its own goroutine and threads are grouped into warps. Atomics
// are native at every level.
type GpuSim[D vec.Dim, I vec.Index] struct{}

func (GpuSim[D, I]) Name() string                  { return variantName[D, I]("AccGpuSim") }
func (GpuSim[D, I]) DeviceKind() dev.Kind          { return dev.GPUSim }
func (GpuSim[D, I]) Platform() dev.Platform        { return dev.PlatformOf(dev.GPUSim) }
func (GpuSim[D, I]) QueueBehavior() queue.Behavior { return queue.NonBlocking }

// Props maps the workgroup limits of d onto the axes, the last axis being
// the device x dimension.
func (v GpuSim[D, I]) Props(d *dev.Device) (dev.Props[D, I], error) {
	return cachedProps(v, d, func(d *dev.Device) dev.Props[D, I] {
		lim := d.Limits
		dims := vec.DimOf[D]()
		return dev.Props[D, I]{
			MultiProcessorCount: clampIndex[I](uint64(d.Cores)),
			GridBlockExtentMax:  vec.All[D](clampIndex[I](uint64(lim.MaxWorkgroupsPerDimension))),
			GridBlockCountMax:   vec.MaxValue[I](),
			BlockThreadExtentMax: vec.FromFn[D](func(axis int) I {
				if hw := dims - 1 - axis; hw < len(lim.MaxWorkgroupSize) {
					return clampIndex[I](uint64(lim.MaxWorkgroupSize[hw]))
				}
				return 1
			}),
			BlockThreadCountMax: clampIndex[I](uint64(lim.MaxInvocations)),
			ThreadElemExtentMax: vec.Max[D, I](),
			ThreadElemCountMax:  vec.MaxValue[I](),
			SharedMemSizeBytes:  uintptr(lim.WorkgroupStorageBytes),
		}
	})
}

func (GpuSim[D, I]) launch(l *launch[D, I]) error {
	h := atomic.Hierarchy{Grids: atomic.Native{}, Blocks: atomic.Native{}, Threads: atomic.Native{}}
	threads := int(l.WorkDiv.BlockThreadExtent.Prod())
	warpSize := max(l.device.WarpSize, 1)
	blocks := int(l.WorkDiv.GridBlockExtent.Prod())

	return parallel.For(blocks, func(i int) error {
		barrier := blocksync.NewBarrier(threads)
		b := l.newBlock(h, barrier, gpuSimCaps)
		b.idx = vec.ExtentToIndex(l.WorkDiv.GridBlockExtent, I(i))
		warps := warp.Partition(threads, warpSize)

		return parallel.Go(threads, func(t int) {
			lane := warps[t/warpSize].Lane(t % warpSize)
			b.run(vec.ExtentToIndex(l.WorkDiv.BlockThreadExtent, I(t)), lane)
		}, func() {
			barrier.Break()
			for _, w := range warps {
				w.Break()
			}
		})
	}, parallel.DefaultConfig())
}

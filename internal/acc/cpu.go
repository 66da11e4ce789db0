package acc

import (
	"github.com/born-ml/accel/internal/atomic"
	"github.com/born-ml/accel/internal/blocksync"
	"github.com/born-ml/accel/internal/config"
	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/parallel"
	"github.com/born-ml/accel/internal/queue"
	"github.com/born-ml/accel/internal/vec"
	"github.com/born-ml/accel/internal/warp"
)

// CpuSerial runs every block on the calling goroutine in row-major order
// with one thread per block.
type CpuSerial[D vec.Dim, I vec.Index] struct{}

func (CpuSerial[D, I]) Name() string                  { return variantName[D, I]("AccCpuSerial") }
func (CpuSerial[D, I]) DeviceKind() dev.Kind          { return dev.CPU }
func (CpuSerial[D, I]) Platform() dev.Platform        { return dev.PlatformOf(dev.CPU) }
func (CpuSerial[D, I]) QueueBehavior() queue.Behavior { return queue.Blocking }

func (v CpuSerial[D, I]) Props(d *dev.Device) (dev.Props[D, I], error) {
	return cachedProps(v, d, func(*dev.Device) dev.Props[D, I] {
		return cpuProps(I(1), vec.Ones[D, I](), I(1))
	})
}

func (CpuSerial[D, I]) launch(l *launch[D, I]) error {
	b := l.newBlock(atomic.Hierarchy{Grids: gridLock(), Blocks: atomic.NoOp{}, Threads: atomic.NoOp{}}, blocksync.NoOp{}, cpuCaps)
	blocks := l.WorkDiv.GridBlockExtent.Prod()
	for i := I(0); i < blocks; i++ {
		b.reuse(vec.ExtentToIndex(l.WorkDiv.GridBlockExtent, i))
		if err := parallel.Protect(func() { b.run(vec.Zeros[D, I](), warp.SingleThread{}) }); err != nil {
			return err
		}
	}
	return nil
}

// CpuThreads runs blocks one after another and every thread of a block on
// its own goroutine.
type CpuThreads[D vec.Dim, I vec.Index] struct{}

func (CpuThreads[D, I]) Name() string                  { return variantName[D, I]("AccCpuThreads") }
func (CpuThreads[D, I]) DeviceKind() dev.Kind          { return dev.CPU }
func (CpuThreads[D, I]) Platform() dev.Platform        { return dev.PlatformOf(dev.CPU) }
func (CpuThreads[D, I]) QueueBehavior() queue.Behavior { return queue.Blocking }

func (v CpuThreads[D, I]) Props(d *dev.Device) (dev.Props[D, I], error) {
	return cachedProps(v, d, func(*dev.Device) dev.Props[D, I] {
		n := clampIndex[I](uint64(config.Current().CPU.BlockThreads))
		return cpuProps(I(1), vec.All[D](n), n)
	})
}

func (CpuThreads[D, I]) launch(l *launch[D, I]) error {
	lock := gridLock()
	b := l.newBlock(atomic.Hierarchy{Grids: lock, Blocks: lock, Threads: atomic.NoOp{}}, nil, cpuCaps)
	threads := int(l.WorkDiv.BlockThreadExtent.Prod())
	blocks := l.WorkDiv.GridBlockExtent.Prod()
	for i := I(0); i < blocks; i++ {
		b.reuse(vec.ExtentToIndex(l.WorkDiv.GridBlockExtent, i))
		barrier := blocksync.NewBarrier(threads)
		b.sync = barrier
		err := parallel.Go(threads, func(t int) {
			b.run(vec.ExtentToIndex(l.WorkDiv.BlockThreadExtent, I(t)), warp.SingleThread{})
		}, barrier.Break)
		if err != nil {
			return err
		}
	}
	return nil
}

// CpuBlocks runs blocks in parallel, bounded by the configured worker
// count, with one thread per block.
type CpuBlocks[D vec.Dim, I vec.Index] struct{}

func (CpuBlocks[D, I]) Name() string                  { return variantName[D, I]("AccCpuBlocks") }
func (CpuBlocks[D, I]) DeviceKind() dev.Kind          { return dev.CPU }
func (CpuBlocks[D, I]) Platform() dev.Platform        { return dev.PlatformOf(dev.CPU) }
func (CpuBlocks[D, I]) QueueBehavior() queue.Behavior { return queue.Blocking }

func (v CpuBlocks[D, I]) Props(d *dev.Device) (dev.Props[D, I], error) {
	return cachedProps(v, d, func(d *dev.Device) dev.Props[D, I] {
		return cpuProps(clampIndex[I](uint64(d.Cores)), vec.Ones[D, I](), I(1))
	})
}

func (CpuBlocks[D, I]) launch(l *launch[D, I]) error {
	h := atomic.Hierarchy{Grids: atomic.Native{}, Blocks: atomic.NoOp{}, Threads: atomic.NoOp{}}
	blocks := int(l.WorkDiv.GridBlockExtent.Prod())
	return parallel.For(blocks, func(i int) error {
		b := l.newBlock(h, blocksync.NoOp{}, cpuCaps)
		b.idx = vec.ExtentToIndex(l.WorkDiv.GridBlockExtent, I(i))
		b.run(vec.Zeros[D, I](), warp.SingleThread{})
		return nil
	}, parallel.DefaultConfig())
}

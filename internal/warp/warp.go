// Package warp is the warp capability: collective operations over the
// lanes of a warp, a fixed-size group of consecutive threads of a block.
package warp

import (
	"fmt"

	"github.com/born-ml/accel/internal/blocksync"
)

// Warp is the view of one lane on its warp. Collective operations must be
// called by every active lane of the warp.
type Warp interface {
	// Size returns the nominal number of lanes per warp.
	Size() int
	// Activemask returns a bit per active lane.
	Activemask() uint64
	// All returns 1 if pred is non-zero on every active lane.
	All(pred int) int
	// Any returns 1 if pred is non-zero on any active lane.
	Any(pred int) int
	// Ballot returns a bit per active lane whose pred is non-zero.
	Ballot(pred int) uint64
	// Shfl returns value as passed by lane srcLane.
	Shfl(value uint64, srcLane int) uint64
}

// SingleThread is the warp of variants that run one thread per warp.
type SingleThread struct{}

func (SingleThread) Size() int          { return 1 }
func (SingleThread) Activemask() uint64 { return 1 }
func (SingleThread) All(pred int) int   { return b2i(pred != 0) }
func (SingleThread) Any(pred int) int   { return b2i(pred != 0) }

func (SingleThread) Ballot(pred int) uint64 {
	return uint64(b2i(pred != 0))
}

func (SingleThread) Shfl(value uint64, srcLane int) uint64 {
	return value
}

// Group is one simulated warp. Its active lanes exchange values through
// per-lane slots guarded by a barrier.
type Group struct {
	size    int
	active  int
	barrier *blocksync.Barrier
	slots   []uint64
}

// NewGroup returns a warp of nominal size with the first active lanes
// participating.
func NewGroup(size, active int) *Group {
	if size < 1 || size > 64 || active < 1 || active > size {
		panic(fmt.Sprintf("warp: invalid group size %d with %d active lanes", size, active))
	}
	return &Group{
		size:    size,
		active:  active,
		barrier: blocksync.NewBarrier(active),
		slots:   make([]uint64, active),
	}
}

// Partition splits threads consecutive threads into warps of size lanes.
// The last warp is partial when size does not divide threads.
func Partition(threads, size int) []*Group {
	groups := make([]*Group, 0, (threads+size-1)/size)
	for start := 0; start < threads; start += size {
		groups = append(groups, NewGroup(size, min(size, threads-start)))
	}
	return groups
}

// Lane returns the Warp of lane id.
func (g *Group) Lane(id int) *Lane {
	if id < 0 || id >= g.active {
		panic(fmt.Sprintf("warp: lane %d out of range [0, %d)", id, g.active))
	}
	return &Lane{g: g, id: id}
}

// Break releases lanes waiting in a collective when a lane fails.
func (g *Group) Break() {
	g.barrier.Break()
}

// exchange publishes v for lane id and reduces all published values.
func (g *Group) exchange(id int, v uint64, reduce func(slots []uint64) uint64) uint64 {
	g.slots[id] = v
	g.barrier.SyncBlockThreads()
	r := reduce(g.slots)
	g.barrier.SyncBlockThreads()
	return r
}

// Lane is the Warp of one simulated lane.
type Lane struct {
	g  *Group
	id int
}

// ID returns the lane index within the warp.
func (l *Lane) ID() int { return l.id }

func (l *Lane) Size() int { return l.g.size }

func (l *Lane) Activemask() uint64 {
	if l.g.active == 64 {
		return ^uint64(0)
	}
	return 1<<l.g.active - 1
}

func (l *Lane) All(pred int) int {
	return b2i(l.Ballot(pred) == l.Activemask())
}

func (l *Lane) Any(pred int) int {
	return b2i(l.Ballot(pred) != 0)
}

func (l *Lane) Ballot(pred int) uint64 {
	return l.g.exchange(l.id, uint64(b2i(pred != 0)), func(slots []uint64) uint64 {
		var mask uint64
		for lane, s := range slots {
			mask |= s << lane
		}
		return mask
	})
}

// Shfl panics if srcLane is not an active lane.
func (l *Lane) Shfl(value uint64, srcLane int) uint64 {
	if srcLane < 0 || srcLane >= l.g.active {
		panic(fmt.Sprintf("warp: shuffle source lane %d out of range [0, %d)", srcLane, l.g.active))
	}
	return l.g.exchange(l.id, value, func(slots []uint64) uint64 {
		return slots[srcLane]
	})
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

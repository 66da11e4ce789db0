package atomic

import (
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"
	"unsafe"
)

// DefaultLockSlots is the mutex table size of NewLock(0).
const DefaultLockSlots = 16

// Strategy selects how an atomic operation is made indivisible.
// The set is closed: NoOp, *Lock and Native.
type Strategy interface {
	Name() string
	strategy()
}

// NoOp performs a plain read-modify-write. Only valid when a single
// participant touches the address at that level.
type NoOp struct{}

// Name implements Strategy.
func (NoOp) Name() string { return "AtomicNoOp" }
func (NoOp) strategy()    {}

// Native uses sync/atomic compare-and-swap on the operand's bits.
type Native struct{}

// Name implements Strategy.
func (Native) Name() string { return "AtomicNative" }
func (Native) strategy()    {}

// Lock serializes operations through a power-of-two table of mutexes.
// Distinct addresses that hash to the same slot contend for the same mutex.
type Lock struct {
	mask  uintptr
	slots []paddedMutex
}

type paddedMutex struct {
	sync.Mutex
	_ [56]byte
}

// NewLock returns a lock table with n slots. n must be a power of two;
// zero selects DefaultLockSlots.
func NewLock(n int) *Lock {
	if n == 0 {
		n = DefaultLockSlots
	}
	if n < 0 || bits.OnesCount(uint(n)) != 1 {
		panic(fmt.Sprintf("atomic: lock slots %d is not a power of two", n))
	}
	return &Lock{mask: uintptr(n - 1), slots: make([]paddedMutex, n)}
}

// Name implements Strategy.
func (l *Lock) Name() string { return fmt.Sprintf("AtomicLock<%d>", len(l.slots)) }
func (l *Lock) strategy()    {}

// Slots returns the table size.
func (l *Lock) Slots() int { return len(l.slots) }

func (l *Lock) mutexFor(p unsafe.Pointer) *sync.Mutex {
	return &l.slots[(uintptr(p)>>2)&l.mask].Mutex
}

// Apply performs op on *addr with operand v under strategy s and returns
// the previous value.
func Apply[T Value](s Strategy, op Op, addr *T, v T) T {
	switch s := s.(type) {
	case NoOp:
		old := *addr
		*addr = Combine(op, old, v)
		return old
	case *Lock:
		m := s.mutexFor(unsafe.Pointer(addr))
		m.Lock()
		defer m.Unlock()
		old := *addr
		*addr = Combine(op, old, v)
		return old
	case Native:
		return casLoop(addr, func(old T) T { return Combine(op, old, v) })
	}
	panic(fmt.Sprintf("atomic: unknown strategy %T", s))
}

// CompareAndSwap stores v at addr if *addr equals compare and returns the
// previous value.
func CompareAndSwap[T Value](s Strategy, addr *T, compare, v T) T {
	swap := func(old T) T {
		if old == compare {
			return v
		}
		return old
	}
	switch s := s.(type) {
	case NoOp:
		old := *addr
		*addr = swap(old)
		return old
	case *Lock:
		m := s.mutexFor(unsafe.Pointer(addr))
		m.Lock()
		defer m.Unlock()
		old := *addr
		*addr = swap(old)
		return old
	case Native:
		return casLoop(addr, swap)
	}
	panic(fmt.Sprintf("atomic: unknown strategy %T", s))
}

// casLoop applies next to *addr until the word-sized compare-and-swap
// succeeds. Floating-point values are compared by bit pattern.
func casLoop[T Value](addr *T, next func(T) T) T {
	switch unsafe.Sizeof(*addr) {
	case 4:
		word := (*uint32)(unsafe.Pointer(addr))
		for {
			oldBits := atomic.LoadUint32(word)
			old := *(*T)(unsafe.Pointer(&oldBits))
			nv := next(old)
			if atomic.CompareAndSwapUint32(word, oldBits, *(*uint32)(unsafe.Pointer(&nv))) {
				return old
			}
		}
	case 8:
		word := (*uint64)(unsafe.Pointer(addr))
		for {
			oldBits := atomic.LoadUint64(word)
			old := *(*T)(unsafe.Pointer(&oldBits))
			nv := next(old)
			if atomic.CompareAndSwapUint64(word, oldBits, *(*uint64)(unsafe.Pointer(&nv))) {
				return old
			}
		}
	}
	panic(fmt.Sprintf("atomic: unsupported operand size %d", unsafe.Sizeof(*addr)))
}

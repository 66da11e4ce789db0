package acc

import (
	"github.com/born-ml/accel/internal/atomic"
	"github.com/born-ml/accel/internal/shared"
	"github.com/born-ml/accel/internal/vec"
)

// AtomicOp applies op to *addr with grid-level atomicity and returns the
// previous value.
func AtomicOp[T atomic.Value, D vec.Dim, I vec.Index](a *Acc[D, I], op atomic.Op, addr *T, v T) T {
	return atomic.Apply(a.atomics.Grids, op, addr, v)
}

// AtomicOpAt applies op with the atomicity of level. Use a narrower level
// only for addresses no participant outside that level touches.
func AtomicOpAt[T atomic.Value, D vec.Dim, I vec.Index](a *Acc[D, I], level atomic.Level, op atomic.Op, addr *T, v T) T {
	return atomic.Apply(a.atomics.At(level), op, addr, v)
}

// AtomicCas stores v at addr if *addr equals compare, with grid-level
// atomicity, and returns the previous value.
func AtomicCas[T atomic.Value, D vec.Dim, I vec.Index](a *Acc[D, I], addr *T, compare, v T) T {
	return atomic.CompareAndSwap(a.atomics.Grids, addr, compare, v)
}

// AtomicCasAt is AtomicCas with the atomicity of level.
func AtomicCasAt[T atomic.Value, D vec.Dim, I vec.Index](a *Acc[D, I], level atomic.Level, addr *T, compare, v T) T {
	return atomic.CompareAndSwap(a.atomics.At(level), addr, compare, v)
}

// SharedVar returns the block shared variable declared under id. Every
// thread of the block gets the same pointer.
func SharedVar[T any, D vec.Dim, I vec.Index](a *Acc[D, I], id uint64) *T {
	return shared.Var[T](a.st, id)
}

// DynSharedMem returns the dynamic shared memory of the block as a slice
// of T.
func DynSharedMem[T any, D vec.Dim, I vec.Index](a *Acc[D, I]) []T {
	return shared.DynSlice[T](a.dyn)
}

// ForEachElem calls fn with the grid element index of every element the
// calling thread owns.
func ForEachElem[D vec.Dim, I vec.Index](a *Acc[D, I], fn func(idx vec.Vec[D, I])) {
	first := a.GridThreadIdx().Mul(a.workDiv.ThreadElemExtent)
	vec.ForEach(a.workDiv.ThreadElemExtent, func(off vec.Vec[D, I]) {
		fn(first.Add(off))
	})
}

// ForEachElemWithin is ForEachElem restricted to indices inside extent,
// for grids that overhang the problem size.
func ForEachElemWithin[D vec.Dim, I vec.Index](a *Acc[D, I], extent vec.Vec[D, I], fn func(idx vec.Vec[D, I])) {
	ForEachElem(a, func(idx vec.Vec[D, I]) {
		for axis := range idx.Dim() {
			if idx.At(axis) >= extent.At(axis) {
				return
			}
		}
		fn(idx)
	})
}

// Float is the operand set of the math helpers.
type Float interface {
	~float32 | ~float64
}

func Abs[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F   { return F(a.caps.math.Abs(float64(x))) }
func Trunc[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F { return F(a.caps.math.Trunc(float64(x))) }
func Floor[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F { return F(a.caps.math.Floor(float64(x))) }
func Ceil[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F  { return F(a.caps.math.Ceil(float64(x))) }
func Round[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F { return F(a.caps.math.Round(float64(x))) }
func Sqrt[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F  { return F(a.caps.math.Sqrt(float64(x))) }
func Rsqrt[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F { return F(a.caps.math.Rsqrt(float64(x))) }
func Exp[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F   { return F(a.caps.math.Exp(float64(x))) }
func Log[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F   { return F(a.caps.math.Log(float64(x))) }
func Sin[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F   { return F(a.caps.math.Sin(float64(x))) }
func Cos[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x F) F   { return F(a.caps.math.Cos(float64(x))) }

func Pow[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x, y F) F {
	return F(a.caps.math.Pow(float64(x), float64(y)))
}

func Fmod[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x, y F) F {
	return F(a.caps.math.Fmod(float64(x), float64(y)))
}

func Atan2[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], y, x F) F {
	return F(a.caps.math.Atan2(float64(y), float64(x)))
}

func Min[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x, y F) F {
	return F(a.caps.math.Min(float64(x), float64(y)))
}

func Max[F Float, D vec.Dim, I vec.Index](a *Acc[D, I], x, y F) F {
	return F(a.caps.math.Max(float64(x), float64(y)))
}

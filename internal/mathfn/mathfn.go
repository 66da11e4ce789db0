// Package mathfn is the math capability available to kernels.
//
// Implementations are resolved per capability object through a trait
// registry: StdLib is the default for every type and Builtin overrides it
// with device semantics.
package mathfn

import (
	"math"

	"github.com/born-ml/accel/internal/trait"
)

// Table is the function set of the math capability.
type Table struct {
	Name string

	Abs, Trunc, Floor, Ceil, Round  func(float64) float64
	Sqrt, Rsqrt, Cbrt               func(float64) float64
	Exp, Log, Log2, Log10           func(float64) float64
	Sin, Cos, Tan, Asin, Acos, Atan func(float64) float64
	Erf                             func(float64) float64
	IsNaN, IsInf, IsFinite          func(float64) bool
	Pow, Fmod, Remainder, Atan2     func(x, y float64) float64
	Min, Max                        func(x, y float64) float64
	SinCos                          func(float64) (sin, cos float64)
}

// StdLib selects the standard library math functions.
type StdLib struct{}

// Builtin selects device semantics: Min and Max return the non-NaN operand
// when exactly one operand is NaN.
type Builtin struct{}

// Registry resolves the Table of a math capability object.
var Registry = trait.New[*Table]("math")

func init() {
	Registry.SetDefault(stdTable())
	Registry.Register(Builtin{}, builtinTable())
}

// For returns the table of impl. It panics if impl has no implementation.
func For(impl any) *Table {
	return Registry.MustResolve(impl)
}

func stdTable() *Table {
	return &Table{
		Name:      "MathStdLib",
		Abs:       math.Abs,
		Trunc:     math.Trunc,
		Floor:     math.Floor,
		Ceil:      math.Ceil,
		Round:     math.Round,
		Sqrt:      math.Sqrt,
		Rsqrt:     func(x float64) float64 { return 1 / math.Sqrt(x) },
		Cbrt:      math.Cbrt,
		Exp:       math.Exp,
		Log:       math.Log,
		Log2:      math.Log2,
		Log10:     math.Log10,
		Sin:       math.Sin,
		Cos:       math.Cos,
		Tan:       math.Tan,
		Asin:      math.Asin,
		Acos:      math.Acos,
		Atan:      math.Atan,
		Erf:       math.Erf,
		IsNaN:     math.IsNaN,
		IsInf:     func(x float64) bool { return math.IsInf(x, 0) },
		IsFinite:  func(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) },
		Pow:       math.Pow,
		Fmod:      math.Mod,
		Remainder: math.Remainder,
		Atan2:     math.Atan2,
		Min:       math.Min,
		Max:       math.Max,
		SinCos:    math.Sincos,
	}
}

func builtinTable() *Table {
	t := stdTable()
	t.Name = "MathBuiltin"
	t.Min = func(x, y float64) float64 {
		switch {
		case math.IsNaN(x):
			return y
		case math.IsNaN(y):
			return x
		}
		return math.Min(x, y)
	}
	t.Max = func(x, y float64) float64 {
		switch {
		case math.IsNaN(x):
			return y
		case math.IsNaN(y):
			return x
		}
		return math.Max(x, y)
	}
	return t
}

// Package rand is the random number capability available to kernels.
//
// A capability object resolves to a generator factory. Every execution unit
// creates its own generator from (seed, subsequence), usually with its
// linear grid thread index as the subsequence.
package rand

import (
	"math"
	"math/rand/v2"
	"unsafe"

	"github.com/born-ml/accel/internal/trait"
)

// Generator produces uniformly distributed bits.
type Generator interface {
	Uint32() uint32
	Uint64() uint64
}

// Factory creates the generator of one execution unit.
type Factory func(seed, subsequence uint64) Generator

// StdLib selects the standard library PCG generator.
type StdLib struct{}

// Philox selects the counter-based Philox4x32-10 generator.
type Philox struct{}

// Registry resolves the Factory of a random number capability object.
var Registry = trait.New[Factory]("rand")

func init() {
	Registry.SetDefault(newPCG)
	Registry.Register(Philox{}, func(seed, subsequence uint64) Generator {
		return NewPhilox(seed, subsequence)
	})
}

// For returns the factory of impl. It panics if impl has no implementation.
func For(impl any) Factory {
	return Registry.MustResolve(impl)
}

type pcg struct {
	*rand.PCG
}

func (p pcg) Uint32() uint32 {
	return uint32(p.PCG.Uint64() >> 32)
}

func newPCG(seed, subsequence uint64) Generator {
	return pcg{rand.NewPCG(seed, subsequence)}
}

// Uniform returns a float in [0, 1).
func Uniform[F ~float32 | ~float64](g Generator) F {
	var zero F
	if unsafe.Sizeof(zero) == 4 {
		return F(float32(g.Uint32()>>8) / (1 << 24))
	}
	return F(float64(g.Uint64()>>11) / (1 << 53))
}

// UniformUint returns 32 uniformly distributed bits.
func UniformUint(g Generator) uint32 {
	return g.Uint32()
}

// Normal returns a standard normal variate.
func Normal[F ~float32 | ~float64](g Generator) F {
	return F(rand.New(g).NormFloat64())
}

// NormalMeanStd returns a normal variate with the given mean and standard
// deviation.
func NormalMeanStd(g Generator, mean, std float64) float64 {
	if std < 0 || math.IsNaN(std) {
		return math.NaN()
	}
	return mean + std*rand.New(g).NormFloat64()
}

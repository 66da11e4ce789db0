package rand

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhilox4x32_KnownAnswer(t *testing.T) {
	out := philox4x32([4]uint32{}, [2]uint32{})
	assert.Equal(t, [4]uint32{0x6627e8d5, 0xe169c58d, 0xbc57ac4c, 0x9b00dbd8}, out)
}

func TestPhilox_Stream(t *testing.T) {
	g := NewPhilox(0, 0)
	assert.Equal(t, uint32(0x6627e8d5), g.Uint32())
	assert.Equal(t, uint64(0xe169c58d)<<32|0xbc57ac4c, g.Uint64())
	assert.Equal(t, uint32(0x9b00dbd8), g.Uint32())

	// the fifth output comes from the next counter
	assert.Equal(t, philox4x32([4]uint32{1, 0, 0, 0}, [2]uint32{})[0], g.Uint32())
}

func TestPhilox_SubsequencesDiffer(t *testing.T) {
	a, b := NewPhilox(42, 0), NewPhilox(42, 1)
	same := 0
	for range 64 {
		if a.Uint32() == b.Uint32() {
			same++
		}
	}
	assert.Less(t, same, 4)

	c, d := NewPhilox(42, 7), NewPhilox(42, 7)
	for range 16 {
		require.Equal(t, c.Uint64(), d.Uint64(), "same (seed, subsequence) reproduces the stream")
	}
}

func TestFor(t *testing.T) {
	_, isPhilox := For(Philox{})(1, 2).(*PhiloxGen)
	assert.True(t, isPhilox)

	_, isPCG := For(StdLib{})(1, 2).(pcg)
	assert.True(t, isPCG)
}

func TestDistributions(t *testing.T) {
	for name, g := range map[string]Generator{
		"pcg":    For(StdLib{})(7, 0),
		"philox": For(Philox{})(7, 0),
	} {
		t.Run(name, func(t *testing.T) {
			const n = 20000
			var sum, sumSq float64
			for range n {
				u := Uniform[float64](g)
				require.GreaterOrEqual(t, u, 0.0)
				require.Less(t, u, 1.0)

				f := Uniform[float32](g)
				require.Less(t, f, float32(1))

				x := Normal[float64](g)
				sum += x
				sumSq += x * x
			}
			mean := sum / n
			assert.InDelta(t, 0, mean, 0.05)
			assert.InDelta(t, 1, sumSq/n-mean*mean, 0.05)
		})
	}

	assert.True(t, math.IsNaN(NormalMeanStd(NewPhilox(1, 1), 0, -1)))
}

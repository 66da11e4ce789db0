package rand

import "math/bits"

// Philox4x32-10 round constants.
const (
	philoxM0 = 0xD2511F53
	philoxM1 = 0xCD9E8D57
	philoxW0 = 0x9E3779B9
	philoxW1 = 0xBB67AE85

	philoxRounds = 10
)

// philox4x32 applies the ten-round Philox bijection to ctr under key.
func philox4x32(ctr [4]uint32, key [2]uint32) [4]uint32 {
	for r := range philoxRounds {
		if r > 0 {
			key[0] += philoxW0
			key[1] += philoxW1
		}
		hi0, lo0 := bits.Mul32(philoxM0, ctr[0])
		hi1, lo1 := bits.Mul32(philoxM1, ctr[2])
		ctr = [4]uint32{hi1 ^ ctr[1] ^ key[0], lo1, hi0 ^ ctr[3] ^ key[1], lo0}
	}
	return ctr
}

// PhiloxGen is a counter-based generator. The key is the seed, the upper
// counter half is the subsequence and the lower half advances per block of
// four outputs, so subsequences never overlap.
type PhiloxGen struct {
	key   [2]uint32
	ctr   [4]uint32
	out   [4]uint32
	index int
}

// NewPhilox returns a Philox4x32-10 generator for (seed, subsequence).
func NewPhilox(seed, subsequence uint64) *PhiloxGen {
	return &PhiloxGen{
		key:   [2]uint32{uint32(seed), uint32(seed >> 32)},
		ctr:   [4]uint32{0, 0, uint32(subsequence), uint32(subsequence >> 32)},
		index: 4,
	}
}

// Uint32 returns the next 32 random bits.
func (g *PhiloxGen) Uint32() uint32 {
	if g.index == 4 {
		g.out = philox4x32(g.ctr, g.key)
		g.ctr[0]++
		if g.ctr[0] == 0 {
			g.ctr[1]++
		}
		g.index = 0
	}
	v := g.out[g.index]
	g.index++
	return v
}

// Uint64 returns the next 64 random bits.
func (g *PhiloxGen) Uint64() uint64 {
	return uint64(g.Uint32())<<32 | uint64(g.Uint32())
}

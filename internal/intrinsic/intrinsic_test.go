package intrinsic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCpu(t *testing.T) {
	in := For(Cpu{})
	assert.Equal(t, "IntrinsicCpu", in.Name)

	assert.Equal(t, 3, in.Popcount32(0b1011))
	assert.Equal(t, 64, in.Popcount64(^uint64(0)))

	tests := []struct {
		v        int64
		expected int
	}{
		{0, 0},
		{1, 1},
		{0b1000, 4},
		{-1, 1},
		{-1 << 63, 64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, in.Ffs64(tt.v), "ffs(%d)", tt.v)
	}
	assert.Equal(t, 32, in.Ffs32(-1<<31))
}

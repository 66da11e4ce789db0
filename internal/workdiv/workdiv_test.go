package workdiv

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/accel/internal/dev"
	"github.com/born-ml/accel/internal/vec"
)

func testProps() dev.Props[vec.D2, int] {
	return dev.Props[vec.D2, int]{
		MultiProcessorCount:  4,
		GridBlockExtentMax:   vec.Of[vec.D2](1000, 1000),
		GridBlockCountMax:    100000,
		BlockThreadExtentMax: vec.Of[vec.D2](16, 8),
		BlockThreadCountMax:  64,
		ThreadElemExtentMax:  vec.Of[vec.D2](4, 4),
		ThreadElemCountMax:   8,
		SharedMemSizeBytes:   1024,
	}
}

func limitErr(t *testing.T, err error) *LimitError {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalid))
	var le *LimitError
	require.True(t, errors.As(err, &le), "expected *LimitError, got %T", err)
	return le
}

func TestDerivedExtents(t *testing.T) {
	wd := New(vec.Of[vec.D2](2, 3), vec.Of[vec.D2](4, 5), vec.Of[vec.D2](1, 2))

	assert.Equal(t, vec.Of[vec.D2](8, 15), wd.GridThreadExtent())
	assert.Equal(t, vec.Of[vec.D2](4, 10), wd.BlockElemExtent())
	assert.Equal(t, vec.Of[vec.D2](8, 30), wd.GridElemExtent())
	assert.Equal(t, "grid(2, 3) block(4, 5) elem(1, 2)", wd.String())
}

func TestValidate_WithinLimits(t *testing.T) {
	props := testProps()
	for _, block := range []vec.Vec[vec.D2, int]{
		vec.Of[vec.D2](1, 1),
		vec.Of[vec.D2](16, 4),
		vec.Of[vec.D2](8, 8),
	} {
		wd := New(vec.Of[vec.D2](10, 10), block, vec.Ones[vec.D2, int]())
		assert.NoError(t, Validate(wd, props), "block %v", block)
	}
}

func TestValidate_BlockThreadExtentAxis(t *testing.T) {
	props := testProps()

	tests := []struct {
		block  vec.Vec[vec.D2, int]
		axis   int
		excess uint64
	}{
		{vec.Of[vec.D2](17, 1), 0, 1},
		{vec.Of[vec.D2](1, 12), 1, 4},
	}
	for _, tt := range tests {
		wd := New(vec.Ones[vec.D2, int](), tt.block, vec.Ones[vec.D2, int]())
		le := limitErr(t, Validate(wd, props))

		assert.Equal(t, Exceeded, le.Violation)
		assert.Equal(t, LimitBlockThreadExtent, le.Limit)
		assert.Equal(t, tt.axis, le.Axis)
		assert.Equal(t, tt.excess, le.Excess())
		assert.Contains(t, le.Error(), "block thread extent axis")
	}
}

func TestValidate_BlockThreadCount(t *testing.T) {
	wd := New(vec.Ones[vec.D2, int](), vec.Of[vec.D2](16, 8), vec.Ones[vec.D2, int]())
	le := limitErr(t, Validate(wd, testProps()))

	assert.Equal(t, LimitBlockThreadCount, le.Limit)
	assert.Equal(t, -1, le.Axis)
	assert.Equal(t, uint64(128), le.Requested)
	assert.Equal(t, uint64(64), le.Max)
	assert.Equal(t, "invalid launch configuration: block thread count is 128, exceeds device maximum 64 by 64", le.Error())
}

func TestValidate_GridBlockExtent(t *testing.T) {
	wd := New(vec.Of[vec.D2](1, 1001), vec.Ones[vec.D2, int](), vec.Ones[vec.D2, int]())
	le := limitErr(t, Validate(wd, testProps()))

	assert.Equal(t, LimitGridBlockExtent, le.Limit)
	assert.Equal(t, 1, le.Axis)
}

func TestValidate_ThreadElem(t *testing.T) {
	wd := New(vec.Ones[vec.D2, int](), vec.Ones[vec.D2, int](), vec.Of[vec.D2](4, 4))
	le := limitErr(t, Validate(wd, testProps()))

	assert.Equal(t, LimitThreadElemCount, le.Limit)
}

func TestValidate_NonPositive(t *testing.T) {
	wd := New(vec.Of[vec.D2](1, 0), vec.Ones[vec.D2, int](), vec.Ones[vec.D2, int]())
	le := limitErr(t, Validate(wd, testProps()))

	assert.Equal(t, NonPositive, le.Violation)
	assert.Equal(t, LimitGridBlockExtent, le.Limit)
	assert.Equal(t, 1, le.Axis)

	wd = New(vec.Ones[vec.D2, int](), vec.Of[vec.D2](-3, 1), vec.Ones[vec.D2, int]())
	le = limitErr(t, Validate(wd, testProps()))
	assert.Equal(t, LimitBlockThreadExtent, le.Limit)
	assert.Contains(t, le.Error(), "must be at least 1")
}

func TestValidate_Overflow(t *testing.T) {
	props := dev.Props[vec.D2, int32]{
		GridBlockExtentMax:   vec.Max[vec.D2, int32](),
		GridBlockCountMax:    math.MaxInt32,
		BlockThreadExtentMax: vec.Max[vec.D2, int32](),
		BlockThreadCountMax:  math.MaxInt32,
		ThreadElemExtentMax:  vec.Max[vec.D2, int32](),
		ThreadElemCountMax:   math.MaxInt32,
	}

	wd := New(vec.Of[vec.D2, int32](1<<20, 1), vec.Of[vec.D2, int32](1<<12, 1), vec.Ones[vec.D2, int32]())
	le := limitErr(t, Validate(wd, props))
	assert.Equal(t, Overflow, le.Violation)
	assert.Equal(t, LimitGridElemExtent, le.Limit)
	assert.Equal(t, 0, le.Axis)

	wd = New(vec.Of[vec.D2, int32](1<<16, 1<<16), vec.Ones[vec.D2, int32](), vec.Ones[vec.D2, int32]())
	le = limitErr(t, Validate(wd, props))
	assert.Equal(t, Overflow, le.Violation)
	assert.Equal(t, LimitGridBlockCount, le.Limit)
}

func TestValidateSharedMem(t *testing.T) {
	assert.NoError(t, ValidateSharedMem(1024, 1024))

	le := limitErr(t, ValidateSharedMem(1500, 1024))
	assert.Equal(t, LimitSharedMemBytes, le.Limit)
	assert.Equal(t, uint64(476), le.Excess())
}

func TestSuggest(t *testing.T) {
	props := testProps()

	t.Run("relaxed", func(t *testing.T) {
		wd, err := Suggest(props, vec.Of[vec.D2](100, 30), vec.Ones[vec.D2, int](), Relaxed)
		require.NoError(t, err)

		assert.LessOrEqual(t, wd.BlockThreadExtent.Prod(), props.BlockThreadCountMax)
		grid := wd.GridElemExtent()
		assert.GreaterOrEqual(t, grid.At(0), 100)
		assert.GreaterOrEqual(t, grid.At(1), 30)
	})

	t.Run("exact", func(t *testing.T) {
		wd, err := Suggest(props, vec.Of[vec.D2](12, 7), vec.Ones[vec.D2, int](), Exact)
		require.NoError(t, err)

		threads := wd.GridThreadExtent()
		assert.Equal(t, vec.Of[vec.D2](12, 7), threads)
		for axis := range 2 {
			assert.Zero(t, threads.At(axis)%wd.BlockThreadExtent.At(axis))
		}
	})

	t.Run("clamps thread elements", func(t *testing.T) {
		wd, err := Suggest(props, vec.Of[vec.D2](64, 64), vec.Of[vec.D2](2, 2), Relaxed)
		require.NoError(t, err)
		assert.Equal(t, vec.Of[vec.D2](2, 2), wd.ThreadElemExtent)
	})

	t.Run("rejects empty grid", func(t *testing.T) {
		_, err := Suggest(props, vec.Of[vec.D2](0, 4), vec.Ones[vec.D2, int](), Relaxed)
		le := limitErr(t, err)
		assert.Equal(t, NonPositive, le.Violation)
	})
}

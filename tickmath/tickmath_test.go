package tickmath

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSqrtRatioAtTickZeroIsQ96(t *testing.T) {
	got, err := GetSqrtRatioAtTick(0)
	require.NoError(t, err)
	assert.Equal(t, uint256.MustFromDecimal("79228162514264337593543950336"), got)
}

func TestGetSqrtRatioAtTickRejectsOutOfBounds(t *testing.T) {
	_, err := GetSqrtRatioAtTick(MinTick - 1)
	assert.ErrorIs(t, err, ErrTickOutOfBounds)

	_, err = GetSqrtRatioAtTick(MaxTick + 1)
	assert.ErrorIs(t, err, ErrTickOutOfBounds)
}

func TestGetSqrtRatioAtTickIsMonotonic(t *testing.T) {
	ticks := []int32{MinTick, -443636, -100000, -1, 0, 1, 100000, 443636, MaxTick}
	var prev *uint256.Int
	for _, tick := range ticks {
		ratio, err := GetSqrtRatioAtTick(tick)
		require.NoError(t, err)
		if prev != nil {
			assert.True(t, ratio.Cmp(prev) > 0, "ratio at tick %d must exceed the previous tick's ratio", tick)
		}
		prev = ratio
	}
}

func TestGetTickAtSqrtRatioRoundTrips(t *testing.T) {
	ticks := []int32{MinTick, -443636, -200000, -60, -1, 0, 1, 60, 200000, 443636, MaxTick - 1}
	for _, tick := range ticks {
		ratio, err := GetSqrtRatioAtTick(tick)
		require.NoError(t, err)
		got, err := GetTickAtSqrtRatio(ratio)
		require.NoError(t, err)
		assert.Equal(t, tick, got, "round trip through GetSqrtRatioAtTick/GetTickAtSqrtRatio must recover the original tick")
	}
}

func TestGetTickAtSqrtRatioRejectsOutOfBounds(t *testing.T) {
	_, err := GetTickAtSqrtRatio(new(uint256.Int).Sub(MinSqrtRatio, uint256.NewInt(1)))
	assert.ErrorIs(t, err, ErrSqrtPriceOutOfBounds)

	_, err = GetTickAtSqrtRatio(MaxSqrtRatio)
	assert.ErrorIs(t, err, ErrSqrtPriceOutOfBounds)
}

func TestCompressFloorsTowardsNegativeInfinity(t *testing.T) {
	assert.Equal(t, int32(1), Compress(60, 60))
	assert.Equal(t, int32(1), Compress(100, 60))
	assert.Equal(t, int32(-1), Compress(-60, 60))
	assert.Equal(t, int32(-2), Compress(-100, 60))
	assert.Equal(t, int32(0), Compress(0, 60))
}

func TestPositionRoundTripsWithFlip(t *testing.T) {
	bitmap := make(Bitmap)
	compressed := Compress(12345, 60)

	assert.False(t, bitmap.IsInitialized(compressed))
	bitmap.Flip(compressed)
	assert.True(t, bitmap.IsInitialized(compressed))
	bitmap.Flip(compressed)
	assert.False(t, bitmap.IsInitialized(compressed))
}

func TestNextInitializedTickWithinOneWordFindsSetBit(t *testing.T) {
	bitmap := make(Bitmap)
	tickSpacing := int32(60)

	target := Compress(6000, tickSpacing)
	bitmap.Flip(target)

	next, initialized := NextInitializedTickWithinOneWord(bitmap, 0, tickSpacing, false)
	assert.True(t, initialized)
	assert.Equal(t, target*tickSpacing, next)
}

func TestNextInitializedTickWithinOneWordReturnsWordBoundaryWhenEmpty(t *testing.T) {
	bitmap := make(Bitmap)
	tickSpacing := int32(60)

	next, initialized := NextInitializedTickWithinOneWord(bitmap, 0, tickSpacing, false)
	assert.False(t, initialized)
	// Word 0, upper boundary: bit 255.
	assert.Equal(t, int32(255)*tickSpacing, next)

	prevNext, prevInitialized := NextInitializedTickWithinOneWord(bitmap, 0, tickSpacing, true)
	assert.False(t, prevInitialized)
	assert.Equal(t, int32(0), prevNext)
}

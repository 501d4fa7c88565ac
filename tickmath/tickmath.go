// Package tickmath converts between V3 ticks and Q64.96 sqrt prices, and
// scans a word-indexed tick bitmap for the next initialized tick.
//
// The conversion routines are a direct Go port of the magic-constant table
// in protocols/uniswapv3/calculator/tickmath in the teacher repository,
// rewritten on uint256 (the table already operates within 256 bits, so this
// is a more literal translation of the underlying Solidity TickMath library
// than the teacher's math/big version). The bitmap scan is NOT copied from
// the teacher's tickbitmap package -- that implementation is a sorted-slice
// binary search with no notion of word boundaries. Here the bitmap is a real
// map<int16, uint256> of one word per 256 ticks, matching how the on-chain
// structure is actually laid out, so NextInitializedTickWithinOneWord can
// report a word boundary with initialized=false and let the caller continue
// scanning into the next word.
package tickmath

import (
	"errors"
	"math/bits"

	"github.com/holiman/uint256"
)

const (
	// MinTick is the minimum tick accepted by GetSqrtRatioAtTick.
	MinTick int32 = -887272
	// MaxTick is the maximum tick accepted by GetSqrtRatioAtTick.
	MaxTick int32 = 887272
)

var (
	// MinSqrtRatio is the minimum value returned by GetSqrtRatioAtTick.
	MinSqrtRatio = uint256.MustFromDecimal("4295128739")
	// MaxSqrtRatio is the maximum value returned by GetSqrtRatioAtTick.
	MaxSqrtRatio = uint256.MustFromDecimal("1461446703485210103287273052203988822378723970342")

	ErrTickOutOfBounds      = errors.New("tickmath: tick out of bounds")
	ErrSqrtPriceOutOfBounds = errors.New("tickmath: sqrt price out of bounds")

	one        = uint256.NewInt(1)
	maxUint256 = new(uint256.Int).Not(uint256.NewInt(0))

	// magic constants: sqrt(1.0001^(2^i)) in Q128.128, for i = 0..19; the
	// last slot of the array is unused (the rounding mask for the final >>32
	// step is a literal in GetSqrtRatioAtTick). Identical values to the
	// teacher's ratioConstants table (and to Uniswap's TickMath.sol).
	ratioConstants = [21]*uint256.Int{
		uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
	}
)

// GetSqrtRatioAtTick computes floor(sqrt(1.0001^tick) * 2^96).
func GetSqrtRatioAtTick(tick int32) (*uint256.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrTickOutOfBounds
	}

	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(uint256.Int)
	if absTick&0x1 != 0 {
		ratio.Set(ratioConstants[0])
	} else {
		ratio.Lsh(one, 128)
	}
	for i := 1; i < 20; i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio.Mul(ratio, ratioConstants[i])
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Downshift from Q128.128 to Q64.96, rounding up on any remainder.
	rem := new(uint256.Int).And(ratio, uint256.NewInt(0xffffffff))
	ratio.Rsh(ratio, 32)
	if !rem.IsZero() {
		ratio.Add(ratio, one)
	}
	return ratio, nil
}

// GetTickAtSqrtRatio returns the greatest tick such that
// GetSqrtRatioAtTick(tick) <= sqrtPriceX96. Implemented as a binary search
// over GetSqrtRatioAtTick rather than a second magic-constant log table:
// GetSqrtRatioAtTick is strictly monotonic in tick, so the two approaches
// are equivalent and this avoids duplicating a second 20-entry table.
func GetTickAtSqrtRatio(sqrtPriceX96 *uint256.Int) (int32, error) {
	if sqrtPriceX96.Cmp(MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, ErrSqrtPriceOutOfBounds
	}

	low, high := MinTick, MaxTick
	var tick int32
	for low <= high {
		mid := low + (high-low)/2
		ratioAtMid, err := GetSqrtRatioAtTick(mid)
		if err != nil {
			return 0, err
		}
		if ratioAtMid.Cmp(sqrtPriceX96) <= 0 {
			tick = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return tick, nil
}

// Bitmap is a word-indexed tick bitmap: Bitmap[wordPos] holds 256 bits, bit
// bitPos set iff the tick at that (wordPos, bitPos) is initialized. Word and
// bit position are derived from tick/tickSpacing exactly as the on-chain
// Uniswap V3 pool derives them.
type Bitmap map[int16]*uint256.Int

// Position decomposes a tick-spacing-compressed tick into its word and bit
// position within the bitmap.
func Position(compressed int32) (wordPos int16, bitPos uint8) {
	wordPos = int16(compressed >> 8)
	bitPos = uint8(compressed & 0xff)
	return
}

// Compress floor-divides tick by tickSpacing, rounding towards negative
// infinity (matching Solidity's `tick/tickSpacing` combined with the
// `if negative remainder, subtract one` adjustment V3 pools apply).
func Compress(tick, tickSpacing int32) int32 {
	quotient := tick / tickSpacing
	if tick%tickSpacing != 0 && (tick < 0) != (tickSpacing < 0) {
		quotient--
	}
	return quotient
}

// IsInitialized reports whether the given tick-spacing-compressed tick has
// its bit set in the bitmap.
func (b Bitmap) IsInitialized(compressed int32) bool {
	wordPos, bitPos := Position(compressed)
	word, ok := b[wordPos]
	if !ok {
		return false
	}
	mask := new(uint256.Int).Lsh(one, uint(bitPos))
	return !new(uint256.Int).And(word, mask).IsZero()
}

// Flip toggles the initialized bit for the given tick-spacing-compressed
// tick, allocating the word lazily.
func (b Bitmap) Flip(compressed int32) {
	wordPos, bitPos := Position(compressed)
	word, ok := b[wordPos]
	if !ok {
		word = new(uint256.Int)
		b[wordPos] = word
	}
	mask := new(uint256.Int).Lsh(one, uint(bitPos))
	word.Xor(word, mask)
}

// NextInitializedTickWithinOneWord scans the bitmap word containing tick
// (after compressing by tickSpacing) for the next initialized tick.
//
// If lte is true, it searches at-or-below tick (rounding towards negative
// infinity); otherwise it searches strictly above. If no initialized bit
// exists in the current word, it returns the word's boundary tick with
// initialized=false -- the caller must continue the scan in the adjacent
// word rather than treating this as "no tick exists".
func NextInitializedTickWithinOneWord(bitmap Bitmap, tick, tickSpacing int32, lte bool) (next int32, initialized bool) {
	compressed := Compress(tick, tickSpacing)
	if !lte {
		compressed++
	}

	wordPos, bitPos := Position(compressed)
	word, ok := bitmap[wordPos]
	if !ok {
		word = new(uint256.Int)
	}

	if lte {
		mask := maskLTE(bitPos)
		masked := new(uint256.Int).And(word, mask)
		if !masked.IsZero() {
			msb := mostSignificantBit(masked)
			next = (int32(wordPos)*256 + int32(msb)) * tickSpacing
			return next, true
		}
		next = (int32(wordPos)*256 + 0) * tickSpacing
		return next, false
	}

	mask := maskGTE(bitPos)
	masked := new(uint256.Int).And(word, mask)
	if !masked.IsZero() {
		lsb := leastSignificantBit(masked)
		next = (int32(wordPos)*256 + int32(lsb)) * tickSpacing
		return next, true
	}
	next = (int32(wordPos)*256 + 255) * tickSpacing
	return next, false
}

// maskLTE returns a mask with bits [0, bitPos] set.
func maskLTE(bitPos uint8) *uint256.Int {
	if bitPos == 255 {
		return new(uint256.Int).Set(maxUint256)
	}
	m := new(uint256.Int).Lsh(one, uint(bitPos)+1)
	return m.Sub(m, one)
}

// maskGTE returns a mask with bits [bitPos, 255] set.
func maskGTE(bitPos uint8) *uint256.Int {
	if bitPos == 0 {
		return new(uint256.Int).Set(maxUint256)
	}
	low := new(uint256.Int).Lsh(one, uint(bitPos))
	low.Sub(low, one)
	return new(uint256.Int).Not(low)
}

// mostSignificantBit returns the index (0-255) of the highest set bit of a
// non-zero value.
func mostSignificantBit(x *uint256.Int) uint16 {
	for i := 3; i >= 0; i-- {
		if x[i] != 0 {
			return uint16(i*64 + bits.Len64(x[i]) - 1)
		}
	}
	return 0
}

// leastSignificantBit returns the index (0-255) of the lowest set bit of a
// non-zero value.
func leastSignificantBit(x *uint256.Int) uint16 {
	for i := 0; i < 4; i++ {
		if x[i] != 0 {
			return uint16(i*64 + bits.TrailingZeros64(x[i]))
		}
	}
	return 0
}

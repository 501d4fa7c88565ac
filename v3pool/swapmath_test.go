package v3pool

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSwapStepExactInZeroFeeMatchesInverse(t *testing.T) {
	current := uint256.MustFromDecimal("79228162514264337593543950336") // price 1.0, Q96
	target := uint256.MustFromDecimal("39614081257132168796771975168")  // far below current (price 0.25)
	liquidity := uint256.MustFromDecimal("1000000000000000000000")
	amountRemaining := big.NewInt(1_000_000_000)

	sqrtNext, amountIn, amountOut, feeAmount, err := ComputeSwapStep(current, target, liquidity, amountRemaining, 0)
	require.NoError(t, err)

	// With zero fee and the target not reached, the recomputed amountIn
	// (derived from the resulting sqrt price) must never exceed the amount
	// the caller offered -- a swap step can never overdraw its budget.
	assert.True(t, sqrtNext.Cmp(target) > 0, "step must stop short of the target price")
	assert.True(t, amountIn.Cmp(uint256.NewInt(1_000_000_000)) <= 0)
	assert.True(t, feeAmount.IsZero())
	assert.NotNil(t, amountOut)
}

func TestComputeSwapStepStopsAtTargetWhenReached(t *testing.T) {
	current := uint256.MustFromDecimal("79228162514264337593543950336")
	target := uint256.MustFromDecimal("78990000000000000000000000000") // just below current
	liquidity := uint256.MustFromDecimal("100000000000000000")
	// A huge amount relative to the tiny price gap should reach the target.
	amountRemaining := big.NewInt(1_000_000_000_000_000)

	sqrtNext, amountIn, _, _, err := ComputeSwapStep(current, target, liquidity, amountRemaining, 3000)
	require.NoError(t, err)

	assert.True(t, sqrtNext.Eq(target))
	assert.False(t, amountIn.IsZero())
}

func TestComputeSwapStepExactOutCapsAtAmountRemaining(t *testing.T) {
	current := uint256.MustFromDecimal("79228162514264337593543950336")
	target := uint256.MustFromDecimal("1461446703485210103287273052203988822378723970342") // MaxSqrtRatio - far above
	liquidity := uint256.MustFromDecimal("1000000000000000000000")
	amountRemaining := big.NewInt(-500_000_000) // negative amountRemaining selects exact-output mode

	_, _, amountOut, _, err := ComputeSwapStep(current, target, liquidity, amountRemaining, 3000)
	require.NoError(t, err)
	assert.True(t, amountOut.Cmp(uint256.NewInt(500_000_000)) <= 0)
}

func TestComputeSwapStepFeeGrowsWithFeePips(t *testing.T) {
	current := uint256.MustFromDecimal("79228162514264337593543950336")
	target := uint256.MustFromDecimal("1461446703485210103287273052203988822378723970342")
	liquidity := uint256.MustFromDecimal("1000000000000000000000")
	amountRemaining := big.NewInt(1_000_000)

	_, _, _, feeLow, err := ComputeSwapStep(current, target, liquidity, amountRemaining, 500)
	require.NoError(t, err)
	_, _, _, feeHigh, err := ComputeSwapStep(current, target, liquidity, amountRemaining, 10000)
	require.NoError(t, err)

	assert.True(t, feeHigh.Cmp(feeLow) > 0, "a higher fee tier must charge a larger fee on the same nominal input")
}

package fixedmath

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u256(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

func TestMulDivExactDivision(t *testing.T) {
	got, err := MulDiv(u256("1000"), u256("3"), u256("2"))
	require.NoError(t, err)
	assert.Equal(t, u256("1500"), got)
}

func TestMulDivFloorsRemainder(t *testing.T) {
	// 10 * 3 / 4 = 7.5 -> floors to 7.
	got, err := MulDiv(u256("10"), u256("3"), u256("4"))
	require.NoError(t, err)
	assert.Equal(t, u256("7"), got)
}

func TestMulDivRoundingUpCeilsRemainder(t *testing.T) {
	got, err := MulDivRoundingUp(u256("10"), u256("3"), u256("4"))
	require.NoError(t, err)
	assert.Equal(t, u256("8"), got)
}

func TestMulDivRoundingUpExactStaysExact(t *testing.T) {
	got, err := MulDivRoundingUp(u256("1000"), u256("3"), u256("2"))
	require.NoError(t, err)
	assert.Equal(t, u256("1500"), got)
}

func TestMulDivZeroDenominatorOverflows(t *testing.T) {
	_, err := MulDiv(u256("1"), u256("1"), u256("0"))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestMulDivOverflowsPast256Bits(t *testing.T) {
	maxUint := new(uint256.Int).Not(uint256.NewInt(0))
	_, err := MulDiv(maxUint, maxUint, uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestDivRoundingUp(t *testing.T) {
	got, err := DivRoundingUp(u256("10"), u256("4"))
	require.NoError(t, err)
	assert.Equal(t, u256("3"), got)

	got, err = DivRoundingUp(u256("12"), u256("4"))
	require.NoError(t, err)
	assert.Equal(t, u256("3"), got)
}

func TestGetAmount0DeltaOrdersInputs(t *testing.T) {
	sqrtA := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	sqrtB := new(uint256.Int).Lsh(uint256.NewInt(2), 96)
	liquidity := u256("1000000000000000000")

	ascending, err := GetAmount0Delta(sqrtA, sqrtB, liquidity, false)
	require.NoError(t, err)
	descending, err := GetAmount0Delta(sqrtB, sqrtA, liquidity, false)
	require.NoError(t, err)
	assert.Equal(t, ascending, descending)
	assert.False(t, ascending.IsZero())
}

func TestGetAmount0DeltaRoundingUpIsAtLeastRoundingDown(t *testing.T) {
	sqrtA := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	sqrtB := new(uint256.Int).Add(sqrtA, u256("12345"))
	liquidity := u256("7")

	down, err := GetAmount0Delta(sqrtA, sqrtB, liquidity, false)
	require.NoError(t, err)
	up, err := GetAmount0Delta(sqrtA, sqrtB, liquidity, true)
	require.NoError(t, err)
	assert.True(t, up.Cmp(down) >= 0)
}

func TestGetAmount1DeltaMatchesQ96Scale(t *testing.T) {
	sqrtA := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	sqrtB := new(uint256.Int).Lsh(uint256.NewInt(2), 96)
	liquidity := Q96

	// amount1 = liquidity * (sqrtB - sqrtA) / Q96 = Q96 * Q96 / Q96 = Q96.
	got, err := GetAmount1Delta(sqrtA, sqrtB, liquidity, false)
	require.NoError(t, err)
	assert.Equal(t, Q96, got)
}

func TestGetNextSqrtPriceFromInputZeroAmountIsNoOp(t *testing.T) {
	sqrtP := u256("79228162514264337593543950336") // Q96, price 1.0
	liquidity := u256("1000000000000000000")
	got, err := GetNextSqrtPriceFromInput(sqrtP, liquidity, uint256.NewInt(0), true)
	require.NoError(t, err)
	assert.Equal(t, sqrtP, got)
}

func TestGetNextSqrtPriceFromInputDirection(t *testing.T) {
	sqrtP := u256("79228162514264337593543950336")
	liquidity := u256("1000000000000000000000")

	// Adding token0 (zeroForOne) must decrease price; adding token1 must
	// increase it.
	afterToken0, err := GetNextSqrtPriceFromInput(sqrtP, liquidity, u256("1000000000000"), true)
	require.NoError(t, err)
	assert.True(t, afterToken0.Cmp(sqrtP) < 0)

	afterToken1, err := GetNextSqrtPriceFromInput(sqrtP, liquidity, u256("1000000000000"), false)
	require.NoError(t, err)
	assert.True(t, afterToken1.Cmp(sqrtP) > 0)
}

func TestGetNextSqrtPriceFromInputRejectsZeroLiquidity(t *testing.T) {
	sqrtP := u256("79228162514264337593543950336")
	_, err := GetNextSqrtPriceFromInput(sqrtP, uint256.NewInt(0), u256("1"), true)
	assert.ErrorIs(t, err, ErrZeroLiquidity)
}

func TestGetNextSqrtPriceFromOutputRejectsZeroPrice(t *testing.T) {
	_, err := GetNextSqrtPriceFromOutput(uint256.NewInt(0), u256("1"), u256("1"), true)
	assert.ErrorIs(t, err, ErrZeroPrice)
}

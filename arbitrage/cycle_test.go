package arbitrage

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profitableCycle builds a two-pool A->B->A cycle where the round trip is
// priced above 1.0 before fees, so PreCheck passes and Calculate should
// find a positive-profit input.
func profitableCycle(t *testing.T) (*Cycle, CycleSpec) {
	t.Helper()
	a := testToken("0x00000000000000000000000000000000000001", "A")
	b := testToken("0x00000000000000000000000000000000000002", "B")

	poolA := newV2TestPool("0x00000000000000000000000000000000000011", a, b, 1_000_000_000, 1_000_000_000)
	poolB := newV2TestPool("0x00000000000000000000000000000000000012", b, a, 1_000_000_000, 1_100_000_000)

	cycle, err := NewCycle("test-cycle", a, uint256.NewInt(10_000_000), []Pool{poolA, poolB})
	require.NoError(t, err)
	return cycle, cycle.Spec()
}

func TestPreCheckPassesOnProfitableCycle(t *testing.T) {
	cycle, _ := profitableCycle(t)
	err := cycle.PreCheck(cycle.effectiveOverrides(nil))
	assert.NoError(t, err)
}

func TestPreCheckRejectsUnprofitableCycle(t *testing.T) {
	a := testToken("0x00000000000000000000000000000000000001", "A")
	b := testToken("0x00000000000000000000000000000000000002", "B")

	// Symmetric 1:1 pools both ways: fees alone push the round trip below 1.0.
	poolA := newV2TestPool("0x00000000000000000000000000000000000011", a, b, 1_000_000_000, 1_000_000_000)
	poolB := newV2TestPool("0x00000000000000000000000000000000000012", b, a, 1_000_000_000, 1_000_000_000)

	cycle, err := NewCycle("unprofitable", a, uint256.NewInt(10_000_000), []Pool{poolA, poolB})
	require.NoError(t, err)

	_, calcErr := cycle.Calculate(nil)
	assert.ErrorIs(t, calcErr, ErrNoProfit)
}

func TestCalculateFindsPositiveProfit(t *testing.T) {
	cycle, spec := profitableCycle(t)

	result, err := cycle.Calculate(nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, spec.ID, result.ID)
	assert.True(t, result.ProfitAmount.Sign() > 0)
	assert.False(t, result.InputAmount.IsZero())
	assert.Len(t, result.SwapAmounts, 2)
	for _, hop := range result.SwapAmounts {
		assert.NotNil(t, hop.V2)
		assert.Nil(t, hop.V3)
	}
}

func TestCalculateAndCacheStoresBest(t *testing.T) {
	cycle, _ := profitableCycle(t)

	assert.Nil(t, cycle.Best())
	result, err := cycle.CalculateAndCache(nil)
	require.NoError(t, err)
	require.NotNil(t, cycle.Best())
	assert.Equal(t, result.InputAmount, cycle.Best().InputAmount)

	cycle.ClearBest()
	assert.Nil(t, cycle.Best())
}

func TestCalculateBatchIsolatesPerCycleErrors(t *testing.T) {
	good, _ := profitableCycle(t)

	a := testToken("0x00000000000000000000000000000000000001", "A")
	b := testToken("0x00000000000000000000000000000000000002", "B")
	poolA := newV2TestPool("0x00000000000000000000000000000000000021", a, b, 1_000_000_000, 1_000_000_000)
	poolB := newV2TestPool("0x00000000000000000000000000000000000022", b, a, 1_000_000_000, 1_000_000_000)
	bad, err := NewCycle("bad-cycle", a, uint256.NewInt(10_000_000), []Pool{poolA, poolB})
	require.NoError(t, err)

	results := CalculateBatch([]*Cycle{good, bad}, nil, 0)
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Result)

	assert.ErrorIs(t, results[1].Err, ErrNoProfit)
	assert.Nil(t, results[1].Result)
}

func TestGenerateSwapPlanProducesOneCallPerHop(t *testing.T) {
	cycle, _ := profitableCycle(t)
	result, err := cycle.Calculate(nil)
	require.NoError(t, err)

	from := common.HexToAddress("0x00000000000000000000000000000000000099")
	calls, err := cycle.GenerateSwapPlan(from, result.SwapAmounts)
	require.NoError(t, err)
	require.Len(t, calls, 2)

	for _, call := range calls {
		assert.NotEmpty(t, call.Data)
		assert.Len(t, call.Data, len(call.Data))
		assert.GreaterOrEqual(t, len(call.Data), 4, "calldata must at least contain a 4-byte selector")
	}
}

func TestGenerateSwapPlanRejectsMismatchedLength(t *testing.T) {
	cycle, _ := profitableCycle(t)
	from := common.HexToAddress("0x00000000000000000000000000000000000099")
	_, err := cycle.GenerateSwapPlan(from, nil)
	assert.ErrorIs(t, err, ErrConfigError)
}

package arbitrage

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbcycle/solver/token"
	"github.com/arbcycle/solver/v2pool"
)

func testToken(addr string, symbol string) token.Token {
	return token.New(addr, 18, symbol)
}

func newV2TestPool(addr string, t0, t1 token.Token, r0, r1 uint64) *v2pool.Pool {
	state := v2pool.State{
		Reserve0:    uint256.NewInt(r0),
		Reserve1:    uint256.NewInt(r1),
		FeeToken0:   v2pool.DefaultFee,
		FeeToken1:   v2pool.DefaultFee,
		BlockNumber: 1,
	}
	return v2pool.New(common.HexToAddress(addr), t0, t1, state)
}

func TestBuildVectorsClosesOnInputToken(t *testing.T) {
	a := testToken("0x00000000000000000000000000000000000001", "A")
	b := testToken("0x00000000000000000000000000000000000002", "B")

	poolA := newV2TestPool("0x00000000000000000000000000000000000011", a, b, 1_000_000, 1_000_000)
	poolB := newV2TestPool("0x00000000000000000000000000000000000012", b, a, 1_000_000, 1_100_000)

	vectors, err := buildVectors(a, []Pool{poolA, poolB})
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	assert.True(t, vectors[0].ZeroForOne)
	assert.True(t, vectors[0].TokenIn.Equal(a))
	assert.True(t, vectors[0].TokenOut.Equal(b))

	assert.True(t, vectors[1].ZeroForOne)
	assert.True(t, vectors[1].TokenIn.Equal(b))
	assert.True(t, vectors[1].TokenOut.Equal(a))
}

func TestBuildVectorsRejectsNonClosingChain(t *testing.T) {
	a := testToken("0x00000000000000000000000000000000000001", "A")
	b := testToken("0x00000000000000000000000000000000000002", "C")
	c := testToken("0x00000000000000000000000000000000000003", "C")

	poolA := newV2TestPool("0x00000000000000000000000000000000000011", a, b, 1_000_000, 1_000_000)
	poolB := newV2TestPool("0x00000000000000000000000000000000000012", b, c, 1_000_000, 1_000_000)

	_, err := buildVectors(a, []Pool{poolA, poolB})
	assert.ErrorIs(t, err, ErrConfigError)
}

func TestBuildVectorsRejectsEmptyPoolList(t *testing.T) {
	a := testToken("0x00000000000000000000000000000000000001", "A")
	_, err := buildVectors(a, nil)
	assert.ErrorIs(t, err, ErrConfigError)
}

func TestBuildVectorsRejectsBrokenChain(t *testing.T) {
	a := testToken("0x00000000000000000000000000000000000001", "A")
	b := testToken("0x00000000000000000000000000000000000002", "B")
	c := testToken("0x00000000000000000000000000000000000003", "C")
	d := testToken("0x00000000000000000000000000000000000004", "D")

	poolA := newV2TestPool("0x00000000000000000000000000000000000011", a, b, 1_000_000, 1_000_000)
	poolB := newV2TestPool("0x00000000000000000000000000000000000012", c, d, 1_000_000, 1_000_000)

	_, err := buildVectors(a, []Pool{poolA, poolB})
	assert.ErrorIs(t, err, ErrConfigError)
}

package arbitrage

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/arbcycle/solver/subscription"
	"github.com/arbcycle/solver/token"
	"github.com/arbcycle/solver/v2pool"
	"github.com/arbcycle/solver/v3pool"
)

// Pool is the shape every pool variant in a cycle must satisfy. The
// optimizer does not care which concrete variant it holds -- V2, V3, or a
// Camelot-style V2 with asymmetric fees is still a v2pool.Pool -- only that
// it can answer the swap-quote operations; quoteOut dispatches by concrete
// type since overrides are pool-kind-specific.
type Pool interface {
	Address() common.Address
	Token0() token.Token
	Token1() token.Token
	Subscribe(subscription.Observer)
	Unsubscribe(subscription.Observer)
}

// Override pins a pool to an explicit state instead of its live snapshot,
// keyed by pool address. The concrete value must be a v2pool.State or
// v3pool.State matching the pool at that address.
type Override = map[common.Address]any

// SwapVector is the precomputed per-hop direction for one pool in a cycle.
type SwapVector struct {
	TokenIn    token.Token
	TokenOut   token.Token
	ZeroForOne bool
}

// PerHopAmounts is the tagged per-pool swap amount record produced by
// PayloadPlanner.
type PerHopAmounts struct {
	// V2 is populated for a v2pool.Pool hop: exactly one of Out0/Out1 is
	// non-zero, matching the UniswapV2 swap() calldata shape
	// (amount0Out, amount1Out).
	V2 *V2HopAmounts
	// V3 is populated for a v3pool.Pool hop.
	V3 *V3HopAmounts
}

// V2HopAmounts is the (amount0Out, amount1Out) pair for a V2 swap() call.
type V2HopAmounts struct {
	Out0, Out1 *uint256.Int
}

// V3HopAmounts is the argument set for a V3 swap() call.
type V3HopAmounts struct {
	AmountSpecified   *big.Int // positive = exact input
	ZeroForOne        bool
	SqrtPriceLimitX96 *uint256.Int
}

// CalculationResult is the outcome of a successful Calculate call.
type CalculationResult struct {
	ID           string
	InputToken   token.Token
	InputAmount  *uint256.Int
	ProfitAmount *big.Int
	SwapAmounts  []PerHopAmounts
}

// quoteOut dispatches CalculateTokensOutFromTokensIn to the concrete pool
// type, applying the pool-kind-specific override if one is present for this
// pool's address.
func quoteOut(pool Pool, tokenIn token.Token, amountIn *uint256.Int, overrides Override) (*uint256.Int, error) {
	switch p := pool.(type) {
	case *v2pool.Pool:
		var override *v2pool.State
		if ov, ok := overrides[pool.Address()]; ok {
			s, ok := ov.(v2pool.State)
			if ok {
				override = &s
			}
		}
		return p.CalculateTokensOutFromTokensIn(tokenIn, amountIn, override)
	case *v3pool.Pool:
		var override *v3pool.State
		if ov, ok := overrides[pool.Address()]; ok {
			s, ok := ov.(v3pool.State)
			if ok {
				override = &s
			}
		}
		return p.CalculateTokensOutFromTokensIn(tokenIn, amountIn, override)
	default:
		return nil, ErrConfigError
	}
}

// isSparseV3 reports whether pool is a V3 pool flagged as using a sparse
// (on-demand) tick bitmap, unsafe to evaluate without RPC access.
func isSparseV3(pool Pool) bool {
	p, ok := pool.(*v3pool.Pool)
	if !ok {
		return false
	}
	return p.Snapshot().Sparse
}

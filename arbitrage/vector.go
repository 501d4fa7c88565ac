package arbitrage

import (
	"fmt"

	"github.com/arbcycle/solver/token"
)

// buildVectors precomputes the per-hop SwapVector chain for pools starting
// from inputToken, validating that consecutive pools share a token and that
// the chain recovers inputToken at the end.
//
// Grounded on uniswap_lp_cycle.py's __init__, which builds self._swap_vectors
// from the pool list before any calculation runs.
func buildVectors(inputToken token.Token, pools []Pool) ([]SwapVector, error) {
	if len(pools) == 0 {
		return nil, fmt.Errorf("%w: cycle must contain at least one pool", ErrConfigError)
	}

	vectors := make([]SwapVector, len(pools))
	current := inputToken

	for i, pool := range pools {
		t0, t1 := pool.Token0(), pool.Token1()
		switch {
		case current.Equal(t0):
			vectors[i] = SwapVector{TokenIn: t0, TokenOut: t1, ZeroForOne: true}
			current = t1
		case current.Equal(t1):
			vectors[i] = SwapVector{TokenIn: t1, TokenOut: t0, ZeroForOne: false}
			current = t0
		default:
			return nil, fmt.Errorf("%w: pool %s does not contain token %s", ErrConfigError, pool.Address(), current)
		}
	}

	if !current.Equal(inputToken) {
		return nil, fmt.Errorf("%w: cycle does not close on input token %s", ErrConfigError, inputToken)
	}

	return vectors, nil
}

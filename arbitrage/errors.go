// Package arbitrage implements the cyclic arbitrage solver: swap-vector
// precomputation (C5), the spot-price pre-check (C6), the bounded scalar
// optimizer over a composed chain of pools (C7), and swap-payload planning
// (C8).
//
// Grounded throughout on
// original_source/src/degenbot/arbitrage/uniswap_lp_cycle.py, the Python
// source this package's behavior was distilled from.
package arbitrage

import "errors"

var (
	// ErrZeroSwap mirrors v2pool/v3pool's zero-input rejection. Calculate
	// reports a pool failure during re-validation as ErrNoArbitrage, so no
	// function in this package returns ErrZeroSwap itself.
	ErrZeroSwap = errors.New("arbitrage: zero input swap")
	// ErrZeroLiquidity is returned by PreCheck when a pool in the cycle has
	// a zero reserve or a zero sqrt price.
	ErrZeroLiquidity = errors.New("arbitrage: zero liquidity along cycle")
	// ErrInsufficientLiquidity mirrors a pool-level exact-output failure.
	ErrInsufficientLiquidity = errors.New("arbitrage: insufficient liquidity for requested output")
	// ErrNoProfit is returned by PreCheck when the spot-price product is
	// below 1.0 -- no optimization is attempted.
	ErrNoProfit = errors.New("arbitrage: profit factor below 1.0, cycle not viable")
	// ErrNoArbitrage is returned when the optimizer converges to a
	// non-positive profit, or when re-validation of the optimum fails.
	ErrNoArbitrage = errors.New("arbitrage: no profitable input found")
	// ErrZeroOutputHop is returned when building swap amounts at the
	// optimum finds a hop with zero output.
	ErrZeroOutputHop = errors.New("arbitrage: a hop produced zero output at the optimal input")
	// ErrOverflow mirrors a pool-level arithmetic overflow. An overflow at
	// re-validation is reported by Calculate as ErrNoArbitrage, so no
	// function in this package returns ErrOverflow itself.
	ErrOverflow = errors.New("arbitrage: arithmetic overflow")
	// ErrSparseBitmapNotPortable is returned by CalculateAsync when a V3
	// pool in the cycle cannot be evaluated outside this process.
	ErrSparseBitmapNotPortable = errors.New("arbitrage: cycle contains a pool not safe for out-of-process dispatch")
	// ErrConfigError is returned by NewCycle when the pool chain does not
	// close on the input token, or consecutive pools do not share a token.
	ErrConfigError = errors.New("arbitrage: cycle configuration invalid")
)

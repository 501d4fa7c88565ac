// Package v3pool implements a concentrated-liquidity (Uniswap V3-style) AMM
// pool: state, the tick-walking swap simulator, and pool-state change
// notification.
//
// The walk in simulate() is grounded on the _swap loop in
// protocols/uniswapv3/calculator/calculator.go in the teacher repository
// (itself built from swapmath/sqrtpricemath/liquiditymath/tickbitmap), but
// the tick-crossing scan uses tickmath.NextInitializedTickWithinOneWord's
// true word-bitmap semantics rather than the teacher's simplified sorted-
// slice scan -- see tickmath's package doc and DESIGN.md.
package v3pool

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/arbcycle/solver/logging"
	"github.com/arbcycle/solver/subscription"
	"github.com/arbcycle/solver/tickmath"
	"github.com/arbcycle/solver/token"
)

// Pool is a concentrated-liquidity AMM pool. All exported methods are safe
// for concurrent use.
type Pool struct {
	subscription.Registry

	address common.Address
	token0  token.Token
	token1  token.Token
	logger  logging.Logger

	mu    sync.RWMutex
	state State
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithLogger attaches a Logger; the default is a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Pool) { p.logger = logging.OrNop(l) }
}

// New constructs a Pool at the given address for the token0/token1 pair.
func New(address common.Address, token0, token1 token.Token, initial State, opts ...Option) *Pool {
	p := &Pool{
		address: address,
		token0:  token0,
		token1:  token1,
		logger:  logging.Nop{},
		state:   initial.Clone(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Address returns the pool's on-chain address.
func (p *Pool) Address() common.Address { return p.address }

// Token0 and Token1 return the pool's constituent tokens.
func (p *Pool) Token0() token.Token { return p.token0 }
func (p *Pool) Token1() token.Token { return p.token1 }

// Snapshot returns an immutable copy of the pool's current state.
func (p *Pool) Snapshot() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.Clone()
}

// ApplyUpdate replaces the pool's live state and notifies subscribers.
func (p *Pool) ApplyUpdate(next State) {
	p.mu.Lock()
	p.state = next.Clone()
	p.mu.Unlock()

	p.logger.Debug("v3pool state updated", "address", p.address, "block", next.BlockNumber)
	p.NotifyAll(p)
}

// signedFromUint returns amount as a non-negative *big.Int.
func signedFromUint(x *uint256.Int) *big.Int {
	return x.ToBig()
}

// walkState holds the allocation-free scratch the tick-walk loop reuses across
// iterations, mirroring the swapState/sync.Pool idiom in the teacher's
// uniswapv3 calculator.
type walkState struct {
	amountRemaining *big.Int
	amountComputed  *big.Int
	sqrtPriceX96    *uint256.Int
	tick            int32
	liquidity       *big.Int
}

var walkStatePool = sync.Pool{
	New: func() any {
		return &walkState{
			amountRemaining: new(big.Int),
			amountComputed:  new(big.Int),
		}
	},
}

// simulate runs the tick-walking swap loop described in the component
// design, starting from state (never mutated) and returns the resulting
// end state plus the signed amount0/amount1 deltas applied to the pool
// (positive = pool received, negative = pool paid out), matching Uniswap's
// swap() return convention.
func (p *Pool) simulate(state State, zeroForOne bool, amountSpecified *big.Int, sqrtPriceLimitX96 *uint256.Int) (amount0, amount1 *big.Int, end State, err error) {
	if state.SqrtPriceX96.IsZero() {
		return nil, nil, State{}, ErrZeroLiquidity
	}
	if len(state.Bitmap) == 0 {
		return nil, nil, State{}, ErrZeroLiquidity
	}

	exactInput := amountSpecified.Sign() > 0

	ws := walkStatePool.Get().(*walkState)
	defer walkStatePool.Put(ws)

	ws.amountRemaining.Set(amountSpecified)
	ws.amountComputed.SetInt64(0)
	ws.sqrtPriceX96 = new(uint256.Int).Set(state.SqrtPriceX96)
	ws.tick = state.Tick
	ws.liquidity = new(big.Int).Set(state.Liquidity.ToBig())

	for ws.amountRemaining.Sign() != 0 && !ws.sqrtPriceX96.Eq(sqrtPriceLimitX96) {
		if ws.liquidity.Sign() == 0 {
			return nil, nil, State{}, ErrZeroLiquidity
		}

		stepSqrtStart := new(uint256.Int).Set(ws.sqrtPriceX96)

		nextTick, initialized := tickmath.NextInitializedTickWithinOneWord(state.Bitmap, ws.tick, state.TickSpacing, zeroForOne)
		if nextTick < tickmath.MinTick {
			nextTick = tickmath.MinTick
		}
		if nextTick > tickmath.MaxTick {
			nextTick = tickmath.MaxTick
		}

		sqrtPriceNextTick, err := tickmath.GetSqrtRatioAtTick(nextTick)
		if err != nil {
			return nil, nil, State{}, err
		}

		target := sqrtPriceNextTick
		if zeroForOne {
			if target.Cmp(sqrtPriceLimitX96) < 0 {
				target = sqrtPriceLimitX96
			}
		} else {
			if target.Cmp(sqrtPriceLimitX96) > 0 {
				target = sqrtPriceLimitX96
			}
		}

		liquidityU256, overflow := uint256.FromBig(ws.liquidity)
		if overflow {
			return nil, nil, State{}, ErrOverflow
		}

		sqrtNext, amtIn, amtOut, feeAmt, err := ComputeSwapStep(stepSqrtStart, target, liquidityU256, ws.amountRemaining, state.FeePips)
		if err != nil {
			return nil, nil, State{}, err
		}

		used := new(big.Int).Add(amtIn.ToBig(), feeAmt.ToBig())
		out := amtOut.ToBig()

		if exactInput {
			ws.amountRemaining.Sub(ws.amountRemaining, used)
			ws.amountComputed.Sub(ws.amountComputed, out)
		} else {
			ws.amountRemaining.Add(ws.amountRemaining, out)
			ws.amountComputed.Add(ws.amountComputed, used)
		}

		ws.sqrtPriceX96 = sqrtNext

		if sqrtNext.Eq(sqrtPriceNextTick) {
			if initialized {
				info, ok := state.Ticks[nextTick]
				if ok {
					delta := new(big.Int).Set(info.LiquidityNet)
					if zeroForOne {
						delta.Neg(delta)
					}
					newLiquidity, err := AddDelta(ws.liquidity, delta)
					if err != nil {
						return nil, nil, State{}, err
					}
					ws.liquidity = newLiquidity
				}
			}
			if zeroForOne {
				ws.tick = nextTick - 1
			} else {
				ws.tick = nextTick
			}
		} else if !sqrtNext.Eq(stepSqrtStart) {
			ws.tick, err = tickmath.GetTickAtSqrtRatio(sqrtNext)
			if err != nil {
				return nil, nil, State{}, err
			}
		}
	}

	end = state.Clone()
	end.SqrtPriceX96 = new(uint256.Int).Set(ws.sqrtPriceX96)
	end.Tick = ws.tick
	finalLiquidity, overflow := uint256.FromBig(ws.liquidity)
	if overflow {
		return nil, nil, State{}, ErrOverflow
	}
	end.Liquidity = finalLiquidity

	if exactInput {
		amountIn := new(big.Int).Sub(amountSpecified, ws.amountRemaining)
		amountOut := new(big.Int).Set(ws.amountComputed)
		if zeroForOne {
			return amountIn, amountOut, end, nil
		}
		return amountOut, amountIn, end, nil
	}
	amountOut := new(big.Int).Sub(amountSpecified, ws.amountRemaining)
	amountIn := new(big.Int).Set(ws.amountComputed)
	if zeroForOne {
		return amountIn, amountOut, end, nil
	}
	return amountOut, amountIn, end, nil
}

// CalculateTokensOutFromTokensIn simulates an exact-input swap and returns
// the resulting output amount, without mutating the pool's live state.
func (p *Pool) CalculateTokensOutFromTokensIn(tokenIn token.Token, amountIn *uint256.Int, override *State) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrZeroSwap
	}

	state := p.Snapshot()
	if override != nil {
		state = *override
	}

	var zeroForOne bool
	switch tokenIn.Address {
	case p.token0.Address:
		zeroForOne = true
	case p.token1.Address:
		zeroForOne = false
	default:
		return nil, fmt.Errorf("%w: %s", ErrTokenMismatch, tokenIn.Address)
	}

	limit := new(uint256.Int).Add(tickmath.MinSqrtRatio, uint256.NewInt(1))
	if !zeroForOne {
		limit = new(uint256.Int).Sub(tickmath.MaxSqrtRatio, uint256.NewInt(1))
	}

	amount0, amount1, _, err := p.simulate(state, zeroForOne, signedFromUint(amountIn), limit)
	if err != nil {
		return nil, err
	}

	var outSigned *big.Int
	if zeroForOne {
		outSigned = amount1
	} else {
		outSigned = amount0
	}
	outSigned = new(big.Int).Neg(outSigned)
	if outSigned.Sign() < 0 {
		outSigned.SetInt64(0)
	}

	out, overflow := uint256.FromBig(outSigned)
	if overflow {
		return nil, ErrOverflow
	}
	return out, nil
}

// CalculateTokensInFromTokensOut simulates an exact-output swap and returns
// the required input amount.
func (p *Pool) CalculateTokensInFromTokensOut(tokenOut token.Token, amountOut *uint256.Int, override *State) (*uint256.Int, error) {
	if amountOut == nil || amountOut.IsZero() {
		return nil, ErrZeroSwap
	}

	state := p.Snapshot()
	if override != nil {
		state = *override
	}

	// zeroForOne is the direction that *produces* tokenOut: if tokenOut is
	// token1, the swap direction is token0->token1 (zeroForOne=true).
	var zeroForOne bool
	switch tokenOut.Address {
	case p.token1.Address:
		zeroForOne = true
	case p.token0.Address:
		zeroForOne = false
	default:
		return nil, fmt.Errorf("%w: %s", ErrTokenMismatch, tokenOut.Address)
	}

	limit := new(uint256.Int).Add(tickmath.MinSqrtRatio, uint256.NewInt(1))
	if !zeroForOne {
		limit = new(uint256.Int).Sub(tickmath.MaxSqrtRatio, uint256.NewInt(1))
	}

	negAmountOut := new(big.Int).Neg(signedFromUint(amountOut))
	amount0, amount1, _, err := p.simulate(state, zeroForOne, negAmountOut, limit)
	if err != nil {
		return nil, err
	}

	var inSigned *big.Int
	if zeroForOne {
		inSigned = amount0
	} else {
		inSigned = amount1
	}
	in, overflow := uint256.FromBig(inSigned)
	if overflow {
		return nil, ErrOverflow
	}
	return in, nil
}

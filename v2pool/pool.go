// Package v2pool implements a constant-product (Uniswap V2-style) AMM pool:
// state, the out-from-in / in-from-out swap formulas with a configurable
// fee per swap direction (to accommodate Camelot-style asymmetric-fee
// pools), and reorg-replay history.
//
// Grounded on protocols/uniswapv2/calculator/calculator.go in the teacher
// repository (sync.Pool-backed Calculator struct, sentinel-error style),
// generalized from a single basis-point fee to the per-direction (num, den)
// fee fraction, and rewritten on uint256 instead of math/big.
package v2pool

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/arbcycle/solver/fixedmath"
	"github.com/arbcycle/solver/logging"
	"github.com/arbcycle/solver/subscription"
	"github.com/arbcycle/solver/token"
)

// Fee is a fraction num/den, e.g. {3, 1000} for 0.3%.
type Fee struct {
	Num uint64
	Den uint64
}

// DefaultFee is the standard Uniswap V2 fee of 0.3%.
var DefaultFee = Fee{Num: 3, Den: 1000}

// State is an immutable snapshot of a V2 pool's reserves and fees at a
// given block.
type State struct {
	Reserve0    *uint256.Int
	Reserve1    *uint256.Int
	FeeToken0   Fee // fee charged on token0 -> token1 swaps
	FeeToken1   Fee // fee charged on token1 -> token0 swaps
	BlockNumber uint64
}

// Clone returns a deep copy, so callers may hold onto a State across a
// pool update without it mutating out from under them.
func (s State) Clone() State {
	return State{
		Reserve0:    new(uint256.Int).Set(s.Reserve0),
		Reserve1:    new(uint256.Int).Set(s.Reserve1),
		FeeToken0:   s.FeeToken0,
		FeeToken1:   s.FeeToken1,
		BlockNumber: s.BlockNumber,
	}
}

type historyEntry struct {
	block uint64
	state State
}

// Pool is a constant-product AMM pool. All exported methods are safe for
// concurrent use; callers that need to observe a consistent state across
// several reads should capture Snapshot() once rather than re-reading
// Reserve0/Reserve1 individually.
type Pool struct {
	subscription.Registry

	address common.Address
	token0  token.Token
	token1  token.Token
	logger  logging.Logger

	mu      sync.RWMutex
	state   State
	history []historyEntry
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithLogger attaches a Logger; the default is a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Pool) { p.logger = logging.OrNop(l) }
}

// New constructs a Pool at the given address for the token0/token1 pair,
// with an initial reserve state. The initial state is recorded as the first
// history entry at its BlockNumber.
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
	p.history = append(p.history, historyEntry{block: initial.BlockNumber, state: p.state.Clone()})
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

// ApplyUpdate replaces the pool's reserves at the given block, appends the
// new state to history for reorg replay, and notifies subscribers.
func (p *Pool) ApplyUpdate(reserve0, reserve1 *uint256.Int, block uint64) {
	p.mu.Lock()
	p.state = State{
		Reserve0:    new(uint256.Int).Set(reserve0),
		Reserve1:    new(uint256.Int).Set(reserve1),
		FeeToken0:   p.state.FeeToken0,
		FeeToken1:   p.state.FeeToken1,
		BlockNumber: block,
	}
	p.history = append(p.history, historyEntry{block: block, state: p.state.Clone()})
	p.mu.Unlock()

	p.logger.Debug("v2pool reserves updated", "address", p.address, "block", block)
	p.NotifyAll(p)
}

// RestoreStateBeforeBlock rewinds the pool's current state to the last
// recorded state strictly before block, discarding the later history
// entries. block == 1 resets the pool to zero reserves (the state before
// the pool existed); block == 0 fails with ErrNoPoolStateAvailable, as does
// any block with no recorded state before it.
func (p *Pool) RestoreStateBeforeBlock(block uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if block <= 1 {
		if block == 1 {
			p.state = State{
				Reserve0:    uint256.NewInt(0),
				Reserve1:    uint256.NewInt(0),
				FeeToken0:   p.state.FeeToken0,
				FeeToken1:   p.state.FeeToken1,
				BlockNumber: 0,
			}
			return nil
		}
		return ErrNoPoolStateAvailable
	}

	for i := len(p.history) - 1; i >= 0; i-- {
		if p.history[i].block < block {
			p.state = p.history[i].state.Clone()
			p.history = p.history[:i+1]
			return nil
		}
	}
	return ErrNoPoolStateAvailable
}

// resolve returns (reserveIn, reserveOut, fee) for the requested direction.
func resolve(state State, tokenIn common.Address, token0, token1 common.Address) (reserveIn, reserveOut *uint256.Int, fee Fee, err error) {
	switch tokenIn {
	case token0:
		return state.Reserve0, state.Reserve1, state.FeeToken0, nil
	case token1:
		return state.Reserve1, state.Reserve0, state.FeeToken1, nil
	default:
		return nil, nil, Fee{}, fmt.Errorf("%w: %s", ErrTokenMismatch, tokenIn)
	}
}

// CalculateTokensOutFromTokensIn computes the output amount for swapping
// amountIn of tokenIn, optionally against an override state instead of the
// pool's live snapshot.
func (p *Pool) CalculateTokensOutFromTokensIn(tokenIn token.Token, amountIn *uint256.Int, override *State) (*uint256.Int, error) {
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrZeroSwap
	}

	state := p.Snapshot()
	if override != nil {
		state = *override
	}

	reserveIn, reserveOut, fee, err := resolve(state, tokenIn.Address, p.token0.Address, p.token1.Address)
	if err != nil {
		return nil, err
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrZeroLiquidity
	}

	feeMul, err := feeMultiplier(fee)
	if err != nil {
		return nil, err
	}

	// The last unit of the output reserve is unreachable: the constant
	// product can only approach but never drain the pool.
	maxOut := new(uint256.Int).Sub(reserveOut, uint256.NewInt(1))

	amountInWithFee, overflow := new(uint256.Int).MulOverflow(amountIn, feeMul)
	if overflow {
		// amountIn is so large the fee-adjusted input no longer fits in 256
		// bits. Output is strictly increasing and asymptotic to reserveOut,
		// so at this scale it has already saturated.
		return maxOut, nil
	}

	denScaled, overflow := new(uint256.Int).MulOverflow(reserveIn, uint256.NewInt(fee.Den))
	if overflow {
		return nil, ErrOverflow
	}
	denominator, overflow := new(uint256.Int).AddOverflow(denScaled, amountInWithFee)
	if overflow {
		// Same saturation as above: amountInWithFee dwarfs reserveIn*feeDen.
		return maxOut, nil
	}
	if denominator.IsZero() {
		return nil, ErrZeroLiquidity
	}

	amountOut, err := fixedmath.MulDiv(amountInWithFee, reserveOut, denominator)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOverflow, err)
	}

	if amountOut.Cmp(maxOut) > 0 {
		amountOut = maxOut
	}
	return amountOut, nil
}

// CalculateTokensInFromTokensOut computes the required input amount to
// receive exactly amountOut of the opposite token.
func (p *Pool) CalculateTokensInFromTokensOut(tokenOut token.Token, amountOut *uint256.Int, override *State) (*uint256.Int, error) {
	if amountOut == nil || amountOut.IsZero() {
		return nil, ErrZeroSwap
	}

	state := p.Snapshot()
	if override != nil {
		state = *override
	}

	// tokenOut is the *receiving* token, so the input direction is the
	// opposite of what resolve() expects for a token-in lookup: resolve
	// against tokenOut to get (reserveOut, reserveIn, fee) reversed.
	var reserveIn, reserveOut *uint256.Int
	var fee Fee
	switch tokenOut.Address {
	case p.token0.Address:
		reserveOut, reserveIn, fee = state.Reserve0, state.Reserve1, state.FeeToken1
	case p.token1.Address:
		reserveOut, reserveIn, fee = state.Reserve1, state.Reserve0, state.FeeToken0
	default:
		return nil, fmt.Errorf("%w: %s", ErrTokenMismatch, tokenOut.Address)
	}

	if reserveIn.IsZero() || reserveOut.IsZero() || amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: requested %s >= reserve %s", ErrInsufficientLiquidity, amountOut, reserveOut)
	}

	feeMul, err := feeMultiplier(fee)
	if err != nil {
		return nil, err
	}

	scaledReserveIn, overflow := new(uint256.Int).MulOverflow(reserveIn, uint256.NewInt(fee.Den))
	if overflow {
		return nil, ErrOverflow
	}

	denRemainder := new(uint256.Int).Sub(reserveOut, amountOut)
	denominator, overflow := new(uint256.Int).MulOverflow(denRemainder, feeMul)
	if overflow {
		return nil, ErrOverflow
	}
	if denominator.IsZero() {
		return nil, ErrZeroLiquidity
	}

	amountIn, err := fixedmath.MulDiv(scaledReserveIn, amountOut, denominator)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOverflow, err)
	}
	return amountIn.AddUint64(amountIn, 1), nil
}

// feeMultiplier returns fee.Den - fee.Num, the "amount retained after fee"
// numerator used by both swap formulas.
func feeMultiplier(fee Fee) (*uint256.Int, error) {
	if fee.Den == 0 || fee.Num > fee.Den {
		return nil, fmt.Errorf("%w: invalid fee %d/%d", ErrOverflow, fee.Num, fee.Den)
	}
	return uint256.NewInt(fee.Den - fee.Num), nil
}

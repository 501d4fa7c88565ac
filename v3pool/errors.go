package v3pool

import "errors"

var (
	// ErrZeroSwap is returned when a swap is requested with a zero input.
	ErrZeroSwap = errors.New("v3pool: amount must be greater than zero")
	// ErrZeroLiquidity is returned when the pool has no liquidity to swap
	// against in the requested direction.
	ErrZeroLiquidity = errors.New("v3pool: pool has zero liquidity")
	// ErrTokenMismatch is returned when the requested token is not part of
	// the pool's pair.
	ErrTokenMismatch = errors.New("v3pool: token not part of this pool")
	// ErrOverflow is returned when an intermediate calculation overflows
	// 256 bits; callers in the optimizer's search loop treat this the same
	// as a zero-output swap.
	ErrOverflow = errors.New("v3pool: arithmetic overflow")
	// ErrLiquidityUnderflow is returned when crossing a tick would drive
	// liquidity negative.
	ErrLiquidityUnderflow = errors.New("v3pool: liquidity underflow crossing tick")
	// ErrLiquidityOverflow is returned when crossing a tick would push
	// liquidity above the maximum representable in 128 bits.
	ErrLiquidityOverflow = errors.New("v3pool: liquidity overflow crossing tick")
	// ErrSparseBitmapNotPortable is returned when a pool whose tick bitmap
	// is loaded on demand (and therefore depends on an RPC handle) is
	// dispatched to a context without one, e.g. a separate process.
	ErrSparseBitmapNotPortable = errors.New("v3pool: pool with sparse bitmap cannot be dispatched without RPC access")
)

package v2pool

import "errors"

var (
	// ErrZeroSwap is returned when a swap is requested with a zero input.
	ErrZeroSwap = errors.New("v2pool: amount must be greater than zero")
	// ErrZeroLiquidity is returned when either reserve is zero.
	ErrZeroLiquidity = errors.New("v2pool: pool has zero liquidity")
	// ErrInsufficientLiquidity is returned when an exact-output request
	// meets or exceeds the available reserve.
	ErrInsufficientLiquidity = errors.New("v2pool: requested output meets or exceeds reserve")
	// ErrTokenMismatch is returned when the requested token pair is not
	// the pool's pair.
	ErrTokenMismatch = errors.New("v2pool: token not part of this pool")
	// ErrOverflow is returned when an intermediate product does not fit in
	// 256 bits.
	ErrOverflow = errors.New("v2pool: arithmetic overflow")
	// ErrNoPoolStateAvailable is returned by RestoreStateBeforeBlock when no
	// recorded state precedes the requested block.
	ErrNoPoolStateAvailable = errors.New("v2pool: no recorded state before requested block")
)

package v3pool

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/arbcycle/solver/tickmath"
)

// TickInfo describes the initialized state at a single tick.
type TickInfo struct {
	// LiquidityNet is the signed liquidity delta applied when the tick is
	// crossed, moving in the direction of increasing tick.
	LiquidityNet *big.Int
	// LiquidityGross is the total liquidity referencing this tick,
	// regardless of direction; used only to determine Initialized.
	LiquidityGross *uint256.Int
	Initialized    bool
}

// State is an immutable snapshot of a V3 pool's price, liquidity, and tick
// data at a given block.
type State struct {
	SqrtPriceX96 *uint256.Int
	Liquidity    *uint256.Int
	Tick         int32
	FeePips      uint32
	TickSpacing  int32
	Ticks        map[int32]TickInfo
	Bitmap       tickmath.Bitmap
	BlockNumber  uint64
	// Sparse marks a pool whose tick/bitmap data is loaded on demand via
	// RPC rather than held in full; such a pool cannot be evaluated outside
	// the process holding that RPC handle (ErrSparseBitmapNotPortable).
	Sparse bool
}

// Clone returns a deep copy of the state, including the tick map and
// bitmap, so a simulation can mutate its working copy freely.
func (s State) Clone() State {
	ticks := make(map[int32]TickInfo, len(s.Ticks))
	for k, v := range s.Ticks {
		ticks[k] = TickInfo{
			LiquidityNet:   new(big.Int).Set(v.LiquidityNet),
			LiquidityGross: new(uint256.Int).Set(v.LiquidityGross),
			Initialized:    v.Initialized,
		}
	}
	bitmap := make(tickmath.Bitmap, len(s.Bitmap))
	for k, v := range s.Bitmap {
		bitmap[k] = new(uint256.Int).Set(v)
	}
	return State{
		SqrtPriceX96: new(uint256.Int).Set(s.SqrtPriceX96),
		Liquidity:    new(uint256.Int).Set(s.Liquidity),
		Tick:         s.Tick,
		FeePips:      s.FeePips,
		TickSpacing:  s.TickSpacing,
		Ticks:        ticks,
		Bitmap:       bitmap,
		BlockNumber:  s.BlockNumber,
		Sparse:       s.Sparse,
	}
}

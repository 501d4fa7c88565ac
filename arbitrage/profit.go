package arbitrage

import (
	"math/big"

	"github.com/arbcycle/solver/v2pool"
	"github.com/arbcycle/solver/v3pool"
)

var bigQ96 = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))

// spotPriceAndFee returns the directional spot price and the
// (1 - fee) multiplier for a single hop, used only by the cheap pre-check:
// unlike the exact-integer swap formulas this is float arithmetic by
// design, since it is a necessary-not-sufficient filter (spec.md §4.5 /
// §9), not the execution path.
func spotPriceAndFee(pool Pool, vec SwapVector, overrides Override) (price, feeMul float64, err error) {
	switch p := pool.(type) {
	case *v2pool.Pool:
		state := p.Snapshot()
		if ov, ok := overrides[pool.Address()]; ok {
			if s, ok := ov.(v2pool.State); ok {
				state = s
			}
		}
		if state.Reserve0.IsZero() || state.Reserve1.IsZero() {
			return 0, 0, ErrZeroLiquidity
		}
		r0 := new(big.Float).SetInt(state.Reserve0.ToBig())
		r1 := new(big.Float).SetInt(state.Reserve1.ToBig())

		var ratio *big.Float
		var fee v2pool.Fee
		if vec.ZeroForOne {
			ratio = new(big.Float).Quo(r1, r0)
			fee = state.FeeToken0
		} else {
			ratio = new(big.Float).Quo(r0, r1)
			fee = state.FeeToken1
		}
		priceF, _ := ratio.Float64()
		feeMul = float64(fee.Den-fee.Num) / float64(fee.Den)
		return priceF, feeMul, nil

	case *v3pool.Pool:
		state := p.Snapshot()
		if ov, ok := overrides[pool.Address()]; ok {
			if s, ok := ov.(v3pool.State); ok {
				state = s
			}
		}
		if state.SqrtPriceX96.IsZero() {
			return 0, 0, ErrZeroLiquidity
		}
		sqrtF := new(big.Float).SetInt(state.SqrtPriceX96.ToBig())
		ratio := new(big.Float).Quo(sqrtF, bigQ96)
		ratio.Mul(ratio, ratio)
		if !vec.ZeroForOne {
			ratio = new(big.Float).Quo(big.NewFloat(1), ratio)
		}
		priceF, _ := ratio.Float64()
		feeMul = 1 - float64(state.FeePips)/1_000_000
		return priceF, feeMul, nil

	default:
		return 0, 0, ErrConfigError
	}
}

// PreCheck computes the profit_factor product across every hop and rejects
// the cycle with ErrNoProfit if it is below 1.0, before any optimizer work
// is attempted. This is a necessary, not sufficient, condition: a cycle
// that passes may still optimize to zero.
func (c *Cycle) PreCheck(overrides Override) error {
	factor := 1.0
	for i, pool := range c.spec.Pools {
		price, feeMul, err := spotPriceAndFee(pool, c.spec.Vectors[i], overrides)
		if err != nil {
			return err
		}
		factor *= price * feeMul
	}
	if factor < 1.0 {
		return ErrNoProfit
	}
	return nil
}

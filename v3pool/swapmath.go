package v3pool

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/arbcycle/solver/fixedmath"
)

const feeDenominator = 1_000_000

// ComputeSwapStep computes the result of swapping within a single tick
// range, stopping either at the target price or once amountRemaining is
// exhausted, whichever comes first. amountRemaining is signed: positive
// means exact-input, negative means exact-output -- mirroring Uniswap's
// SwapMath.computeSwapStep.
//
// Grounded on protocols/uniswapv3/calculator/swapmath/swap_math.go in the
// teacher repository (a direct port of Uniswap's SwapMath.sol), rewritten
// on uint256/fixedmath instead of math/big.
func ComputeSwapStep(
	sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity *uint256.Int,
	amountRemaining *big.Int,
	feePips uint32,
) (sqrtRatioNextX96, amountIn, amountOut, feeAmount *uint256.Int, err error) {
	zeroForOne := sqrtRatioCurrentX96.Cmp(sqrtRatioTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0

	amountRemainingAbs := new(uint256.Int)
	absBig := new(big.Int).Abs(amountRemaining)
	amountRemainingAbs.SetFromBig(absBig)

	feePipsInt := uint256.NewInt(uint64(feePips))
	oneMillion := uint256.NewInt(feeDenominator)

	if exactIn {
		remainingLessFee, ferr := fixedmath.MulDiv(amountRemainingAbs, new(uint256.Int).Sub(oneMillion, feePipsInt), oneMillion)
		if ferr != nil {
			return nil, nil, nil, nil, ferr
		}
		if zeroForOne {
			amountIn, err = fixedmath.GetAmount0Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true)
		} else {
			amountIn, err = fixedmath.GetAmount1Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if remainingLessFee.Cmp(amountIn) >= 0 {
			sqrtRatioNextX96 = new(uint256.Int).Set(sqrtRatioTargetX96)
		} else {
			sqrtRatioNextX96, err = fixedmath.GetNextSqrtPriceFromInput(sqrtRatioCurrentX96, liquidity, remainingLessFee, zeroForOne)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
	} else {
		if zeroForOne {
			amountOut, err = fixedmath.GetAmount1Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			amountOut, err = fixedmath.GetAmount0Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false)
		}
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if amountRemainingAbs.Cmp(amountOut) >= 0 {
			sqrtRatioNextX96 = new(uint256.Int).Set(sqrtRatioTargetX96)
		} else {
			sqrtRatioNextX96, err = fixedmath.GetNextSqrtPriceFromOutput(sqrtRatioCurrentX96, liquidity, amountRemainingAbs, zeroForOne)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
	}

	reachedTarget := sqrtRatioNextX96.Eq(sqrtRatioTargetX96)

	if zeroForOne {
		if !(reachedTarget && exactIn) {
			amountIn, err = fixedmath.GetAmount0Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, true)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
		if !(reachedTarget && !exactIn) {
			amountOut, err = fixedmath.GetAmount1Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, false)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
	} else {
		if !(reachedTarget && exactIn) {
			amountIn, err = fixedmath.GetAmount1Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, true)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
		if !(reachedTarget && !exactIn) {
			amountOut, err = fixedmath.GetAmount0Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, false)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
	}

	if !exactIn && amountOut.Cmp(amountRemainingAbs) > 0 {
		amountOut = new(uint256.Int).Set(amountRemainingAbs)
	}

	if exactIn && !sqrtRatioNextX96.Eq(sqrtRatioTargetX96) {
		feeAmount = new(uint256.Int).Sub(amountRemainingAbs, amountIn)
	} else {
		feeAmount, err = fixedmath.MulDivRoundingUp(amountIn, feePipsInt, new(uint256.Int).Sub(oneMillion, feePipsInt))
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	return sqrtRatioNextX96, amountIn, amountOut, feeAmount, nil
}

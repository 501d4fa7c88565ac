package v3pool

import "math/big"

// maxUint128 bounds liquidity, which is stored on-chain as a uint128.
var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// AddDelta adds a signed liquidity delta to x, failing if the result
// underflows below zero or overflows past a uint128.
//
// Grounded on protocols/uniswapv3/calculator/liquiditymath/liquiditymath.go
// in the teacher repository; liquidity_net is kept as a signed math/big
// value rather than uint256 because it is inherently signed (a tick can
// remove more liquidity than it adds going the other direction) and
// uint256 has no signed variant.
func AddDelta(x, delta *big.Int) (*big.Int, error) {
	z := new(big.Int).Add(x, delta)
	if z.Sign() < 0 {
		return nil, ErrLiquidityUnderflow
	}
	if z.Cmp(maxUint128) > 0 {
		return nil, ErrLiquidityOverflow
	}
	return z, nil
}

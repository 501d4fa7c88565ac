package arbitrage

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/arbcycle/solver/tickmath"
	"github.com/arbcycle/solver/v2pool"
	"github.com/arbcycle/solver/v3pool"
)

// buildAmounts re-runs the composed output function once at amountIn and
// materializes the per-hop swap amount record for every pool, failing with
// ErrZeroOutputHop if any hop would produce zero output -- the
// re-validation step the optimizer's result must pass before it's reported
// as a real arbitrage opportunity.
//
// Grounded on uniswap_lp_cycle.py's _build_amounts_out.
func (c *Cycle) buildAmounts(amountIn *uint256.Int, overrides Override) ([]PerHopAmounts, error) {
	amounts := make([]PerHopAmounts, len(c.spec.Pools))
	cur := amountIn

	for i, pool := range c.spec.Pools {
		vec := c.spec.Vectors[i]
		out, err := quoteOut(pool, vec.TokenIn, cur, overrides)
		if err != nil {
			return nil, err
		}
		if out.IsZero() {
			return nil, fmt.Errorf("%w: pool %s", ErrZeroOutputHop, pool.Address())
		}

		switch pool.(type) {
		case *v2pool.Pool:
			var out0, out1 *uint256.Int
			if vec.ZeroForOne {
				out0, out1 = uint256.NewInt(0), out
			} else {
				out0, out1 = out, uint256.NewInt(0)
			}
			amounts[i] = PerHopAmounts{V2: &V2HopAmounts{Out0: out0, Out1: out1}}
		case *v3pool.Pool:
			amounts[i] = PerHopAmounts{V3: &V3HopAmounts{
				AmountSpecified:   cur.ToBig(),
				ZeroForOne:        vec.ZeroForOne,
				SqrtPriceLimitX96: sqrtPriceLimitFor(vec.ZeroForOne),
			}}
		default:
			return nil, fmt.Errorf("%w: unsupported pool variant", ErrConfigError)
		}

		cur = out
	}
	return amounts, nil
}

func sqrtPriceLimitFor(zeroForOne bool) *uint256.Int {
	if zeroForOne {
		return new(uint256.Int).Add(tickmath.MinSqrtRatio, uint256.NewInt(1))
	}
	return new(uint256.Int).Sub(tickmath.MaxSqrtRatio, uint256.NewInt(1))
}

// SwapCall is one leg of an executable swap plan: a target contract, its
// ABI-encoded calldata, and any ETH value to attach.
type SwapCall struct {
	Target common.Address
	Data   []byte
	Value  *big.Int
}

// GenerateSwapPlan encodes the executable calldata for every hop of a
// successful CalculationResult, given the address the caller will execute
// from. It only supplies per-hop amounts and ordering -- the caller (or an
// outer router/executor contract) is responsible for flash-loan wiring,
// gas, and broadcasting.
//
// Recipient routing follows the Python original's generate_payloads: a V2
// hop's output is pre-transferred to the next pool's address (V2 pools
// require tokens present before swap() is called); a V3 hop's output is
// pulled via callback, so its "recipient" argument is simply wherever the
// output should land -- the next pool for an intermediate hop, or
// fromAddress for the final hop.
func (c *Cycle) GenerateSwapPlan(fromAddress common.Address, swapAmounts []PerHopAmounts) ([]SwapCall, error) {
	if len(swapAmounts) != len(c.spec.Pools) {
		return nil, fmt.Errorf("%w: swap amount count (%d) does not match cycle pool count (%d)", ErrConfigError, len(swapAmounts), len(c.spec.Pools))
	}

	calls := make([]SwapCall, len(c.spec.Pools))
	for i, pool := range c.spec.Pools {
		recipient := fromAddress
		if i < len(c.spec.Pools)-1 {
			recipient = c.spec.Pools[i+1].Address()
		}

		hop := swapAmounts[i]
		var data []byte
		var err error
		switch {
		case hop.V2 != nil:
			data, err = packV2Swap(hop.V2.Out0, hop.V2.Out1, recipient)
		case hop.V3 != nil:
			data, err = packV3Swap(recipient, hop.V3.ZeroForOne, hop.V3.AmountSpecified, hop.V3.SqrtPriceLimitX96)
		default:
			err = fmt.Errorf("%w: hop %d has neither V2 nor V3 amounts", ErrConfigError, i)
		}
		if err != nil {
			return nil, err
		}

		calls[i] = SwapCall{Target: pool.Address(), Data: data, Value: big.NewInt(0)}
	}
	return calls, nil
}

var (
	uint256AbiType, _ = abi.NewType("uint256", "", nil)
	int256AbiType, _  = abi.NewType("int256", "", nil)
	addressAbiType, _ = abi.NewType("address", "", nil)
	boolAbiType, _    = abi.NewType("bool", "", nil)
	uint160AbiType, _ = abi.NewType("uint160", "", nil)
	bytesAbiType, _   = abi.NewType("bytes", "", nil)

	v2SwapArgs = abi.Arguments{{Type: uint256AbiType}, {Type: uint256AbiType}, {Type: addressAbiType}, {Type: bytesAbiType}}
	v3SwapArgs = abi.Arguments{{Type: addressAbiType}, {Type: boolAbiType}, {Type: int256AbiType}, {Type: uint160AbiType}, {Type: bytesAbiType}}

	v2SwapSelector = crypto.Keccak256([]byte("swap(uint256,uint256,address,bytes)"))[:4]
	v3SwapSelector = crypto.Keccak256([]byte("swap(address,bool,int256,uint160,bytes)"))[:4]
)

// packV2Swap ABI-encodes a Uniswap-V2-style swap(amount0Out, amount1Out,
// to, data) call, mirroring the Python original's eth_abi.encode +
// Web3.keccak(text=...)[:4] selector pattern.
func packV2Swap(out0, out1 *uint256.Int, to common.Address) ([]byte, error) {
	packed, err := v2SwapArgs.Pack(out0.ToBig(), out1.ToBig(), to, []byte{})
	if err != nil {
		return nil, fmt.Errorf("pack v2 swap calldata: %w", err)
	}
	return append(append([]byte{}, v2SwapSelector...), packed...), nil
}

// packV3Swap ABI-encodes a Uniswap-V3-style
// swap(recipient, zeroForOne, amountSpecified, sqrtPriceLimitX96, data) call.
func packV3Swap(recipient common.Address, zeroForOne bool, amountSpecified *big.Int, sqrtPriceLimitX96 *uint256.Int) ([]byte, error) {
	packed, err := v3SwapArgs.Pack(recipient, zeroForOne, amountSpecified, sqrtPriceLimitX96.ToBig(), []byte{})
	if err != nil {
		return nil, fmt.Errorf("pack v3 swap calldata: %w", err)
	}
	return append(append([]byte{}, v3SwapSelector...), packed...), nil
}

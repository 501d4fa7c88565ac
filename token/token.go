// Package token defines the minimal ERC20 identity used across the solver:
// a comparable address plus informational decimals/symbol.
package token

import "github.com/ethereum/go-ethereum/common"

// Token identifies an ERC20 asset by its on-chain address. Decimals and
// Symbol are informational only -- they are never consulted by the AMM math
// or the optimizer, which operate entirely in the token's base units.
type Token struct {
	Address  common.Address
	Decimals uint8
	Symbol   string
}

// New constructs a Token from a checksum or hex address string.
func New(address string, decimals uint8, symbol string) Token {
	return Token{
		Address:  common.HexToAddress(address),
		Decimals: decimals,
		Symbol:   symbol,
	}
}

// Equal reports whether two tokens refer to the same address.
func (t Token) Equal(other Token) bool {
	return t.Address == other.Address
}

func (t Token) String() string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Address.Hex()
}

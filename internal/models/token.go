package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token is static token metadata.
type Token struct {
	Address     common.Address `json:"address"`
	Symbol      string         `json:"symbol"`
	Name        string         `json:"name,omitempty"`
	Decimals    int            `json:"decimals"`
	IsStable    bool           `json:"is_stable,omitempty"`
	IsSynthetic bool           `json:"is_synthetic,omitempty"`
	IsNative    bool           `json:"is_native,omitempty"`
	IsWrapped   bool           `json:"is_wrapped,omitempty"`
}

// TokenPrices holds the oracle bid/ask, USD per one token unit scaled to 1e30.
type TokenPrices struct {
	MinPrice *big.Int `json:"min_price"`
	MaxPrice *big.Int `json:"max_price"`
}

type TokenData struct {
	Token
	Prices TokenPrices `json:"prices"`

	// Optional wallet/supply context, nil when unknown.
	Balance     *big.Int `json:"balance,omitempty"`
	TotalSupply *big.Int `json:"total_supply,omitempty"`
}

type TokensData map[common.Address]TokenData

// Get returns the token by address; ok is false when the snapshot does not carry it.
func (t TokensData) Get(addr common.Address) (TokenData, bool) {
	td, ok := t[addr]
	return td, ok
}

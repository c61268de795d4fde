// Package markets derives pool, interest, leverage and liquidity figures from
// a MarketInfo snapshot. Every function is pure.
package markets

import (
	"math/big"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

// PriceKind selects which side of the oracle book a valuation uses.
type PriceKind int

const (
	MinPrice PriceKind = iota
	MaxPrice
	MidPrice
)

func (k PriceKind) String() string {
	switch k {
	case MinPrice:
		return "minPrice"
	case MaxPrice:
		return "maxPrice"
	case MidPrice:
		return "midPrice"
	default:
		return "unknown"
	}
}

// PickPrice returns the requested price from the book.
func PickPrice(prices models.TokenPrices, kind PriceKind) *big.Int {
	switch kind {
	case MaxPrice:
		return prices.MaxPrice
	case MidPrice:
		return numbers.MidPrice(prices.MinPrice, prices.MaxPrice)
	default:
		return prices.MinPrice
	}
}

// GetPriceForPnl picks the price used to value trader PnL: the max price when
// isLong == maximize, the min price otherwise.
func GetPriceForPnl(prices models.TokenPrices, isLong, maximize bool) *big.Int {
	if isLong == maximize {
		return prices.MaxPrice
	}
	return prices.MinPrice
}

// ContractPrices is a min/max pair in contract units (1e30 / 10^decimals).
type ContractPrices struct {
	Min *big.Int `json:"min"`
	Max *big.Int `json:"max"`
}

type ContractMarketPrices struct {
	IndexTokenPrice ContractPrices `json:"index_token_price"`
	LongTokenPrice  ContractPrices `json:"long_token_price"`
	ShortTokenPrice ContractPrices `json:"short_token_price"`
}

func ConvertToContractTokenPrices(prices models.TokenPrices, decimals int) ContractPrices {
	return ContractPrices{
		Min: numbers.ConvertToContractPrice(prices.MinPrice, decimals),
		Max: numbers.ConvertToContractPrice(prices.MaxPrice, decimals),
	}
}

// GetContractMarketPrices returns the market's prices in contract units, or
// nil when any of its tokens is missing from tokens.
func GetContractMarketPrices(tokens models.TokensData, market models.Market) *ContractMarketPrices {
	index, ok := tokens.Get(market.IndexTokenAddress)
	if !ok {
		return nil
	}
	long, ok := tokens.Get(market.LongTokenAddress)
	if !ok {
		return nil
	}
	short, ok := tokens.Get(market.ShortTokenAddress)
	if !ok {
		return nil
	}

	return &ContractMarketPrices{
		IndexTokenPrice: ConvertToContractTokenPrices(index.Prices, index.Decimals),
		LongTokenPrice:  ConvertToContractTokenPrices(long.Prices, long.Decimals),
		ShortTokenPrice: ConvertToContractTokenPrices(short.Prices, short.Decimals),
	}
}

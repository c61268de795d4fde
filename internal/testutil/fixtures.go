// Package testutil builds snapshot fixtures for tests across packages.
package testutil

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

var (
	WETH = Token("0x00000000000000000000000000000000000000e1", "WETH", 18, 2000)
	WBTC = Token("0x00000000000000000000000000000000000000b1", "WBTC", 8, 60000)
	USDC = Token("0x00000000000000000000000000000000000000c1", "USDC", 6, 1)
	DAI  = Token("0x00000000000000000000000000000000000000d1", "DAI", 18, 1)
	SOL  = Token("0x00000000000000000000000000000000000000f1", "SOL", 9, 100)
)

// USD returns n dollars in 1e30 precision.
func USD(n int64) *big.Int {
	return numbers.ExpandDecimals(n, numbers.UsdDecimals)
}

// Amount returns n whole tokens in raw units.
func Amount(n int64, decimals int) *big.Int {
	return numbers.ExpandDecimals(n, decimals)
}

// Factor returns bps basis points as a 1e30 factor.
func Factor(bps int64) *big.Int {
	return numbers.ExpandDecimals(bps, 26)
}

func Token(addr, symbol string, decimals int, priceUsd int64) models.TokenData {
	price := USD(priceUsd)
	return models.TokenData{
		Token: models.Token{
			Address:  common.HexToAddress(addr),
			Symbol:   symbol,
			Decimals: decimals,
			IsStable: priceUsd == 1,
		},
		Prices: models.TokenPrices{MinPrice: price, MaxPrice: new(big.Int).Set(price)},
	}
}

// WithPrices returns a copy of t with a new book.
func WithPrices(t models.TokenData, minUsd, maxUsd int64) models.TokenData {
	t.Prices = models.TokenPrices{MinPrice: USD(minUsd), MaxPrice: USD(maxUsd)}
	return t
}

type MarketOption func(m *models.MarketInfo)

// Market builds a balanced market holding poolUsd dollars on each side with
// fees of 5/7 bps (swap) and 4/6 bps (position), no price impact and no open
// interest.
func Market(addr string, index, long, short models.TokenData, poolUsd int64, opts ...MarketOption) models.MarketInfo {
	m := models.MarketInfo{
		Market: models.Market{
			MarketTokenAddress: common.HexToAddress(addr),
			IndexTokenAddress:  index.Address,
			LongTokenAddress:   long.Address,
			ShortTokenAddress:  short.Address,
			Name:               index.Symbol + "/USD",
			IsSameCollaterals:  long.Address == short.Address,
		},
		LongToken:  long,
		ShortToken: short,
		IndexToken: index,

		LongPoolAmount:            numbers.ConvertToTokenAmount(USD(poolUsd), long.Decimals, long.Prices.MinPrice),
		ShortPoolAmount:           numbers.ConvertToTokenAmount(USD(poolUsd), short.Decimals, short.Prices.MinPrice),
		SwapImpactPoolAmountLong:  new(big.Int),
		SwapImpactPoolAmountShort: new(big.Int),
		PositionImpactPoolAmount:  new(big.Int),
		MarketTokenSupply:         Amount(2*poolUsd, 18),

		ReserveFactorLong:              new(big.Int).Set(numbers.Precision),
		ReserveFactorShort:             new(big.Int).Set(numbers.Precision),
		OpenInterestReserveFactorLong:  new(big.Int).Set(numbers.Precision),
		OpenInterestReserveFactorShort: new(big.Int).Set(numbers.Precision),
		MaxOpenInterestLong:            USD(poolUsd),
		MaxOpenInterestShort:           USD(poolUsd),

		LongInterestUsd:       new(big.Int),
		ShortInterestUsd:      new(big.Int),
		LongInterestInTokens:  new(big.Int),
		ShortInterestInTokens: new(big.Int),

		SwapFeeFactorForPositiveImpact:     Factor(5),
		SwapFeeFactorForNegativeImpact:     Factor(7),
		PositionFeeFactorForPositiveImpact: Factor(4),
		PositionFeeFactorForNegativeImpact: Factor(6),

		SwapImpactFactorPositive:     new(big.Int),
		SwapImpactFactorNegative:     new(big.Int),
		SwapImpactExponentFactor:     numbers.ExpandDecimals(2, 30),
		PositionImpactFactorPositive: new(big.Int),
		PositionImpactFactorNegative: new(big.Int),
		PositionImpactExponentFactor: numbers.ExpandDecimals(2, 30),

		FundingFactorPerSecond:            new(big.Int),
		BorrowingFactorPerSecondForLongs:  new(big.Int),
		BorrowingFactorPerSecondForShorts: new(big.Int),
		TotalBorrowingFees:                new(big.Int),
		BorrowingFeePoolFactor:            new(big.Int),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// SpotOnly marks the market as swap-only.
func SpotOnly(m *models.MarketInfo) {
	m.IsSpotOnly = true
}

func Disabled(m *models.MarketInfo) {
	m.IsDisabled = true
}

// Snapshot collects the markets and their tokens into a validated-shape snapshot.
func Snapshot(markets ...models.MarketInfo) *models.Snapshot {
	s := &models.Snapshot{
		ChainID:            42161,
		Version:            1,
		UpdatedAt:          time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		NativeTokenAddress: WETH.Address,
		Tokens:             models.TokensData{},
		Markets:            models.MarketsInfoData{},
		GasPrice:           big.NewInt(100_000_000),
		GasLimits:          GasLimits(),
	}
	s.Tokens[WETH.Address] = WETH
	for _, m := range markets {
		s.Markets[m.MarketTokenAddress] = m
		s.Tokens[m.LongTokenAddress] = m.LongToken
		s.Tokens[m.ShortTokenAddress] = m.ShortToken
		s.Tokens[m.IndexTokenAddress] = m.IndexToken
	}
	return s
}

func GasLimits() *models.GasLimitsConfig {
	return &models.GasLimitsConfig{
		DepositSingleToken:            big.NewInt(1_500_000),
		DepositMultiToken:             big.NewInt(1_800_000),
		WithdrawalMultiToken:          big.NewInt(1_500_000),
		SingleSwap:                    big.NewInt(1_000_000),
		SwapOrder:                     big.NewInt(1_500_000),
		IncreaseOrder:                 big.NewInt(2_500_000),
		DecreaseOrder:                 big.NewInt(2_500_000),
		EstimatedGasFeeBaseAmount:     big.NewInt(500_000),
		EstimatedGasFeePerOraclePrice: big.NewInt(100_000),
		EstimatedFeeMultiplierFactor:  new(big.Int).Set(numbers.Precision),
	}
}

package markets

import (
	"math/big"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

// MarketTokenDecimals is the decimals of every market (GM) token.
const MarketTokenDecimals = 18

func sideToken(m *models.MarketInfo, isLong bool) models.TokenData {
	if isLong {
		return m.LongToken
	}
	return m.ShortToken
}

func GetPoolAmount(m *models.MarketInfo, isLong bool) *big.Int {
	if isLong {
		return m.LongPoolAmount
	}
	return m.ShortPoolAmount
}

// GetPoolUsdWithoutPnl values one side's pool at the selected price. PnL is
// not included.
func GetPoolUsdWithoutPnl(m *models.MarketInfo, isLong bool, kind PriceKind) *big.Int {
	token := sideToken(m, isLong)
	return numbers.ConvertToUsd(GetPoolAmount(m, isLong), token.Decimals, PickPrice(token.Prices, kind))
}

// GetCappedPoolPnl clamps poolPnl to +/- poolUsd * maxPnlFactorForTraders.
// A market without a factor for the side leaves poolPnl untouched.
func GetCappedPoolPnl(m *models.MarketInfo, poolUsd, poolPnl *big.Int, isLong bool) *big.Int {
	factor := m.MaxPnlFactorForTradersShort
	if isLong {
		factor = m.MaxPnlFactorForTradersLong
	}
	if factor == nil {
		return new(big.Int).Set(poolPnl)
	}

	maxPnl := numbers.ApplyFactor(poolUsd, factor)
	if poolPnl.Cmp(maxPnl) > 0 {
		return maxPnl
	}
	minPnl := new(big.Int).Neg(maxPnl)
	if poolPnl.Cmp(minPnl) < 0 {
		return minPnl
	}
	return new(big.Int).Set(poolPnl)
}

// GetMarketPnl is the aggregate unrealized PnL of one side's traders.
func GetMarketPnl(m *models.MarketInfo, isLong, maximize bool) *big.Int {
	oiTokens := GetOpenInterestInTokens(m, isLong)
	if oiTokens.Sign() == 0 {
		return new(big.Int)
	}

	price := GetPriceForPnl(m.IndexToken.Prices, isLong, maximize)
	value := numbers.ConvertToUsd(oiTokens, m.IndexToken.Decimals, price)
	oiUsd := GetOpenInterestUsd(m, isLong)

	if isLong {
		return value.Sub(value, oiUsd)
	}
	return new(big.Int).Sub(oiUsd, value)
}

// GetMarketDivisor is 2 for a single-token pool shared by both sides, else 1.
func GetMarketDivisor(m models.Market) *big.Int {
	if m.LongTokenAddress == m.ShortTokenAddress {
		return big.NewInt(2)
	}
	return big.NewInt(1)
}

// GetPoolValue is the market's total USD worth for liquidity providers:
// both pools, plus the pool's share of pending borrowing fees, minus the
// position impact pool and the capped trader PnL.
func GetPoolValue(m *models.MarketInfo, maximize bool) *big.Int {
	kind := MinPrice
	if maximize {
		kind = MaxPrice
	}

	longUsd := GetPoolUsdWithoutPnl(m, true, kind)
	shortUsd := GetPoolUsdWithoutPnl(m, false, kind)
	value := new(big.Int).Add(longUsd, shortUsd)

	value.Add(value, numbers.ApplyFactor(m.TotalBorrowingFees, m.BorrowingFeePoolFactor))

	impactPrice := m.IndexToken.Prices.MinPrice
	if !maximize {
		impactPrice = m.IndexToken.Prices.MaxPrice
	}
	value.Sub(value, numbers.ConvertToUsd(m.PositionImpactPoolAmount, m.IndexToken.Decimals, impactPrice))

	// Trader PnL is valued against the pool, so the pool is maximized when
	// trader PnL is minimized.
	longPnl := GetCappedPoolPnl(m, longUsd, GetMarketPnl(m, true, !maximize), true)
	shortPnl := GetCappedPoolPnl(m, shortUsd, GetMarketPnl(m, false, !maximize), false)
	value.Sub(value, longPnl)
	value.Sub(value, shortPnl)

	return value
}

// GetMarketTokenPrice is the USD price of one market token. An empty market
// prices its token at $1.
func GetMarketTokenPrice(m *models.MarketInfo, maximize bool) *big.Int {
	if m.MarketTokenSupply.Sign() == 0 {
		return numbers.ExpandDecimals(1, numbers.UsdDecimals)
	}
	return numbers.MulDiv(GetPoolValue(m, maximize), numbers.ExpandDecimals(1, MarketTokenDecimals), m.MarketTokenSupply)
}

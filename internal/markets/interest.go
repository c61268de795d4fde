package markets

import (
	"math/big"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

func GetOpenInterestUsd(m *models.MarketInfo, isLong bool) *big.Int {
	if isLong {
		return m.LongInterestUsd
	}
	return m.ShortInterestUsd
}

func GetOpenInterestInTokens(m *models.MarketInfo, isLong bool) *big.Int {
	if isLong {
		return m.LongInterestInTokens
	}
	return m.ShortInterestInTokens
}

func GetMaxOpenInterestUsd(m *models.MarketInfo, isLong bool) *big.Int {
	if isLong {
		return m.MaxOpenInterestLong
	}
	return m.MaxOpenInterestShort
}

// GetReservedUsd is the USD already committed to open positions. Long
// interest is valued at the index max price; short interest is USD already.
func GetReservedUsd(m *models.MarketInfo, isLong bool) *big.Int {
	if isLong {
		return numbers.ConvertToUsd(m.LongInterestInTokens, m.IndexToken.Decimals, m.IndexToken.Prices.MaxPrice)
	}
	return new(big.Int).Set(m.ShortInterestUsd)
}

// GetMaxReservedUsd is the pool USD that positions may reserve, using the
// tighter of the reserve and open-interest reserve factors.
func GetMaxReservedUsd(m *models.MarketInfo, isLong bool) *big.Int {
	poolUsd := GetPoolUsdWithoutPnl(m, isLong, MinPrice)

	reserveFactor, oiReserveFactor := m.ReserveFactorShort, m.OpenInterestReserveFactorShort
	if isLong {
		reserveFactor, oiReserveFactor = m.ReserveFactorLong, m.OpenInterestReserveFactorLong
	}
	if oiReserveFactor.Cmp(reserveFactor) < 0 {
		reserveFactor = oiReserveFactor
	}
	return numbers.ApplyFactor(poolUsd, reserveFactor)
}

// GetAvailableUsdLiquidityForPosition is the size a new position on the side
// can still open, bounded by reserves and the open interest cap.
func GetAvailableUsdLiquidityForPosition(m *models.MarketInfo, isLong bool) *big.Int {
	if m.IsSpotOnly {
		return new(big.Int)
	}

	byReserve := new(big.Int).Sub(GetMaxReservedUsd(m, isLong), GetReservedUsd(m, isLong))
	byOpenInterest := new(big.Int).Sub(GetMaxOpenInterestUsd(m, isLong), GetOpenInterestUsd(m, isLong))

	result := numbers.Min(byReserve, byOpenInterest)
	if result.Sign() < 0 {
		return new(big.Int)
	}
	return result
}

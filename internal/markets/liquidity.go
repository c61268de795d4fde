package markets

import (
	"math/big"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

// GetAvailableUsdLiquidityForCollateral is the USD a swap may take out of one
// side of the pool. Spot-only markets expose the whole pool; leveraged markets
// keep what open positions have reserved.
func GetAvailableUsdLiquidityForCollateral(m *models.MarketInfo, isLong bool) *big.Int {
	poolUsd := GetPoolUsdWithoutPnl(m, isLong, MinPrice)
	if m.IsSpotOnly {
		return poolUsd
	}

	reserveFactor := m.ReserveFactorShort
	if isLong {
		reserveFactor = m.ReserveFactorLong
	}

	liquidity := numbers.ApplyFactor(poolUsd, reserveFactor)
	liquidity.Sub(liquidity, GetReservedUsd(m, isLong))
	if liquidity.Sign() < 0 {
		return new(big.Int)
	}
	return liquidity
}

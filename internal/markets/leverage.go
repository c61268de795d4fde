package markets

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

// DefaultMaxLeverage is 100x in basis points, used when a market carries no
// min collateral factor.
const DefaultMaxLeverage = 100 * numbers.BasisPointsDivisor

// GetMaxLeverageByMinCollateralFactor returns the liquidation-bound leverage in
// basis points: 1 / minCollateralFactor.
func GetMaxLeverageByMinCollateralFactor(minCollateralFactor *big.Int) *big.Int {
	if minCollateralFactor == nil || minCollateralFactor.Sign() == 0 {
		return big.NewInt(DefaultMaxLeverage)
	}
	v := new(big.Int).Mul(numbers.Precision, big.NewInt(numbers.BasisPointsDivisor))
	return v.Quo(v, minCollateralFactor)
}

// GetMaxAllowedLeverageByMinCollateralFactor keeps a 2x margin below the
// liquidation-bound leverage.
func GetMaxAllowedLeverageByMinCollateralFactor(minCollateralFactor *big.Int) *big.Int {
	v := GetMaxLeverageByMinCollateralFactor(minCollateralFactor)
	return v.Quo(v, big.NewInt(2))
}

// PoolType names the side of a market pool a token belongs to.
type PoolType string

const (
	PoolLong  PoolType = "long"
	PoolShort PoolType = "short"
)

// GetTokenPoolType reports which pool holds the token. Long wins for
// single-token markets; ok is false for any other token.
func GetTokenPoolType(m models.Market, token common.Address) (PoolType, bool) {
	switch token {
	case m.LongTokenAddress:
		return PoolLong, true
	case m.ShortTokenAddress:
		return PoolShort, true
	default:
		return "", false
	}
}

// GetOppositeCollateral returns the other side's collateral token, or nil when
// token is not a collateral of the market.
func GetOppositeCollateral(m *models.MarketInfo, token common.Address) *models.TokenData {
	poolType, ok := GetTokenPoolType(m.Market, token)
	if !ok {
		return nil
	}
	if poolType == PoolLong {
		return &m.ShortToken
	}
	return &m.LongToken
}

func IsMarketCollateral(m models.Market, token common.Address) bool {
	_, ok := GetTokenPoolType(m, token)
	return ok
}

func IsMarketIndexToken(m models.Market, token common.Address) bool {
	return !m.IsSpotOnly && m.IndexTokenAddress == token
}

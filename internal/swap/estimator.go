package swap

import (
	"math/big"

	"github.com/aman-zulfiqar/perps-swap-core/internal/markets"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

// Yield is a coarse usdOut/usdIn ratio. It only ranks and prunes candidate
// paths and is never converted back into an amount.
type Yield float64

// MarketEdgeLiquidityGetter returns the USD an edge can still pay out.
type MarketEdgeLiquidityGetter func(e models.MarketEdge) *big.Int

// SwapEstimator returns the exact USD out of one hop, zero when the hop is
// infeasible.
type SwapEstimator func(e models.MarketEdge, usdIn *big.Int) *big.Int

// NaiveEstimate is the coarse result of one hop. UsdOutMin is a lower bound
// of the exact output, so a hop is only reported infeasible when the exact
// estimator would reject it too.
type NaiveEstimate struct {
	Yield     Yield
	UsdOutMin *big.Int
}

// NaiveSwapEstimator prices one hop from fee factors and liquidity only. Yield
// is zero when the hop is infeasible.
type NaiveSwapEstimator func(e models.MarketEdge, usdIn *big.Int) NaiveEstimate

func NewMarketEdgeLiquidityGetter(ms models.MarketsInfoData) MarketEdgeLiquidityGetter {
	return func(e models.MarketEdge) *big.Int {
		m, ok := ms.Get(e.MarketAddress)
		if !ok {
			return new(big.Int)
		}
		pool, ok := markets.GetTokenPoolType(m.Market, e.To)
		if !ok {
			return new(big.Int)
		}
		return markets.GetAvailableUsdLiquidityForCollateral(&m, pool == markets.PoolLong)
	}
}

func NewSwapEstimator(ms models.MarketsInfoData) SwapEstimator {
	return func(e models.MarketEdge, usdIn *big.Int) *big.Int {
		m, ok := ms.Get(e.MarketAddress)
		if !ok {
			return new(big.Int)
		}
		stats := GetSwapStats(&m, e.From, e.To, usdIn, true)
		if stats.IsOutLiquidity {
			return new(big.Int)
		}
		return stats.UsdOut
	}
}

// NewNaiveSwapEstimator skips price impact entirely. Markets with a negative
// swap impact factor can charge any amount of impact, so their lower bound
// drops to zero and only an empty pool rejects the hop.
func NewNaiveSwapEstimator(ms models.MarketsInfoData) NaiveSwapEstimator {
	liquidity := NewMarketEdgeLiquidityGetter(ms)
	return func(e models.MarketEdge, usdIn *big.Int) NaiveEstimate {
		infeasible := NaiveEstimate{UsdOutMin: new(big.Int)}
		if usdIn == nil || usdIn.Sign() < 0 {
			return infeasible
		}
		m, ok := ms.Get(e.MarketAddress)
		if !ok {
			return infeasible
		}
		if _, ok := markets.GetTokenPoolType(m.Market, e.From); !ok {
			return infeasible
		}
		available := liquidity(e)
		if available.Sign() <= 0 {
			return infeasible
		}

		feeFactor := numbers.Max(m.SwapFeeFactorForPositiveImpact, m.SwapFeeFactorForNegativeImpact)
		outMin := new(big.Int)
		if m.SwapImpactFactorNegative == nil || m.SwapImpactFactorNegative.Sign() == 0 {
			fee := numbers.RoundUpDivision(new(big.Int).Mul(usdIn, feeFactor), numbers.Precision)
			outMin.Sub(usdIn, fee)
			if outMin.Sign() < 0 {
				outMin.SetInt64(0)
			}
		}
		if outMin.Cmp(available) > 0 {
			return infeasible
		}

		minFee := numbers.Min(m.SwapFeeFactorForPositiveImpact, m.SwapFeeFactorForNegativeImpact)
		share, _ := new(big.Float).Quo(new(big.Float).SetInt(minFee), new(big.Float).SetInt(numbers.Precision)).Float64()
		y := Yield(1 - share)
		if y <= 0 {
			return infeasible
		}
		return NaiveEstimate{Yield: y, UsdOutMin: outMin}
	}
}

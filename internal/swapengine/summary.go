package swapengine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aman-zulfiqar/perps-swap-core/internal/constants"
	"github.com/aman-zulfiqar/perps-swap-core/internal/fees"
	"github.com/aman-zulfiqar/perps-swap-core/internal/markets"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
)

// SummarizeMarket derives the reported metrics of m.
func SummarizeMarket(m *models.MarketInfo) *MarketSummary {
	period := int64(constants.FundingPeriod / time.Second)

	return &MarketSummary{
		Address:    m.MarketTokenAddress,
		Name:       markets.GetMarketFullName(m),
		IndexToken: m.IndexToken.Symbol,
		LongToken:  m.LongToken.Symbol,
		ShortToken: m.ShortToken.Symbol,
		IsSpotOnly: m.IsSpotOnly,
		IsDisabled: m.IsDisabled,

		PoolValueMax:        markets.GetPoolValue(m, true),
		PoolValueMin:        markets.GetPoolValue(m, false),
		MarketTokenPriceMax: markets.GetMarketTokenPrice(m, true),
		MarketTokenPriceMin: markets.GetMarketTokenPrice(m, false),

		LongPoolUsd:  markets.GetPoolUsdWithoutPnl(m, true, markets.MidPrice),
		ShortPoolUsd: markets.GetPoolUsdWithoutPnl(m, false, markets.MidPrice),

		LongInterestUsd:  markets.GetOpenInterestUsd(m, true),
		ShortInterestUsd: markets.GetOpenInterestUsd(m, false),
		LongPnl:          markets.GetMarketPnl(m, true, false),
		ShortPnl:         markets.GetMarketPnl(m, false, false),

		AvailableSwapLiquidityLong:  markets.GetAvailableUsdLiquidityForCollateral(m, true),
		AvailableSwapLiquidityShort: markets.GetAvailableUsdLiquidityForCollateral(m, false),
		AvailableLiquidityLong:      markets.GetAvailableUsdLiquidityForPosition(m, true),
		AvailableLiquidityShort:     markets.GetAvailableUsdLiquidityForPosition(m, false),

		MaxLeverageBps:        markets.GetMaxLeverageByMinCollateralFactor(m.MinCollateralFactor),
		MaxAllowedLeverageBps: markets.GetMaxAllowedLeverageByMinCollateralFactor(m.MinCollateralFactor),

		FundingFactorPerHourLong:    fees.GetFundingFactorPerPeriod(m, true, period),
		FundingFactorPerHourShort:   fees.GetFundingFactorPerPeriod(m, false, period),
		BorrowingFactorPerHourLong:  fees.GetBorrowingFactorPerPeriod(m, true, period),
		BorrowingFactorPerHourShort: fees.GetBorrowingFactorPerPeriod(m, false, period),
	}
}

// MarketSummary reports one market of the current snapshot, with overrides
// applied.
func (e *Engine) MarketSummary(ctx context.Context, addr common.Address) (*MarketSummary, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := snap.Markets.Get(addr)
	if !ok {
		return nil, fmt.Errorf("%w: unknown market %s", ErrInvalidMarket, addr.Hex())
	}
	return SummarizeMarket(&m), nil
}

// ListMarkets reports every market ordered by address.
func (e *Engine) ListMarkets(ctx context.Context) ([]*MarketSummary, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*MarketSummary, 0, len(snap.Markets))
	for _, m := range snap.Markets {
		out = append(out, SummarizeMarket(&m))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address.Cmp(out[j].Address) < 0
	})
	return out, nil
}

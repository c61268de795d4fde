package fees

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
	tu "github.com/aman-zulfiqar/perps-swap-core/internal/testutil"
)

func TestGetFeeItem(t *testing.T) {
	item := GetFeeItem(tu.USD(-5), tu.USD(10_000), false)
	require.NotNil(t, item)
	tu.AssertBig(t, tu.USD(-5), item.DeltaUsd)
	tu.AssertBig(t, big.NewInt(-5), item.Bps)
	tu.AssertBig(t, numbers.ExpandDecimals(-5, 28), item.PrecisePercentage)

	assert.Nil(t, GetFeeItem(nil, tu.USD(1), false))

	item = GetFeeItem(tu.USD(-5), new(big.Int), false)
	tu.AssertBig(t, big.NewInt(0), item.Bps)
	tu.AssertBig(t, big.NewInt(0), item.PrecisePercentage)

	// Round up moves away from zero
	item = GetFeeItem(tu.USD(-1), tu.USD(30_000), true)
	tu.AssertBig(t, big.NewInt(-1), item.Bps)
}

func TestGetTotalFeeItem(t *testing.T) {
	total := GetTotalFeeItem(
		GetFeeItem(tu.USD(-5), tu.USD(10_000), false),
		nil,
		GetFeeItem(tu.USD(2), tu.USD(10_000), false),
	)
	tu.AssertBig(t, tu.USD(-3), total.DeltaUsd)
	tu.AssertBig(t, big.NewInt(-3), total.Bps)

	empty := GetTotalFeeItem()
	tu.AssertBig(t, big.NewInt(0), empty.DeltaUsd)
}

func TestGetTradeFees_Swap(t *testing.T) {
	fees := GetTradeFees(TradeFeesParams{
		InitialCollateralUsd: tu.USD(10_000),
		CollateralDeltaUsd:   tu.USD(10_000),
		SwapSteps: []models.SwapStats{
			{SwapFeeUsd: tu.USD(5), UsdIn: tu.USD(10_000)},
			{SwapFeeUsd: tu.USD(7), UsdIn: tu.USD(9_995)},
		},
		SwapPriceImpactDeltaUsd: tu.USD(-4),
		UiFeeFactor:             tu.Factor(1),
	})

	require.Len(t, fees.SwapFees, 2)
	tu.AssertBig(t, tu.USD(-5), fees.SwapFees[0].DeltaUsd)
	tu.AssertBig(t, big.NewInt(-5), fees.SwapFees[0].Bps)
	tu.AssertBig(t, big.NewInt(-7), fees.SwapFees[1].Bps)
	tu.AssertBig(t, big.NewInt(-4), fees.SwapPriceImpact.Bps)
	tu.AssertBig(t, tu.USD(-1), fees.UiSwapFee.DeltaUsd)

	assert.Nil(t, fees.PositionFee)
	assert.Nil(t, fees.BorrowFee)
	assert.Nil(t, fees.UiFee)

	tu.AssertBig(t, tu.USD(-17), fees.TotalFees.DeltaUsd)
	tu.AssertBig(t, big.NewInt(-17), fees.TotalFees.Bps)
}

func TestGetTradeFees_Position(t *testing.T) {
	fees := GetTradeFees(TradeFeesParams{
		InitialCollateralUsd:        tu.USD(10_000),
		SizeDeltaUsd:                tu.USD(100_000),
		PositionFeeUsd:              tu.USD(60),
		FeeDiscountUsd:              tu.USD(6),
		PositionPriceImpactDeltaUsd: tu.USD(-10),
		BorrowingFeeUsd:             tu.USD(2),
		FundingFeeUsd:               tu.USD(3),
		UiFeeFactor:                 tu.Factor(1),
	})

	assert.Empty(t, fees.SwapFees)
	tu.AssertBig(t, tu.USD(-54), fees.PositionFee.DeltaUsd)
	tu.AssertBig(t, big.NewInt(-5), fees.PositionFee.Bps)
	tu.AssertBig(t, tu.USD(6), fees.FeeDiscountUsd)
	tu.AssertBig(t, big.NewInt(-1), fees.PositionPriceImpact.Bps)
	tu.AssertBig(t, big.NewInt(-2), fees.BorrowFee.Bps)
	tu.AssertBig(t, big.NewInt(-3), fees.FundingFee.Bps)
	tu.AssertBig(t, tu.USD(-10), fees.UiFee.DeltaUsd)

	tu.AssertBig(t, tu.USD(-79), fees.TotalFees.DeltaUsd)
}

func TestGetTradeFees_ExternalSwap(t *testing.T) {
	fees := GetTradeFees(TradeFeesParams{
		InitialCollateralUsd: tu.USD(1000),
		ExternalSwapUsdIn:    tu.USD(1000),
		ExternalSwapUsdOut:   tu.USD(998),
	})
	tu.AssertBig(t, tu.USD(-2), fees.ExternalSwapFee.DeltaUsd)
	tu.AssertBig(t, big.NewInt(-20), fees.ExternalSwapFee.Bps)
	tu.AssertBig(t, tu.USD(-2), fees.TotalFees.DeltaUsd)
}

func TestGetGmSwapFees(t *testing.T) {
	fees := GetGmSwapFees(GmSwapFeesParams{
		BasisUsd:                tu.USD(1000),
		MarketTokenUsd:          tu.USD(990),
		SwapFeeUsd:              tu.USD(1),
		SwapPriceImpactDeltaUsd: tu.USD(2),
		UiFeeUsd:                numbers.ExpandDecimals(5, 29),
	})

	tu.AssertBig(t, big.NewInt(-10), fees.SwapFee.Bps)
	tu.AssertBig(t, big.NewInt(20), fees.SwapPriceImpact.Bps)
	tu.AssertBig(t, big.NewInt(-6), fees.UiFee.Bps)
	tu.AssertBig(t, numbers.ExpandDecimals(5, 29), fees.TotalFees.DeltaUsd)
	tu.AssertBig(t, big.NewInt(4), fees.TotalFees.Bps)
}

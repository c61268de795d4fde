package fees

import (
	"math/big"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

// TradeFeesParams collects the already-priced components of a trade. Positive
// fee inputs are costs; impact inputs are signed (positive favors the trader).
// nil inputs are left out of the summary.
type TradeFeesParams struct {
	InitialCollateralUsd *big.Int
	SizeDeltaUsd         *big.Int
	CollateralDeltaUsd   *big.Int

	SwapSteps               []models.SwapStats
	SwapPriceImpactDeltaUsd *big.Int
	SwapProfitFeeUsd        *big.Int
	ExternalSwapUsdIn       *big.Int
	ExternalSwapUsdOut      *big.Int

	PositionFeeUsd              *big.Int
	FeeDiscountUsd              *big.Int
	PositionPriceImpactDeltaUsd *big.Int
	BorrowingFeeUsd             *big.Int
	FundingFeeUsd               *big.Int

	UiFeeFactor *big.Int
}

// GetTradeFees builds the fee summary of a trade. Swap hop fees are relative
// to the hop input; swap, borrowing and funding items to the initial
// collateral; position fee and impact to the size delta; UI fees to the size
// and collateral deltas, rounded up.
func GetTradeFees(p TradeFeesParams) models.TradeFees {
	var out models.TradeFees

	if p.InitialCollateralUsd != nil && p.InitialCollateralUsd.Sign() > 0 {
		for _, step := range p.SwapSteps {
			out.SwapFees = append(out.SwapFees, *GetFeeItem(neg(numbers.OrZero(step.SwapFeeUsd)), step.UsdIn, false))
		}
	}

	out.SwapProfitFee = GetFeeItem(neg(p.SwapProfitFeeUsd), p.InitialCollateralUsd, false)
	out.SwapPriceImpact = GetFeeItem(p.SwapPriceImpactDeltaUsd, p.InitialCollateralUsd, false)
	if p.ExternalSwapUsdIn != nil && p.ExternalSwapUsdOut != nil {
		delta := new(big.Int).Sub(p.ExternalSwapUsdOut, p.ExternalSwapUsdIn)
		out.ExternalSwapFee = GetFeeItem(delta, p.InitialCollateralUsd, false)
	}

	if p.PositionFeeUsd != nil {
		afterDiscount := new(big.Int).Sub(p.PositionFeeUsd, numbers.OrZero(p.FeeDiscountUsd))
		out.PositionFee = GetFeeItem(afterDiscount.Neg(afterDiscount), p.SizeDeltaUsd, false)
		out.FeeDiscountUsd = new(big.Int).Set(numbers.OrZero(p.FeeDiscountUsd))
	}
	out.PositionPriceImpact = GetFeeItem(p.PositionPriceImpactDeltaUsd, p.SizeDeltaUsd, false)
	out.BorrowFee = GetFeeItem(neg(p.BorrowingFeeUsd), p.InitialCollateralUsd, false)
	out.FundingFee = GetFeeItem(neg(p.FundingFeeUsd), p.InitialCollateralUsd, false)

	uiFeeFactor := numbers.OrZero(p.UiFeeFactor)
	if p.SizeDeltaUsd != nil {
		out.UiFee = GetFeeItem(neg(numbers.ApplyFactor(p.SizeDeltaUsd, uiFeeFactor)), p.SizeDeltaUsd, true)
	}
	if p.CollateralDeltaUsd != nil {
		out.UiSwapFee = GetFeeItem(neg(numbers.ApplyFactor(p.CollateralDeltaUsd, uiFeeFactor)), p.CollateralDeltaUsd, true)
	}

	items := make([]*models.FeeItem, 0, len(out.SwapFees)+9)
	for i := range out.SwapFees {
		items = append(items, &out.SwapFees[i])
	}
	items = append(items,
		out.SwapProfitFee,
		out.SwapPriceImpact,
		out.ExternalSwapFee,
		out.PositionFee,
		out.PositionPriceImpact,
		out.BorrowFee,
		out.FundingFee,
		out.UiFee,
		out.UiSwapFee,
	)
	out.TotalFees = GetTotalFeeItem(items...)

	return out
}

// GmSwapFeesParams are the priced components of a deposit or withdrawal.
type GmSwapFeesParams struct {
	// BasisUsd is the deposited collateral value, or the burned market token
	// value for withdrawals.
	BasisUsd       *big.Int
	MarketTokenUsd *big.Int

	SwapFeeUsd              *big.Int
	SwapPriceImpactDeltaUsd *big.Int
	UiFeeUsd                *big.Int
}

func GetGmSwapFees(p GmSwapFeesParams) models.GmSwapFees {
	out := models.GmSwapFees{
		SwapFee:         GetFeeItem(neg(p.SwapFeeUsd), p.BasisUsd, false),
		SwapPriceImpact: GetFeeItem(p.SwapPriceImpactDeltaUsd, p.BasisUsd, false),
		UiFee:           GetFeeItem(neg(p.UiFeeUsd), p.MarketTokenUsd, true),
	}
	out.TotalFees = GetTotalFeeItem(out.SwapPriceImpact, out.SwapFee, out.UiFee)
	return out
}

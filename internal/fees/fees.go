// Package fees prices swaps and positions: fee factors, funding and
// borrowing rates, price impact, and the fee summaries shown before a trade.
package fees

import (
	"math/big"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

// GetSwapFee applies the market's swap fee factor to amount, which may be a
// token amount or USD. Swaps that improve pool balance pay the lower factor.
func GetSwapFee(m *models.MarketInfo, amount *big.Int, forPositiveImpact bool) *big.Int {
	factor := m.SwapFeeFactorForNegativeImpact
	if forPositiveImpact {
		factor = m.SwapFeeFactorForPositiveImpact
	}
	return numbers.ApplyFactor(amount, factor)
}

// ReferralInfo carries the trader's referral tier factors.
type ReferralInfo struct {
	TotalRebateFactor *big.Int
	DiscountFactor    *big.Int
}

type PositionFee struct {
	PositionFeeUsd *big.Int
	DiscountUsd    *big.Int
	TotalRebateUsd *big.Int
	UiFeeUsd       *big.Int
}

// GetPositionFee prices the open/close fee of sizeDeltaUsd. The referral
// discount is a share of the rebate and is taken off the position fee.
func GetPositionFee(m *models.MarketInfo, sizeDeltaUsd *big.Int, forPositiveImpact bool, referral *ReferralInfo, uiFeeFactor *big.Int) PositionFee {
	factor := m.PositionFeeFactorForNegativeImpact
	if forPositiveImpact {
		factor = m.PositionFeeFactorForPositiveImpact
	}

	fee := PositionFee{
		PositionFeeUsd: numbers.ApplyFactor(sizeDeltaUsd, factor),
		DiscountUsd:    new(big.Int),
		TotalRebateUsd: new(big.Int),
		UiFeeUsd:       numbers.ApplyFactor(sizeDeltaUsd, numbers.OrZero(uiFeeFactor)),
	}
	if referral == nil {
		return fee
	}

	fee.TotalRebateUsd = numbers.ApplyFactor(fee.PositionFeeUsd, referral.TotalRebateFactor)
	fee.DiscountUsd = numbers.ApplyFactor(fee.TotalRebateUsd, referral.DiscountFactor)
	fee.PositionFeeUsd.Sub(fee.PositionFeeUsd, fee.DiscountUsd)
	return fee
}

// GetFundingFactorPerPeriod returns the signed funding factor a side accrues
// over periodSeconds. The paying side is negative; the receiving side shares
// the payment in proportion to its interest.
func GetFundingFactorPerPeriod(m *models.MarketInfo, isLong bool, periodSeconds int64) *big.Int {
	payingInterest, receivingInterest := m.ShortInterestUsd, m.LongInterestUsd
	if m.LongsPayShorts {
		payingInterest, receivingInterest = m.LongInterestUsd, m.ShortInterestUsd
	}
	largerInterest := numbers.Max(m.LongInterestUsd, m.ShortInterestUsd)

	forPaying := new(big.Int)
	if payingInterest.Sign() != 0 {
		forPaying = numbers.MulDiv(m.FundingFactorPerSecond, largerInterest, payingInterest)
	}
	forReceiving := new(big.Int)
	if receivingInterest.Sign() != 0 {
		forReceiving = numbers.MulDiv(forPaying, payingInterest, receivingInterest)
	}

	period := big.NewInt(periodSeconds)
	if m.LongsPayShorts == isLong {
		v := new(big.Int).Mul(forPaying, period)
		return v.Neg(v)
	}
	return forReceiving.Mul(forReceiving, period)
}

// GetFundingFeeRateUsd is the signed funding a position of sizeUsd accrues
// over periodSeconds.
func GetFundingFeeRateUsd(m *models.MarketInfo, isLong bool, sizeUsd *big.Int, periodSeconds int64) *big.Int {
	return numbers.ApplyFactor(sizeUsd, GetFundingFactorPerPeriod(m, isLong, periodSeconds))
}

func GetBorrowingFactorPerPeriod(m *models.MarketInfo, isLong bool, periodSeconds int64) *big.Int {
	perSecond := m.BorrowingFactorPerSecondForShorts
	if isLong {
		perSecond = m.BorrowingFactorPerSecondForLongs
	}
	if periodSeconds <= 0 {
		periodSeconds = 1
	}
	return new(big.Int).Mul(perSecond, big.NewInt(periodSeconds))
}

// GetBorrowingFeeRateUsd is the borrowing fee a position of sizeUsd pays over
// periodSeconds.
func GetBorrowingFeeRateUsd(m *models.MarketInfo, isLong bool, sizeUsd *big.Int, periodSeconds int64) *big.Int {
	return numbers.ApplyFactor(sizeUsd, GetBorrowingFactorPerPeriod(m, isLong, periodSeconds))
}

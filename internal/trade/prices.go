package trade

import (
	"math/big"

	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

// GetShouldUseMaxPrice reports whether the order executes against the ask.
// Opening a long and closing a short both buy the index token.
func GetShouldUseMaxPrice(isIncrease, isLong bool) bool {
	if isIncrease {
		return isLong
	}
	return !isLong
}

type AcceptablePriceParams struct {
	IsIncrease          bool
	IsLong              bool
	IndexPrice          *big.Int
	SizeDeltaUsd        *big.Int
	PriceImpactDeltaUsd *big.Int
}

type AcceptablePrice struct {
	Price *big.Int `json:"acceptable_price"`
	// PriceDeltaBps is how far Price moves against the trader, negative when
	// the impact is in the trader's favor.
	PriceDeltaBps *big.Int `json:"acceptable_price_delta_bps"`
}

// GetAcceptablePrice moves the index price by the position price impact:
// a negative impact raises the price a buyer accepts and lowers the price a
// seller accepts.
func GetAcceptablePrice(p AcceptablePriceParams) AcceptablePrice {
	if p.IndexPrice == nil || p.IndexPrice.Sign() == 0 || p.SizeDeltaUsd == nil || p.SizeDeltaUsd.Sign() <= 0 {
		return AcceptablePrice{Price: numbers.OrZero(p.IndexPrice), PriceDeltaBps: new(big.Int)}
	}

	useMax := GetShouldUseMaxPrice(p.IsIncrease, p.IsLong)
	impact := numbers.OrZero(p.PriceImpactDeltaUsd)
	if useMax {
		impact = new(big.Int).Neg(impact)
	}

	price := numbers.MulDiv(p.IndexPrice, new(big.Int).Add(p.SizeDeltaUsd, impact), p.SizeDeltaUsd)

	delta := new(big.Int).Sub(price, p.IndexPrice)
	if !useMax {
		delta.Neg(delta)
	}

	return AcceptablePrice{
		Price:         price,
		PriceDeltaBps: numbers.BasisPoints(delta, p.IndexPrice, false),
	}
}

// ApplySlippageToPrice widens price by slippageBps in the direction the order
// is willing to trade.
func ApplySlippageToPrice(slippageBps uint16, price *big.Int, isIncrease, isLong bool) *big.Int {
	bps := int64(numbers.BasisPointsDivisor) - int64(slippageBps)
	if GetShouldUseMaxPrice(isIncrease, isLong) {
		bps = int64(numbers.BasisPointsDivisor) + int64(slippageBps)
	}
	return numbers.MulDiv(price, big.NewInt(bps), big.NewInt(numbers.BasisPointsDivisor))
}

// ApplySlippageToMinOut lowers an expected output to the minimum an order
// accepts.
func ApplySlippageToMinOut(slippageBps uint16, minOutputAmount *big.Int) *big.Int {
	return numbers.ApplySlippage(minOutputAmount, slippageBps)
}

// Package gm previews liquidity deposits into and withdrawals from a market.
package gm

import (
	"math/big"

	"github.com/aman-zulfiqar/perps-swap-core/internal/fees"
	"github.com/aman-zulfiqar/perps-swap-core/internal/markets"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

var oneUsd = numbers.ExpandDecimals(1, numbers.UsdDecimals)

// UsdToMarketTokenAmount converts usd into market tokens at poolValue. The
// first deposit into an empty market mints at $1 per token, on top of any
// value already sitting in the pool.
func UsdToMarketTokenAmount(poolValue, supply, usd *big.Int) *big.Int {
	if supply.Sign() == 0 {
		total := new(big.Int).Add(usd, numbers.Max(poolValue, new(big.Int)))
		return numbers.ConvertToTokenAmount(total, markets.MarketTokenDecimals, oneUsd)
	}
	if poolValue.Sign() <= 0 {
		return new(big.Int)
	}
	return numbers.MulDiv(supply, usd, poolValue)
}

// MarketTokenAmountToUsd values amount market tokens at poolValue.
func MarketTokenAmountToUsd(poolValue, supply, amount *big.Int) *big.Int {
	if supply.Sign() == 0 {
		return new(big.Int)
	}
	return numbers.MulDiv(poolValue, amount, supply)
}

type DepositParams struct {
	LongTokenAmount  *big.Int
	ShortTokenAmount *big.Int
	// UiFeeFactor is the front end's fee as a 1e30 factor, nil for none.
	UiFeeFactor *big.Int
}

// GetDepositAmounts previews depositing collateral into m. Collateral is
// valued at min price and market tokens are minted against the maximized
// pool value. Balancing the pools earns the positive impact and fee rate.
// Single-token markets take the whole deposit on the long side and carry no
// swap impact.
func GetDepositAmounts(m *models.MarketInfo, p DepositParams) models.DepositAmounts {
	longAmount := numbers.OrZero(p.LongTokenAmount)
	shortAmount := numbers.OrZero(p.ShortTokenAmount)
	if m.IsSameCollaterals {
		longAmount = numbers.Sum(longAmount, shortAmount)
		shortAmount = new(big.Int)
	}

	longUsd := numbers.ConvertToUsd(longAmount, m.LongToken.Decimals, m.LongToken.Prices.MinPrice)
	shortUsd := numbers.ConvertToUsd(shortAmount, m.ShortToken.Decimals, m.ShortToken.Prices.MinPrice)
	totalUsd := new(big.Int).Add(longUsd, shortUsd)

	impact := new(big.Int)
	if !m.IsSameCollaterals {
		if v, err := fees.GetPriceImpactForSwap(m, m.LongToken, m.ShortToken, longUsd, shortUsd, true); err == nil {
			impact = v
		}
	}

	swapFeeUsd := fees.GetSwapFee(m, totalUsd, impact.Sign() > 0)
	uiFeeUsd := numbers.ApplyFactor(totalUsd, numbers.OrZero(p.UiFeeFactor))

	marketTokenUsd := new(big.Int).Add(totalUsd, impact)
	marketTokenUsd.Sub(marketTokenUsd, swapFeeUsd)
	marketTokenUsd.Sub(marketTokenUsd, uiFeeUsd)
	if marketTokenUsd.Sign() < 0 {
		marketTokenUsd.SetInt64(0)
	}

	poolValue := markets.GetPoolValue(m, true)

	return models.DepositAmounts{
		LongTokenAmount:         longAmount,
		LongTokenUsd:            longUsd,
		ShortTokenAmount:        shortAmount,
		ShortTokenUsd:           shortUsd,
		MarketTokenAmount:       UsdToMarketTokenAmount(poolValue, m.MarketTokenSupply, marketTokenUsd),
		MarketTokenUsd:          marketTokenUsd,
		SwapFeeUsd:              swapFeeUsd,
		UiFeeUsd:                uiFeeUsd,
		SwapPriceImpactDeltaUsd: impact,
	}
}

type WithdrawalParams struct {
	MarketTokenAmount *big.Int
	UiFeeFactor       *big.Int
}

// GetWithdrawalAmounts previews burning market tokens. The tokens are valued
// against the minimized pool value and paid out pro rata to the pools at mid
// price, less the negative-impact swap fee and the UI fee, and converted at
// max price.
func GetWithdrawalAmounts(m *models.MarketInfo, p WithdrawalParams) models.WithdrawalAmounts {
	amount := numbers.OrZero(p.MarketTokenAmount)
	marketTokenUsd := MarketTokenAmountToUsd(markets.GetPoolValue(m, false), m.MarketTokenSupply, amount)
	if marketTokenUsd.Sign() < 0 {
		marketTokenUsd.SetInt64(0)
	}

	longPoolUsd := markets.GetPoolUsdWithoutPnl(m, true, markets.MidPrice)
	shortPoolUsd := markets.GetPoolUsdWithoutPnl(m, false, markets.MidPrice)
	totalPoolUsd := new(big.Int).Add(longPoolUsd, shortPoolUsd)

	out := models.WithdrawalAmounts{
		MarketTokenAmount: amount,
		MarketTokenUsd:    marketTokenUsd,
		SwapFeeUsd:        new(big.Int),
		UiFeeUsd:          new(big.Int),
	}

	var legs [2]struct{ usd, amount *big.Int }
	for i, side := range []struct {
		poolUsd *big.Int
		token   models.TokenData
	}{
		{longPoolUsd, m.LongToken},
		{shortPoolUsd, m.ShortToken},
	} {
		usd := numbers.MulDiv(marketTokenUsd, side.poolUsd, totalPoolUsd)
		swapFee := fees.GetSwapFee(m, usd, false)
		uiFee := numbers.ApplyFactor(usd, numbers.OrZero(p.UiFeeFactor))
		out.SwapFeeUsd.Add(out.SwapFeeUsd, swapFee)
		out.UiFeeUsd.Add(out.UiFeeUsd, uiFee)

		usd.Sub(usd, swapFee)
		usd.Sub(usd, uiFee)
		legs[i].usd = usd
		legs[i].amount = numbers.OrZero(numbers.ConvertToTokenAmount(usd, side.token.Decimals, side.token.Prices.MaxPrice))
	}

	out.LongTokenUsd, out.LongTokenAmount = legs[0].usd, legs[0].amount
	out.ShortTokenUsd, out.ShortTokenAmount = legs[1].usd, legs[1].amount
	return out
}

// DepositFees summarizes the fees of a deposit preview against the deposited
// collateral.
func DepositFees(a models.DepositAmounts) models.GmSwapFees {
	return fees.GetGmSwapFees(fees.GmSwapFeesParams{
		BasisUsd:                numbers.Sum(a.LongTokenUsd, a.ShortTokenUsd),
		MarketTokenUsd:          a.MarketTokenUsd,
		SwapFeeUsd:              a.SwapFeeUsd,
		SwapPriceImpactDeltaUsd: a.SwapPriceImpactDeltaUsd,
		UiFeeUsd:                a.UiFeeUsd,
	})
}

// WithdrawalFees summarizes the fees of a withdrawal preview against the
// burned market token value.
func WithdrawalFees(a models.WithdrawalAmounts) models.GmSwapFees {
	return fees.GetGmSwapFees(fees.GmSwapFeesParams{
		BasisUsd:                a.MarketTokenUsd,
		MarketTokenUsd:          a.MarketTokenUsd,
		SwapFeeUsd:              a.SwapFeeUsd,
		SwapPriceImpactDeltaUsd: new(big.Int),
		UiFeeUsd:                a.UiFeeUsd,
	})
}

// Package swap builds the market swap graph of a snapshot and finds
// deterministic multi-hop swap paths through it.
package swap

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aman-zulfiqar/perps-swap-core/internal/fees"
	"github.com/aman-zulfiqar/perps-swap-core/internal/markets"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

func outOfLiquidity(m *models.MarketInfo, tokenIn, tokenOut common.Address, usdIn, amountIn *big.Int) models.SwapStats {
	return models.SwapStats{
		MarketAddress:       m.MarketTokenAddress,
		TokenInAddress:      tokenIn,
		TokenOutAddress:     tokenOut,
		SwapFeeAmount:       new(big.Int),
		SwapFeeUsd:          new(big.Int),
		PriceImpactDeltaUsd: new(big.Int),
		AmountIn:            amountIn,
		AmountInAfterFees:   amountIn,
		UsdIn:               usdIn,
		AmountOut:           new(big.Int),
		UsdOut:              new(big.Int),
		IsOutLiquidity:      true,
	}
}

// GetSwapStats prices one hop of usdIn through market m. The input is valued
// at its min price and the output at its max price. A hop that cannot be
// priced, or whose output exceeds the available liquidity, is reported
// IsOutLiquidity.
func GetSwapStats(m *models.MarketInfo, tokenInAddr, tokenOutAddr common.Address, usdIn *big.Int, applyPriceImpact bool) models.SwapStats {
	poolType, ok := markets.GetTokenPoolType(m.Market, tokenInAddr)
	tokenOut := markets.GetOppositeCollateral(m, tokenInAddr)
	if !ok || tokenOut == nil || tokenOut.Address != tokenOutAddr {
		return outOfLiquidity(m, tokenInAddr, tokenOutAddr, usdIn, new(big.Int))
	}
	tokenIn := m.ShortToken
	if poolType == markets.PoolLong {
		tokenIn = m.LongToken
	}

	priceIn := tokenIn.Prices.MinPrice
	priceOut := tokenOut.Prices.MaxPrice
	amountIn := numbers.OrZero(numbers.ConvertToTokenAmount(usdIn, tokenIn.Decimals, priceIn))

	impact, err := fees.GetPriceImpactForSwap(m, tokenIn, *tokenOut, usdIn, new(big.Int).Neg(usdIn), false)
	if err != nil {
		return outOfLiquidity(m, tokenInAddr, tokenOutAddr, usdIn, amountIn)
	}

	positive := impact.Sign() > 0
	swapFeeAmount := fees.GetSwapFee(m, amountIn, positive)
	swapFeeUsd := fees.GetSwapFee(m, usdIn, positive)
	usdOut := new(big.Int).Sub(usdIn, swapFeeUsd)

	amountInAfterFees := new(big.Int).Sub(amountIn, swapFeeAmount)
	var cappedImpactUsd *big.Int
	if positive {
		amount, err := fees.ApplySwapImpactWithCap(m, *tokenOut, impact)
		if err != nil {
			return outOfLiquidity(m, tokenInAddr, tokenOutAddr, usdIn, amountIn)
		}
		cappedImpactUsd = numbers.ConvertToUsd(amount, tokenOut.Decimals, priceOut)
	} else {
		amount, err := fees.ApplySwapImpactWithCap(m, tokenIn, impact)
		if err != nil {
			return outOfLiquidity(m, tokenInAddr, tokenOutAddr, usdIn, amountIn)
		}
		cappedImpactUsd = numbers.ConvertToUsd(amount, tokenIn.Decimals, priceIn)
		if applyPriceImpact {
			amountInAfterFees.Add(amountInAfterFees, amount)
		}
	}

	if applyPriceImpact {
		usdOut.Add(usdOut, cappedImpactUsd)
	}
	if usdOut.Sign() < 0 {
		usdOut.SetInt64(0)
	}

	outPool, _ := markets.GetTokenPoolType(m.Market, tokenOutAddr)
	liquidity := markets.GetAvailableUsdLiquidityForCollateral(m, outPool == markets.PoolLong)

	return models.SwapStats{
		MarketAddress:       m.MarketTokenAddress,
		TokenInAddress:      tokenInAddr,
		TokenOutAddress:     tokenOutAddr,
		SwapFeeAmount:       swapFeeAmount,
		SwapFeeUsd:          swapFeeUsd,
		PriceImpactDeltaUsd: cappedImpactUsd,
		AmountIn:            amountIn,
		AmountInAfterFees:   amountInAfterFees,
		UsdIn:               usdIn,
		AmountOut:           numbers.OrZero(numbers.ConvertToTokenAmount(usdOut, tokenOut.Decimals, priceOut)),
		UsdOut:              usdOut,
		IsOutLiquidity:      liquidity.Cmp(usdOut) < 0,
	}
}

// GetSwapPathStats chains GetSwapStats along a market path starting from
// tokenIn; each hop's output feeds the next. It returns nil for an empty path
// or when a market is missing or does not hold the hop's input token.
func GetSwapPathStats(ms models.MarketsInfoData, path []common.Address, tokenIn common.Address, usdIn *big.Int, applyPriceImpact bool) *models.SwapPathStats {
	if len(path) == 0 {
		return nil
	}

	steps := make([]models.SwapStats, 0, len(path))
	usd := usdIn
	current := tokenIn
	totalImpact := new(big.Int)
	totalFee := new(big.Int)

	for _, addr := range path {
		m, ok := ms.Get(addr)
		if !ok {
			return nil
		}
		next := markets.GetOppositeCollateral(&m, current)
		if next == nil {
			return nil
		}

		step := GetSwapStats(&m, current, next.Address, usd, applyPriceImpact)
		steps = append(steps, step)

		current = step.TokenOutAddress
		usd = step.UsdOut
		totalImpact.Add(totalImpact, step.PriceImpactDeltaUsd)
		totalFee.Add(totalFee, step.SwapFeeUsd)
	}

	last := steps[len(steps)-1]
	totalFees := new(big.Int).Sub(totalImpact, totalFee)

	return &models.SwapPathStats{
		SwapPath:                     append([]common.Address(nil), path...),
		SwapSteps:                    steps,
		TokenInAddress:               tokenIn,
		TokenOutAddress:              current,
		TotalSwapPriceImpactDeltaUsd: totalImpact,
		TotalSwapFeeUsd:              totalFee,
		TotalFeesDeltaUsd:            totalFees,
		UsdOut:                       last.UsdOut,
		AmountOut:                    last.AmountOut,
	}
}

// GetMaxSwapPathLiquidity is the smallest output-side liquidity along a path,
// or zero when the path cannot be walked.
func GetMaxSwapPathLiquidity(ms models.MarketsInfoData, path []common.Address, tokenIn common.Address) *big.Int {
	if len(path) == 0 {
		return new(big.Int)
	}

	var minLiquidity *big.Int
	current := tokenIn
	for _, addr := range path {
		m, ok := ms.Get(addr)
		if !ok {
			return new(big.Int)
		}
		next := markets.GetOppositeCollateral(&m, current)
		if next == nil {
			return new(big.Int)
		}
		outPool, _ := markets.GetTokenPoolType(m.Market, next.Address)
		liquidity := markets.GetAvailableUsdLiquidityForCollateral(&m, outPool == markets.PoolLong)
		if minLiquidity == nil || liquidity.Cmp(minLiquidity) < 0 {
			minLiquidity = liquidity
		}
		current = next.Address
	}
	return minLiquidity
}

// GetSwapPathOutputAddresses walks path from tokenIn and returns the token
// received and the last market used. An empty path outputs tokenIn itself
// with a zero market. ok is false when a market is missing or does not hold
// the hop's input token.
func GetSwapPathOutputAddresses(ms models.MarketsInfoData, tokenIn common.Address, path []common.Address) (outToken, outMarket common.Address, ok bool) {
	current := tokenIn
	for _, addr := range path {
		m, found := ms.Get(addr)
		if !found {
			return common.Address{}, common.Address{}, false
		}
		next := markets.GetOppositeCollateral(&m, current)
		if next == nil {
			return common.Address{}, common.Address{}, false
		}
		current = next.Address
		outMarket = addr
	}
	return current, outMarket, true
}

package fees

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/aman-zulfiqar/perps-swap-core/internal/markets"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

var (
	ErrNegativePool = errors.New("negative pool amount")
	ErrInvalidSwap  = errors.New("invalid tokens to swap")
)

// ImpactParams describes a pool or open interest balance before and after a trade.
type ImpactParams struct {
	CurrentLongUsd  *big.Int
	CurrentShortUsd *big.Int
	NextLongUsd     *big.Int
	NextShortUsd    *big.Int

	FactorPositive *big.Int
	FactorNegative *big.Int
	ExponentFactor *big.Int

	// FallbackToZero returns zero impact instead of ErrNegativePool.
	FallbackToZero bool
}

// GetPriceImpactUsd prices the change in imbalance between the two sides.
// Moving toward balance is positive, away from it negative. When the trade
// flips which side is larger, the improvement and the new imbalance are
// priced with their own factors.
func GetPriceImpactUsd(p ImpactParams) (*big.Int, error) {
	if p.NextLongUsd.Sign() < 0 || p.NextShortUsd.Sign() < 0 {
		if p.FallbackToZero {
			return new(big.Int), nil
		}
		return nil, ErrNegativePool
	}

	currentDiff := new(big.Int).Sub(p.CurrentLongUsd, p.CurrentShortUsd)
	currentDiff.Abs(currentDiff)
	nextDiff := new(big.Int).Sub(p.NextLongUsd, p.NextShortUsd)
	nextDiff.Abs(nextDiff)

	sameSide := (p.CurrentLongUsd.Cmp(p.CurrentShortUsd) < 0) == (p.NextLongUsd.Cmp(p.NextShortUsd) < 0)
	if sameSide {
		positive := nextDiff.Cmp(currentDiff) < 0
		factor := p.FactorNegative
		if positive {
			factor = p.FactorPositive
		}
		current := numbers.ApplyImpactFactor(currentDiff, factor, p.ExponentFactor)
		next := numbers.ApplyImpactFactor(nextDiff, factor, p.ExponentFactor)
		delta := current.Sub(current, next)
		delta.Abs(delta)
		if !positive {
			delta.Neg(delta)
		}
		return delta, nil
	}

	positiveImpact := numbers.ApplyImpactFactor(currentDiff, p.FactorPositive, p.ExponentFactor)
	negativeImpact := numbers.ApplyImpactFactor(nextDiff, p.FactorNegative, p.ExponentFactor)
	delta := new(big.Int).Sub(positiveImpact, negativeImpact)
	return delta, nil
}

// GetPriceImpactForSwap prices a swap that adds usdDeltaA of tokenA to the
// pool and usdDeltaB of tokenB (negative when removed). Pools are valued at
// mid price.
func GetPriceImpactForSwap(m *models.MarketInfo, tokenA, tokenB models.TokenData, usdDeltaA, usdDeltaB *big.Int, fallbackToZero bool) (*big.Int, error) {
	poolA, okA := markets.GetTokenPoolType(m.Market, tokenA.Address)
	poolB, okB := markets.GetTokenPoolType(m.Market, tokenB.Address)
	if !okA || !okB || (poolA == poolB && !m.IsSameCollaterals) {
		return nil, fmt.Errorf("%w: market %s: %s -> %s", ErrInvalidSwap, m.MarketTokenAddress.Hex(), tokenA.Address.Hex(), tokenB.Address.Hex())
	}

	longToken, shortToken := tokenA, tokenB
	longDelta, shortDelta := usdDeltaA, usdDeltaB
	if poolA != markets.PoolLong {
		longToken, shortToken = tokenB, tokenA
		longDelta, shortDelta = usdDeltaB, usdDeltaA
	}

	longPoolUsd := numbers.ConvertToUsd(m.LongPoolAmount, longToken.Decimals, markets.PickPrice(longToken.Prices, markets.MidPrice))
	shortPoolUsd := numbers.ConvertToUsd(m.ShortPoolAmount, shortToken.Decimals, markets.PickPrice(shortToken.Prices, markets.MidPrice))

	return GetPriceImpactUsd(ImpactParams{
		CurrentLongUsd:  longPoolUsd,
		CurrentShortUsd: shortPoolUsd,
		NextLongUsd:     new(big.Int).Add(longPoolUsd, longDelta),
		NextShortUsd:    new(big.Int).Add(shortPoolUsd, shortDelta),
		FactorPositive:  m.SwapImpactFactorPositive,
		FactorNegative:  m.SwapImpactFactorNegative,
		ExponentFactor:  m.SwapImpactExponentFactor,
		FallbackToZero:  fallbackToZero,
	})
}

// ApplySwapImpactWithCap converts a swap impact into an amount of token.
// Positive impact is paid from the swap impact pool and capped by it, rounded
// down; negative impact is charged to the trader, rounded up.
func ApplySwapImpactWithCap(m *models.MarketInfo, token models.TokenData, priceImpactDeltaUsd *big.Int) (*big.Int, error) {
	poolType, ok := markets.GetTokenPoolType(m.Market, token.Address)
	if !ok {
		return nil, fmt.Errorf("%w: token %s is not a collateral of market %s", ErrInvalidSwap, token.Address.Hex(), m.MarketTokenAddress.Hex())
	}

	if priceImpactDeltaUsd.Sign() > 0 {
		amount := numbers.ConvertToTokenAmount(priceImpactDeltaUsd, token.Decimals, token.Prices.MaxPrice)
		maxAmount := m.SwapImpactPoolAmountShort
		if poolType == markets.PoolLong {
			maxAmount = m.SwapImpactPoolAmountLong
		}
		return numbers.Min(amount, maxAmount), nil
	}

	scaled := new(big.Int).Mul(priceImpactDeltaUsd, numbers.ExpandDecimals(1, token.Decimals))
	return numbers.RoundUpMagnitudeDivision(scaled, token.Prices.MinPrice), nil
}

// GetPriceImpactForPosition prices opening sizeDeltaUsd (negative to close)
// against the market's open interest balance.
func GetPriceImpactForPosition(m *models.MarketInfo, sizeDeltaUsd *big.Int, isLong, fallbackToZero bool) (*big.Int, error) {
	nextLong, nextShort := new(big.Int).Set(m.LongInterestUsd), new(big.Int).Set(m.ShortInterestUsd)
	if isLong {
		nextLong.Add(nextLong, sizeDeltaUsd)
	} else {
		nextShort.Add(nextShort, sizeDeltaUsd)
	}

	return GetPriceImpactUsd(ImpactParams{
		CurrentLongUsd:  m.LongInterestUsd,
		CurrentShortUsd: m.ShortInterestUsd,
		NextLongUsd:     nextLong,
		NextShortUsd:    nextShort,
		FactorPositive:  m.PositionImpactFactorPositive,
		FactorNegative:  m.PositionImpactFactorNegative,
		ExponentFactor:  m.PositionImpactExponentFactor,
		FallbackToZero:  fallbackToZero,
	})
}

// GetCappedPositionImpactUsd caps a positive position impact by the position
// impact pool and, when set, by MaxPositionImpactFactorPositive of the size.
func GetCappedPositionImpactUsd(m *models.MarketInfo, sizeDeltaUsd *big.Int, isLong, fallbackToZero bool) (*big.Int, error) {
	impact, err := GetPriceImpactForPosition(m, sizeDeltaUsd, isLong, fallbackToZero)
	if err != nil {
		return nil, err
	}
	if impact.Sign() < 0 {
		return impact, nil
	}

	byPool := numbers.ConvertToUsd(m.PositionImpactPoolAmount, m.IndexToken.Decimals, m.IndexToken.Prices.MinPrice)
	capped := numbers.Min(impact, byPool)

	if m.MaxPositionImpactFactorPositive != nil {
		byFactor := numbers.ApplyFactor(numbers.Abs(sizeDeltaUsd), m.MaxPositionImpactFactorPositive)
		capped = numbers.Min(capped, byFactor)
	}
	return capped, nil
}

package models

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Market is the identity part of a market every consumer may rely on.
type Market struct {
	MarketTokenAddress common.Address `json:"market_token_address"`
	IndexTokenAddress  common.Address `json:"index_token_address"`
	LongTokenAddress   common.Address `json:"long_token_address"`
	ShortTokenAddress  common.Address `json:"short_token_address"`
	Name               string         `json:"name"`
	IsSameCollaterals  bool           `json:"is_same_collaterals"`
	IsSpotOnly         bool           `json:"is_spot_only"`
}

// MarketInfo is one market's state at a snapshot tick. Amounts are in the
// owning token's decimals, factors in 1e30 precision, *Usd fields in 1e30 USD.
//
// Every *big.Int is required unless listed under "Optional"; Validate enforces
// that once when the snapshot enters the process.
type MarketInfo struct {
	Market

	LongToken  TokenData `json:"long_token"`
	ShortToken TokenData `json:"short_token"`
	IndexToken TokenData `json:"index_token"`
	IsDisabled bool      `json:"is_disabled"`

	// Pools
	LongPoolAmount            *big.Int `json:"long_pool_amount"`
	ShortPoolAmount           *big.Int `json:"short_pool_amount"`
	SwapImpactPoolAmountLong  *big.Int `json:"swap_impact_pool_amount_long"`
	SwapImpactPoolAmountShort *big.Int `json:"swap_impact_pool_amount_short"`
	PositionImpactPoolAmount  *big.Int `json:"position_impact_pool_amount"`
	MarketTokenSupply         *big.Int `json:"market_token_supply"`

	// Reserves and open interest caps
	ReserveFactorLong              *big.Int `json:"reserve_factor_long"`
	ReserveFactorShort             *big.Int `json:"reserve_factor_short"`
	OpenInterestReserveFactorLong  *big.Int `json:"open_interest_reserve_factor_long"`
	OpenInterestReserveFactorShort *big.Int `json:"open_interest_reserve_factor_short"`
	MaxOpenInterestLong            *big.Int `json:"max_open_interest_long"`
	MaxOpenInterestShort           *big.Int `json:"max_open_interest_short"`

	// Open interest
	LongInterestUsd       *big.Int `json:"long_interest_usd"`
	ShortInterestUsd      *big.Int `json:"short_interest_usd"`
	LongInterestInTokens  *big.Int `json:"long_interest_in_tokens"`
	ShortInterestInTokens *big.Int `json:"short_interest_in_tokens"`

	// Fees
	SwapFeeFactorForPositiveImpact     *big.Int `json:"swap_fee_factor_for_positive_impact"`
	SwapFeeFactorForNegativeImpact     *big.Int `json:"swap_fee_factor_for_negative_impact"`
	PositionFeeFactorForPositiveImpact *big.Int `json:"position_fee_factor_for_positive_impact"`
	PositionFeeFactorForNegativeImpact *big.Int `json:"position_fee_factor_for_negative_impact"`

	// Price impact
	SwapImpactFactorPositive     *big.Int `json:"swap_impact_factor_positive"`
	SwapImpactFactorNegative     *big.Int `json:"swap_impact_factor_negative"`
	SwapImpactExponentFactor     *big.Int `json:"swap_impact_exponent_factor"`
	PositionImpactFactorPositive *big.Int `json:"position_impact_factor_positive"`
	PositionImpactFactorNegative *big.Int `json:"position_impact_factor_negative"`
	PositionImpactExponentFactor *big.Int `json:"position_impact_exponent_factor"`

	// Funding and borrowing, per second
	FundingFactorPerSecond            *big.Int `json:"funding_factor_per_second"`
	LongsPayShorts                    bool     `json:"longs_pay_shorts"`
	BorrowingFactorPerSecondForLongs  *big.Int `json:"borrowing_factor_per_second_for_longs"`
	BorrowingFactorPerSecondForShorts *big.Int `json:"borrowing_factor_per_second_for_shorts"`
	TotalBorrowingFees                *big.Int `json:"total_borrowing_fees"`
	BorrowingFeePoolFactor            *big.Int `json:"borrowing_fee_pool_factor"`

	// Optional. nil means the market carries no cap for that side.
	MaxPnlFactorForTradersLong  *big.Int `json:"max_pnl_factor_for_traders_long,omitempty"`
	MaxPnlFactorForTradersShort *big.Int `json:"max_pnl_factor_for_traders_short,omitempty"`
	// Optional. nil falls back to the protocol default leverage.
	MinCollateralFactor *big.Int `json:"min_collateral_factor,omitempty"`
	// Optional. nil leaves positive position impact capped by the impact pool only.
	MaxPositionImpactFactorPositive *big.Int `json:"max_position_impact_factor_positive,omitempty"`
}

type MarketsInfoData map[common.Address]MarketInfo

func (m MarketsInfoData) Get(addr common.Address) (MarketInfo, bool) {
	mi, ok := m[addr]
	return mi, ok
}

type namedAmount struct {
	name  string
	value *big.Int
}

func (m *MarketInfo) requiredFields() []namedAmount {
	return []namedAmount{
		{"long_pool_amount", m.LongPoolAmount},
		{"short_pool_amount", m.ShortPoolAmount},
		{"swap_impact_pool_amount_long", m.SwapImpactPoolAmountLong},
		{"swap_impact_pool_amount_short", m.SwapImpactPoolAmountShort},
		{"position_impact_pool_amount", m.PositionImpactPoolAmount},
		{"market_token_supply", m.MarketTokenSupply},
		{"reserve_factor_long", m.ReserveFactorLong},
		{"reserve_factor_short", m.ReserveFactorShort},
		{"open_interest_reserve_factor_long", m.OpenInterestReserveFactorLong},
		{"open_interest_reserve_factor_short", m.OpenInterestReserveFactorShort},
		{"max_open_interest_long", m.MaxOpenInterestLong},
		{"max_open_interest_short", m.MaxOpenInterestShort},
		{"long_interest_usd", m.LongInterestUsd},
		{"short_interest_usd", m.ShortInterestUsd},
		{"long_interest_in_tokens", m.LongInterestInTokens},
		{"short_interest_in_tokens", m.ShortInterestInTokens},
		{"swap_fee_factor_for_positive_impact", m.SwapFeeFactorForPositiveImpact},
		{"swap_fee_factor_for_negative_impact", m.SwapFeeFactorForNegativeImpact},
		{"position_fee_factor_for_positive_impact", m.PositionFeeFactorForPositiveImpact},
		{"position_fee_factor_for_negative_impact", m.PositionFeeFactorForNegativeImpact},
		{"swap_impact_factor_positive", m.SwapImpactFactorPositive},
		{"swap_impact_factor_negative", m.SwapImpactFactorNegative},
		{"swap_impact_exponent_factor", m.SwapImpactExponentFactor},
		{"position_impact_factor_positive", m.PositionImpactFactorPositive},
		{"position_impact_factor_negative", m.PositionImpactFactorNegative},
		{"position_impact_exponent_factor", m.PositionImpactExponentFactor},
		{"funding_factor_per_second", m.FundingFactorPerSecond},
		{"borrowing_factor_per_second_for_longs", m.BorrowingFactorPerSecondForLongs},
		{"borrowing_factor_per_second_for_shorts", m.BorrowingFactorPerSecondForShorts},
		{"total_borrowing_fees", m.TotalBorrowingFees},
		{"borrowing_fee_pool_factor", m.BorrowingFeePoolFactor},
	}
}

// Validate checks presence of every required field and the token identities.
func (m *MarketInfo) Validate() error {
	for _, f := range m.requiredFields() {
		if f.value == nil {
			return fmt.Errorf("%w: market %s: missing %s", ErrInvalidSnapshot, m.MarketTokenAddress.Hex(), f.name)
		}
	}
	if m.LongToken.Address != m.LongTokenAddress || m.ShortToken.Address != m.ShortTokenAddress || m.IndexToken.Address != m.IndexTokenAddress {
		return fmt.Errorf("%w: market %s: token data does not match market addresses", ErrInvalidSnapshot, m.MarketTokenAddress.Hex())
	}
	for _, t := range []TokenData{m.LongToken, m.ShortToken, m.IndexToken} {
		if err := t.Prices.Validate(); err != nil {
			return fmt.Errorf("%w: market %s: token %s: %v", ErrInvalidSnapshot, m.MarketTokenAddress.Hex(), t.Symbol, err)
		}
	}
	return nil
}

// Validate reports missing prices and crossed books.
func (p TokenPrices) Validate() error {
	if p.MinPrice == nil || p.MaxPrice == nil {
		return fmt.Errorf("missing prices")
	}
	if p.MinPrice.Cmp(p.MaxPrice) > 0 {
		return fmt.Errorf("min price %s above max price %s", p.MinPrice, p.MaxPrice)
	}
	return nil
}

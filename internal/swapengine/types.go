package swapengine

import (
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/swap"
)

var (
	ErrInvalidIntent = errors.New("invalid intent")
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidMarket = errors.New("invalid market")
	ErrNoRoute       = errors.New("no swap route")
)

// SwapIntent is a request to price a token swap
type SwapIntent struct {
	// Token symbol (e.g. "WETH") or 0x address
	TokenIn  string `json:"token_in"`
	TokenOut string `json:"token_out"`
	// Amount of TokenIn in human-readable units (e.g. "1.5")
	Amount string `json:"amount"`

	// Optional; risk defaults apply when nil
	SlippageBps       *uint16 `json:"slippage_bps,omitempty"`
	MaxPriceImpactBps *uint16 `json:"max_price_impact_bps,omitempty"`

	// Route ranking keys ("liquidity", "length"); engine default when empty
	Order []string `json:"order,omitempty"`
}

// IncreaseIntent is a request to price opening or growing a position
type IncreaseIntent struct {
	Market           string `json:"market"`
	CollateralToken  string `json:"collateral_token"`
	CollateralAmount string `json:"collateral_amount"`
	// Leverage multiple, e.g. "5" or "2.5"
	Leverage string `json:"leverage"`
	IsLong   bool   `json:"is_long"`

	SlippageBps *uint16 `json:"slippage_bps,omitempty"`
}

// SwapParams is a SwapIntent resolved against a snapshot
type SwapParams struct {
	TokenIn  models.TokenData
	TokenOut models.TokenData
	AmountIn *big.Int

	SlippageBps       uint16
	MaxPriceImpactBps uint16
	Order             []swap.RouteOrder
}

// IncreaseParams is an IncreaseIntent resolved against a snapshot
type IncreaseParams struct {
	Market           models.MarketInfo
	CollateralToken  models.TokenData
	CollateralAmount *big.Int
	// LeverageBps is the leverage in basis points, 10000 = 1x
	LeverageBps *big.Int
	IsLong      bool

	SlippageBps uint16
}

// SwapQuote is the priced result of a SwapIntent
type SwapQuote struct {
	ID              string    `json:"id"`
	ChainID         int64     `json:"chain_id"`
	SnapshotVersion uint64    `json:"snapshot_version"`
	QuotedAt        time.Time `json:"quoted_at"`

	TokenIn  models.Token `json:"token_in"`
	TokenOut models.Token `json:"token_out"`

	AmountIn     *big.Int `json:"amount_in"`
	UsdIn        *big.Int `json:"usd_in"`
	AmountOut    *big.Int `json:"amount_out"`
	UsdOut       *big.Int `json:"usd_out"`
	MinAmountOut *big.Int `json:"min_amount_out"`

	// Human-readable renderings of the amounts above
	AmountOutFormatted    string `json:"amount_out_formatted"`
	MinAmountOutFormatted string `json:"min_amount_out_formatted"`
	UsdOutFormatted       string `json:"usd_out_formatted"`

	SwapPath       []common.Address      `json:"swap_path"`
	Stats          *models.SwapPathStats `json:"stats"`
	Fees           models.TradeFees      `json:"fees"`
	PriceImpactBps int64                 `json:"price_impact_bps"`
	SlippageBps    uint16                `json:"slippage_bps"`
	ExecutionFee   *models.ExecutionFee  `json:"execution_fee,omitempty"`

	Risk *RiskCheckResult `json:"risk"`
}

// IncreaseQuote is the priced result of an IncreaseIntent
type IncreaseQuote struct {
	ID              string    `json:"id"`
	ChainID         int64     `json:"chain_id"`
	SnapshotVersion uint64    `json:"snapshot_version"`
	QuotedAt        time.Time `json:"quoted_at"`

	Market          common.Address `json:"market"`
	MarketName      string         `json:"market_name"`
	IsLong          bool           `json:"is_long"`
	CollateralToken models.Token   `json:"collateral_token"`
	// TargetCollateralToken is the market collateral the position holds.
	// It differs from CollateralToken when a swap is needed first.
	TargetCollateralToken models.Token `json:"target_collateral_token"`

	CollateralAmount   *big.Int `json:"collateral_amount"`
	CollateralUsd      *big.Int `json:"collateral_usd"`
	CollateralDeltaUsd *big.Int `json:"collateral_delta_usd"`
	SizeDeltaUsd       *big.Int `json:"size_delta_usd"`
	SizeDeltaInTokens  *big.Int `json:"size_delta_in_tokens"`
	LeverageBps        *big.Int `json:"leverage_bps"`
	MaxLeverageBps     *big.Int `json:"max_leverage_bps"`

	IndexPrice              *big.Int `json:"index_price"`
	AcceptablePrice         *big.Int `json:"acceptable_price"`
	AcceptablePriceDeltaBps *big.Int `json:"acceptable_price_delta_bps"`
	// The acceptable price after slippage, as the order would be sent
	OrderAcceptablePrice        *big.Int `json:"order_acceptable_price"`
	PositionPriceImpactDeltaUsd *big.Int `json:"position_price_impact_delta_usd"`

	BorrowingFeeUsdPerHour *big.Int `json:"borrowing_fee_usd_per_hour"`
	FundingFeeUsdPerHour   *big.Int `json:"funding_fee_usd_per_hour"`

	SwapPath     []common.Address      `json:"swap_path"`
	SwapStats    *models.SwapPathStats `json:"swap_stats,omitempty"`
	Fees         models.TradeFees      `json:"fees"`
	SlippageBps  uint16                `json:"slippage_bps"`
	ExecutionFee *models.ExecutionFee  `json:"execution_fee,omitempty"`

	Risk *RiskCheckResult `json:"risk"`
}

// MarketSummary reports the derived metrics of one market
type MarketSummary struct {
	Address    common.Address `json:"address"`
	Name       string         `json:"name"`
	IndexToken string         `json:"index_token"`
	LongToken  string         `json:"long_token"`
	ShortToken string         `json:"short_token"`
	IsSpotOnly bool           `json:"is_spot_only"`
	IsDisabled bool           `json:"is_disabled"`

	PoolValueMax        *big.Int `json:"pool_value_max"`
	PoolValueMin        *big.Int `json:"pool_value_min"`
	MarketTokenPriceMax *big.Int `json:"market_token_price_max"`
	MarketTokenPriceMin *big.Int `json:"market_token_price_min"`

	LongPoolUsd  *big.Int `json:"long_pool_usd"`
	ShortPoolUsd *big.Int `json:"short_pool_usd"`

	LongInterestUsd  *big.Int `json:"long_interest_usd"`
	ShortInterestUsd *big.Int `json:"short_interest_usd"`
	LongPnl          *big.Int `json:"long_pnl"`
	ShortPnl         *big.Int `json:"short_pnl"`

	AvailableSwapLiquidityLong  *big.Int `json:"available_swap_liquidity_long"`
	AvailableSwapLiquidityShort *big.Int `json:"available_swap_liquidity_short"`
	AvailableLiquidityLong      *big.Int `json:"available_liquidity_long"`
	AvailableLiquidityShort     *big.Int `json:"available_liquidity_short"`

	MaxLeverageBps        *big.Int `json:"max_leverage_bps"`
	MaxAllowedLeverageBps *big.Int `json:"max_allowed_leverage_bps"`

	FundingFactorPerHourLong    *big.Int `json:"funding_factor_per_hour_long"`
	FundingFactorPerHourShort   *big.Int `json:"funding_factor_per_hour_short"`
	BorrowingFactorPerHourLong  *big.Int `json:"borrowing_factor_per_hour_long"`
	BorrowingFactorPerHourShort *big.Int `json:"borrowing_factor_per_hour_short"`
}

// RiskCheckResult contains risk validation outcome
type RiskCheckResult struct {
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons,omitempty"`

	PriceImpactTooHigh    bool `json:"price_impact_too_high,omitempty"`
	SlippageTooHigh       bool `json:"slippage_too_high,omitempty"`
	TokenNotAllowed       bool `json:"token_not_allowed,omitempty"`
	ExceedsMaxSwapUsd     bool `json:"exceeds_max_swap_usd,omitempty"`
	LeverageTooHigh       bool `json:"leverage_too_high,omitempty"`
	InsufficientLiquidity bool `json:"insufficient_liquidity,omitempty"`
	CollateralTooLow      bool `json:"collateral_too_low,omitempty"`
}

// DepositIntent is a request to price buying market tokens with the
// market's collateral. At least one amount must be set.
type DepositIntent struct {
	Market           string `json:"market"`
	LongTokenAmount  string `json:"long_token_amount,omitempty"`
	ShortTokenAmount string `json:"short_token_amount,omitempty"`
}

// WithdrawalIntent is a request to price burning market tokens
type WithdrawalIntent struct {
	Market            string `json:"market"`
	MarketTokenAmount string `json:"market_token_amount"`
}

// DepositQuote is the priced result of a DepositIntent
type DepositQuote struct {
	ID              string    `json:"id"`
	ChainID         int64     `json:"chain_id"`
	SnapshotVersion uint64    `json:"snapshot_version"`
	QuotedAt        time.Time `json:"quoted_at"`

	Market     common.Address `json:"market"`
	MarketName string         `json:"market_name"`

	models.DepositAmounts
	Fees         models.GmSwapFees    `json:"fees"`
	ExecutionFee *models.ExecutionFee `json:"execution_fee,omitempty"`
}

// WithdrawalQuote is the priced result of a WithdrawalIntent
type WithdrawalQuote struct {
	ID              string    `json:"id"`
	ChainID         int64     `json:"chain_id"`
	SnapshotVersion uint64    `json:"snapshot_version"`
	QuotedAt        time.Time `json:"quoted_at"`

	Market     common.Address `json:"market"`
	MarketName string         `json:"market_name"`

	models.WithdrawalAmounts
	Fees         models.GmSwapFees    `json:"fees"`
	ExecutionFee *models.ExecutionFee `json:"execution_fee,omitempty"`
}

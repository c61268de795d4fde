package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MarketEdge is a one-hop swap capability From -> To through one market pool.
type MarketEdge struct {
	MarketAddress common.Address `json:"market_address"`
	From          common.Address `json:"from"`
	To            common.Address `json:"to"`
}

// SwapStats describes one hop of a swap.
type SwapStats struct {
	MarketAddress   common.Address `json:"market_address"`
	TokenInAddress  common.Address `json:"token_in_address"`
	TokenOutAddress common.Address `json:"token_out_address"`

	SwapFeeAmount       *big.Int `json:"swap_fee_amount"`
	SwapFeeUsd          *big.Int `json:"swap_fee_usd"`
	PriceImpactDeltaUsd *big.Int `json:"price_impact_delta_usd"`

	AmountIn          *big.Int `json:"amount_in"`
	AmountInAfterFees *big.Int `json:"amount_in_after_fees"`
	UsdIn             *big.Int `json:"usd_in"`
	AmountOut         *big.Int `json:"amount_out"`
	UsdOut            *big.Int `json:"usd_out"`

	IsOutLiquidity bool `json:"is_out_liquidity"`
}

// SwapPathStats aggregates the hops of a market path.
type SwapPathStats struct {
	SwapPath        []common.Address `json:"swap_path"`
	SwapSteps       []SwapStats      `json:"swap_steps"`
	TokenInAddress  common.Address   `json:"token_in_address"`
	TokenOutAddress common.Address   `json:"token_out_address"`

	TotalSwapPriceImpactDeltaUsd *big.Int `json:"total_swap_price_impact_delta_usd"`
	TotalSwapFeeUsd              *big.Int `json:"total_swap_fee_usd"`
	TotalFeesDeltaUsd            *big.Int `json:"total_fees_delta_usd"`

	UsdOut    *big.Int `json:"usd_out"`
	AmountOut *big.Int `json:"amount_out"`
}

// DepositAmounts is the preview of a liquidity deposit into a market.
type DepositAmounts struct {
	LongTokenAmount   *big.Int `json:"long_token_amount"`
	LongTokenUsd      *big.Int `json:"long_token_usd"`
	ShortTokenAmount  *big.Int `json:"short_token_amount"`
	ShortTokenUsd     *big.Int `json:"short_token_usd"`
	MarketTokenAmount *big.Int `json:"market_token_amount"`
	MarketTokenUsd    *big.Int `json:"market_token_usd"`

	SwapFeeUsd              *big.Int `json:"swap_fee_usd"`
	UiFeeUsd                *big.Int `json:"ui_fee_usd"`
	SwapPriceImpactDeltaUsd *big.Int `json:"swap_price_impact_delta_usd"`
}

// WithdrawalAmounts is the preview of burning market tokens.
type WithdrawalAmounts struct {
	MarketTokenAmount *big.Int `json:"market_token_amount"`
	MarketTokenUsd    *big.Int `json:"market_token_usd"`
	LongTokenAmount   *big.Int `json:"long_token_amount"`
	LongTokenUsd      *big.Int `json:"long_token_usd"`
	ShortTokenAmount  *big.Int `json:"short_token_amount"`
	ShortTokenUsd     *big.Int `json:"short_token_usd"`

	SwapFeeUsd *big.Int `json:"swap_fee_usd"`
	UiFeeUsd   *big.Int `json:"ui_fee_usd"`
}

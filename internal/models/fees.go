package models

import "math/big"

// FeeItem is one signed line of a fee summary. Positive DeltaUsd favors the trader.
type FeeItem struct {
	DeltaUsd          *big.Int `json:"delta_usd"`
	Bps               *big.Int `json:"bps"`
	PrecisePercentage *big.Int `json:"precise_percentage"`
}

// TradeFees is the fee breakdown of a swap or position order. nil items do not apply.
type TradeFees struct {
	TotalFees *FeeItem `json:"total_fees,omitempty"`

	SwapFees        []FeeItem `json:"swap_fees,omitempty"`
	SwapProfitFee   *FeeItem  `json:"swap_profit_fee,omitempty"`
	SwapPriceImpact *FeeItem  `json:"swap_price_impact,omitempty"`
	ExternalSwapFee *FeeItem  `json:"external_swap_fee,omitempty"`

	PositionFee         *FeeItem `json:"position_fee,omitempty"`
	PositionPriceImpact *FeeItem `json:"position_price_impact,omitempty"`
	BorrowFee           *FeeItem `json:"borrow_fee,omitempty"`
	FundingFee          *FeeItem `json:"funding_fee,omitempty"`
	FeeDiscountUsd      *big.Int `json:"fee_discount_usd,omitempty"`

	UiFee     *FeeItem `json:"ui_fee,omitempty"`
	UiSwapFee *FeeItem `json:"ui_swap_fee,omitempty"`
}

// GmSwapFees is the fee breakdown of a deposit or withdrawal.
type GmSwapFees struct {
	TotalFees       *FeeItem `json:"total_fees,omitempty"`
	SwapFee         *FeeItem `json:"swap_fee,omitempty"`
	SwapPriceImpact *FeeItem `json:"swap_price_impact,omitempty"`
	UiFee           *FeeItem `json:"ui_fee,omitempty"`
}

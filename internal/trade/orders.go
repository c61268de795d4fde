// Package trade holds order classification and the price helpers used when
// an order is built from a quote.
package trade

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type OrderType int

const (
	MarketSwap OrderType = iota
	LimitSwap
	MarketIncrease
	LimitIncrease
	MarketDecrease
	LimitDecrease
	StopLossDecrease
	Liquidation
	StopIncrease
)

var orderTypeNames = map[OrderType]string{
	MarketSwap:       "market_swap",
	LimitSwap:        "limit_swap",
	MarketIncrease:   "market_increase",
	LimitIncrease:    "limit_increase",
	MarketDecrease:   "market_decrease",
	LimitDecrease:    "limit_decrease",
	StopLossDecrease: "stop_loss_decrease",
	Liquidation:      "liquidation",
	StopIncrease:     "stop_increase",
}

func (t OrderType) String() string {
	if name, ok := orderTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("order_type(%d)", int(t))
}

func IsSwapOrderType(t OrderType) bool {
	return t == MarketSwap || t == LimitSwap
}

func IsIncreaseOrderType(t OrderType) bool {
	return t == MarketIncrease || t == LimitIncrease || t == StopIncrease
}

func IsDecreaseOrderType(t OrderType) bool {
	return t == MarketDecrease || t == LimitDecrease || t == StopLossDecrease
}

func IsPositionOrderType(t OrderType) bool {
	return IsIncreaseOrderType(t) || IsDecreaseOrderType(t)
}

// IsLimitOrderType covers orders that rest until a trigger price. Take-profit
// and stop-loss decreases are trigger decreases instead.
func IsLimitOrderType(t OrderType) bool {
	return t == LimitIncrease || t == LimitSwap || t == StopIncrease
}

func IsTriggerDecreaseOrderType(t OrderType) bool {
	return t == LimitDecrease || t == StopLossDecrease
}

func IsMarketOrderType(t OrderType) bool {
	return t == MarketSwap || t == MarketIncrease || t == MarketDecrease
}

func IsLiquidationOrderType(t OrderType) bool {
	return t == Liquidation
}

// OrderInfo is one of SwapOrderInfo, PositionOrderInfo, TwapSwapOrderInfo or
// TwapPositionOrderInfo. The set is closed.
type OrderInfo interface {
	Type() OrderType
	isOrderInfo()
}

type SwapOrderInfo struct {
	OrderType                    OrderType        `json:"order_type"`
	SwapPath                     []common.Address `json:"swap_path"`
	InitialCollateralToken       common.Address   `json:"initial_collateral_token"`
	TargetCollateralToken        common.Address   `json:"target_collateral_token"`
	InitialCollateralDeltaAmount *big.Int         `json:"initial_collateral_delta_amount"`
	MinOutputAmount              *big.Int         `json:"min_output_amount"`
	TriggerRatio                 *big.Int         `json:"trigger_ratio,omitempty"`
	CallbackGasLimit             *big.Int         `json:"callback_gas_limit,omitempty"`
}

type PositionOrderInfo struct {
	OrderType                    OrderType        `json:"order_type"`
	Market                       common.Address   `json:"market"`
	SwapPath                     []common.Address `json:"swap_path"`
	IsLong                       bool             `json:"is_long"`
	InitialCollateralToken       common.Address   `json:"initial_collateral_token"`
	TargetCollateralToken        common.Address   `json:"target_collateral_token"`
	InitialCollateralDeltaAmount *big.Int         `json:"initial_collateral_delta_amount"`
	SizeDeltaUsd                 *big.Int         `json:"size_delta_usd"`
	TriggerPrice                 *big.Int         `json:"trigger_price,omitempty"`
	AcceptablePrice              *big.Int         `json:"acceptable_price"`
	// DecreaseSwapsPnlToken marks a decrease that swaps the pnl token into
	// the collateral token.
	DecreaseSwapsPnlToken bool     `json:"decrease_swaps_pnl_token,omitempty"`
	CallbackGasLimit      *big.Int `json:"callback_gas_limit,omitempty"`
}

// TwapSwapOrderInfo splits a swap into NumberOfParts equal orders.
type TwapSwapOrderInfo struct {
	SwapOrderInfo
	NumberOfParts int `json:"number_of_parts"`
}

type TwapPositionOrderInfo struct {
	PositionOrderInfo
	NumberOfParts int `json:"number_of_parts"`
}

func (o SwapOrderInfo) Type() OrderType     { return o.OrderType }
func (o PositionOrderInfo) Type() OrderType { return o.OrderType }

func (SwapOrderInfo) isOrderInfo()         {}
func (PositionOrderInfo) isOrderInfo()     {}
func (TwapSwapOrderInfo) isOrderInfo()     {}
func (TwapPositionOrderInfo) isOrderInfo() {}

// IsTwap reports whether o is executed in parts.
func IsTwap(o OrderInfo) bool {
	switch o.(type) {
	case SwapOrderInfo, PositionOrderInfo:
		return false
	case TwapSwapOrderInfo, TwapPositionOrderInfo:
		return true
	default:
		panic(fmt.Sprintf("trade: unknown order info %T", o))
	}
}

package trade

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aman-zulfiqar/perps-swap-core/internal/fees"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
)

// EstimateOrderGasLimit returns the execution gas of o and the oracle prices
// it reads. A twap order pays for every part.
func EstimateOrderGasLimit(g *models.GasLimitsConfig, o OrderInfo) (*big.Int, int) {
	switch o := o.(type) {
	case SwapOrderInfo:
		return fees.EstimateExecuteSwapOrderGasLimit(g, len(o.SwapPath), o.CallbackGasLimit),
			fees.EstimateOrderOraclePriceCount(len(o.SwapPath))
	case PositionOrderInfo:
		return estimatePositionGasLimit(g, o), fees.EstimateOrderOraclePriceCount(len(o.SwapPath))
	case TwapSwapOrderInfo:
		gas, prices := EstimateOrderGasLimit(g, o.SwapOrderInfo)
		return multiplyParts(gas, o.NumberOfParts), prices
	case TwapPositionOrderInfo:
		gas, prices := EstimateOrderGasLimit(g, o.PositionOrderInfo)
		return multiplyParts(gas, o.NumberOfParts), prices
	default:
		panic(fmt.Sprintf("trade: unknown order info %T", o))
	}
}

func estimatePositionGasLimit(g *models.GasLimitsConfig, o PositionOrderInfo) *big.Int {
	switch {
	case IsIncreaseOrderType(o.OrderType):
		return fees.EstimateExecuteIncreaseOrderGasLimit(g, len(o.SwapPath), o.CallbackGasLimit)
	case IsDecreaseOrderType(o.OrderType), IsLiquidationOrderType(o.OrderType):
		return fees.EstimateExecuteDecreaseOrderGasLimit(g, len(o.SwapPath), o.DecreaseSwapsPnlToken, o.CallbackGasLimit)
	default:
		panic(fmt.Sprintf("trade: %s is not a position order", o.OrderType))
	}
}

func multiplyParts(gas *big.Int, parts int) *big.Int {
	if parts < 1 {
		parts = 1
	}
	return new(big.Int).Mul(gas, big.NewInt(int64(parts)))
}

// GetOrderExecutionFee prices the keeper fee of o in the native token. It
// returns nil when the native token is not in tokens.
func GetOrderExecutionFee(g *models.GasLimitsConfig, tokens models.TokensData, nativeToken common.Address, gasPrice *big.Int, o OrderInfo) *models.ExecutionFee {
	gasLimit, oraclePrices := EstimateOrderGasLimit(g, o)
	return fees.GetExecutionFee(g, tokens, nativeToken, gasLimit, gasPrice, oraclePrices)
}

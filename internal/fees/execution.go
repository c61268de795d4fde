package fees

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

// Oracle prices every execution reads besides one per swap hop.
const baseOraclePriceCount = 3

// EstimateOrderOraclePriceCount is the number of oracle prices an order with
// swapsCount hops reads.
func EstimateOrderOraclePriceCount(swapsCount int) int {
	return baseOraclePriceCount + swapsCount
}

func swapsGas(g *models.GasLimitsConfig, swapsCount int) *big.Int {
	return new(big.Int).Mul(g.SingleSwap, big.NewInt(int64(swapsCount)))
}

func EstimateExecuteSwapOrderGasLimit(g *models.GasLimitsConfig, swapsCount int, callbackGasLimit *big.Int) *big.Int {
	return numbers.Sum(g.SwapOrder, swapsGas(g, swapsCount), callbackGasLimit)
}

func EstimateExecuteIncreaseOrderGasLimit(g *models.GasLimitsConfig, swapsCount int, callbackGasLimit *big.Int) *big.Int {
	return numbers.Sum(g.IncreaseOrder, swapsGas(g, swapsCount), callbackGasLimit)
}

// EstimateExecuteDecreaseOrderGasLimit counts the optional pnl-token swap of a
// decrease as one more hop.
func EstimateExecuteDecreaseOrderGasLimit(g *models.GasLimitsConfig, swapsCount int, swapsPnlToken bool, callbackGasLimit *big.Int) *big.Int {
	if swapsPnlToken {
		swapsCount++
	}
	return numbers.Sum(g.DecreaseOrder, swapsGas(g, swapsCount), callbackGasLimit)
}

// EstimateExecuteDepositGasLimit charges the multi-token rate only when both
// collaterals are deposited.
func EstimateExecuteDepositGasLimit(g *models.GasLimitsConfig, longSwaps, shortSwaps int, longAmount, shortAmount, callbackGasLimit *big.Int) *big.Int {
	base := g.DepositSingleToken
	if longAmount != nil && shortAmount != nil && longAmount.Sign() > 0 && shortAmount.Sign() > 0 {
		base = g.DepositMultiToken
	}
	return numbers.Sum(base, swapsGas(g, longSwaps+shortSwaps), callbackGasLimit)
}

func EstimateExecuteWithdrawalGasLimit(g *models.GasLimitsConfig, longSwaps, shortSwaps int, callbackGasLimit *big.Int) *big.Int {
	return numbers.Sum(g.WithdrawalMultiToken, swapsGas(g, longSwaps+shortSwaps), callbackGasLimit)
}

// GetExecutionFee converts an estimated gas limit into the fee the keeper
// charges, paid in the native token. It returns nil when the native token is
// not priced in tokens.
func GetExecutionFee(g *models.GasLimitsConfig, tokens models.TokensData, nativeToken common.Address, estimatedGasLimit, gasPrice *big.Int, oraclePriceCount int) *models.ExecutionFee {
	native, ok := tokens.Get(nativeToken)
	if !ok || gasPrice == nil {
		return nil
	}

	gasLimit := new(big.Int).Mul(g.EstimatedGasFeePerOraclePrice, big.NewInt(int64(oraclePriceCount)))
	gasLimit.Add(gasLimit, g.EstimatedGasFeeBaseAmount)
	gasLimit.Add(gasLimit, numbers.ApplyFactor(estimatedGasLimit, g.EstimatedFeeMultiplierFactor))

	feeAmount := new(big.Int).Mul(gasLimit, gasPrice)
	return &models.ExecutionFee{
		GasLimit:       gasLimit,
		FeeTokenAmount: feeAmount,
		FeeUsd:         numbers.ConvertToUsd(feeAmount, native.Decimals, native.Prices.MinPrice),
		FeeToken:       native,
	}
}

package models

import (
	"fmt"
	"math/big"
)

// GasLimitsConfig mirrors the on-chain execution gas settings.
type GasLimitsConfig struct {
	DepositSingleToken   *big.Int `json:"deposit_single_token"`
	DepositMultiToken    *big.Int `json:"deposit_multi_token"`
	WithdrawalMultiToken *big.Int `json:"withdrawal_multi_token"`
	SingleSwap           *big.Int `json:"single_swap"`
	SwapOrder            *big.Int `json:"swap_order"`
	IncreaseOrder        *big.Int `json:"increase_order"`
	DecreaseOrder        *big.Int `json:"decrease_order"`

	EstimatedGasFeeBaseAmount     *big.Int `json:"estimated_gas_fee_base_amount"`
	EstimatedGasFeePerOraclePrice *big.Int `json:"estimated_gas_fee_per_oracle_price"`
	EstimatedFeeMultiplierFactor  *big.Int `json:"estimated_fee_multiplier_factor"`
}

func (g *GasLimitsConfig) Validate() error {
	for name, v := range map[string]*big.Int{
		"deposit_single_token":               g.DepositSingleToken,
		"deposit_multi_token":                g.DepositMultiToken,
		"withdrawal_multi_token":             g.WithdrawalMultiToken,
		"single_swap":                        g.SingleSwap,
		"swap_order":                         g.SwapOrder,
		"increase_order":                     g.IncreaseOrder,
		"decrease_order":                     g.DecreaseOrder,
		"estimated_gas_fee_base_amount":      g.EstimatedGasFeeBaseAmount,
		"estimated_gas_fee_per_oracle_price": g.EstimatedGasFeePerOraclePrice,
		"estimated_fee_multiplier_factor":    g.EstimatedFeeMultiplierFactor,
	} {
		if v == nil {
			return fmt.Errorf("%w: gas limits: missing %s", ErrInvalidSnapshot, name)
		}
	}
	return nil
}

// ExecutionFee is the keeper fee an order must attach.
type ExecutionFee struct {
	GasLimit       *big.Int  `json:"gas_limit"`
	FeeTokenAmount *big.Int  `json:"fee_token_amount"`
	FeeUsd         *big.Int  `json:"fee_usd"`
	FeeToken       TokenData `json:"fee_token"`
}

package swapengine

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
)

// RiskConfig defines the limits a quote must respect to be served as allowed
type RiskConfig struct {
	// Price impact limit in bps (e.g. 100 = 1%), 0 disables the check
	MaxPriceImpactBps uint16

	// Slippage constraints
	DefaultSlippageBps uint16
	MaxSlippageBps     uint16

	// Max USD value of one swap or increase collateral, nil = unlimited
	MaxSwapUsd *big.Int

	// Token symbol whitelist (empty = allow all)
	AllowedTokens []string
}

// DefaultRiskConfig returns conservative risk settings
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxPriceImpactBps:  100, // 1%
		DefaultSlippageBps: 30,  // 0.3%
		MaxSlippageBps:     500, // 5%
	}
}

// RiskManager enforces risk limits on priced quotes
type RiskManager struct {
	config  RiskConfig
	allowed map[string]bool
}

func NewRiskManager(config RiskConfig) *RiskManager {
	rm := &RiskManager{config: config}
	if len(config.AllowedTokens) > 0 {
		rm.allowed = make(map[string]bool, len(config.AllowedTokens))
		for _, sym := range config.AllowedTokens {
			rm.allowed[strings.ToUpper(sym)] = true
		}
	}
	return rm
}

func (rm *RiskManager) Config() RiskConfig {
	return rm.config
}

// SwapRiskInput is what CheckSwap needs from a priced swap
type SwapRiskInput struct {
	TokenIn, TokenOut string
	UsdIn             *big.Int
	// PriceImpactBps is signed; negative impact is a cost
	PriceImpactBps    int64
	MaxPriceImpactBps uint16
	SlippageBps       uint16
}

// CheckSwap validates a swap quote against every rule and collects all
// violations.
func (rm *RiskManager) CheckSwap(in SwapRiskInput) *RiskCheckResult {
	result := &RiskCheckResult{Allowed: true}

	rm.checkTokens(result, in.TokenIn, in.TokenOut)
	rm.checkSlippage(result, in.SlippageBps)
	rm.checkSize(result, in.UsdIn)

	if in.MaxPriceImpactBps > 0 && -in.PriceImpactBps > int64(in.MaxPriceImpactBps) {
		result.reject(fmt.Sprintf("price impact %s exceeds max %s",
			numbers.FormatBps(big.NewInt(-in.PriceImpactBps)), numbers.FormatBps(big.NewInt(int64(in.MaxPriceImpactBps)))))
		result.PriceImpactTooHigh = true
	}

	return result
}

// IncreaseRiskInput is what CheckIncrease needs from a priced increase
type IncreaseRiskInput struct {
	CollateralToken    string
	CollateralUsd      *big.Int
	CollateralDeltaUsd *big.Int
	SizeDeltaUsd       *big.Int
	AvailableUsd       *big.Int
	LeverageBps        *big.Int
	MaxLeverageBps     *big.Int
	SwapPriceImpactBps int64
	SlippageBps        uint16
}

func (rm *RiskManager) CheckIncrease(in IncreaseRiskInput) *RiskCheckResult {
	result := &RiskCheckResult{Allowed: true}

	rm.checkTokens(result, in.CollateralToken)
	rm.checkSlippage(result, in.SlippageBps)
	rm.checkSize(result, in.CollateralUsd)

	if in.LeverageBps.Cmp(in.MaxLeverageBps) > 0 {
		result.reject(fmt.Sprintf("leverage %s exceeds max %s", formatLeverage(in.LeverageBps), formatLeverage(in.MaxLeverageBps)))
		result.LeverageTooHigh = true
	}
	if in.SizeDeltaUsd.Cmp(in.AvailableUsd) > 0 {
		result.reject(fmt.Sprintf("size %s exceeds available liquidity %s",
			numbers.FormatUsd(in.SizeDeltaUsd, 2), numbers.FormatUsd(in.AvailableUsd, 2)))
		result.InsufficientLiquidity = true
	}
	if in.CollateralDeltaUsd.Sign() <= 0 {
		result.reject("collateral does not cover the fees")
		result.CollateralTooLow = true
	}
	if limit := rm.config.MaxPriceImpactBps; limit > 0 && -in.SwapPriceImpactBps > int64(limit) {
		result.reject(fmt.Sprintf("collateral swap price impact %s exceeds max %s",
			numbers.FormatBps(big.NewInt(-in.SwapPriceImpactBps)), numbers.FormatBps(big.NewInt(int64(limit)))))
		result.PriceImpactTooHigh = true
	}

	return result
}

func (rm *RiskManager) checkTokens(result *RiskCheckResult, symbols ...string) {
	for _, sym := range symbols {
		if !rm.IsTokenAllowed(sym) {
			result.reject(fmt.Sprintf("token not whitelisted: %s", sym))
			result.TokenNotAllowed = true
		}
	}
}

func (rm *RiskManager) checkSlippage(result *RiskCheckResult, slippageBps uint16) {
	if rm.config.MaxSlippageBps > 0 && slippageBps > rm.config.MaxSlippageBps {
		result.reject(fmt.Sprintf("slippage %d bps exceeds max %d bps", slippageBps, rm.config.MaxSlippageBps))
		result.SlippageTooHigh = true
	}
}

func (rm *RiskManager) checkSize(result *RiskCheckResult, usd *big.Int) {
	if rm.config.MaxSwapUsd != nil && usd.Cmp(rm.config.MaxSwapUsd) > 0 {
		result.reject(fmt.Sprintf("value %s exceeds max %s", numbers.FormatUsd(usd, 2), numbers.FormatUsd(rm.config.MaxSwapUsd, 2)))
		result.ExceedsMaxSwapUsd = true
	}
}

// IsTokenAllowed checks a symbol against the whitelist
func (rm *RiskManager) IsTokenAllowed(symbol string) bool {
	if rm.allowed == nil {
		return true // No whitelist = allow all
	}
	return rm.allowed[strings.ToUpper(symbol)]
}

func (r *RiskCheckResult) reject(reason string) {
	r.Allowed = false
	r.Reasons = append(r.Reasons, reason)
}

// Reason joins the rejection reasons for logs.
func (r *RiskCheckResult) Reason() string {
	return strings.Join(r.Reasons, "; ")
}

func formatLeverage(bps *big.Int) string {
	return numbers.FormatAmount(bps, 4, 2) + "x"
}

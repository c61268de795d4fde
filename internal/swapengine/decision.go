package swapengine

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/aman-zulfiqar/perps-swap-core/internal/constants"
	"github.com/aman-zulfiqar/perps-swap-core/internal/gm"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
	"github.com/aman-zulfiqar/perps-swap-core/internal/swap"
)

// DecisionEngine turns user intents into snapshot-resolved parameters.
type DecisionEngine struct {
	risk  RiskConfig
	order []swap.RouteOrder
}

func NewDecisionEngine(risk RiskConfig, defaultOrder []swap.RouteOrder) *DecisionEngine {
	return &DecisionEngine{risk: risk, order: defaultOrder}
}

// ResolveToken looks a token up by 0x address or by symbol.
func ResolveToken(snap *models.Snapshot, ref string) (models.TokenData, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.TokenData{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	if common.IsHexAddress(ref) {
		if t, ok := snap.Tokens.Get(common.HexToAddress(ref)); ok {
			return t, nil
		}
		return models.TokenData{}, fmt.Errorf("%w: unknown token address %s", ErrInvalidToken, ref)
	}
	if t, ok := snap.TokenBySymbol(ref); ok {
		return t, nil
	}
	return models.TokenData{}, fmt.Errorf("%w: unknown token %s", ErrInvalidToken, ref)
}

func (de *DecisionEngine) ParseSwapIntent(snap *models.Snapshot, intent *SwapIntent) (*SwapParams, error) {
	if intent == nil {
		return nil, fmt.Errorf("%w: intent is nil", ErrInvalidIntent)
	}

	tokenIn, err := ResolveToken(snap, intent.TokenIn)
	if err != nil {
		return nil, fmt.Errorf("token_in: %w", err)
	}
	tokenOut, err := ResolveToken(snap, intent.TokenOut)
	if err != nil {
		return nil, fmt.Errorf("token_out: %w", err)
	}
	if tokenIn.Address == tokenOut.Address {
		return nil, fmt.Errorf("%w: input and output token must differ", ErrInvalidIntent)
	}

	amountIn, err := parsePositiveAmount(intent.Amount, tokenIn.Decimals)
	if err != nil {
		return nil, err
	}

	order := de.order
	if len(intent.Order) > 0 {
		order = make([]swap.RouteOrder, 0, len(intent.Order))
		for _, raw := range intent.Order {
			o, err := swap.ParseRouteOrder(strings.ToLower(strings.TrimSpace(raw)))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidIntent, err)
			}
			order = append(order, o)
		}
	}

	params := &SwapParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		SlippageBps:       de.risk.DefaultSlippageBps,
		MaxPriceImpactBps: de.risk.MaxPriceImpactBps,
		Order:             order,
	}
	if intent.SlippageBps != nil {
		params.SlippageBps = *intent.SlippageBps
	}
	// A caller may tighten the impact limit but never loosen it.
	if intent.MaxPriceImpactBps != nil && (params.MaxPriceImpactBps == 0 || *intent.MaxPriceImpactBps < params.MaxPriceImpactBps) {
		params.MaxPriceImpactBps = *intent.MaxPriceImpactBps
	}
	return params, nil
}

func (de *DecisionEngine) ParseIncreaseIntent(snap *models.Snapshot, intent *IncreaseIntent) (*IncreaseParams, error) {
	if intent == nil {
		return nil, fmt.Errorf("%w: intent is nil", ErrInvalidIntent)
	}

	m, err := lookupMarket(snap, intent.Market)
	if err != nil {
		return nil, err
	}
	if m.IsSpotOnly {
		return nil, fmt.Errorf("%w: %s is swap-only", ErrInvalidMarket, m.MarketTokenAddress.Hex())
	}

	collateral, err := ResolveToken(snap, intent.CollateralToken)
	if err != nil {
		return nil, fmt.Errorf("collateral_token: %w", err)
	}
	amount, err := parsePositiveAmount(intent.CollateralAmount, collateral.Decimals)
	if err != nil {
		return nil, err
	}
	leverage, err := ParseLeverage(intent.Leverage)
	if err != nil {
		return nil, err
	}

	params := &IncreaseParams{
		Market:           m,
		CollateralToken:  collateral,
		CollateralAmount: amount,
		LeverageBps:      leverage,
		IsLong:           intent.IsLong,
		SlippageBps:      de.risk.DefaultSlippageBps,
	}
	if intent.SlippageBps != nil {
		params.SlippageBps = *intent.SlippageBps
	}
	return params, nil
}

// ParseDepositIntent resolves a deposit. Swap-only markets take deposits too.
func (de *DecisionEngine) ParseDepositIntent(snap *models.Snapshot, intent *DepositIntent) (models.MarketInfo, gm.DepositParams, error) {
	if intent == nil {
		return models.MarketInfo{}, gm.DepositParams{}, fmt.Errorf("%w: intent is nil", ErrInvalidIntent)
	}
	m, err := lookupMarket(snap, intent.Market)
	if err != nil {
		return models.MarketInfo{}, gm.DepositParams{}, err
	}

	long, err := parseOptionalAmount(intent.LongTokenAmount, m.LongToken.Decimals)
	if err != nil {
		return models.MarketInfo{}, gm.DepositParams{}, fmt.Errorf("long_token_amount: %w", err)
	}
	short, err := parseOptionalAmount(intent.ShortTokenAmount, m.ShortToken.Decimals)
	if err != nil {
		return models.MarketInfo{}, gm.DepositParams{}, fmt.Errorf("short_token_amount: %w", err)
	}
	if long.Sign() == 0 && short.Sign() == 0 {
		return models.MarketInfo{}, gm.DepositParams{}, fmt.Errorf("%w: deposit needs a long or short amount", ErrInvalidIntent)
	}
	return m, gm.DepositParams{LongTokenAmount: long, ShortTokenAmount: short}, nil
}

// ParseWithdrawalIntent resolves a withdrawal. The amount is in market token
// units and may not exceed the supply.
func (de *DecisionEngine) ParseWithdrawalIntent(snap *models.Snapshot, intent *WithdrawalIntent) (models.MarketInfo, gm.WithdrawalParams, error) {
	if intent == nil {
		return models.MarketInfo{}, gm.WithdrawalParams{}, fmt.Errorf("%w: intent is nil", ErrInvalidIntent)
	}
	m, err := lookupMarket(snap, intent.Market)
	if err != nil {
		return models.MarketInfo{}, gm.WithdrawalParams{}, err
	}

	amount, err := parsePositiveAmount(intent.MarketTokenAmount, constants.MarketTokenDecimals)
	if err != nil {
		return models.MarketInfo{}, gm.WithdrawalParams{}, err
	}
	if amount.Cmp(numbers.OrZero(m.MarketTokenSupply)) > 0 {
		return models.MarketInfo{}, gm.WithdrawalParams{}, fmt.Errorf("%w: amount exceeds market token supply", ErrInvalidIntent)
	}
	return m, gm.WithdrawalParams{MarketTokenAmount: amount}, nil
}

// lookupMarket resolves an enabled market by address.
func lookupMarket(snap *models.Snapshot, ref string) (models.MarketInfo, error) {
	ref = strings.TrimSpace(ref)
	if !common.IsHexAddress(ref) {
		return models.MarketInfo{}, fmt.Errorf("%w: market must be an address, got %q", ErrInvalidMarket, ref)
	}
	m, ok := snap.Markets.Get(common.HexToAddress(ref))
	if !ok {
		return models.MarketInfo{}, fmt.Errorf("%w: unknown market %s", ErrInvalidMarket, ref)
	}
	if m.IsDisabled {
		return models.MarketInfo{}, fmt.Errorf("%w: %s is disabled", ErrInvalidMarket, ref)
	}
	return m, nil
}

// ParseLeverage converts a multiple such as "2.5" into basis points. At
// least 1x is required.
func ParseLeverage(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(s), "x"))
	if err != nil {
		return nil, fmt.Errorf("%w: leverage %q: %v", ErrInvalidIntent, s, err)
	}
	if d.LessThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: leverage %q below 1x", ErrInvalidIntent, s)
	}
	return d.Shift(4).BigInt(), nil
}

func parseOptionalAmount(s string, decimals int) (*big.Int, error) {
	if strings.TrimSpace(s) == "" {
		return new(big.Int), nil
	}
	amount, err := numbers.ParseAmount(strings.TrimSpace(s), decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIntent, err)
	}
	return amount, nil
}

func parsePositiveAmount(s string, decimals int) (*big.Int, error) {
	amount, err := numbers.ParseAmount(strings.TrimSpace(s), decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIntent, err)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be > 0", ErrInvalidIntent)
	}
	return amount, nil
}

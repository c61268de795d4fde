package swapengine

import (
	"context"
	"math/big"
	"time"

	"github.com/aman-zulfiqar/perps-swap-core/internal/constants"
	"github.com/aman-zulfiqar/perps-swap-core/internal/fees"
	"github.com/aman-zulfiqar/perps-swap-core/internal/gm"
	"github.com/aman-zulfiqar/perps-swap-core/internal/markets"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
)

// QuoteDeposit prices buying market tokens. Liquidity quotes carry no risk
// checks and are not journaled.
func (e *Engine) QuoteDeposit(ctx context.Context, intent *DepositIntent) (*DepositQuote, error) {
	start := time.Now()
	quote, err := e.quoteDeposit(ctx, intent)
	e.observe(constants.QuoteKindDeposit, start, nil, err)
	return quote, err
}

func (e *Engine) quoteDeposit(ctx context.Context, intent *DepositIntent) (*DepositQuote, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	m, params, err := e.decisionEngine.ParseDepositIntent(snap, intent)
	if err != nil {
		return nil, err
	}

	amounts := gm.GetDepositAmounts(&m, params)
	quote := &DepositQuote{
		ID:              e.newID(),
		ChainID:         snap.ChainID,
		SnapshotVersion: snap.Version,
		QuotedAt:        e.now().UTC(),
		Market:          m.MarketTokenAddress,
		MarketName:      markets.GetMarketFullName(&m),
		DepositAmounts:  amounts,
		Fees:            gm.DepositFees(amounts),
	}
	if snap.GasLimits != nil {
		gasLimit := fees.EstimateExecuteDepositGasLimit(snap.GasLimits, 0, 0, amounts.LongTokenAmount, amounts.ShortTokenAmount, nil)
		quote.ExecutionFee = e.liquidityExecutionFee(snap, gasLimit)
	}
	return quote, nil
}

// QuoteWithdrawal prices burning market tokens for the market's collateral.
func (e *Engine) QuoteWithdrawal(ctx context.Context, intent *WithdrawalIntent) (*WithdrawalQuote, error) {
	start := time.Now()
	quote, err := e.quoteWithdrawal(ctx, intent)
	e.observe(constants.QuoteKindWithdrawal, start, nil, err)
	return quote, err
}

func (e *Engine) quoteWithdrawal(ctx context.Context, intent *WithdrawalIntent) (*WithdrawalQuote, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	m, params, err := e.decisionEngine.ParseWithdrawalIntent(snap, intent)
	if err != nil {
		return nil, err
	}

	amounts := gm.GetWithdrawalAmounts(&m, params)
	quote := &WithdrawalQuote{
		ID:                e.newID(),
		ChainID:           snap.ChainID,
		SnapshotVersion:   snap.Version,
		QuotedAt:          e.now().UTC(),
		Market:            m.MarketTokenAddress,
		MarketName:        markets.GetMarketFullName(&m),
		WithdrawalAmounts: amounts,
		Fees:              gm.WithdrawalFees(amounts),
	}
	if snap.GasLimits != nil {
		gasLimit := fees.EstimateExecuteWithdrawalGasLimit(snap.GasLimits, 0, 0, nil)
		quote.ExecutionFee = e.liquidityExecutionFee(snap, gasLimit)
	}
	return quote, nil
}

func (e *Engine) liquidityExecutionFee(snap *models.Snapshot, gasLimit *big.Int) *models.ExecutionFee {
	gasPrice := e.gasPriceFor(snap)
	if gasPrice == nil {
		return nil
	}
	return fees.GetExecutionFee(snap.GasLimits, snap.Tokens, snap.NativeTokenAddress, gasLimit, gasPrice, fees.EstimateOrderOraclePriceCount(0))
}

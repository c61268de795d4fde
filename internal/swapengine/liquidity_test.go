package swapengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
	tu "github.com/aman-zulfiqar/perps-swap-core/internal/testutil"
)

func TestQuoteDeposit(t *testing.T) {
	e := newTestEngine(t, testSnapshot())

	q, err := e.QuoteDeposit(context.Background(), &DepositIntent{
		Market:           ethUsdc.Hex(),
		LongTokenAmount:  "1",
		ShortTokenAmount: "2000",
	})
	require.NoError(t, err)

	assert.Equal(t, "quote-1", q.ID)
	assert.Equal(t, ethUsdc, q.Market)
	assert.Equal(t, "WETH/USD [WETH-USDC]", q.MarketName)
	tu.AssertBig(t, tu.USD(2_000), q.LongTokenUsd)
	tu.AssertBig(t, tu.USD(2_000), q.ShortTokenUsd)
	// 7 bps fee on $4000 minted at $1 per market token.
	tu.AssertBig(t, numbers.ExpandDecimals(39972, 29), q.MarketTokenUsd)
	tu.AssertBig(t, numbers.ExpandDecimals(39972, 17), q.MarketTokenAmount)
	require.NotNil(t, q.Fees.TotalFees)
	tu.AssertBig(t, numbers.ExpandDecimals(-28, 29), q.Fees.TotalFees.DeltaUsd)

	// Both collaterals: multi-token gas.
	require.NotNil(t, q.ExecutionFee)
	tu.AssertBigString(t, "2600000", q.ExecutionFee.GasLimit)
	tu.AssertBigString(t, "260000000000000", q.ExecutionFee.FeeTokenAmount)
}

func TestQuoteDepositSingleToken(t *testing.T) {
	e := newTestEngine(t, testSnapshot())

	q, err := e.QuoteDeposit(context.Background(), &DepositIntent{Market: ethUsdc.Hex(), LongTokenAmount: "1"})
	require.NoError(t, err)
	tu.AssertBig(t, tu.USD(2_000), q.LongTokenUsd)
	tu.AssertBigString(t, "0", q.ShortTokenAmount)
	tu.AssertBigString(t, "2300000", q.ExecutionFee.GasLimit)

	// Swap-only markets take liquidity.
	q, err = e.QuoteDeposit(context.Background(), &DepositIntent{Market: daiUsdc.Hex(), ShortTokenAmount: "100"})
	require.NoError(t, err)
	assert.Equal(t, 1, q.MarketTokenAmount.Sign())
}

func TestQuoteDepositErrors(t *testing.T) {
	snap := testSnapshot()
	m := snap.Markets[btcUsdc]
	m.IsDisabled = true
	snap.Markets[btcUsdc] = m
	e := newTestEngine(t, snap)
	ctx := context.Background()

	tests := []struct {
		name   string
		intent *DepositIntent
		err    error
	}{
		{"nil intent", nil, ErrInvalidIntent},
		{"no amounts", &DepositIntent{Market: ethUsdc.Hex()}, ErrInvalidIntent},
		{"zero amounts", &DepositIntent{Market: ethUsdc.Hex(), LongTokenAmount: "0", ShortTokenAmount: "0"}, ErrInvalidIntent},
		{"negative", &DepositIntent{Market: ethUsdc.Hex(), LongTokenAmount: "-1"}, ErrInvalidIntent},
		{"too many decimals", &DepositIntent{Market: ethUsdc.Hex(), ShortTokenAmount: "1.0000001"}, ErrInvalidIntent},
		{"symbol as market", &DepositIntent{Market: "WETH", LongTokenAmount: "1"}, ErrInvalidMarket},
		{"unknown market", &DepositIntent{Market: "0x00000000000000000000000000000000000000ff", LongTokenAmount: "1"}, ErrInvalidMarket},
		{"disabled market", &DepositIntent{Market: btcUsdc.Hex(), LongTokenAmount: "1"}, ErrInvalidMarket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := e.QuoteDeposit(ctx, tt.intent)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, q)
		})
	}
}

func TestQuoteWithdrawal(t *testing.T) {
	e := newTestEngine(t, testSnapshot())

	q, err := e.QuoteWithdrawal(context.Background(), &WithdrawalIntent{Market: ethUsdc.Hex(), MarketTokenAmount: "1000"})
	require.NoError(t, err)

	tu.AssertBig(t, tu.USD(1_000), q.MarketTokenUsd)
	tu.AssertBigString(t, "249825000000000000", q.LongTokenAmount)
	tu.AssertBigString(t, "499650000", q.ShortTokenAmount)
	tu.AssertBig(t, numbers.ExpandDecimals(-7, 29), q.Fees.TotalFees.DeltaUsd)
	tu.AssertBigString(t, "2300000", q.ExecutionFee.GasLimit)

	_, err = e.QuoteWithdrawal(context.Background(), &WithdrawalIntent{Market: ethUsdc.Hex(), MarketTokenAmount: "3000000"})
	assert.ErrorIs(t, err, ErrInvalidIntent)

	_, err = e.QuoteWithdrawal(context.Background(), &WithdrawalIntent{Market: ethUsdc.Hex(), MarketTokenAmount: "0"})
	assert.ErrorIs(t, err, ErrInvalidIntent)
}

package swapengine

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/perps-swap-core/internal/config"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/storage"
	"github.com/aman-zulfiqar/perps-swap-core/internal/swap"
	tu "github.com/aman-zulfiqar/perps-swap-core/internal/testutil"
)

var (
	ethUsdc = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	btcUsdc = common.HexToAddress("0x0000000000000000000000000000000000000a03")
	daiUsdc = common.HexToAddress("0x0000000000000000000000000000000000000a04")
)

func testSnapshot() *models.Snapshot {
	return tu.Snapshot(
		tu.Market(ethUsdc.Hex(), tu.WETH, tu.WETH, tu.USDC, 1_000_000),
		tu.Market(btcUsdc.Hex(), tu.WBTC, tu.WBTC, tu.USDC, 1_000_000),
		tu.Market(daiUsdc.Hex(), tu.DAI, tu.DAI, tu.USDC, 500_000, tu.SpotOnly),
	)
}

type recordingStore struct {
	mu      sync.Mutex
	records []*models.QuoteRecord
	err     error
}

func (s *recordingStore) InsertQuote(_ context.Context, q *models.QuoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, q)
	return nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type staticFlags struct {
	disabled map[common.Address]bool
	err      error
}

func (f staticFlags) DisabledMarkets(context.Context) (map[common.Address]bool, error) {
	return f.disabled, f.err
}

type emptySource struct{}

func (emptySource) LoadSnapshot(context.Context, int64) (*models.Snapshot, error) {
	return nil, storage.ErrSnapshotNotFound
}

func newTestEngine(t *testing.T, snap *models.Snapshot) *Engine {
	t.Helper()
	source, err := NewStaticSource(snap)
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	e := NewEngine(DefaultEngineConfig(), source, log)
	e.now = func() time.Time { return time.Date(2026, 1, 2, 3, 5, 0, 0, time.UTC) }
	e.newID = func() string { return "quote-1" }
	return e
}

func slippage(bps uint16) *uint16 { return &bps }

func TestQuoteSwap(t *testing.T) {
	journal := &recordingStore{}
	e := newTestEngine(t, testSnapshot()).WithJournal(journal)

	q, err := e.QuoteSwap(context.Background(), &SwapIntent{TokenIn: "weth", TokenOut: "USDC", Amount: "1"})
	require.NoError(t, err)

	assert.Equal(t, "quote-1", q.ID)
	assert.Equal(t, int64(42161), q.ChainID)
	assert.Equal(t, []common.Address{ethUsdc}, q.SwapPath)
	tu.AssertBig(t, tu.USD(2000), q.UsdIn)
	// 7 bps negative-impact fee on $2000.
	tu.AssertBigString(t, "1998600000000000000000000000000000", q.UsdOut)
	tu.AssertBigString(t, "1998600000", q.AmountOut)
	tu.AssertBigString(t, "1992604200", q.MinAmountOut)
	assert.Equal(t, "1998.600000", q.AmountOutFormatted)
	assert.Equal(t, "$1998.60", q.UsdOutFormatted)
	assert.Equal(t, uint16(30), q.SlippageBps)
	assert.Equal(t, int64(0), q.PriceImpactBps)

	require.NotNil(t, q.Fees.TotalFees)
	tu.AssertBigString(t, "-1400000000000000000000000000000", q.Fees.TotalFees.DeltaUsd)
	require.Len(t, q.Fees.SwapFees, 1)
	tu.AssertBigString(t, "-7", q.Fees.SwapFees[0].Bps)

	require.NotNil(t, q.ExecutionFee)
	tu.AssertBigString(t, "3400000", q.ExecutionFee.GasLimit)
	tu.AssertBigString(t, "340000000000000", q.ExecutionFee.FeeTokenAmount)

	require.True(t, q.Risk.Allowed)
	require.Equal(t, 1, journal.count())
	rec := journal.records[0]
	assert.Equal(t, "swap", rec.Kind)
	assert.Equal(t, "WETH", rec.TokenIn)
	assert.Equal(t, "USDC", rec.TokenOut)
	assert.Equal(t, ethUsdc.Hex(), rec.Path)
	assert.Equal(t, 1, rec.Hops)
	assert.Equal(t, "1000000000000000000", rec.AmountIn)
	assert.Equal(t, "1992604200", rec.MinAmountOut)
}

func TestQuoteSwapMultiHopByAddress(t *testing.T) {
	e := newTestEngine(t, testSnapshot())

	q, err := e.QuoteSwap(context.Background(), &SwapIntent{
		TokenIn:  tu.WBTC.Address.Hex(),
		TokenOut: "DAI",
		Amount:   "0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, []common.Address{btcUsdc, daiUsdc}, q.SwapPath)
	assert.Equal(t, "DAI", q.TokenOut.Symbol)
	require.Len(t, q.Stats.SwapSteps, 2)
	assert.True(t, q.UsdOut.Cmp(q.UsdIn) < 0)
}

func TestQuoteSwapErrors(t *testing.T) {
	e := newTestEngine(t, testSnapshot())
	ctx := context.Background()

	tests := []struct {
		name   string
		intent *SwapIntent
		err    error
	}{
		{"nil intent", nil, ErrInvalidIntent},
		{"unknown symbol", &SwapIntent{TokenIn: "SOL", TokenOut: "USDC", Amount: "1"}, ErrInvalidToken},
		{"unknown address", &SwapIntent{TokenIn: "0x00000000000000000000000000000000000000ff", TokenOut: "USDC", Amount: "1"}, ErrInvalidToken},
		{"same token", &SwapIntent{TokenIn: "USDC", TokenOut: "usdc", Amount: "1"}, ErrInvalidIntent},
		{"zero amount", &SwapIntent{TokenIn: "WETH", TokenOut: "USDC", Amount: "0"}, ErrInvalidIntent},
		{"bad amount", &SwapIntent{TokenIn: "WETH", TokenOut: "USDC", Amount: "one"}, ErrInvalidIntent},
		{"too many decimals", &SwapIntent{TokenIn: "USDC", TokenOut: "WETH", Amount: "1.0000001"}, ErrInvalidIntent},
		{"bad order", &SwapIntent{TokenIn: "WETH", TokenOut: "USDC", Amount: "1", Order: []string{"cheapest"}}, ErrInvalidIntent},
		{"beyond liquidity", &SwapIntent{TokenIn: "WETH", TokenOut: "USDC", Amount: "1000"}, ErrNoRoute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := e.QuoteSwap(ctx, tt.intent)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, q)
		})
	}
}

func TestQuoteSwapRiskRejectionIsNotJournaled(t *testing.T) {
	journal := &recordingStore{}
	e := newTestEngine(t, testSnapshot()).WithJournal(journal)

	q, err := e.QuoteSwap(context.Background(), &SwapIntent{
		TokenIn:     "WETH",
		TokenOut:    "USDC",
		Amount:      "1",
		SlippageBps: slippage(600),
	})
	require.NoError(t, err)
	assert.False(t, q.Risk.Allowed)
	assert.True(t, q.Risk.SlippageTooHigh)
	assert.Equal(t, 0, journal.count())
}

func TestQuoteSwapJournalFailureDoesNotFailQuote(t *testing.T) {
	failing := &recordingStore{err: errors.New("clickhouse down")}
	ok := &recordingStore{}
	e := newTestEngine(t, testSnapshot()).WithJournal(failing, ok)

	q, err := e.QuoteSwap(context.Background(), &SwapIntent{TokenIn: "WETH", TokenOut: "USDC", Amount: "1"})
	require.NoError(t, err)
	assert.True(t, q.Risk.Allowed)
	assert.Equal(t, 1, ok.count())
}

func TestQuoteSwapAppliesMarketFlags(t *testing.T) {
	ctx := context.Background()
	intent := &SwapIntent{TokenIn: "WETH", TokenOut: "USDC", Amount: "1"}

	e := newTestEngine(t, testSnapshot()).WithFlags(staticFlags{disabled: map[common.Address]bool{ethUsdc: true}})
	_, err := e.QuoteSwap(ctx, intent)
	assert.ErrorIs(t, err, ErrNoRoute)

	e = newTestEngine(t, testSnapshot()).WithFlags(staticFlags{err: errors.New("redis down")})
	q, err := e.QuoteSwap(ctx, intent)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{ethUsdc}, q.SwapPath)
}

func TestQuoteSwapMissingSnapshot(t *testing.T) {
	log, _ := test.NewNullLogger()
	e := NewEngine(DefaultEngineConfig(), emptySource{}, log)

	_, err := e.QuoteSwap(context.Background(), &SwapIntent{TokenIn: "WETH", TokenOut: "USDC", Amount: "1"})
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}

func TestQuoteSwapGasPriceOverride(t *testing.T) {
	e := newTestEngine(t, testSnapshot())
	e.cfg.GasPrice = big.NewInt(200_000_000)

	q, err := e.QuoteSwap(context.Background(), &SwapIntent{TokenIn: "WETH", TokenOut: "USDC", Amount: "1"})
	require.NoError(t, err)
	tu.AssertBigString(t, "680000000000000", q.ExecutionFee.FeeTokenAmount)
}

type fixedGasPrice struct{ price *big.Int }

func (f fixedGasPrice) GasPrice() *big.Int { return f.price }

func TestQuoteSwapLiveGasPrice(t *testing.T) {
	ctx := context.Background()
	intent := &SwapIntent{TokenIn: "WETH", TokenOut: "USDC", Amount: "1"}

	e := newTestEngine(t, testSnapshot()).WithGasPrice(fixedGasPrice{big.NewInt(300_000_000)})
	q, err := e.QuoteSwap(ctx, intent)
	require.NoError(t, err)
	tu.AssertBigString(t, "1020000000000000", q.ExecutionFee.FeeTokenAmount)

	// No reading yet: the snapshot price applies.
	e = newTestEngine(t, testSnapshot()).WithGasPrice(fixedGasPrice{})
	q, err = e.QuoteSwap(ctx, intent)
	require.NoError(t, err)
	tu.AssertBigString(t, "340000000000000", q.ExecutionFee.FeeTokenAmount)

	// Configured price beats the live one.
	e = newTestEngine(t, testSnapshot()).WithGasPrice(fixedGasPrice{big.NewInt(300_000_000)})
	e.cfg.GasPrice = big.NewInt(200_000_000)
	q, err = e.QuoteSwap(ctx, intent)
	require.NoError(t, err)
	tu.AssertBigString(t, "680000000000000", q.ExecutionFee.FeeTokenAmount)
}

func TestQuoteIncrease(t *testing.T) {
	journal := &recordingStore{}
	e := newTestEngine(t, testSnapshot()).WithJournal(journal)

	q, err := e.QuoteIncrease(context.Background(), &IncreaseIntent{
		Market:           ethUsdc.Hex(),
		CollateralToken:  "USDC",
		CollateralAmount: "1000",
		Leverage:         "5",
		IsLong:           true,
	})
	require.NoError(t, err)

	assert.Equal(t, "WETH/USD [WETH-USDC]", q.MarketName)
	assert.Equal(t, "USDC", q.TargetCollateralToken.Symbol)
	assert.Empty(t, q.SwapPath)
	tu.AssertBig(t, tu.USD(1000), q.CollateralUsd)
	tu.AssertBig(t, tu.USD(5000), q.SizeDeltaUsd)
	// 6 bps position fee on $5000.
	tu.AssertBig(t, tu.USD(997), q.CollateralDeltaUsd)
	tu.AssertBigString(t, "2500000000000000000", q.SizeDeltaInTokens)
	tu.AssertBig(t, tu.USD(2000), q.AcceptablePrice)
	tu.AssertBig(t, tu.USD(2006), q.OrderAcceptablePrice)
	tu.AssertBigString(t, "50000", q.LeverageBps)
	tu.AssertBigString(t, "500000", q.MaxLeverageBps)
	tu.AssertBig(t, tu.USD(-3), q.Fees.TotalFees.DeltaUsd)

	require.NotNil(t, q.ExecutionFee)
	tu.AssertBigString(t, "3300000", q.ExecutionFee.GasLimit)

	require.True(t, q.Risk.Allowed, q.Risk.Reason())
	require.Equal(t, 1, journal.count())
	rec := journal.records[0]
	assert.Equal(t, "increase", rec.Kind)
	assert.Equal(t, ethUsdc.Hex(), rec.Market)
	assert.Equal(t, "WETH", rec.TokenOut)
	assert.Equal(t, 0, rec.Hops)
}

func TestQuoteIncreaseSwapsCollateral(t *testing.T) {
	e := newTestEngine(t, testSnapshot())

	q, err := e.QuoteIncrease(context.Background(), &IncreaseIntent{
		Market:           ethUsdc.Hex(),
		CollateralToken:  "DAI",
		CollateralAmount: "1000",
		Leverage:         "2.5x",
		IsLong:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, "WETH", q.TargetCollateralToken.Symbol)
	assert.Equal(t, []common.Address{daiUsdc, ethUsdc}, q.SwapPath)
	require.NotNil(t, q.SwapStats)

	want := new(big.Int).Mul(q.SwapStats.UsdOut, big.NewInt(25000))
	want.Quo(want, big.NewInt(10000))
	tu.AssertBig(t, want, q.SizeDeltaUsd)
	require.Len(t, q.Fees.SwapFees, 2)
}

func TestQuoteIncreaseRisk(t *testing.T) {
	e := newTestEngine(t, testSnapshot())
	ctx := context.Background()

	q, err := e.QuoteIncrease(ctx, &IncreaseIntent{
		Market: ethUsdc.Hex(), CollateralToken: "USDC", CollateralAmount: "100", Leverage: "60", IsLong: false,
	})
	require.NoError(t, err)
	assert.False(t, q.Risk.Allowed)
	assert.True(t, q.Risk.LeverageTooHigh)

	q, err = e.QuoteIncrease(ctx, &IncreaseIntent{
		Market: ethUsdc.Hex(), CollateralToken: "USDC", CollateralAmount: "300000", Leverage: "5", IsLong: true,
	})
	require.NoError(t, err)
	assert.False(t, q.Risk.Allowed)
	assert.True(t, q.Risk.InsufficientLiquidity)
	assert.False(t, q.Risk.LeverageTooHigh)
}

func TestQuoteIncreaseErrors(t *testing.T) {
	e := newTestEngine(t, testSnapshot())
	ctx := context.Background()

	tests := []struct {
		name   string
		intent *IncreaseIntent
		err    error
	}{
		{"nil", nil, ErrInvalidIntent},
		{"symbol market", &IncreaseIntent{Market: "ETH", CollateralToken: "USDC", CollateralAmount: "1", Leverage: "2"}, ErrInvalidMarket},
		{"unknown market", &IncreaseIntent{Market: "0x0000000000000000000000000000000000000bbb", CollateralToken: "USDC", CollateralAmount: "1", Leverage: "2"}, ErrInvalidMarket},
		{"spot only", &IncreaseIntent{Market: daiUsdc.Hex(), CollateralToken: "USDC", CollateralAmount: "1", Leverage: "2"}, ErrInvalidMarket},
		{"bad collateral", &IncreaseIntent{Market: ethUsdc.Hex(), CollateralToken: "SOL", CollateralAmount: "1", Leverage: "2"}, ErrInvalidToken},
		{"leverage below one", &IncreaseIntent{Market: ethUsdc.Hex(), CollateralToken: "USDC", CollateralAmount: "1", Leverage: "0.5"}, ErrInvalidIntent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.QuoteIncrease(ctx, tt.intent)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestGraphCache(t *testing.T) {
	e := newTestEngine(t, testSnapshot())

	v1 := testSnapshot()
	g1 := e.graphFor(v1)
	assert.Same(t, g1, e.graphFor(v1))

	disabled := v1.WithDisabledMarkets(map[common.Address]bool{btcUsdc: true})
	g2 := e.graphFor(disabled)
	assert.NotSame(t, g1, g2)

	v2 := testSnapshot()
	v2.Version = 2
	g3 := e.graphFor(v2)
	assert.Equal(t, uint64(2), e.graphVersion)

	// An older snapshot gets a graph but does not evict the newer one.
	g4 := e.graphFor(v1)
	assert.NotSame(t, g3, g4)
	assert.Same(t, g3, e.graph)
	assert.Equal(t, uint64(2), e.graphVersion)

	e.OnSnapshotUpdate(models.SnapshotUpdate{ChainID: 1, Version: 9})
	assert.NotNil(t, e.graph)
	e.OnSnapshotUpdate(models.SnapshotUpdate{ChainID: 42161, Version: 2})
	assert.NotNil(t, e.graph)
	e.OnSnapshotUpdate(models.SnapshotUpdate{ChainID: 42161, Version: 3})
	assert.Nil(t, e.graph)
}

func TestStaleSnapshotIsLogged(t *testing.T) {
	source, err := NewStaticSource(testSnapshot())
	require.NoError(t, err)
	log, hook := test.NewNullLogger()
	e := NewEngine(DefaultEngineConfig(), source, log)

	e.now = func() time.Time { return time.Date(2026, 1, 2, 3, 5, 0, 0, time.UTC) }
	_, err = e.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, hook.AllEntries())

	e.now = func() time.Time { return time.Date(2026, 1, 2, 4, 0, 0, 0, time.UTC) }
	_, err = e.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "serving stale snapshot", hook.LastEntry().Message)
}

func TestMarketSummaries(t *testing.T) {
	e := newTestEngine(t, testSnapshot())
	ctx := context.Background()

	list, err := e.ListMarkets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ethUsdc, list[0].Address)
	assert.Equal(t, btcUsdc, list[1].Address)
	assert.Equal(t, daiUsdc, list[2].Address)

	s, err := e.MarketSummary(ctx, ethUsdc)
	require.NoError(t, err)
	assert.Equal(t, "WETH", s.IndexToken)
	tu.AssertBig(t, tu.USD(2_000_000), s.PoolValueMax)
	tu.AssertBig(t, tu.USD(1), s.MarketTokenPriceMax)
	tu.AssertBig(t, tu.USD(1_000_000), s.AvailableLiquidityLong)
	tu.AssertBigString(t, "500000", s.MaxAllowedLeverageBps)
	tu.AssertBigString(t, "1000000", s.MaxLeverageBps)

	spot, err := e.MarketSummary(ctx, daiUsdc)
	require.NoError(t, err)
	assert.True(t, spot.IsSpotOnly)
	assert.Equal(t, "SWAP-ONLY [DAI-USDC]", spot.Name)
	tu.AssertBigString(t, "0", spot.AvailableLiquidityLong)

	_, err = e.MarketSummary(ctx, common.HexToAddress("0xbeef"))
	assert.ErrorIs(t, err, ErrInvalidMarket)
}

func TestParseLeverage(t *testing.T) {
	for in, want := range map[string]string{"1": "10000", "5": "50000", "2.5x": "25000", " 10 ": "100000"} {
		got, err := ParseLeverage(in)
		require.NoError(t, err, in)
		tu.AssertBigString(t, want, got, in)
	}
	for _, in := range []string{"", "0.99", "-2", "lots"} {
		_, err := ParseLeverage(in)
		assert.ErrorIs(t, err, ErrInvalidIntent, in)
	}
}

func TestResolveToken(t *testing.T) {
	snap := testSnapshot()

	tok, err := ResolveToken(snap, "wbtc")
	require.NoError(t, err)
	assert.Equal(t, tu.WBTC.Address, tok.Address)

	tok, err = ResolveToken(snap, strings.ToLower(tu.USDC.Address.Hex()))
	require.NoError(t, err)
	assert.Equal(t, "USDC", tok.Symbol)

	_, err = ResolveToken(snap, " ")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestApplyRoutingFile(t *testing.T) {
	rf, err := config.LoadRoutingFromReader(strings.NewReader(`
router:
  max_hops: 2
  order: [length, liquidity]
risk:
  max_price_impact_bps: 50
  default_slippage_bps: 10
  max_slippage_bps: 100
  max_swap_usd: 25000
  allowed_tokens: [weth, usdc]
gas:
  gas_price_wei: "0x3b9aca00"
`))
	require.NoError(t, err)

	ec := DefaultEngineConfig()
	ec.ApplyRoutingFile(rf)

	assert.Equal(t, 2, ec.Router.MaxHops)
	assert.Equal(t, swap.DefaultRouterConfig().MaxCandidates, ec.Router.MaxCandidates)
	assert.Equal(t, []swap.RouteOrder{swap.OrderLength, swap.OrderLiquidity}, ec.RouteOrder)
	assert.Equal(t, uint16(50), ec.Risk.MaxPriceImpactBps)
	assert.Equal(t, uint16(10), ec.Risk.DefaultSlippageBps)
	assert.Equal(t, uint16(100), ec.Risk.MaxSlippageBps)
	tu.AssertBig(t, tu.USD(25000), ec.Risk.MaxSwapUsd)
	assert.Equal(t, []string{"WETH", "USDC"}, ec.Risk.AllowedTokens)
	tu.AssertBigString(t, "1000000000", ec.GasPrice)

	e := newTestEngine(t, testSnapshot())
	e.riskManager = NewRiskManager(ec.Risk)
	e.decisionEngine = NewDecisionEngine(ec.Risk, ec.RouteOrder)

	q, err := e.QuoteSwap(context.Background(), &SwapIntent{TokenIn: "WBTC", TokenOut: "USDC", Amount: "1"})
	require.NoError(t, err)
	assert.False(t, q.Risk.Allowed)
	assert.True(t, q.Risk.TokenNotAllowed)
	assert.True(t, q.Risk.ExceedsMaxSwapUsd)
	assert.Equal(t, uint16(10), q.SlippageBps)
}

func TestLoadSnapshotFile(t *testing.T) {
	dir := t.TempDir()

	raw, err := json.Marshal(testSnapshot())
	require.NoError(t, err)
	good := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(good, raw, 0o600))

	snap, err := LoadSnapshotFile(good)
	require.NoError(t, err)
	assert.Len(t, snap.Markets, 3)
	assert.Equal(t, uint64(1), snap.Version)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = LoadSnapshotFile(bad)
	assert.ErrorIs(t, err, models.ErrInvalidSnapshot)

	_, err = LoadSnapshotFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestStaticSourceChainMismatch(t *testing.T) {
	source, err := NewStaticSource(testSnapshot())
	require.NoError(t, err)

	_, err = source.LoadSnapshot(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}

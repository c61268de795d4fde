package swap

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
	tu "github.com/aman-zulfiqar/perps-swap-core/internal/testutil"
)

var (
	ethUsdc      = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	ethUsdcSmall = common.HexToAddress("0x0000000000000000000000000000000000000a02")
	btcUsdc      = common.HexToAddress("0x0000000000000000000000000000000000000a03")
	daiUsdc      = common.HexToAddress("0x0000000000000000000000000000000000000a04")
	ethEth       = common.HexToAddress("0x0000000000000000000000000000000000000a05")
	btcDai       = common.HexToAddress("0x0000000000000000000000000000000000000a06")
	ethDai       = common.HexToAddress("0x0000000000000000000000000000000000000a07")
)

func market(addr common.Address, index, long, short models.TokenData, poolUsd int64, opts ...tu.MarketOption) models.MarketInfo {
	return tu.Market(addr.Hex(), index, long, short, poolUsd, opts...)
}

// baseMarkets: two WETH/USDC pools, WBTC/USDC, a swap-only DAI/USDC pool, a
// single-token WETH pool and a disabled WBTC/DAI pool.
func baseMarkets(opts ...func(ms models.MarketsInfoData)) models.MarketsInfoData {
	ms := models.MarketsInfoData{}
	for _, m := range []models.MarketInfo{
		market(ethUsdc, tu.WETH, tu.WETH, tu.USDC, 1_000_000),
		market(ethUsdcSmall, tu.WETH, tu.WETH, tu.USDC, 100_000),
		market(btcUsdc, tu.WBTC, tu.WBTC, tu.USDC, 1_000_000),
		market(daiUsdc, tu.DAI, tu.DAI, tu.USDC, 500_000, tu.SpotOnly),
		market(ethEth, tu.WETH, tu.WETH, tu.WETH, 1_000_000),
		market(btcDai, tu.WBTC, tu.WBTC, tu.DAI, 1_000_000, tu.Disabled),
	} {
		ms[m.MarketTokenAddress] = m
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

func withEthDai(ms models.MarketsInfoData) {
	ms[ethDai] = market(ethDai, tu.WETH, tu.WETH, tu.DAI, 50_000)
}

func newGraph(ms models.MarketsInfoData) *Graph {
	return NewGraph(ms, DefaultRouterConfig(), nil)
}

func TestGetSwapStats(t *testing.T) {
	ms := baseMarkets()
	m := ms[ethUsdc]

	stats := GetSwapStats(&m, tu.WETH.Address, tu.USDC.Address, tu.USD(10_000), true)
	assert.False(t, stats.IsOutLiquidity)
	tu.AssertBig(t, tu.USD(7), stats.SwapFeeUsd)
	tu.AssertBig(t, tu.USD(9_993), stats.UsdOut)
	tu.AssertBig(t, big.NewInt(9_993_000_000), stats.AmountOut)
	tu.AssertBig(t, tu.Amount(5, 18), stats.AmountIn)
	tu.AssertBigString(t, "3500000000000000", stats.SwapFeeAmount)
	tu.AssertBig(t, big.NewInt(0), stats.PriceImpactDeltaUsd)
	tu.AssertBigString(t, "4996500000000000000", stats.AmountInAfterFees)

	// Negative impact is charged on top of the fee
	m.SwapImpactFactorPositive = numbers.ExpandDecimals(1, 22)
	m.SwapImpactFactorNegative = numbers.ExpandDecimals(1, 22)
	stats = GetSwapStats(&m, tu.WETH.Address, tu.USDC.Address, tu.USD(10_000), true)
	tu.AssertBig(t, tu.USD(-4), stats.PriceImpactDeltaUsd)
	tu.AssertBig(t, tu.USD(9_989), stats.UsdOut)
	// 4 USD of impact is 0.002 WETH taken from the input
	tu.AssertBigString(t, "4994500000000000000", stats.AmountInAfterFees)

	stats = GetSwapStats(&m, tu.WETH.Address, tu.USDC.Address, tu.USD(10_000), false)
	tu.AssertBig(t, tu.USD(9_993), stats.UsdOut)
	tu.AssertBigString(t, "4996500000000000000", stats.AmountInAfterFees)

	// Output above the pool is out of liquidity
	stats = GetSwapStats(&m, tu.WETH.Address, tu.USDC.Address, tu.USD(2_000_000), true)
	assert.True(t, stats.IsOutLiquidity)

	// Tokens the market does not hold
	stats = GetSwapStats(&m, tu.WBTC.Address, tu.USDC.Address, tu.USD(10), true)
	assert.True(t, stats.IsOutLiquidity)
	tu.AssertBig(t, big.NewInt(0), stats.UsdOut)
}

func TestGetSwapPathStats(t *testing.T) {
	ms := baseMarkets()

	stats := GetSwapPathStats(ms, []common.Address{ethUsdc, btcUsdc}, tu.WETH.Address, tu.USD(10_000), true)
	require.NotNil(t, stats)
	require.Len(t, stats.SwapSteps, 2)
	assert.Equal(t, tu.WBTC.Address, stats.TokenOutAddress)
	assert.Equal(t, tu.USDC.Address, stats.SwapSteps[0].TokenOutAddress)

	// 10000 - 7 = 9993, then 7 bps of 9993
	tu.AssertBig(t, numbers.ExpandDecimals(99860049, 26), stats.UsdOut)
	tu.AssertBig(t, numbers.ExpandDecimals(139951, 26), stats.TotalSwapFeeUsd)
	tu.AssertBig(t, numbers.ExpandDecimals(-139951, 26), stats.TotalFeesDeltaUsd)
	tu.AssertBig(t, stats.SwapSteps[1].AmountOut, stats.AmountOut)

	assert.Nil(t, GetSwapPathStats(ms, nil, tu.WETH.Address, tu.USD(1), true))
	assert.Nil(t, GetSwapPathStats(ms, []common.Address{common.HexToAddress("0xbad")}, tu.WETH.Address, tu.USD(1), true))
	assert.Nil(t, GetSwapPathStats(ms, []common.Address{btcUsdc}, tu.WETH.Address, tu.USD(1), true))
}

func TestGetMaxSwapPathLiquidity(t *testing.T) {
	ms := baseMarkets()

	tu.AssertBig(t, tu.USD(100_000), GetMaxSwapPathLiquidity(ms, []common.Address{ethUsdcSmall, btcUsdc}, tu.WETH.Address))
	tu.AssertBig(t, tu.USD(1_000_000), GetMaxSwapPathLiquidity(ms, []common.Address{ethUsdc}, tu.WETH.Address))
	tu.AssertBig(t, big.NewInt(0), GetMaxSwapPathLiquidity(ms, nil, tu.WETH.Address))
}

func TestEstimators(t *testing.T) {
	ms := baseMarkets()
	edge := models.MarketEdge{MarketAddress: ethUsdc, From: tu.WETH.Address, To: tu.USDC.Address}

	tu.AssertBig(t, tu.USD(1_000_000), NewMarketEdgeLiquidityGetter(ms)(edge))
	tu.AssertBig(t, tu.USD(9_993), NewSwapEstimator(ms)(edge, tu.USD(10_000)))

	est := NewNaiveSwapEstimator(ms)(edge, tu.USD(10_000))
	assert.InDelta(t, 0.9995, float64(est.Yield), 1e-12)
	tu.AssertBig(t, tu.USD(9_993), est.UsdOutMin)

	assert.Equal(t, Yield(0), NewNaiveSwapEstimator(ms)(edge, tu.USD(5_000_000)).Yield)
	tu.AssertBig(t, big.NewInt(0), NewSwapEstimator(ms)(edge, tu.USD(5_000_000)))

	missing := models.MarketEdge{MarketAddress: common.HexToAddress("0xbad"), From: tu.WETH.Address, To: tu.USDC.Address}
	tu.AssertBig(t, big.NewInt(0), NewMarketEdgeLiquidityGetter(ms)(missing))
	assert.Equal(t, Yield(0), NewNaiveSwapEstimator(ms)(missing, tu.USD(1)).Yield)
}

func withSwapImpact(m *models.MarketInfo) {
	m.SwapImpactFactorPositive = numbers.ExpandDecimals(1, 22)
	m.SwapImpactFactorNegative = numbers.ExpandDecimals(1, 22)
}

func TestNaiveEstimatorNeverRejectsFeasibleHops(t *testing.T) {
	ms := baseMarkets(withEthDai)
	ms[ethUsdcSmall] = market(ethUsdcSmall, tu.WETH, tu.WETH, tu.USDC, 100_000, withSwapImpact)

	naive := NewNaiveSwapEstimator(ms)
	exact := NewSwapEstimator(ms)
	amounts := []int64{1, 1_000, 49_990, 50_000, 50_040, 99_000, 100_000, 499_000, 500_400, 999_000, 1_000_700, 2_000_000}

	for _, e := range newGraph(ms).Edges() {
		for _, n := range amounts {
			out := exact(e, tu.USD(n))
			if out.Sign() == 0 {
				continue
			}
			est := naive(e, tu.USD(n))
			assert.Greater(t, float64(est.Yield), 0.0, "market %s %s->%s usd %d", e.MarketAddress.Hex(), e.From.Hex(), e.To.Hex(), n)
			assert.LessOrEqual(t, est.UsdOutMin.Cmp(out), 0, "lower bound above exact output for usd %d", n)
		}
	}

	// Negative impact has no bound, only the fee-free yield remains.
	edge := models.MarketEdge{MarketAddress: ethUsdcSmall, From: tu.WETH.Address, To: tu.USDC.Address}
	est := naive(edge, tu.USD(10_000))
	assert.Greater(t, float64(est.Yield), 0.0)
	tu.AssertBig(t, big.NewInt(0), est.UsdOutMin)
}

func TestGetSwapPathOutputAddresses(t *testing.T) {
	ms := baseMarkets()

	out, market, ok := GetSwapPathOutputAddresses(ms, tu.WETH.Address, []common.Address{ethUsdc, daiUsdc})
	require.True(t, ok)
	assert.Equal(t, tu.DAI.Address, out)
	assert.Equal(t, daiUsdc, market)

	out, market, ok = GetSwapPathOutputAddresses(ms, tu.USDC.Address, nil)
	require.True(t, ok)
	assert.Equal(t, tu.USDC.Address, out)
	assert.Equal(t, common.Address{}, market)

	_, _, ok = GetSwapPathOutputAddresses(ms, tu.WBTC.Address, []common.Address{ethUsdc})
	assert.False(t, ok)

	_, _, ok = GetSwapPathOutputAddresses(ms, tu.WETH.Address, []common.Address{common.HexToAddress("0xdead")})
	assert.False(t, ok)
}

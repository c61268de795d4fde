package swapengine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aman-zulfiqar/perps-swap-core/internal/config"
	"github.com/aman-zulfiqar/perps-swap-core/internal/constants"
	"github.com/aman-zulfiqar/perps-swap-core/internal/fees"
	"github.com/aman-zulfiqar/perps-swap-core/internal/markets"
	"github.com/aman-zulfiqar/perps-swap-core/internal/metrics"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/numbers"
	"github.com/aman-zulfiqar/perps-swap-core/internal/storage"
	"github.com/aman-zulfiqar/perps-swap-core/internal/swap"
	"github.com/aman-zulfiqar/perps-swap-core/internal/trade"
)

// MarketFlags supplies runtime market overrides. flags.Store implements it.
type MarketFlags interface {
	DisabledMarkets(ctx context.Context) (map[common.Address]bool, error)
}

// GasPriceSource supplies a live gas price, nil while none is known.
type GasPriceSource interface {
	GasPrice() *big.Int
}

// Engine is the main orchestrator for quote operations
type Engine struct {
	source         storage.SnapshotReader
	flags          MarketFlags
	gasPrice       GasPriceSource
	journals       []storage.QuoteStore
	decisionEngine *DecisionEngine
	riskManager    *RiskManager

	cfg   EngineConfig
	log   logrus.FieldLogger
	now   func() time.Time
	newID func() string

	mu           sync.Mutex
	graph        *swap.Graph
	graphKey     string
	graphVersion uint64
}

// EngineConfig holds configuration for the quote engine
type EngineConfig struct {
	ChainID int64

	// Routing
	Router     swap.RouterConfig
	RouteOrder []swap.RouteOrder

	// Risk management
	Risk RiskConfig

	// GasPrice overrides the snapshot gas price when set
	GasPrice *big.Int
}

// DefaultEngineConfig returns sensible defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ChainID: constants.ArbitrumChainID,
		Router:  swap.DefaultRouterConfig(),
		Risk:    DefaultRiskConfig(),
	}
}

// EngineConfigFromConfig applies the service config and its optional routing
// file to the defaults.
func EngineConfigFromConfig(cfg *config.Config) (EngineConfig, error) {
	ec := DefaultEngineConfig()
	ec.ChainID = cfg.ChainID

	if cfg.RoutingFile != "" {
		rf, err := config.LoadRoutingFile(cfg.RoutingFile)
		if err != nil {
			return EngineConfig{}, err
		}
		ec.ApplyRoutingFile(rf)
	}
	return ec, nil
}

// ApplyRoutingFile overlays the non-zero settings of rf.
func (ec *EngineConfig) ApplyRoutingFile(rf *config.RoutingFile) {
	ec.Router = rf.RouterConfig(ec.Router)
	if len(rf.Router.Order) > 0 {
		ec.RouteOrder = append([]swap.RouteOrder(nil), rf.Router.Order...)
	}

	if rf.Risk.MaxPriceImpactBps > 0 {
		ec.Risk.MaxPriceImpactBps = rf.Risk.MaxPriceImpactBps
	}
	if rf.Risk.DefaultSlippageBps > 0 {
		ec.Risk.DefaultSlippageBps = rf.Risk.DefaultSlippageBps
	}
	if rf.Risk.MaxSlippageBps > 0 {
		ec.Risk.MaxSlippageBps = rf.Risk.MaxSlippageBps
	}
	if rf.Risk.MaxSwapUsd > 0 {
		ec.Risk.MaxSwapUsd = numbers.ExpandDecimals(rf.Risk.MaxSwapUsd, numbers.UsdDecimals)
	}
	if len(rf.Risk.AllowedTokens) > 0 {
		ec.Risk.AllowedTokens = append([]string(nil), rf.Risk.AllowedTokens...)
	}

	if rf.Gas.GasPrice != nil {
		ec.GasPrice = new(big.Int).Set(rf.Gas.GasPrice)
	}
}

// NewEngine creates a quote engine reading snapshots from source
func NewEngine(cfg EngineConfig, source storage.SnapshotReader, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		source:         source,
		decisionEngine: NewDecisionEngine(cfg.Risk, cfg.RouteOrder),
		riskManager:    NewRiskManager(cfg.Risk),
		cfg:            cfg,
		log:            log.WithField("component", "swapengine"),
		now:            time.Now,
		newID:          func() string { return uuid.NewString() },
	}
}

// NewEngineFromEnv creates an engine using environment variables
func NewEngineFromEnv(source storage.SnapshotReader, log logrus.FieldLogger) (*Engine, error) {
	ec, err := EngineConfigFromConfig(config.Load())
	if err != nil {
		return nil, err
	}
	return NewEngine(ec, source, log), nil
}

// WithFlags applies market overrides from f before routing.
func (e *Engine) WithFlags(f MarketFlags) *Engine {
	e.flags = f
	return e
}

// WithJournal records every allowed quote into the given stores.
func (e *Engine) WithJournal(stores ...storage.QuoteStore) *Engine {
	e.journals = append(e.journals, stores...)
	return e
}

// WithGasPrice prices execution fees at src's live gas price when it has
// one. A configured GasPrice still takes precedence.
func (e *Engine) WithGasPrice(src GasPriceSource) *Engine {
	e.gasPrice = src
	return e
}

func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// Snapshot loads the current snapshot with market overrides applied.
func (e *Engine) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap, err := e.source.LoadSnapshot(ctx, e.cfg.ChainID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if e.flags != nil {
		disabled, err := e.flags.DisabledMarkets(ctx)
		if err != nil {
			e.log.WithError(err).Warn("market flags unavailable, using snapshot state")
		} else {
			snap = snap.WithDisabledMarkets(disabled)
		}
	}

	if age := e.now().Sub(snap.UpdatedAt); !snap.UpdatedAt.IsZero() && age > constants.SnapshotStaleAfter {
		e.log.WithFields(logrus.Fields{
			"version": snap.Version,
			"age":     age.Round(time.Second),
		}).Warn("serving stale snapshot")
	}

	metrics.SnapshotVersion.WithLabelValues(strconv.FormatInt(snap.ChainID, 10)).Set(float64(snap.Version))
	return snap, nil
}

func (e *Engine) state(ctx context.Context) (*models.Snapshot, *swap.Graph, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	return snap, e.graphFor(snap), nil
}

func graphKey(snap *models.Snapshot) string {
	var disabled []string
	for addr, m := range snap.Markets {
		if m.IsDisabled {
			disabled = append(disabled, addr.Hex())
		}
	}
	sort.Strings(disabled)
	return fmt.Sprintf("%d:%d:%s", snap.ChainID, snap.Version, strings.Join(disabled, ","))
}

// graphFor returns the cached graph of snap, building it on a miss. A graph
// built for an older snapshot version never replaces a newer cached one.
func (e *Engine) graphFor(snap *models.Snapshot) *swap.Graph {
	key := graphKey(snap)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph != nil && e.graphKey == key {
		return e.graph
	}

	g := swap.NewGraph(snap.Markets, e.cfg.Router, e.log)
	metrics.GraphBuilds.Inc()
	e.log.WithFields(logrus.Fields{
		"chain_id": snap.ChainID,
		"version":  snap.Version,
		"markets":  len(snap.Markets),
		"edges":    len(g.Edges()),
	}).Debug("swap graph built")

	if e.graph == nil || snap.Version >= e.graphVersion {
		e.graph, e.graphKey, e.graphVersion = g, key, snap.Version
	}
	return g
}

// OnSnapshotUpdate drops the cached graph when a newer snapshot version of
// the engine's chain is announced.
func (e *Engine) OnSnapshotUpdate(u models.SnapshotUpdate) {
	if u.ChainID != e.cfg.ChainID {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil || u.Version <= e.graphVersion {
		return
	}
	e.graph, e.graphKey = nil, ""
	e.log.WithFields(logrus.Fields{
		"chain_id":    u.ChainID,
		"version":     u.Version,
		"was_version": e.graphVersion,
	}).Info("snapshot updated, swap graph invalidated")
}

// QuoteSwap prices a swap intent against the current snapshot
func (e *Engine) QuoteSwap(ctx context.Context, intent *SwapIntent) (*SwapQuote, error) {
	start := time.Now()
	quote, err := e.quoteSwap(ctx, intent)

	var risk *RiskCheckResult
	if quote != nil {
		risk = quote.Risk
	}
	e.observe(constants.QuoteKindSwap, start, risk, err)
	return quote, err
}

func (e *Engine) quoteSwap(ctx context.Context, intent *SwapIntent) (*SwapQuote, error) {
	snap, graph, err := e.state(ctx)
	if err != nil {
		return nil, err
	}

	params, err := e.decisionEngine.ParseSwapIntent(snap, intent)
	if err != nil {
		return nil, err
	}

	usdIn := numbers.ConvertToUsd(params.AmountIn, params.TokenIn.Decimals, params.TokenIn.Prices.MinPrice)
	routes := graph.Routes(params.TokenIn.Address, params.TokenOut.Address)
	metrics.RouteCandidates.Observe(float64(len(routes.Candidates())))

	stats := routes.FindSwapPath(usdIn, swap.FindSwapPathOptions{Order: params.Order})
	if stats == nil {
		return nil, fmt.Errorf("%w: %s -> %s for %s", ErrNoRoute,
			params.TokenIn.Symbol, params.TokenOut.Symbol, numbers.FormatUsd(usdIn, 2))
	}

	minOut := trade.ApplySlippageToMinOut(params.SlippageBps, stats.AmountOut)
	impactBps := numbers.BasisPoints(stats.TotalSwapPriceImpactDeltaUsd, usdIn, false).Int64()
	outDecimals := params.TokenOut.Decimals

	quote := &SwapQuote{
		ID:              e.newID(),
		ChainID:         snap.ChainID,
		SnapshotVersion: snap.Version,
		QuotedAt:        e.now().UTC(),

		TokenIn:  params.TokenIn.Token,
		TokenOut: params.TokenOut.Token,

		AmountIn:     params.AmountIn,
		UsdIn:        usdIn,
		AmountOut:    stats.AmountOut,
		UsdOut:       stats.UsdOut,
		MinAmountOut: minOut,

		AmountOutFormatted:    numbers.FormatAmount(stats.AmountOut, outDecimals, 6),
		MinAmountOutFormatted: numbers.FormatAmount(minOut, outDecimals, 6),
		UsdOutFormatted:       numbers.FormatUsd(stats.UsdOut, 2),

		SwapPath: stats.SwapPath,
		Stats:    stats,
		Fees: fees.GetTradeFees(fees.TradeFeesParams{
			InitialCollateralUsd:    usdIn,
			SwapSteps:               stats.SwapSteps,
			SwapPriceImpactDeltaUsd: stats.TotalSwapPriceImpactDeltaUsd,
		}),
		PriceImpactBps: impactBps,
		SlippageBps:    params.SlippageBps,
		ExecutionFee: e.executionFee(snap, trade.SwapOrderInfo{
			OrderType:                    trade.MarketSwap,
			SwapPath:                     stats.SwapPath,
			InitialCollateralToken:       params.TokenIn.Address,
			TargetCollateralToken:        params.TokenOut.Address,
			InitialCollateralDeltaAmount: params.AmountIn,
			MinOutputAmount:              minOut,
		}),
	}

	quote.Risk = e.riskManager.CheckSwap(SwapRiskInput{
		TokenIn:           params.TokenIn.Symbol,
		TokenOut:          params.TokenOut.Symbol,
		UsdIn:             usdIn,
		PriceImpactBps:    impactBps,
		MaxPriceImpactBps: params.MaxPriceImpactBps,
		SlippageBps:       params.SlippageBps,
	})

	if quote.Risk.Allowed {
		e.journal(ctx, swapRecord(quote))
	}
	return quote, nil
}

// QuoteIncrease prices opening or growing a position. Collateral that is not
// a market collateral is first routed into the side's collateral token.
func (e *Engine) QuoteIncrease(ctx context.Context, intent *IncreaseIntent) (*IncreaseQuote, error) {
	start := time.Now()
	quote, err := e.quoteIncrease(ctx, intent)

	var risk *RiskCheckResult
	if quote != nil {
		risk = quote.Risk
	}
	e.observe(constants.QuoteKindIncrease, start, risk, err)
	return quote, err
}

func (e *Engine) quoteIncrease(ctx context.Context, intent *IncreaseIntent) (*IncreaseQuote, error) {
	snap, graph, err := e.state(ctx)
	if err != nil {
		return nil, err
	}

	params, err := e.decisionEngine.ParseIncreaseIntent(snap, intent)
	if err != nil {
		return nil, err
	}
	m := params.Market
	collateral := params.CollateralToken

	collateralUsd := numbers.ConvertToUsd(params.CollateralAmount, collateral.Decimals, collateral.Prices.MinPrice)

	target := collateral
	afterSwapUsd := collateralUsd
	var swapStats *models.SwapPathStats
	var swapPath []common.Address
	swapImpactBps := int64(0)
	if !markets.IsMarketCollateral(m.Market, collateral.Address) {
		target = m.ShortToken
		if params.IsLong {
			target = m.LongToken
		}
		swapStats = graph.Routes(collateral.Address, target.Address).
			FindSwapPath(collateralUsd, swap.FindSwapPathOptions{Order: e.cfg.RouteOrder})
		if swapStats == nil {
			return nil, fmt.Errorf("%w: %s -> %s collateral for %s", ErrNoRoute,
				collateral.Symbol, target.Symbol, numbers.FormatUsd(collateralUsd, 2))
		}
		afterSwapUsd = swapStats.UsdOut
		swapPath = swapStats.SwapPath
		swapImpactBps = numbers.BasisPoints(swapStats.TotalSwapPriceImpactDeltaUsd, collateralUsd, false).Int64()
	}

	sizeDeltaUsd := numbers.MulDiv(afterSwapUsd, params.LeverageBps, big.NewInt(numbers.BasisPointsDivisor))
	impact, err := fees.GetCappedPositionImpactUsd(&m, sizeDeltaUsd, params.IsLong, true)
	if err != nil {
		return nil, fmt.Errorf("position price impact: %w", err)
	}
	positionFee := fees.GetPositionFee(&m, sizeDeltaUsd, impact.Sign() > 0, nil, nil)
	collateralDeltaUsd := new(big.Int).Sub(afterSwapUsd, positionFee.PositionFeeUsd)

	indexPrice := m.IndexToken.Prices.MinPrice
	if trade.GetShouldUseMaxPrice(true, params.IsLong) {
		indexPrice = m.IndexToken.Prices.MaxPrice
	}
	acceptable := trade.GetAcceptablePrice(trade.AcceptablePriceParams{
		IsIncrease:          true,
		IsLong:              params.IsLong,
		IndexPrice:          indexPrice,
		SizeDeltaUsd:        sizeDeltaUsd,
		PriceImpactDeltaUsd: impact,
	})
	orderPrice := trade.ApplySlippageToPrice(params.SlippageBps, acceptable.Price, true, params.IsLong)
	maxLeverage := markets.GetMaxAllowedLeverageByMinCollateralFactor(m.MinCollateralFactor)

	var swapSteps []models.SwapStats
	var swapImpactUsd *big.Int
	if swapStats != nil {
		swapSteps = swapStats.SwapSteps
		swapImpactUsd = swapStats.TotalSwapPriceImpactDeltaUsd
	}

	quote := &IncreaseQuote{
		ID:              e.newID(),
		ChainID:         snap.ChainID,
		SnapshotVersion: snap.Version,
		QuotedAt:        e.now().UTC(),

		Market:                m.MarketTokenAddress,
		MarketName:            markets.GetMarketFullName(&m),
		IsLong:                params.IsLong,
		CollateralToken:       collateral.Token,
		TargetCollateralToken: target.Token,

		CollateralAmount:   params.CollateralAmount,
		CollateralUsd:      collateralUsd,
		CollateralDeltaUsd: collateralDeltaUsd,
		SizeDeltaUsd:       sizeDeltaUsd,
		SizeDeltaInTokens:  numbers.OrZero(numbers.ConvertToTokenAmount(sizeDeltaUsd, m.IndexToken.Decimals, acceptable.Price)),
		LeverageBps:        params.LeverageBps,
		MaxLeverageBps:     maxLeverage,

		IndexPrice:                  indexPrice,
		AcceptablePrice:             acceptable.Price,
		AcceptablePriceDeltaBps:     acceptable.PriceDeltaBps,
		OrderAcceptablePrice:        orderPrice,
		PositionPriceImpactDeltaUsd: impact,

		BorrowingFeeUsdPerHour: fees.GetBorrowingFeeRateUsd(&m, params.IsLong, sizeDeltaUsd, int64(constants.FundingPeriod/time.Second)),
		FundingFeeUsdPerHour:   fees.GetFundingFeeRateUsd(&m, params.IsLong, sizeDeltaUsd, int64(constants.FundingPeriod/time.Second)),

		SwapPath:  swapPath,
		SwapStats: swapStats,
		Fees: fees.GetTradeFees(fees.TradeFeesParams{
			InitialCollateralUsd:        collateralUsd,
			SizeDeltaUsd:                sizeDeltaUsd,
			CollateralDeltaUsd:          collateralDeltaUsd,
			SwapSteps:                   swapSteps,
			SwapPriceImpactDeltaUsd:     swapImpactUsd,
			PositionFeeUsd:              positionFee.PositionFeeUsd,
			FeeDiscountUsd:              positionFee.DiscountUsd,
			PositionPriceImpactDeltaUsd: impact,
		}),
		SlippageBps: params.SlippageBps,
		ExecutionFee: e.executionFee(snap, trade.PositionOrderInfo{
			OrderType:                    trade.MarketIncrease,
			Market:                       m.MarketTokenAddress,
			SwapPath:                     swapPath,
			IsLong:                       params.IsLong,
			InitialCollateralToken:       collateral.Address,
			TargetCollateralToken:        target.Address,
			InitialCollateralDeltaAmount: params.CollateralAmount,
			SizeDeltaUsd:                 sizeDeltaUsd,
			AcceptablePrice:              orderPrice,
		}),
	}

	quote.Risk = e.riskManager.CheckIncrease(IncreaseRiskInput{
		CollateralToken:    collateral.Symbol,
		CollateralUsd:      collateralUsd,
		CollateralDeltaUsd: collateralDeltaUsd,
		SizeDeltaUsd:       sizeDeltaUsd,
		AvailableUsd:       markets.GetAvailableUsdLiquidityForPosition(&m, params.IsLong),
		LeverageBps:        params.LeverageBps,
		MaxLeverageBps:     maxLeverage,
		SwapPriceImpactBps: swapImpactBps,
		SlippageBps:        params.SlippageBps,
	})

	if quote.Risk.Allowed {
		e.journal(ctx, increaseRecord(quote, m.IndexToken.Symbol, impact))
	}
	return quote, nil
}

// gasPriceFor picks the configured gas price, else the live one, else the
// snapshot's.
func (e *Engine) gasPriceFor(snap *models.Snapshot) *big.Int {
	if e.cfg.GasPrice != nil {
		return e.cfg.GasPrice
	}
	if e.gasPrice != nil {
		if live := e.gasPrice.GasPrice(); live != nil {
			return live
		}
	}
	return snap.GasPrice
}

func (e *Engine) executionFee(snap *models.Snapshot, o trade.OrderInfo) *models.ExecutionFee {
	gasPrice := e.gasPriceFor(snap)
	if snap.GasLimits == nil || gasPrice == nil {
		return nil
	}
	return trade.GetOrderExecutionFee(snap.GasLimits, snap.Tokens, snap.NativeTokenAddress, gasPrice, o)
}

// journal writes q to every store concurrently. Failures are logged and
// counted; they never fail the quote.
func (e *Engine) journal(ctx context.Context, q *models.QuoteRecord) {
	if len(e.journals) == 0 {
		return
	}

	var g errgroup.Group
	for _, store := range e.journals {
		store := store // per-iteration copy (go < 1.22 loop semantics)
		g.Go(func() error {
			if err := store.InsertQuote(ctx, q); err != nil {
				metrics.JournalErrors.Inc()
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.log.WithError(err).WithField("quote_id", q.ID).Warn("failed to journal quote")
	}
}

func (e *Engine) observe(kind string, start time.Time, risk *RiskCheckResult, err error) {
	result := metrics.ResultOK
	switch {
	case errors.Is(err, ErrNoRoute):
		result = metrics.ResultNoRoute
	case err != nil:
		result = metrics.ResultError
	case risk != nil && !risk.Allowed:
		result = metrics.ResultRejected
	}

	metrics.QuotesTotal.WithLabelValues(kind, result).Inc()
	metrics.QuoteLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	fields := logrus.Fields{"kind": kind, "result": result, "duration": time.Since(start)}
	switch {
	case err != nil:
		e.log.WithFields(fields).WithError(err).Debug("quote failed")
	case risk != nil && !risk.Allowed:
		e.log.WithFields(fields).WithField("reason", risk.Reason()).Info("quote rejected by risk checks")
	}
}

func joinPath(path []common.Address) string {
	parts := make([]string, len(path))
	for i, addr := range path {
		parts[i] = addr.Hex()
	}
	return strings.Join(parts, ",")
}

func swapRecord(q *SwapQuote) *models.QuoteRecord {
	return &models.QuoteRecord{
		ID:              q.ID,
		Kind:            constants.QuoteKindSwap,
		ChainID:         q.ChainID,
		SnapshotVersion: q.SnapshotVersion,
		QuotedAt:        q.QuotedAt,
		TokenIn:         q.TokenIn.Symbol,
		TokenOut:        q.TokenOut.Symbol,
		Path:            joinPath(q.SwapPath),
		Hops:            len(q.SwapPath),
		AmountIn:        q.AmountIn.String(),
		AmountOut:       q.AmountOut.String(),
		MinAmountOut:    q.MinAmountOut.String(),
		UsdIn:           q.UsdIn.String(),
		UsdOut:          q.UsdOut.String(),
		TotalFeesUsd:    q.Fees.TotalFees.DeltaUsd.String(),
		PriceImpactBps:  q.PriceImpactBps,
	}
}

func increaseRecord(q *IncreaseQuote, indexSymbol string, impact *big.Int) *models.QuoteRecord {
	return &models.QuoteRecord{
		ID:              q.ID,
		Kind:            constants.QuoteKindIncrease,
		ChainID:         q.ChainID,
		SnapshotVersion: q.SnapshotVersion,
		QuotedAt:        q.QuotedAt,
		TokenIn:         q.CollateralToken.Symbol,
		TokenOut:        indexSymbol,
		Market:          q.Market.Hex(),
		Path:            joinPath(q.SwapPath),
		Hops:            len(q.SwapPath),
		AmountIn:        q.CollateralAmount.String(),
		AmountOut:       q.SizeDeltaInTokens.String(),
		MinAmountOut:    "0",
		UsdIn:           q.CollateralUsd.String(),
		UsdOut:          q.SizeDeltaUsd.String(),
		TotalFeesUsd:    q.Fees.TotalFees.DeltaUsd.String(),
		PriceImpactBps:  numbers.BasisPoints(impact, q.SizeDeltaUsd, false).Int64(),
	}
}

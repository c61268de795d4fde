package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/perps-swap-core/internal/config"
	"github.com/aman-zulfiqar/perps-swap-core/internal/swapengine"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

func main() {
	loadEnv()

	mode := flag.String("mode", "swap", "swap | increase | deposit | withdrawal | markets")
	snapshotPath := flag.String("snapshot", "snapshot.json", "snapshot JSON file")
	inTok := flag.String("in", "WETH", "input token symbol or address")
	outTok := flag.String("out", "USDC", "output token symbol or address")
	amt := flag.String("amt", "", "amount in human units (e.g. 0.1)")
	slippageBps := flag.Uint("slippage-bps", 30, "slippage in bps (e.g. 30 = 0.3%)")
	market := flag.String("market", "", "market token address (increase, deposit, withdrawal)")
	leverage := flag.String("leverage", "2", "leverage multiple (increase)")
	short := flag.Bool("short", false, "open a short (increase)")
	shortAmt := flag.String("short-amt", "", "short token amount (deposit)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	snap, err := swapengine.LoadSnapshotFile(*snapshotPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load snapshot:", err)
		os.Exit(1)
	}
	source, err := swapengine.NewStaticSource(snap)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid snapshot:", err)
		os.Exit(1)
	}
	ec, err := swapengine.EngineConfigFromConfig(config.Load())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init swapengine:", err)
		os.Exit(1)
	}
	// The file decides the chain, not CHAIN_ID.
	ec.ChainID = snap.ChainID
	engine := swapengine.NewEngine(ec, source, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *slippageBps > 10000 {
		fmt.Fprintln(os.Stderr, "-slippage-bps must be <= 10000")
		os.Exit(2)
	}
	slip := uint16(*slippageBps)

	var out any
	switch *mode {
	case "swap":
		if *amt == "" {
			fmt.Fprintln(os.Stderr, "missing -amt")
			os.Exit(2)
		}
		out, err = engine.QuoteSwap(ctx, &swapengine.SwapIntent{
			TokenIn:     *inTok,
			TokenOut:    *outTok,
			Amount:      *amt,
			SlippageBps: &slip,
		})
	case "increase":
		if *amt == "" || *market == "" {
			fmt.Fprintln(os.Stderr, "missing -amt or -market")
			os.Exit(2)
		}
		out, err = engine.QuoteIncrease(ctx, &swapengine.IncreaseIntent{
			Market:           *market,
			CollateralToken:  *inTok,
			CollateralAmount: *amt,
			Leverage:         *leverage,
			IsLong:           !*short,
			SlippageBps:      &slip,
		})
	case "deposit":
		if *market == "" {
			fmt.Fprintln(os.Stderr, "missing -market")
			os.Exit(2)
		}
		out, err = engine.QuoteDeposit(ctx, &swapengine.DepositIntent{
			Market:           *market,
			LongTokenAmount:  *amt,
			ShortTokenAmount: *shortAmt,
		})
	case "withdrawal":
		if *amt == "" || *market == "" {
			fmt.Fprintln(os.Stderr, "missing -amt or -market")
			os.Exit(2)
		}
		out, err = engine.QuoteWithdrawal(ctx, &swapengine.WithdrawalIntent{
			Market:            *market,
			MarketTokenAmount: *amt,
		})
	case "markets":
		out, err = engine.ListMarkets(ctx)
	default:
		fmt.Fprintln(os.Stderr, "invalid -mode (use swap|increase|deposit|withdrawal|markets)")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "quote failed:", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}

package config

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"gopkg.in/yaml.v3"

	"github.com/aman-zulfiqar/perps-swap-core/internal/swap"
)

// RoutingFile is the optional YAML file tuning the router, the quote risk
// limits and the gas price.
type RoutingFile struct {
	Router RouterSection `yaml:"router"`
	Risk   RiskSection   `yaml:"risk"`
	Gas    GasSection    `yaml:"gas"`
}

type RouterSection struct {
	MaxHops       int      `yaml:"max_hops"`
	MaxCandidates int      `yaml:"max_candidates"`
	NaiveTopN     int      `yaml:"naive_top_n"`
	OrderRaw      []string `yaml:"order"`

	Order []swap.RouteOrder `yaml:"-"`
}

type RiskSection struct {
	MaxPriceImpactBps  uint16   `yaml:"max_price_impact_bps"`
	DefaultSlippageBps uint16   `yaml:"default_slippage_bps"`
	MaxSlippageBps     uint16   `yaml:"max_slippage_bps"`
	MaxSwapUsd         int64    `yaml:"max_swap_usd"`
	AllowedTokens      []string `yaml:"allowed_tokens"`
}

type GasSection struct {
	// GasPriceRaw overrides the snapshot gas price, in wei. Decimal or 0x hex.
	GasPriceRaw string   `yaml:"gas_price_wei"`
	GasPrice    *big.Int `yaml:"-"`
}

// LoadRoutingFile reads and validates a routing file. ${VAR} references are
// expanded from the environment.
func LoadRoutingFile(path string) (*RoutingFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open routing file: %w", err)
	}
	defer file.Close()
	return LoadRoutingFromReader(file)
}

func LoadRoutingFromReader(r io.Reader) (*RoutingFile, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read routing file: %w", err)
	}

	var rf RoutingFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &rf); err != nil {
		return nil, fmt.Errorf("parse routing file: %w", err)
	}
	if err := rf.normalise(); err != nil {
		return nil, err
	}
	return &rf, nil
}

func (rf *RoutingFile) normalise() error {
	if rf.Router.MaxHops < 0 || rf.Router.MaxCandidates < 0 || rf.Router.NaiveTopN < 0 {
		return fmt.Errorf("router limits must not be negative")
	}
	rf.Router.Order = rf.Router.Order[:0]
	for _, raw := range rf.Router.OrderRaw {
		o, err := swap.ParseRouteOrder(strings.ToLower(strings.TrimSpace(raw)))
		if err != nil {
			return fmt.Errorf("router.order: %w", err)
		}
		rf.Router.Order = append(rf.Router.Order, o)
	}

	if rf.Risk.MaxSlippageBps > 0 && rf.Risk.DefaultSlippageBps > rf.Risk.MaxSlippageBps {
		return fmt.Errorf("risk.default_slippage_bps %d exceeds risk.max_slippage_bps %d", rf.Risk.DefaultSlippageBps, rf.Risk.MaxSlippageBps)
	}
	for i, sym := range rf.Risk.AllowedTokens {
		rf.Risk.AllowedTokens[i] = strings.ToUpper(strings.TrimSpace(sym))
	}

	if s := strings.TrimSpace(rf.Gas.GasPriceRaw); s != "" {
		v, ok := math.ParseBig256(s)
		if !ok || v.Sign() <= 0 {
			return fmt.Errorf("gas.gas_price_wei: invalid value %q", s)
		}
		rf.Gas.GasPrice = v
	}
	return nil
}

// RouterConfig overlays the file's non-zero router settings on base.
func (rf *RoutingFile) RouterConfig(base swap.RouterConfig) swap.RouterConfig {
	if rf.Router.MaxHops > 0 {
		base.MaxHops = rf.Router.MaxHops
	}
	if rf.Router.MaxCandidates > 0 {
		base.MaxCandidates = rf.Router.MaxCandidates
	}
	if rf.Router.NaiveTopN > 0 {
		base.NaiveTopN = rf.Router.NaiveTopN
	}
	return base
}

package swap

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
)

// RouteOrder is one ranking key of FindSwapPath.
type RouteOrder string

const (
	// OrderLiquidity prefers the deepest minimum-edge liquidity.
	OrderLiquidity RouteOrder = "liquidity"
	// OrderLength prefers fewer hops.
	OrderLength RouteOrder = "length"
)

func ParseRouteOrder(s string) (RouteOrder, error) {
	switch RouteOrder(s) {
	case OrderLiquidity, OrderLength:
		return RouteOrder(s), nil
	default:
		return "", fmt.Errorf("unknown route order %q", s)
	}
}

type FindSwapPathOptions struct {
	// Order ranks feasible paths key by key. When no key decides, the path
	// with the largest output wins.
	Order []RouteOrder
}

// Route is one candidate market path.
type Route struct {
	Edges     []models.MarketEdge
	Path      []common.Address
	Liquidity *big.Int
}

// Routes holds the candidate paths tokenIn -> tokenOut of one graph.
type Routes struct {
	graph      *Graph
	tokenIn    common.Address
	tokenOut   common.Address
	candidates []Route

	estimate SwapEstimator
	naive    NaiveSwapEstimator
}

// Routes expands the indexed token paths into market paths. A market is never
// used twice in one path.
func (g *Graph) Routes(tokenIn, tokenOut common.Address) *Routes {
	r := &Routes{
		graph:    g,
		tokenIn:  tokenIn,
		tokenOut: tokenOut,
		estimate: NewSwapEstimator(g.markets),
		naive:    NewNaiveSwapEstimator(g.markets),
	}
	if tokenIn == tokenOut {
		return r
	}

	liquidity := NewMarketEdgeLiquidityGetter(g.markets)
	for _, tokens := range g.TokenPaths(tokenIn, tokenOut) {
		g.expand(tokens, 0, nil, func(edges []models.MarketEdge) bool {
			r.candidates = append(r.candidates, newRoute(edges, liquidity))
			return len(r.candidates) < g.cfg.MaxCandidates
		})
		if len(r.candidates) >= g.cfg.MaxCandidates {
			g.log.WithFields(logrus.Fields{
				"token_in":  tokenIn.Hex(),
				"token_out": tokenOut.Hex(),
				"limit":     g.cfg.MaxCandidates,
			}).Warn("swap route candidates truncated")
			break
		}
	}
	return r
}

// expand walks the cartesian product of markets per hop in address order.
// emit returns false to stop.
func (g *Graph) expand(tokens []common.Address, hop int, edges []models.MarketEdge, emit func([]models.MarketEdge) bool) bool {
	if hop == len(tokens)-1 {
		return emit(append([]models.MarketEdge(nil), edges...))
	}
	from, to := tokens[hop], tokens[hop+1]
	for _, market := range g.marketsByPair[tokenPair{from: from, to: to}] {
		if usesMarket(edges, market) {
			continue
		}
		next := append(edges, models.MarketEdge{MarketAddress: market, From: from, To: to})
		if !g.expand(tokens, hop+1, next, emit) {
			return false
		}
	}
	return true
}

func usesMarket(edges []models.MarketEdge, market common.Address) bool {
	for _, e := range edges {
		if e.MarketAddress == market {
			return true
		}
	}
	return false
}

func newRoute(edges []models.MarketEdge, liquidity MarketEdgeLiquidityGetter) Route {
	rt := Route{Edges: edges, Path: make([]common.Address, len(edges))}
	for i, e := range edges {
		rt.Path[i] = e.MarketAddress
		l := liquidity(e)
		if rt.Liquidity == nil || l.Cmp(rt.Liquidity) < 0 {
			rt.Liquidity = l
		}
	}
	return rt
}

// Candidates returns the market paths in discovery order.
func (r *Routes) Candidates() []Route {
	return r.candidates
}

// MaxLiquidityPath returns the candidate with the deepest minimum-edge
// liquidity, the first one on ties. It returns nil when no path exists.
func (r *Routes) MaxLiquidityPath() *Route {
	var best *Route
	for i := range r.candidates {
		if best == nil || r.candidates[i].Liquidity.Cmp(best.Liquidity) > 0 {
			best = &r.candidates[i]
		}
	}
	return best
}

type scoredRoute struct {
	route  *Route
	index  int
	yield  Yield
	usdOut *big.Int
}

// FindSwapPath picks the path for usdIn. Paths with an infeasible hop are
// dropped by a coarse yield pass, survivors are priced hop by hop with the
// exact estimator, and the best one is returned with its full stats. It
// returns nil when no path can carry usdIn. The result only depends on the
// snapshot, usdIn and opts.
func (r *Routes) FindSwapPath(usdIn *big.Int, opts FindSwapPathOptions) *models.SwapPathStats {
	if usdIn == nil || usdIn.Sign() <= 0 || len(r.candidates) == 0 {
		return nil
	}

	survivors := make([]scoredRoute, 0, len(r.candidates))
	for i := range r.candidates {
		rt := &r.candidates[i]
		y, usd := Yield(1), usdIn
		for _, e := range rt.Edges {
			est := r.naive(e, usd)
			y *= est.Yield
			if y == 0 {
				break
			}
			usd = est.UsdOutMin
		}
		if y > 0 {
			survivors = append(survivors, scoredRoute{route: rt, index: i, yield: y})
		}
	}

	// Without an order the naive yield decides which survivors are priced
	// first; pricing stops once NaiveTopN of them turned out feasible.
	limit := len(survivors)
	if len(opts.Order) == 0 && r.graph.cfg.NaiveTopN > 0 {
		sort.SliceStable(survivors, func(i, j int) bool { return survivors[i].yield > survivors[j].yield })
		limit = r.graph.cfg.NaiveTopN
	}

	feasible := make([]scoredRoute, 0, len(survivors))
	for _, s := range survivors {
		if len(feasible) >= limit {
			break
		}
		usd := usdIn
		for _, e := range s.route.Edges {
			usd = r.estimate(e, usd)
			if usd.Sign() == 0 {
				break
			}
		}
		if usd.Sign() > 0 {
			s.usdOut = usd
			feasible = append(feasible, s)
		}
	}

	r.graph.log.WithFields(logrus.Fields{
		"token_in":   r.tokenIn.Hex(),
		"token_out":  r.tokenOut.Hex(),
		"candidates": len(r.candidates),
		"survivors":  len(survivors),
		"feasible":   len(feasible),
	}).Debug("swap path search")

	if len(feasible) == 0 {
		return nil
	}

	sort.SliceStable(feasible, func(i, j int) bool {
		return rankBefore(feasible[i], feasible[j], opts.Order)
	})

	return GetSwapPathStats(r.graph.markets, feasible[0].route.Path, r.tokenIn, usdIn, true)
}

func rankBefore(a, b scoredRoute, order []RouteOrder) bool {
	for _, key := range order {
		switch key {
		case OrderLiquidity:
			if c := a.route.Liquidity.Cmp(b.route.Liquidity); c != 0 {
				return c > 0
			}
		case OrderLength:
			if len(a.route.Edges) != len(b.route.Edges) {
				return len(a.route.Edges) < len(b.route.Edges)
			}
		}
	}
	if c := a.usdOut.Cmp(b.usdOut); c != 0 {
		return c > 0
	}
	return a.index < b.index
}

package swap

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
)

// RouterConfig bounds the path search.
type RouterConfig struct {
	// MaxHops is the longest token path indexed in SwapPaths.
	MaxHops int
	// MaxCandidates caps the market paths expanded for one token pair.
	MaxCandidates int
	// NaiveTopN keeps only the N best paths by naive yield before exact
	// estimation when no ranking order is requested. 0 keeps every feasible path.
	NaiveTopN int
}

func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		MaxHops:       3,
		MaxCandidates: 256,
		NaiveTopN:     8,
	}
}

type tokenPair struct {
	from common.Address
	to   common.Address
}

// Graph is the swap graph of one snapshot. It is built once and only read
// afterwards, so a single Graph may serve concurrent queries.
type Graph struct {
	cfg     RouterConfig
	log     logrus.FieldLogger
	markets models.MarketsInfoData

	edges         []models.MarketEdge
	adjacency     map[common.Address][]common.Address
	marketsByPair map[tokenPair][]common.Address

	// SwapPaths[from][to] lists every token path between the two tokens,
	// shortest first, then in address order.
	SwapPaths map[common.Address]map[common.Address][][]common.Address
}

func lessAddress(a, b common.Address) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func sortAddresses(addrs []common.Address) {
	sort.Slice(addrs, func(i, j int) bool { return lessAddress(addrs[i], addrs[j]) })
}

// NewGraph derives one edge per market per direction from every enabled
// market. Single-token markets contribute a self edge, which path search
// never uses.
func NewGraph(ms models.MarketsInfoData, cfg RouterConfig, log logrus.FieldLogger) *Graph {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.MaxHops <= 0 {
		cfg.MaxHops = DefaultRouterConfig().MaxHops
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultRouterConfig().MaxCandidates
	}

	g := &Graph{
		cfg:           cfg,
		log:           log,
		markets:       ms,
		adjacency:     make(map[common.Address][]common.Address),
		marketsByPair: make(map[tokenPair][]common.Address),
		SwapPaths:     make(map[common.Address]map[common.Address][][]common.Address),
	}

	addrs := make([]common.Address, 0, len(ms))
	for addr := range ms {
		addrs = append(addrs, addr)
	}
	sortAddresses(addrs)

	for _, addr := range addrs {
		m := ms[addr]
		if m.IsDisabled {
			continue
		}
		long, short := m.LongTokenAddress, m.ShortTokenAddress
		if long == short {
			g.addEdge(addr, long, long)
			continue
		}
		g.addEdge(addr, long, short)
		g.addEdge(addr, short, long)
	}

	for from := range g.adjacency {
		sortAddresses(g.adjacency[from])
	}
	g.buildSwapPaths()

	log.WithFields(logrus.Fields{
		"markets": len(ms),
		"edges":   len(g.edges),
		"tokens":  len(g.adjacency),
	}).Debug("swap graph built")

	return g
}

func (g *Graph) addEdge(market, from, to common.Address) {
	g.edges = append(g.edges, models.MarketEdge{MarketAddress: market, From: from, To: to})

	pair := tokenPair{from: from, to: to}
	if _, ok := g.marketsByPair[pair]; !ok && from != to {
		g.adjacency[from] = append(g.adjacency[from], to)
	}
	g.marketsByPair[pair] = append(g.marketsByPair[pair], market)
}

func (g *Graph) buildSwapPaths() {
	sources := make([]common.Address, 0, len(g.adjacency))
	for from := range g.adjacency {
		sources = append(sources, from)
	}
	sortAddresses(sources)

	for _, src := range sources {
		visited := map[common.Address]bool{src: true}
		path := []common.Address{src}
		g.walk(src, path, visited)
	}

	for _, byDst := range g.SwapPaths {
		for _, paths := range byDst {
			sort.SliceStable(paths, func(i, j int) bool {
				if len(paths[i]) != len(paths[j]) {
					return len(paths[i]) < len(paths[j])
				}
				for k := range paths[i] {
					if paths[i][k] != paths[j][k] {
						return lessAddress(paths[i][k], paths[j][k])
					}
				}
				return false
			})
		}
	}
}

func (g *Graph) walk(current common.Address, path []common.Address, visited map[common.Address]bool) {
	if len(path)-1 >= g.cfg.MaxHops {
		return
	}
	for _, next := range g.adjacency[current] {
		if visited[next] {
			continue
		}
		p := append(append([]common.Address(nil), path...), next)

		src := p[0]
		if g.SwapPaths[src] == nil {
			g.SwapPaths[src] = make(map[common.Address][][]common.Address)
		}
		g.SwapPaths[src][next] = append(g.SwapPaths[src][next], p)

		visited[next] = true
		g.walk(next, p, visited)
		delete(visited, next)
	}
}

// Edges returns every edge in market address order.
func (g *Graph) Edges() []models.MarketEdge {
	return append([]models.MarketEdge(nil), g.edges...)
}

// MarketsForTokenPair lists the markets swapping from into to, in address order.
func (g *Graph) MarketsForTokenPair(from, to common.Address) []common.Address {
	return append([]common.Address(nil), g.marketsByPair[tokenPair{from: from, to: to}]...)
}

// TokenPaths returns the indexed token paths from -> to.
func (g *Graph) TokenPaths(from, to common.Address) [][]common.Address {
	return g.SwapPaths[from][to]
}

func (g *Graph) Markets() models.MarketsInfoData {
	return g.markets
}

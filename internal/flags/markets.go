package flags

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MarketKeyPrefix namespaces the per-market disable overrides.
const MarketKeyPrefix = "market.disabled."

// MarketKey is the flag key disabling market.
func MarketKey(market common.Address) string {
	return MarketKeyPrefix + strings.ToLower(market.Hex())
}

// SetMarketDisabled overrides the snapshot's enabled state of market until
// the flag is cleared.
func (s *Store) SetMarketDisabled(ctx context.Context, market common.Address, disabled bool, reason string) (*Flag, error) {
	return s.Upsert(ctx, MarketKey(market), disabled, reason)
}

func (s *Store) ClearMarket(ctx context.Context, market common.Address) error {
	return s.Delete(ctx, MarketKey(market))
}

// DisabledMarkets returns the markets whose override is set to disabled.
func (s *Store) DisabledMarkets(ctx context.Context) (map[common.Address]bool, error) {
	overrides, err := s.List(ctx, MarketKeyPrefix)
	if err != nil {
		return nil, err
	}

	out := make(map[common.Address]bool, len(overrides))
	for _, f := range overrides {
		if f.Value {
			out[common.HexToAddress(strings.TrimPrefix(f.Key, MarketKeyPrefix))] = true
		}
	}
	return out, nil
}

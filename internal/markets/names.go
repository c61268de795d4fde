package markets

import (
	"fmt"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
)

// GetMarketIndexName renders e.g. "ETH/USD", or "SWAP-ONLY".
func GetMarketIndexName(m *models.MarketInfo) string {
	if m.IsSpotOnly {
		return "SWAP-ONLY"
	}
	return fmt.Sprintf("%s/USD", m.IndexToken.Symbol)
}

// GetMarketPoolName renders the collateral pair, e.g. "WETH-USDC".
func GetMarketPoolName(m *models.MarketInfo) string {
	if m.LongTokenAddress == m.ShortTokenAddress {
		return m.LongToken.Symbol
	}
	return fmt.Sprintf("%s-%s", m.LongToken.Symbol, m.ShortToken.Symbol)
}

// GetMarketFullName is "ETH/USD [WETH-USDC]".
func GetMarketFullName(m *models.MarketInfo) string {
	return fmt.Sprintf("%s [%s]", GetMarketIndexName(m), GetMarketPoolName(m))
}

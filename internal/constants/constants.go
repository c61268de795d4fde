package constants

import "time"

// Redis keys
const (
	RedisKeySnapshotPrefix = "snapshot:" // + chain id
	RedisKeyRecentQuotes   = "quotes:recent"
)

// Redis Pub/Sub channels
const (
	PubSubChannelSnapshots = "snapshot:updates"
	PubSubChannelQuotes    = "quotes:live"
)

// Limits
const (
	MaxRecentQuotes = 100
	// Snapshots older than this are still served but logged as stale.
	SnapshotStaleAfter = 2 * time.Minute
)

const (
	// ArbitrumChainID is the default chain served.
	ArbitrumChainID int64 = 42161
	// FundingPeriod is the window funding and borrowing rates are quoted over.
	FundingPeriod = time.Hour
	// MarketTokenDecimals is the precision of every market (GM) token.
	MarketTokenDecimals = 18
)

// Quote kinds, as journaled and as metric labels.
const (
	QuoteKindSwap       = "swap"
	QuoteKindIncrease   = "increase"
	QuoteKindDeposit    = "deposit"
	QuoteKindWithdrawal = "withdrawal"
)

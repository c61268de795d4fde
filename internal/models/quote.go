package models

import "time"

// QuoteRecord is the journal row written for every served quote. Amounts are
// decimal strings of the fixed-point values.
type QuoteRecord struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"` // "swap" or "increase"
	ChainID         int64     `json:"chain_id"`
	SnapshotVersion uint64    `json:"snapshot_version"`
	QuotedAt        time.Time `json:"quoted_at"`

	TokenIn  string `json:"token_in"`
	TokenOut string `json:"token_out"`
	Market   string `json:"market,omitempty"`
	Path     string `json:"path"`
	Hops     int    `json:"hops"`

	AmountIn       string `json:"amount_in"`
	AmountOut      string `json:"amount_out"`
	MinAmountOut   string `json:"min_amount_out"`
	UsdIn          string `json:"usd_in"`
	UsdOut         string `json:"usd_out"`
	TotalFeesUsd   string `json:"total_fees_usd"`
	PriceImpactBps int64  `json:"price_impact_bps"`
}

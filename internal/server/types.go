package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details any    `json:"details,omitempty"` // dev mode only
}

type HealthResponse struct {
	OK    bool   `json:"ok"`
	Redis string `json:"redis,omitempty"` // "ok" or "down"; empty without a cache

	ChainID         int64  `json:"chain_id,omitempty"`
	SnapshotVersion uint64 `json:"snapshot_version,omitempty"`
	// Seconds since the snapshot's oracle tick
	SnapshotAgeSeconds int64 `json:"snapshot_age_seconds,omitempty"`
}

// ItemsResponse wraps list endpoints
type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

// MarketFlagRequest sets or lifts the disable override of one market
type MarketFlagRequest struct {
	Disabled bool   `json:"disabled"`
	Reason   string `json:"reason,omitempty"`
}

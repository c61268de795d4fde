package storage

import (
	"context"
	"errors"
	"io"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
)

// ErrSnapshotNotFound is returned when no snapshot was stored for a chain.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotReader loads the latest validated snapshot of a chain.
type SnapshotReader interface {
	LoadSnapshot(ctx context.Context, chainID int64) (*models.Snapshot, error)
}

// SnapshotCache defines the interface for the shared snapshot cache
type SnapshotCache interface {
	SnapshotReader

	// SaveSnapshot stores the snapshot and announces the new version
	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error

	// GetRecentQuotes retrieves the most recent quotes, newest first
	GetRecentQuotes(ctx context.Context, limit int64) ([]*models.QuoteRecord, error)

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	// Close closes the cache connection
	io.Closer
}

// QuoteStore receives a record of every served quote
type QuoteStore interface {
	InsertQuote(ctx context.Context, q *models.QuoteRecord) error
}

// SnapshotUpdateHandler is a function that processes snapshot announcements
type SnapshotUpdateHandler func(models.SnapshotUpdate)

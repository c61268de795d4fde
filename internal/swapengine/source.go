package swapengine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/storage"
)

// LoadSnapshotFile reads and validates a snapshot JSON file.
func LoadSnapshotFile(path string) (*models.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", models.ErrInvalidSnapshot, path, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// StaticSource serves one fixed snapshot. The CLI and tests use it in place
// of the redis cache.
type StaticSource struct {
	snap *models.Snapshot
}

func NewStaticSource(snap *models.Snapshot) (*StaticSource, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &StaticSource{snap: snap}, nil
}

func (s *StaticSource) LoadSnapshot(_ context.Context, chainID int64) (*models.Snapshot, error) {
	if s.snap.ChainID != chainID {
		return nil, fmt.Errorf("%w: chain %d", storage.ErrSnapshotNotFound, chainID)
	}
	return s.snap, nil
}

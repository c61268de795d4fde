package flags

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("flag not found")

// Flag is one runtime override. Market overrides use MarketKey keys.
type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is everything the engines read for one oracle tick. It is never
// mutated after Validate; the next tick replaces it.
type Snapshot struct {
	ChainID            int64          `json:"chain_id"`
	Version            uint64         `json:"version"`
	UpdatedAt          time.Time      `json:"updated_at"`
	NativeTokenAddress common.Address `json:"native_token_address"`

	Tokens  TokensData      `json:"tokens"`
	Markets MarketsInfoData `json:"markets"`

	// Optional. Execution fee estimates are skipped without them.
	GasLimits *GasLimitsConfig `json:"gas_limits,omitempty"`
	GasPrice  *big.Int         `json:"gas_price,omitempty"`
}

func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	for addr, t := range s.Tokens {
		if addr != t.Address {
			return fmt.Errorf("%w: token keyed %s has address %s", ErrInvalidSnapshot, addr.Hex(), t.Address.Hex())
		}
		if err := t.Prices.Validate(); err != nil {
			return fmt.Errorf("%w: token %s: %v", ErrInvalidSnapshot, t.Symbol, err)
		}
	}
	for addr, m := range s.Markets {
		if addr != m.MarketTokenAddress {
			return fmt.Errorf("%w: market keyed %s has address %s", ErrInvalidSnapshot, addr.Hex(), m.MarketTokenAddress.Hex())
		}
		if err := m.Validate(); err != nil {
			return err
		}
	}
	if s.GasLimits != nil {
		if err := s.GasLimits.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TokenBySymbol does a case-insensitive symbol lookup.
func (s *Snapshot) TokenBySymbol(symbol string) (TokenData, bool) {
	for _, t := range s.Tokens {
		if strings.EqualFold(t.Symbol, symbol) {
			return t, true
		}
	}
	return TokenData{}, false
}

// WithDisabledMarkets returns a copy whose listed markets are marked disabled.
// The receiver is left untouched.
func (s *Snapshot) WithDisabledMarkets(disabled map[common.Address]bool) *Snapshot {
	if len(disabled) == 0 {
		return s
	}
	out := *s
	out.Markets = make(MarketsInfoData, len(s.Markets))
	for addr, m := range s.Markets {
		if disabled[addr] {
			m.IsDisabled = true
		}
		out.Markets[addr] = m
	}
	return &out
}

// SnapshotUpdate announces that a new snapshot version was stored.
type SnapshotUpdate struct {
	ChainID   int64     `json:"chain_id"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
	Markets   int       `json:"markets"`
}

// Update describes s as a SnapshotUpdate.
func (s *Snapshot) Update() SnapshotUpdate {
	return SnapshotUpdate{
		ChainID:   s.ChainID,
		Version:   s.Version,
		UpdatedAt: s.UpdatedAt,
		Markets:   len(s.Markets),
	}
}

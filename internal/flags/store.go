package flags

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

// HashKey is the redis hash holding every override, one field per flag key.
const HashKey = "flags:overrides"

// MaxReasonLen bounds the free-text reason stored with a flag.
const MaxReasonLen = 256

var keyRe = regexp.MustCompile(`^[a-z0-9._-]{1,128}$`)

type Store struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewStore(client redis.Cmdable) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &Store{client: client, now: time.Now}, nil
}

// NormaliseKey lowercases key and checks it. Market keys must carry a hex
// address; it is rewritten to the canonical MarketKey form.
func NormaliseKey(key string) (string, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	if !keyRe.MatchString(k) {
		return "", fmt.Errorf("invalid flag key %q", key)
	}
	if hex, ok := strings.CutPrefix(k, MarketKeyPrefix); ok {
		if !common.IsHexAddress(hex) {
			return "", fmt.Errorf("invalid market in flag key %q", key)
		}
		return MarketKey(common.HexToAddress(hex)), nil
	}
	return k, nil
}

func (s *Store) Upsert(ctx context.Context, key string, value bool, reason string) (*Flag, error) {
	k, err := NormaliseKey(key)
	if err != nil {
		return nil, err
	}
	if len(reason) > MaxReasonLen {
		return nil, fmt.Errorf("flag reason longer than %d bytes", MaxReasonLen)
	}

	f := &Flag{Key: k, Value: value, Reason: reason, UpdatedAt: s.now().UTC()}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal flag: %w", err)
	}
	if err := s.client.HSet(ctx, HashKey, k, b).Err(); err != nil {
		return nil, fmt.Errorf("upsert flag %s: %w", k, err)
	}
	return f, nil
}

func (s *Store) Get(ctx context.Context, key string) (*Flag, error) {
	k, err := NormaliseKey(key)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.HGet(ctx, HashKey, k).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("get flag %s: %w", k, err)
	}

	var f Flag
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("unmarshal flag %s: %w", k, err)
	}
	return &f, nil
}

// List returns the flags whose key starts with prefix ("" for all), ordered
// by key. Fields that fail to decode or whose key no longer normalises are
// skipped.
func (s *Store) List(ctx context.Context, prefix string) ([]*Flag, error) {
	fields, err := s.client.HGetAll(ctx, HashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list flags: %w", err)
	}

	out := make([]*Flag, 0, len(fields))
	for k, raw := range fields {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if nk, err := NormaliseKey(k); err != nil || nk != k {
			continue
		}
		var f Flag
		if err := json.Unmarshal([]byte(raw), &f); err != nil || f.Key != k {
			continue
		}
		out = append(out, &f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Delete removes key. Deleting a missing flag is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	k, err := NormaliseKey(key)
	if err != nil {
		return err
	}
	if err := s.client.HDel(ctx, HashKey, k).Err(); err != nil {
		return fmt.Errorf("delete flag %s: %w", k, err)
	}
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/perps-swap-core/internal/constants"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/storage"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache keeps the latest snapshot per chain and the recent quote list.
type RedisCache struct {
	client *redis.Client
	log    logrus.FieldLogger
}

func NewRedisCache(ctx context.Context, cfg RedisConfig, log logrus.FieldLogger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return NewRedisCacheFromClient(client, log), nil
}

func NewRedisCacheFromClient(client *redis.Client, log logrus.FieldLogger) *RedisCache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisCache{client: client, log: log}
}

func snapshotKey(chainID int64) string {
	return constants.RedisKeySnapshotPrefix + strconv.FormatInt(chainID, 10)
}

// SaveSnapshot validates snap, stores it and publishes its SnapshotUpdate in
// one transaction.
func (r *RedisCache) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	update, err := json.Marshal(snap.Update())
	if err != nil {
		return fmt.Errorf("marshal snapshot update: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, snapshotKey(snap.ChainID), data, 0)
	pipe.Publish(ctx, constants.PubSubChannelSnapshots, update)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"chain_id": snap.ChainID,
		"version":  snap.Version,
		"markets":  len(snap.Markets),
		"bytes":    len(data),
	}).Info("snapshot stored")
	return nil
}

// LoadSnapshot returns storage.ErrSnapshotNotFound when the chain has no
// snapshot and models.ErrInvalidSnapshot when the stored one is malformed.
func (r *RedisCache) LoadSnapshot(ctx context.Context, chainID int64) (*models.Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey(chainID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: chain %d", storage.ErrSnapshotNotFound, chainID)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", models.ErrInvalidSnapshot, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// InsertQuote pushes q onto the capped recent list and the live channel.
func (r *RedisCache) InsertQuote(ctx context.Context, q *models.QuoteRecord) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentQuotes, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentQuotes, 0, constants.MaxRecentQuotes-1)
	pipe.Publish(ctx, constants.PubSubChannelQuotes, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record quote: %w", err)
	}
	return nil
}

func (r *RedisCache) GetRecentQuotes(ctx context.Context, limit int64) ([]*models.QuoteRecord, error) {
	if limit <= 0 || limit > constants.MaxRecentQuotes {
		limit = constants.MaxRecentQuotes
	}
	vals, err := r.client.LRange(ctx, constants.RedisKeyRecentQuotes, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent quotes: %w", err)
	}

	out := make([]*models.QuoteRecord, 0, len(vals))
	for _, v := range vals {
		var q models.QuoteRecord
		if err := json.Unmarshal([]byte(v), &q); err != nil {
			r.log.WithError(err).Warn("skipping malformed quote record")
			continue
		}
		out = append(out, &q)
	}
	return out, nil
}

func (r *RedisCache) Client() *redis.Client {
	return r.client
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aman-zulfiqar/perps-swap-core/internal/cache"
	"github.com/aman-zulfiqar/perps-swap-core/internal/config"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
)

// subscriber tails snapshot announcements and the live quote stream.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	pubsub := cache.NewPubSubManager(client, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pubsub.SubscribeSnapshots(gctx, nil, func(u models.SnapshotUpdate) {
			logger.WithFields(logrus.Fields{
				"chain_id":   u.ChainID,
				"version":    u.Version,
				"updated_at": u.UpdatedAt,
			}).Info("snapshot updated")
		})
	})
	g.Go(func() error {
		return pubsub.SubscribeQuotes(gctx, nil, func(q *models.QuoteRecord) {
			logger.WithFields(logrus.Fields{
				"id":        q.ID,
				"kind":      q.Kind,
				"token_in":  q.TokenIn,
				"token_out": q.TokenOut,
				"path":      q.Path,
				"amount_in": q.AmountIn,
				"usd_out":   q.UsdOut,
			}).Info("quote")
		})
	})

	logger.Info("subscriber running, press Ctrl+C to stop")
	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("subscriber failed")
	}
	logger.Info("subscriber stopped")
}

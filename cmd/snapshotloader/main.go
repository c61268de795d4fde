package main

import (
	"context"
	"flag"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/perps-swap-core/internal/cache"
	"github.com/aman-zulfiqar/perps-swap-core/internal/config"
	"github.com/aman-zulfiqar/perps-swap-core/internal/swapengine"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

// snapshotloader publishes a snapshot file as the chain's current snapshot.
// Running api instances pick it up through the update channel.
func main() {
	loadEnv()

	path := flag.String("snapshot", "snapshot.json", "snapshot JSON file")
	touch := flag.Bool("touch", false, "stamp updated_at with the current time")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	snap, err := swapengine.LoadSnapshotFile(*path)
	if err != nil {
		logger.WithError(err).Fatal("failed to load snapshot")
	}
	if snap.ChainID != cfg.ChainID {
		logger.WithFields(logrus.Fields{
			"file_chain_id": snap.ChainID,
			"chain_id":      cfg.ChainID,
		}).Warn("snapshot chain differs from CHAIN_ID")
	}
	if *touch {
		snap.UpdatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer rc.Close()

	if err := rc.SaveSnapshot(ctx, snap); err != nil {
		logger.WithError(err).Fatal("failed to publish snapshot")
	}
	logger.WithFields(logrus.Fields{
		"chain_id": snap.ChainID,
		"version":  snap.Version,
		"markets":  len(snap.Markets),
		"tokens":   len(snap.Tokens),
	}).Info("snapshot published")
}

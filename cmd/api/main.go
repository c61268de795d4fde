package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aman-zulfiqar/perps-swap-core/internal/cache"
	"github.com/aman-zulfiqar/perps-swap-core/internal/config"
	"github.com/aman-zulfiqar/perps-swap-core/internal/flags"
	"github.com/aman-zulfiqar/perps-swap-core/internal/rpc"
	"github.com/aman-zulfiqar/perps-swap-core/internal/server"
	"github.com/aman-zulfiqar/perps-swap-core/internal/storage"
	"github.com/aman-zulfiqar/perps-swap-core/internal/swapengine"
)

func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer redisCache.Close()

	flagStore, err := flags.NewStore(redisCache.Client())
	if err != nil {
		logger.WithError(err).Fatal("failed to create flags store")
	}

	journals := []storage.QuoteStore{redisCache}
	if cfg.ClickHouseAddr != "" {
		ch, err := cache.NewClickHouseStore(ctx, cache.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		}, logger)
		if err != nil {
			// The redis journal still records quotes.
			logger.WithError(err).Warn("clickhouse journal disabled")
		} else {
			defer ch.Close()
			journals = append(journals, ch)
		}
	}

	engine, err := swapengine.NewEngineFromEnv(redisCache, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to load engine config")
	}
	engine.WithFlags(flagStore).WithJournal(journals...)

	var gasTracker *rpc.GasPriceTracker
	if cfg.RPCURL != "" {
		node, err := rpc.Dial(ctx, rpc.ClientConfig{
			URL:        cfg.RPCURL,
			MaxRetries: cfg.RPCMaxRetries,
			Logger:     logger,
		})
		if err != nil {
			logger.WithError(err).Fatal("failed to dial chain rpc")
		}
		defer node.Close()

		if id, err := node.ChainID(ctx); err != nil {
			logger.WithError(err).Warn("could not read chain id from rpc")
		} else if id.Int64() != cfg.ChainID {
			logger.WithFields(logrus.Fields{
				"rpc_chain_id": id.String(),
				"chain_id":     cfg.ChainID,
			}).Fatal("rpc serves a different chain")
		}

		gasTracker = rpc.NewGasPriceTracker(node, cfg.GasPollInterval, logger)
		engine.WithGasPrice(gasTracker)
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: &server.Handlers{
			Engine:       engine,
			Cache:        redisCache,
			Flags:        flagStore,
			QuoteTimeout: cfg.QuoteTimeout,
			DevMode:      cfg.DevMode,
			Logger:       logger,
		},
		Config: server.ServerConfig{
			Addr:      cfg.APIAddr,
			DevMode:   cfg.DevMode,
			APIKey:    cfg.APIKey,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
		},
		Logger: logger,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	pubsub := cache.NewPubSubManager(redisCache.Client(), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pubsub.SubscribeSnapshots(gctx, nil, engine.OnSnapshotUpdate)
	})
	if gasTracker != nil {
		g.Go(func() error {
			return gasTracker.Run(gctx)
		})
	}
	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"addr":     cfg.APIAddr,
			"chain_id": cfg.ChainID,
		}).Info("api server starting")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("api server failed")
	}
	if err := srv.WaitClosed(context.Background()); err != nil {
		logger.WithError(err).Warn("server did not close cleanly")
	}
}

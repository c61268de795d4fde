package rpc

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/perps-swap-core/internal/metrics"
)

type gasPricer interface {
	GasPrice(ctx context.Context) (*big.Int, error)
}

// GasPriceTracker polls the chain gas price and serves the last good reading.
type GasPriceTracker struct {
	client   gasPricer
	interval time.Duration
	log      logrus.FieldLogger

	mu        sync.RWMutex
	price     *big.Int
	updatedAt time.Time
}

func NewGasPriceTracker(client gasPricer, interval time.Duration, log logrus.FieldLogger) *GasPriceTracker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &GasPriceTracker{
		client:   client,
		interval: interval,
		log:      log.WithField("component", "gas"),
	}
}

// Run refreshes immediately and then every interval until ctx is cancelled.
// A failed refresh keeps the previous reading.
func (t *GasPriceTracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		t.Refresh(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (t *GasPriceTracker) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, t.interval)
	defer cancel()

	price, err := t.client.GasPrice(ctx)
	if err != nil {
		if ctx.Err() == nil {
			t.log.WithError(err).Warn("gas price refresh failed")
		}
		return
	}
	if price == nil || price.Sign() <= 0 {
		t.log.WithField("price", price).Warn("ignoring non-positive gas price")
		return
	}

	t.mu.Lock()
	t.price = new(big.Int).Set(price)
	t.updatedAt = time.Now()
	t.mu.Unlock()

	f, _ := new(big.Float).SetInt(price).Float64()
	metrics.GasPriceWei.Set(f)
	t.log.WithField("gas_price", price.String()).Debug("gas price updated")
}

// GasPrice returns a copy of the last reading, or nil before the first one.
func (t *GasPriceTracker) GasPrice() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.price == nil {
		return nil
	}
	return new(big.Int).Set(t.price)
}

func (t *GasPriceTracker) UpdatedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updatedAt
}

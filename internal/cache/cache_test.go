package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/perps-swap-core/internal/constants"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/storage"
	tu "github.com/aman-zulfiqar/perps-swap-core/internal/testutil"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testSnapshot() *models.Snapshot {
	return tu.Snapshot(
		tu.Market("0x0000000000000000000000000000000000000a01", tu.WETH, tu.WETH, tu.USDC, 1_000_000),
		tu.Market("0x0000000000000000000000000000000000000a03", tu.WBTC, tu.WBTC, tu.USDC, 500_000),
	)
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	_, client := setupRedis(t)
	c := NewRedisCacheFromClient(client, nil)
	ctx := context.Background()

	snap := testSnapshot()
	require.NoError(t, c.SaveSnapshot(ctx, snap))

	got, err := c.LoadSnapshot(ctx, snap.ChainID)
	require.NoError(t, err)
	assert.Equal(t, snap.Version, got.Version)
	assert.Equal(t, snap.NativeTokenAddress, got.NativeTokenAddress)
	require.Len(t, got.Markets, 2)

	m, ok := got.Markets.Get(tu.Market("0x0000000000000000000000000000000000000a01", tu.WETH, tu.WETH, tu.USDC, 1).MarketTokenAddress)
	require.True(t, ok)
	tu.AssertBig(t, snap.Markets[m.MarketTokenAddress].LongPoolAmount, m.LongPoolAmount)
	tu.AssertBig(t, tu.USD(2000), m.IndexToken.Prices.MaxPrice)
	tu.AssertBig(t, snap.GasPrice, got.GasPrice)
}

func TestLoadSnapshotMissing(t *testing.T) {
	_, client := setupRedis(t)
	c := NewRedisCacheFromClient(client, nil)

	_, err := c.LoadSnapshot(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}

func TestLoadSnapshotMalformed(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewRedisCacheFromClient(client, nil)
	require.NoError(t, mr.Set(snapshotKey(7), "{not json"))

	_, err := c.LoadSnapshot(context.Background(), 7)
	assert.ErrorIs(t, err, models.ErrInvalidSnapshot)
}

func TestSaveSnapshotRejectsInvalid(t *testing.T) {
	_, client := setupRedis(t)
	c := NewRedisCacheFromClient(client, nil)

	snap := testSnapshot()
	for addr, m := range snap.Markets {
		m.LongPoolAmount = nil
		snap.Markets[addr] = m
		break
	}
	assert.ErrorIs(t, c.SaveSnapshot(context.Background(), snap), models.ErrInvalidSnapshot)
}

func TestRecentQuotesAreCapped(t *testing.T) {
	_, client := setupRedis(t)
	c := NewRedisCacheFromClient(client, nil)
	ctx := context.Background()

	for i := 0; i < constants.MaxRecentQuotes+5; i++ {
		require.NoError(t, c.InsertQuote(ctx, &models.QuoteRecord{ID: fmt.Sprintf("q-%d", i), Kind: constants.QuoteKindSwap}))
	}

	all, err := c.GetRecentQuotes(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, constants.MaxRecentQuotes)
	assert.Equal(t, fmt.Sprintf("q-%d", constants.MaxRecentQuotes+4), all[0].ID)

	two, err := c.GetRecentQuotes(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestSubscribeSnapshots(t *testing.T) {
	_, client := setupRedis(t)
	c := NewRedisCacheFromClient(client, nil)
	ps := NewPubSubManager(client, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ready := make(chan struct{})
	updates := make(chan models.SnapshotUpdate, 1)
	done := make(chan error, 1)
	go func() {
		done <- ps.SubscribeSnapshots(ctx, ready, func(u models.SnapshotUpdate) { updates <- u })
	}()

	select {
	case <-ready:
	case <-ctx.Done():
		t.Fatal("subscription not ready")
	}

	snap := testSnapshot()
	require.NoError(t, c.SaveSnapshot(ctx, snap))

	select {
	case u := <-updates:
		assert.Equal(t, snap.ChainID, u.ChainID)
		assert.Equal(t, snap.Version, u.Version)
		assert.Equal(t, 2, u.Markets)
	case <-ctx.Done():
		t.Fatal("no snapshot update received")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestQuoteArgsMatchColumns(t *testing.T) {
	q := &models.QuoteRecord{ID: "id", Hops: 300, PriceImpactBps: -12}
	args := quoteArgs(q)

	assert.Len(t, args, 17)
	assert.Equal(t, uint8(255), args[9])
	assert.Equal(t, int64(-12), args[16])

	_, err := json.Marshal(q)
	assert.NoError(t, err)
}

package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// node answers JSON-RPC calls; reply returns the HTTP status and the result
// or error member for the n-th request (starting at 1).
func node(t *testing.T, reply func(method string, n int32) (int, string)) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		status, member := reply(req.Method, calls.Add(1))
		if status != http.StatusOK {
			http.Error(w, "unavailable", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,%s}`, req.ID, member)
	}))
	t.Cleanup(srv.Close)

	log, _ := test.NewNullLogger()
	c, err := Dial(context.Background(), ClientConfig{
		URL:          srv.URL,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		Logger:       log,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, &calls
}

func TestDialRequiresURL(t *testing.T) {
	_, err := Dial(context.Background(), ClientConfig{})
	assert.Error(t, err)
}

func TestGasPrice(t *testing.T) {
	c, calls := node(t, func(method string, _ int32) (int, string) {
		assert.Equal(t, "eth_gasPrice", method)
		return http.StatusOK, `"result":"0x3b9aca00"`
	})

	price, err := c.GasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1000000000", price.String())
	assert.Equal(t, int32(1), calls.Load())
}

func TestChainID(t *testing.T) {
	c, _ := node(t, func(method string, _ int32) (int, string) {
		assert.Equal(t, "eth_chainId", method)
		return http.StatusOK, `"result":"0xa4b1"`
	})

	id, err := c.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42161), id.Int64())
}

func TestRetriesTransportErrors(t *testing.T) {
	c, calls := node(t, func(_ string, n int32) (int, string) {
		if n < 3 {
			return http.StatusServiceUnavailable, ""
		}
		return http.StatusOK, `"result":"0x5f5e100"`
	})

	price, err := c.GasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "100000000", price.String())
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	c, calls := node(t, func(string, int32) (int, string) {
		return http.StatusInternalServerError, ""
	})

	_, err := c.GasPrice(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(3), calls.Load())
}

func TestRPCErrorIsNotRetried(t *testing.T) {
	c, calls := node(t, func(string, int32) (int, string) {
		return http.StatusOK, `"error":{"code":-32601,"message":"method not found"}`
	})

	_, err := c.GasPrice(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not found")
	assert.Equal(t, int32(1), calls.Load())
}

type fakeGas struct {
	mu    sync.Mutex
	price *big.Int
	err   error
	calls int
}

func (f *fakeGas) GasPrice(context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.price, f.err
}

func (f *fakeGas) set(price *big.Int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.price, f.err = price, err
}

func TestGasPriceTracker(t *testing.T) {
	log, hook := test.NewNullLogger()
	src := &fakeGas{}
	tr := NewGasPriceTracker(src, time.Second, log)
	ctx := context.Background()

	assert.Nil(t, tr.GasPrice())
	assert.True(t, tr.UpdatedAt().IsZero())

	src.set(big.NewInt(120), nil)
	tr.Refresh(ctx)
	assert.Equal(t, "120", tr.GasPrice().String())
	assert.False(t, tr.UpdatedAt().IsZero())

	// The returned value is a copy.
	tr.GasPrice().SetInt64(1)
	assert.Equal(t, "120", tr.GasPrice().String())

	src.set(nil, errors.New("node down"))
	tr.Refresh(ctx)
	assert.Equal(t, "120", tr.GasPrice().String())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "gas price refresh failed", hook.LastEntry().Message)

	src.set(big.NewInt(0), nil)
	tr.Refresh(ctx)
	assert.Equal(t, "120", tr.GasPrice().String())
}

func TestGasPriceTrackerRunStopsOnCancel(t *testing.T) {
	log, _ := test.NewNullLogger()
	src := &fakeGas{price: big.NewInt(7)}
	tr := NewGasPriceTracker(src, time.Hour, log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, tr.Run(ctx))

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, "7", tr.GasPrice().String())
}

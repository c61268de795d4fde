package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/perps-swap-core/internal/metrics"
)

// Client reads chain state over JSON-RPC, retrying transport failures
type Client struct {
	eth          *ethclient.Client
	maxRetries   int
	retryBackoff time.Duration
	logger       logrus.FieldLogger
}

// ClientConfig holds configuration for the RPC client
type ClientConfig struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       logrus.FieldLogger
}

// Dial connects to the endpoint at cfg.URL. HTTP endpoints connect lazily.
func Dial(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("rpc url is empty")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 250 * time.Millisecond
	}

	rc, err := gethrpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return &Client{
		eth:          ethclient.NewClient(rc),
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       cfg.Logger,
	}, nil
}

// call runs fn until it succeeds, the node answers with a JSON-RPC error, or
// retries run out. The backoff doubles after each attempt.
func (c *Client) call(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"method":  method,
			}).Debug("retrying RPC call")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		metrics.RPCErrors.WithLabelValues(method).Inc()

		var rpcErr gethrpc.Error
		if errors.As(err, &rpcErr) {
			return fmt.Errorf("%s: %w", method, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}

	return fmt.Errorf("%s: max retries exceeded: %w", method, lastErr)
}

// GasPrice returns the node's suggested gas price in wei.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	err := c.call(ctx, "eth_gasPrice", func(ctx context.Context) error {
		p, err := c.eth.SuggestGasPrice(ctx)
		price = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return price, nil
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := c.call(ctx, "eth_chainId", func(ctx context.Context) error {
		v, err := c.eth.ChainID(ctx)
		id = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return id, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

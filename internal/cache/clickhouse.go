package cache

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
)

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

// ClickHouseStore is the append-only quote journal.
type ClickHouseStore struct {
	conn driver.Conn
	log  logrus.FieldLogger
}

const createQuotesTable = `
	CREATE TABLE IF NOT EXISTS quotes (
		id               String,
		kind             LowCardinality(String),
		chain_id         Int64,
		snapshot_version UInt64,
		quoted_at        DateTime64(3, 'UTC'),
		token_in         String,
		token_out        String,
		market           String,
		path             String,
		hops             UInt8,
		amount_in        String,
		amount_out       String,
		min_amount_out   String,
		usd_in           String,
		usd_out          String,
		total_fees_usd   String,
		price_impact_bps Int64
	) ENGINE = MergeTree
	ORDER BY (chain_id, quoted_at)
`

const insertQuote = `
	INSERT INTO quotes (
		id, kind, chain_id, snapshot_version, quoted_at, token_in, token_out,
		market, path, hops, amount_in, amount_out, min_amount_out,
		usd_in, usd_out, total_fees_usd, price_impact_bps
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig, log logrus.FieldLogger) (*ClickHouseStore, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if err := conn.Exec(ctx, createQuotesTable); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create quotes table: %w", err)
	}

	log.WithFields(logrus.Fields{"addr": cfg.Addr, "database": cfg.Database}).Info("connected to ClickHouse")

	return &ClickHouseStore{conn: conn, log: log}, nil
}

// quoteArgs orders q's columns as insertQuote expects them.
func quoteArgs(q *models.QuoteRecord) []any {
	hops := q.Hops
	if hops > 255 {
		hops = 255
	}
	return []any{
		q.ID,
		q.Kind,
		q.ChainID,
		q.SnapshotVersion,
		q.QuotedAt,
		q.TokenIn,
		q.TokenOut,
		q.Market,
		q.Path,
		uint8(hops),
		q.AmountIn,
		q.AmountOut,
		q.MinAmountOut,
		q.UsdIn,
		q.UsdOut,
		q.TotalFeesUsd,
		q.PriceImpactBps,
	}
}

func (c *ClickHouseStore) InsertQuote(ctx context.Context, q *models.QuoteRecord) error {
	if err := c.conn.Exec(ctx, insertQuote, quoteArgs(q)...); err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}

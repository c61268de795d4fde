package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ClickHouse settings (quote journal, optional)
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// API settings
	APIAddr   string
	APIKey    string
	DevMode   bool
	RateLimit float64 // requests per second per client on quote routes
	RateBurst int

	// Engine settings
	ChainID      int64
	RoutingFile  string
	QuoteTimeout time.Duration

	// Chain RPC (live gas price, optional)
	RPCURL          string
	RPCMaxRetries   int
	GasPollInterval time.Duration

	LogLevel string
}

func Load() *Config {
	return &Config{
		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "perps"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// API
		APIAddr:   getEnv("API_ADDR", ":8090"),
		APIKey:    getEnv("API_KEY", ""),
		DevMode:   getBoolEnv("DEV_MODE", false),
		RateLimit: getFloatEnv("API_RATE_LIMIT", 5),
		RateBurst: getIntEnv("API_RATE_BURST", 10),

		// Engine
		ChainID:      getInt64Env("CHAIN_ID", 42161),
		RoutingFile:  getEnv("ROUTING_FILE", ""),
		QuoteTimeout: getDurationEnv("QUOTE_TIMEOUT", 5*time.Second),

		// RPC
		RPCURL:          getEnv("RPC_URL", ""),
		RPCMaxRetries:   getIntEnv("RPC_MAX_RETRIES", 3),
		GasPollInterval: getDurationEnv("GAS_POLL_INTERVAL", 15*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate rejects settings the binaries cannot start with.
func (c *Config) Validate() error {
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if c.APIAddr == "" {
		return fmt.Errorf("API_ADDR is required")
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("CHAIN_ID must be positive, got %d", c.ChainID)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("API_RATE_LIMIT and API_RATE_BURST must be positive")
	}
	if c.QuoteTimeout <= 0 {
		return fmt.Errorf("QUOTE_TIMEOUT must be positive")
	}
	if c.RPCURL != "" && (c.GasPollInterval <= 0 || c.RPCMaxRetries < 0) {
		return fmt.Errorf("GAS_POLL_INTERVAL must be positive and RPC_MAX_RETRIES not negative")
	}
	if c.ClickHouseAddr != "" && c.ClickHouseDatabase == "" {
		return fmt.Errorf("CLICKHOUSE_DATABASE is required when CLICKHOUSE_ADDR is set")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getInt64Env(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	e.HTTPErrorHandler = JSONErrorHandler()

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("", SetJSONContentType, SetNoCacheHeaders)
	if cfg.APIKey != "" {
		api.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	v1 := api.Group("/v1")
	v1.GET("/health", h.Health)
	v1.GET("/markets", h.ListMarkets)
	v1.GET("/markets/:address", h.Market)
	v1.GET("/quotes/recent", h.RecentQuotes)

	// Quoting walks the swap graph; limit it per client.
	quotes := v1.Group("/quote")
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		quotes.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimit),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		})))
	}
	quotes.POST("/swap", h.QuoteSwap)
	quotes.POST("/increase", h.QuoteIncrease)
	quotes.POST("/deposit", h.QuoteDeposit)
	quotes.POST("/withdrawal", h.QuoteWithdrawal)

	flagGroup := v1.Group("/flags")
	flagGroup.GET("", h.FlagsList)
	flagGroup.GET("/markets/:address", h.MarketFlagGet)
	flagGroup.PUT("/markets/:address", h.MarketFlagPut)
	flagGroup.DELETE("/markets/:address", h.MarketFlagDelete)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}

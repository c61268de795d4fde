package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/perps-swap-core/internal/constants"
	"github.com/aman-zulfiqar/perps-swap-core/internal/flags"
	"github.com/aman-zulfiqar/perps-swap-core/internal/models"
	"github.com/aman-zulfiqar/perps-swap-core/internal/storage"
	"github.com/aman-zulfiqar/perps-swap-core/internal/swapengine"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Engine *swapengine.Engine    // quote engine
	Cache  storage.SnapshotCache // optional; recent quotes and health
	Flags  *flags.Store          // optional; market overrides

	QuoteTimeout time.Duration
	DevMode      bool
	Logger       logrus.FieldLogger
}

func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if d <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

func (h *Handlers) logger() logrus.FieldLogger {
	if h.Logger == nil {
		return logrus.StandardLogger()
	}
	return h.Logger
}

// Health reports redis reachability and the age of the snapshot being served.
// Any failing dependency turns the response into a 503.
func (h *Handlers) Health(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	resp := HealthResponse{OK: true}
	if h.Cache != nil {
		resp.Redis = "ok"
		if err := h.Cache.Ping(ctx); err != nil {
			h.logger().WithError(err).Warn("health: redis ping failed")
			resp.OK = false
			resp.Redis = "down"
		}
	}

	snap, err := h.Engine.Snapshot(ctx)
	if err != nil {
		resp.OK = false
	} else {
		resp.ChainID = snap.ChainID
		resp.SnapshotVersion = snap.Version
		resp.SnapshotAgeSeconds = int64(time.Since(snap.UpdatedAt) / time.Second)
	}

	code := http.StatusOK
	if !resp.OK {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

func (h *Handlers) quoteErr(c echo.Context, err error) error {
	code, msg := quoteStatus(err)
	if code >= http.StatusInternalServerError {
		h.logger().WithError(err).Error("quote failed")
	}
	return h.err(c, code, msg, err.Error())
}

// QuoteSwap prices a swap intent. A quote the risk checks rejected is still
// a 200; its risk.allowed field is false.
func (h *Handlers) QuoteSwap(c echo.Context) error {
	var req swapengine.SwapIntent
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), h.QuoteTimeout)
	defer cancel()

	q, err := h.Engine.QuoteSwap(ctx, &req)
	if err != nil {
		return h.quoteErr(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

// QuoteIncrease prices opening or growing a position.
func (h *Handlers) QuoteIncrease(c echo.Context) error {
	var req swapengine.IncreaseIntent
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), h.QuoteTimeout)
	defer cancel()

	q, err := h.Engine.QuoteIncrease(ctx, &req)
	if err != nil {
		return h.quoteErr(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

// QuoteDeposit previews buying market tokens.
func (h *Handlers) QuoteDeposit(c echo.Context) error {
	var req swapengine.DepositIntent
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), h.QuoteTimeout)
	defer cancel()

	q, err := h.Engine.QuoteDeposit(ctx, &req)
	if err != nil {
		return h.quoteErr(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handlers) QuoteWithdrawal(c echo.Context) error {
	var req swapengine.WithdrawalIntent
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), h.QuoteTimeout)
	defer cancel()

	q, err := h.Engine.QuoteWithdrawal(ctx, &req)
	if err != nil {
		return h.quoteErr(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handlers) ListMarkets(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), h.QuoteTimeout)
	defer cancel()

	items, err := h.Engine.ListMarkets(ctx)
	if err != nil {
		return h.quoteErr(c, err)
	}
	return c.JSON(http.StatusOK, ItemsResponse[*swapengine.MarketSummary]{Items: items})
}

func (h *Handlers) Market(c echo.Context) error {
	addr, ok := parseAddress(c.Param("address"))
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid address", map[string]any{"address": "must be a 0x address"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), h.QuoteTimeout)
	defer cancel()

	out, err := h.Engine.MarketSummary(ctx, addr)
	if err != nil {
		if errors.Is(err, swapengine.ErrInvalidMarket) {
			return h.err(c, http.StatusNotFound, "market not found", nil)
		}
		return h.quoteErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// RecentQuotes returns the latest journaled quotes, newest first.
// Accepts limit query parameter (default: 20, range: 1-100)
func (h *Handlers) RecentQuotes(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusServiceUnavailable, "quote history disabled", nil)
	}

	limit := 20
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > constants.MaxRecentQuotes {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max " + strconv.Itoa(constants.MaxRecentQuotes)})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentQuotes(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get quotes", nil)
	}
	return c.JSON(http.StatusOK, ItemsResponse[*models.QuoteRecord]{Items: items})
}

// FlagsList returns every stored flag, market overrides included.
func (h *Handlers) FlagsList(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags disabled", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx, "")
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list flags", nil)
	}
	return c.JSON(http.StatusOK, ItemsResponse[*flags.Flag]{Items: items})
}

func (h *Handlers) MarketFlagGet(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags disabled", nil)
	}
	addr, ok := parseAddress(c.Param("address"))
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid address", map[string]any{"address": "must be a 0x address"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, flags.MarketKey(addr))
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// MarketFlagPut overrides the snapshot's enabled state of a market. The next
// quote sees the override; no snapshot reload is needed.
func (h *Handlers) MarketFlagPut(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags disabled", nil)
	}
	addr, ok := parseAddress(c.Param("address"))
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid address", map[string]any{"address": "must be a 0x address"})
	}
	var req MarketFlagRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if len(req.Reason) > flags.MaxReasonLen {
		return h.err(c, http.StatusBadRequest, "invalid reason", map[string]any{"reason": "max " + strconv.Itoa(flags.MaxReasonLen) + " bytes"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.SetMarketDisabled(ctx, addr, req.Disabled, req.Reason)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update flag", nil)
	}
	h.logger().WithFields(logrus.Fields{
		"market":   addr.Hex(),
		"disabled": req.Disabled,
		"reason":   req.Reason,
	}).Info("market override set")
	return c.JSON(http.StatusOK, out)
}

// MarketFlagDelete drops the override; the snapshot's own state applies again.
func (h *Handlers) MarketFlagDelete(c echo.Context) error {
	if h.Flags == nil {
		return h.err(c, http.StatusServiceUnavailable, "flags disabled", nil)
	}
	addr, ok := parseAddress(c.Param("address"))
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid address", map[string]any{"address": "must be a 0x address"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.ClearMarket(ctx, addr); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete flag", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseAddress(s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

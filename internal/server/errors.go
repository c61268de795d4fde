package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/perps-swap-core/internal/storage"
	"github.com/aman-zulfiqar/perps-swap-core/internal/swapengine"
)

var errMissingEngine = errors.New("server: handlers need a quote engine")

// JSONErrorHandler renders every unhandled error, 404s included, as an ErrorResponse.
func JSONErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			})
			return
		}

		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}

// quoteStatus maps an engine error onto the HTTP status and message returned for it.
func quoteStatus(err error) (int, string) {
	switch {
	case errors.Is(err, swapengine.ErrInvalidIntent):
		return http.StatusBadRequest, "invalid intent"
	case errors.Is(err, swapengine.ErrInvalidToken):
		return http.StatusBadRequest, "invalid token"
	case errors.Is(err, swapengine.ErrInvalidMarket):
		return http.StatusBadRequest, "invalid market"
	case errors.Is(err, swapengine.ErrNoRoute):
		return http.StatusUnprocessableEntity, "no route"
	case errors.Is(err, storage.ErrSnapshotNotFound):
		return http.StatusServiceUnavailable, "snapshot unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "quote timed out"
	default:
		return http.StatusInternalServerError, "failed to quote"
	}
}

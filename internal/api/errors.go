package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"retrochain-indexer/internal/store"
)

// ErrorHandler maps handler errors to the JSON envelope spec §4.3 requires
// ({"error": "<message>"}), adapted from
// internal/server/middleware/error_handler.go's TransparentErrorHandler.
// store.ErrNotFound is translated to the fixed "not found" message rather
// than leaking a store-internal error string.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, message := ExtractError(err)
	_ = c.JSON(status, map[string]interface{}{"error": message})
}

// ExtractError resolves the status code and message for err: echo.HTTPError
// is unwrapped as-is, store.ErrNotFound becomes a fixed 404 message, and
// everything else is a 500 with the error's own text.
func ExtractError(err error) (int, interface{}) {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, "not found"
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Message != nil {
			return he.Code, he.Message
		}
		return he.Code, err.Error()
	}

	return http.StatusInternalServerError, err.Error()
}

// badRequest builds the 400 HTTPError for a malformed path parameter
// (spec §4.3 "400 ... for malformed path parameters").
func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

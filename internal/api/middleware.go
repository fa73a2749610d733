package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"retrochain-indexer/logging"
)

// requestIDHeader is the header this API echoes back to correlate a
// request across logs, adapted from internal/server/middleware/
// middleware.go's LoggingMiddleware with a request id added (spec's
// ambient stack calls for correlation IDs the teacher's own middleware
// didn't carry).
const requestIDHeader = "X-Request-Id"

// LoggingMiddleware logs each request's method, path, and a generated
// request id, mirroring internal/server/middleware/middleware.go's
// LoggingMiddleware.
func LoggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		reqID := uuid.NewString()
		c.Set("request_id", reqID)
		c.Response().Header().Set(requestIDHeader, reqID)

		logging.Info("received request", logging.API,
			"method", req.Method, "path", req.URL.Path, "request_id", reqID)
		err := next(c)
		logging.Debug("handled request", logging.API,
			"method", req.Method, "path", req.URL.Path, "request_id", reqID, "status", c.Response().Status)
		return err
	}
}

// corsOriginForRequest implements spec §4.3's allowlist: CORS is disabled
// (returns "") unless an allowlist is configured; "*" in the allowlist
// matches any origin, otherwise the request's Origin must appear verbatim.
// Grounded on original_source/tools/indexer_api.py's
// _cors_origin_for_request.
func corsOriginForRequest(allowed []string, origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" || len(allowed) == 0 {
		return ""
	}
	for _, a := range allowed {
		if a == "*" {
			return "*"
		}
	}
	for _, a := range allowed {
		if a == origin {
			return origin
		}
	}
	return ""
}

// CORSMiddleware answers preflight OPTIONS with 204 and emits the
// allowlisted CORS headers on every response, per spec §4.3.
func CORSMiddleware(allowed []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := corsOriginForRequest(allowed, c.Request().Header.Get(echo.HeaderOrigin))
			if origin != "" {
				h := c.Response().Header()
				h.Set(echo.HeaderAccessControlAllowOrigin, origin)
				h.Add("Vary", echo.HeaderOrigin)
				h.Set(echo.HeaderAccessControlAllowMethods, "GET, OPTIONS")
				h.Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)
			}
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}

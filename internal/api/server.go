// Package api serves the Read API: JSON over HTTP/1.1 from a read-only
// Store view (spec §4.3).
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"retrochain-indexer/internal/store"
)

// Server wraps an echo.Echo bound to one listen address, reading through a
// single store.ReadStore (spec §4.3 "single-process, concurrency-safe for
// many readers").
type Server struct {
	echo   *echo.Echo
	listen string
}

// New builds a Server. rs must already be open; corsOrigins is the
// allowlist (spec §4.3 CORS; empty disables CORS entirely).
func New(rs *store.ReadStore, listen string, corsOrigins []string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(LoggingMiddleware)
	e.Use(CORSMiddleware(corsOrigins))

	h := &handlers{rs: rs}
	registerRoutes(e, h)

	return &Server{echo: e, listen: listen}
}

func registerRoutes(e *echo.Echo, h *handlers) {
	e.GET("/", h.identity)
	e.GET("/v1/health", h.health)
	e.GET("/v1/status", h.status)
	e.GET("/v1/blocks", h.listBlocks)
	e.GET("/v1/blocks/:height", h.getBlock)
	e.GET("/v1/txs", h.listTxs)
	e.GET("/v1/txs/:hash", h.getTx)
	e.GET("/v1/events", h.listEvents)
}

// Start begins serving and blocks until the listener stops. It returns nil
// on a clean Shutdown (http.ErrServerClosed), matching net/http's idiom.
func (s *Server) Start() error {
	if err := s.echo.Start(s.listen); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: listen on %s: %w", s.listen, err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests to
// finish until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Command retrochain-api serves the read-only JSON API over an indexed
// SQLite store (spec §4.3).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"retrochain-indexer/internal/api"
	"retrochain-indexer/internal/config"
	"retrochain-indexer/internal/store"
	"retrochain-indexer/logging"
)

// shutdownTimeout bounds how long Shutdown waits for in-flight requests,
// grounded in proxy-ssl/cmd/cert-issuer/main.go's graceful-shutdown pattern.
const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, config.ErrConfig) {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
			return 2
		}
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retrochain-api",
		Short: "Serve the read-only JSON API over an indexed SQLite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd.Flags())
		},
	}
	config.RegisterAPIFlags(cmd.Flags())
	return cmd
}

func runAPI(flags *pflag.FlagSet) error {
	cfg, err := config.LoadAPIConfig(flags)
	if err != nil {
		return err
	}

	rs, err := store.OpenReadOnly(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = rs.Close() }()

	srv := api.New(rs, cfg.Listen, cfg.CORSOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logging.Info("retrochain-api starting", logging.API, "listen", cfg.Listen, "db", cfg.StorePath)
		errc <- srv.Start()
	}()

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logging.Info("retrochain-api shutting down", logging.API)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	logging.Info("retrochain-api stopped cleanly", logging.API)
	return nil
}

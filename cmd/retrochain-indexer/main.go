// Command retrochain-indexer polls a CometBFT node and materializes each
// height into a local SQLite store (spec §4.2).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"retrochain-indexer/internal/config"
	"retrochain-indexer/internal/indexer"
	"retrochain-indexer/internal/rpcclient"
	"retrochain-indexer/internal/store"
	"retrochain-indexer/logging"
)

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
		Use:   "retrochain-indexer",
		Short: "Poll a CometBFT node and index blocks/txs/events into SQLite",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexer(cmd.Flags())
		},
	}
	config.RegisterIndexerFlags(cmd.Flags())
	return cmd
}

func runIndexer(flags *pflag.FlagSet) error {
	cfg, err := config.LoadIndexerConfig(flags)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	client, err := rpcclient.NewHTTPClient(cfg.RPCURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("build rpc client: %w", err)
	}

	ix := indexer.New(st, client, indexer.Config{
		PollInterval:   cfg.PollInterval,
		StartHeight:    cfg.StartHeight,
		HasStartHeight: cfg.HasStartHeight,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info("retrochain-indexer starting", logging.Indexer,
		"rpc", cfg.RPCURL, "db", cfg.StorePath, "poll_interval", cfg.PollInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ix.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logging.Info("retrochain-indexer stopped cleanly", logging.Indexer)
	return nil
}

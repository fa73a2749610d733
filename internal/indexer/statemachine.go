// Package indexer polls CometBFT JSON-RPC, normalizes each height, and
// commits it to Store (spec §4.2).
package indexer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"retrochain-indexer/internal/rpcclient"
	"retrochain-indexer/internal/store"
	"retrochain-indexer/logging"
)

// State names the indexer's current position in the state machine
// described by spec §4.2.
type State string

const (
	StateInit    State = "init"
	StateCatchUp State = "catch_up"
	StateTail    State = "tail"
	StateBackoff State = "backoff"
	StateFatal   State = "fatal"
	StateStopped State = "stopped"
)

// backoffInterval is the fixed retry sleep on transient error (spec §4.2
// Backoff).
const backoffInterval = 2 * time.Second

// ErrChainIDMismatch is returned (wrapped) from Run when the live chain_id
// disagrees with what's already recorded in Store, per spec §4.2 Init
// "refuse to contaminate an existing database".
var ErrChainIDMismatch = errors.New("indexer: chain_id mismatch")

// Config is the indexer's runtime configuration (spec §4.2).
type Config struct {
	PollInterval   time.Duration
	StartHeight    int64
	HasStartHeight bool
}

// Indexer drives the per-height fetch/normalize/commit loop against a
// Store and an upstream rpcclient.Client.
type Indexer struct {
	st     *store.Store
	client rpcclient.Client
	cfg    Config
	state  atomic.Value // State
}

// New builds an Indexer. st must already be open.
func New(st *store.Store, client rpcclient.Client, cfg Config) *Indexer {
	ix := &Indexer{st: st, client: client, cfg: cfg}
	ix.setState(StateInit)
	return ix
}

// State returns the indexer's current state, safe for concurrent callers.
func (ix *Indexer) State() State {
	return ix.state.Load().(State)
}

func (ix *Indexer) setState(s State) {
	ix.state.Store(s)
}

// Run executes the state machine until ctx is cancelled or a permanent
// error occurs. A cancellation always returns nil (spec §4.2 Stop "exit
// cleanly"); a chain-id mismatch or other permanent condition returns a
// non-nil error after transitioning to Fatal.
func (ix *Indexer) Run(ctx context.Context) error {
	next, err := ix.init(ctx)
	if err != nil {
		ix.setState(StateFatal)
		logging.Error("indexer: fatal during init", logging.Indexer, "error", err)
		return err
	}

	for {
		if ctx.Err() != nil {
			ix.setState(StateStopped)
			return nil
		}

		status, err := ix.client.Status(ctx)
		if err != nil {
			ix.backoff(ctx, "fetch status", err)
			continue
		}

		if status.ChainID != "" {
			if err := ix.guardChainID(ctx, status.ChainID); err != nil {
				ix.setState(StateFatal)
				logging.Error("indexer: fatal chain_id guard", logging.Indexer, "error", err)
				return err
			}
		}

		if next <= 0 {
			next = 1
		}

		if next > status.LatestHeight {
			ix.setState(StateTail)
			if !sleepCtx(ctx, ix.cfg.PollInterval) {
				ix.setState(StateStopped)
				return nil
			}
			continue
		}

		ix.setState(StateCatchUp)
		if err := ix.indexHeight(ctx, next); err != nil {
			ix.backoff(ctx, fmt.Sprintf("index height %d", next), err)
			continue
		}

		logging.Info("indexed height", logging.Indexer, "height", next, "latest", status.LatestHeight)
		next++
	}
}

// init resolves the starting height (spec §4.2 Init) without touching the
// chain-id guard — the first live status observation is checked on the
// first loop iteration, same as every subsequent one.
func (ix *Indexer) init(ctx context.Context) (int64, error) {
	if ix.cfg.HasStartHeight {
		h := ix.cfg.StartHeight
		if h <= 0 {
			h = 1
		}
		return h, nil
	}

	raw, ok, err := ix.st.MetaGet(ctx, "last_indexed_height")
	if err != nil {
		return 0, fmt.Errorf("read last_indexed_height: %w", err)
	}
	if !ok {
		return 1, nil
	}
	last, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 1, nil
	}
	return last + 1, nil
}

// guardChainID records chain_id on first observation, and refuses to
// proceed if a previously-recorded chain_id disagrees with the live one
// (spec §4.2 Init).
func (ix *Indexer) guardChainID(ctx context.Context, liveChainID string) error {
	stored, ok, err := ix.st.MetaGet(ctx, "chain_id")
	if err != nil {
		return fmt.Errorf("read chain_id: %w", err)
	}
	if !ok {
		return ix.st.MetaSet(ctx, "chain_id", liveChainID)
	}
	if stored != liveChainID {
		return fmt.Errorf("%w: store has %q, live is %q", ErrChainIDMismatch, stored, liveChainID)
	}
	return nil
}

// indexHeight performs spec §4.2 steps 1-6 for a single height.
func (ix *Indexer) indexHeight(ctx context.Context, height int64) error {
	in, err := fetchAndBuild(ctx, ix.client, height)
	if err != nil {
		return err
	}
	if err := ix.st.WriteHeight(ctx, in); err != nil {
		return fmt.Errorf("write height %d: %w", height, err)
	}
	return ix.st.MetaSet(ctx, "last_indexed_height", strconv.FormatInt(height, 10))
}

func (ix *Indexer) backoff(ctx context.Context, what string, err error) {
	ix.setState(StateBackoff)
	logging.Error("indexer: transient error, retrying", logging.Indexer, "what", what, "error", err)
	sleepCtx(ctx, backoffInterval)
}

// sleepCtx sleeps for d or returns false early if ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

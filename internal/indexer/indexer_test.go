package indexer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"retrochain-indexer/internal/rpcclient"
	"retrochain-indexer/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "indexer.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fakeClientUpTo(t *testing.T, chainID string, latest int64) *rpcclient.FakeClient {
	t.Helper()
	return &rpcclient.FakeClient{
		StatusFn: func(ctx context.Context) (rpcclient.Status, error) {
			return rpcclient.Status{ChainID: chainID, LatestHeight: latest, EarliestHeight: 1}, nil
		},
		BlockFn: func(ctx context.Context, height int64) (rpcclient.Block, error) {
			return rpcclient.Block{
				Time:            "2026-01-01T00:00:00Z",
				ProposerAddress: "PROPOSER",
				BlockIDHash:     "HASH",
				Txs:             []string{"dGVzdA=="},
			}, nil
		},
		BlockResultsFn: func(ctx context.Context, height int64) (rpcclient.BlockResults, error) {
			boolTrue := true
			return rpcclient.BlockResults{
				FinalizeBlockEvents: []rpcclient.Event{
					{Type: "transfer", Attributes: []rpcclient.Attribute{
						{Key: "YWN0aW9u", Value: "c2VuZA==", Index: &boolTrue},
					}},
				},
				TxsResults: []rpcclient.TxResult{
					{Code: i64p(0), GasWanted: i64p(100), GasUsed: i64p(90), Log: "[]"},
				},
			}, nil
		},
	}
}

func i64p(v int64) *int64 { return &v }

func TestRunCatchesUpThenStopsOnCancel(t *testing.T) {
	st := newTestStore(t)
	client := fakeClientUpTo(t, "retrochain-test", 3)

	ctx, cancel := context.WithCancel(context.Background())
	ix := New(st, client, Config{PollInterval: 10 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- ix.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok, _ := st.MetaGet(context.Background(), "last_indexed_height")
		return ok
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		v, _, _ := st.MetaGet(context.Background(), "last_indexed_height")
		return v == "3"
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool { return ix.State() == StateTail }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	require.Equal(t, StateStopped, ix.State())
}

func TestChainIDMismatchIsFatal(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.MetaSet(context.Background(), "chain_id", "retrochain-mainnet"))

	client := fakeClientUpTo(t, "retrochain-other", 1)
	ix := New(st, client, Config{PollInterval: time.Millisecond})

	err := ix.Run(context.Background())
	require.ErrorIs(t, err, ErrChainIDMismatch)
	require.Equal(t, StateFatal, ix.State())
}

func TestExplicitStartHeightOverridesLastIndexed(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.MetaSet(context.Background(), "last_indexed_height", "10"))

	client := fakeClientUpTo(t, "retrochain-test", 5)
	ix := New(st, client, Config{PollInterval: time.Millisecond, StartHeight: 5, HasStartHeight: true})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = ix.Run(ctx)

	v, ok, err := st.MetaGet(context.Background(), "last_indexed_height")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "5", v)
}

func TestZeroStartHeightNormalizesToOne(t *testing.T) {
	st := newTestStore(t)
	client := fakeClientUpTo(t, "retrochain-test", 1)
	ix := New(st, client, Config{PollInterval: time.Millisecond, StartHeight: 0, HasStartHeight: true})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = ix.Run(ctx)

	v, ok, err := st.MetaGet(context.Background(), "last_indexed_height")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)
}

func TestTransientErrorBacksOffAndRetries(t *testing.T) {
	st := newTestStore(t)
	attempts := 0
	client := &rpcclient.FakeClient{
		StatusFn: func(ctx context.Context) (rpcclient.Status, error) {
			return rpcclient.Status{ChainID: "retrochain-test", LatestHeight: 1}, nil
		},
		BlockFn: func(ctx context.Context, height int64) (rpcclient.Block, error) {
			attempts++
			if attempts < 2 {
				return rpcclient.Block{}, context.DeadlineExceeded
			}
			return rpcclient.Block{Time: "t", Txs: nil}, nil
		},
		BlockResultsFn: func(ctx context.Context, height int64) (rpcclient.BlockResults, error) {
			return rpcclient.BlockResults{}, nil
		},
	}
	ix := New(st, client, Config{PollInterval: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ix.Run(ctx)

	require.GreaterOrEqual(t, attempts, 2)
	v, ok, _ := st.MetaGet(context.Background(), "last_indexed_height")
	require.True(t, ok)
	require.Equal(t, "1", v)
}

package rpcclient

import "context"

// FakeClient is an in-memory Client for internal/indexer tests, mirroring
// the mockTmHTTPClient pattern in block_observer_test.go.
type FakeClient struct {
	StatusFn       func(ctx context.Context) (Status, error)
	BlockFn        func(ctx context.Context, height int64) (Block, error)
	BlockResultsFn func(ctx context.Context, height int64) (BlockResults, error)
}

func (f *FakeClient) Status(ctx context.Context) (Status, error) {
	return f.StatusFn(ctx)
}

func (f *FakeClient) Block(ctx context.Context, height int64) (Block, error) {
	return f.BlockFn(ctx, height)
}

func (f *FakeClient) BlockResults(ctx context.Context, height int64) (BlockResults, error) {
	return f.BlockResultsFn(ctx, height)
}

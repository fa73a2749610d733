// Package rpcclient wraps the upstream CometBFT JSON-RPC surface the
// indexer polls (spec §6 "Upstream RPC"). It is deliberately narrower than
// a general-purpose CometBFT client: only the three endpoints the indexer
// needs, decoded into our own wire structs rather than the node's SDK
// types, since the exact shape of those types (in particular whether
// begin_block_events/end_block_events exist alongside finalize_block_events)
// varies across CometBFT releases in a way spec §9 flags explicitly.
package rpcclient

import "context"

// Client is the upstream surface internal/indexer depends on. Grounded in
// cosmosclient/rpcclient.go's TmHTTPClient shape, extended with Block for
// the header/proposer/tx-bytes fields block_results doesn't carry.
type Client interface {
	Status(ctx context.Context) (Status, error)
	Block(ctx context.Context, height int64) (Block, error)
	BlockResults(ctx context.Context, height int64) (BlockResults, error)
}

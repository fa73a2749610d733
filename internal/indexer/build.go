package indexer

import (
	"context"
	"fmt"

	"retrochain-indexer/internal/rpcclient"
	"retrochain-indexer/internal/store"
)

// fetchAndBuild performs spec §4.2 steps 1-4: fetch block+block_results for
// height, and normalize them into a Store-ready WriteHeightInput. It never
// mutates Store — callers decide when (and whether) to commit.
func fetchAndBuild(ctx context.Context, client rpcclient.Client, height int64) (store.WriteHeightInput, error) {
	blk, err := client.Block(ctx, height)
	if err != nil {
		return store.WriteHeightInput{}, fmt.Errorf("fetch block: %w", err)
	}
	res, err := client.BlockResults(ctx, height)
	if err != nil {
		return store.WriteHeightInput{}, fmt.Errorf("fetch block_results: %w", err)
	}

	in := store.WriteHeightInput{
		Height:              height,
		Time:                blk.Time,
		ProposerAddress:     blk.ProposerAddress,
		BlockIDHash:         blk.BlockIDHash,
		BlockJSON:           string(blk.Raw),
		ResultsJSON:         string(res.Raw),
		BeginBlockEvents:    normalizeEvents("begin_block", res.BeginBlockEvents),
		EndBlockEvents:      normalizeEvents("end_block", res.EndBlockEvents),
		FinalizeBlockEvents: normalizeEvents("finalize_block", res.FinalizeBlockEvents),
	}

	// tx_count is the length of data.txs, not txs_results (spec §4.2
	// "numeric semantics" — the writer stays defensive about a mismatch).
	for i, txB64 := range blk.Txs {
		var txResult rpcclient.TxResult
		if i < len(res.TxsResults) {
			txResult = res.TxsResults[i]
		}
		in.Txs = append(in.Txs, store.TxInput{
			TxHash:    computeTxHash(txB64),
			TxIndex:   i,
			Code:      txResult.Code,
			GasWanted: txResult.GasWanted,
			GasUsed:   txResult.GasUsed,
			TxB64:     txB64,
			RawLog:    txResult.Log,
			Events:    normalizeEvents("tx", txResult.Events),
		})
	}

	return in, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// WriteHeight atomically replaces all rows for in.Height: either every row
// is present after this call returns nil, or none are (spec §4.1). Mirrors
// sql_indexer.py's index_height: upsert the block row, delete existing
// txs/events for the height, then reinsert in the fixed bucket order
// (begin_block, end_block, finalize_block, then each tx's own events),
// assigning event_index from a per-height counter that restarts at 0.
func (s *Store) WriteHeight(ctx context.Context, in WriteHeightInput) error {
	tx, err := s.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	indexedAt := nowISO()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO blocks(height, time, proposer_address, block_id_hash, tx_count, block_json, results_json, indexed_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(height) DO UPDATE SET
			time = excluded.time,
			proposer_address = excluded.proposer_address,
			block_id_hash = excluded.block_id_hash,
			tx_count = excluded.tx_count,
			block_json = excluded.block_json,
			results_json = excluded.results_json,
			indexed_at = excluded.indexed_at`,
		in.Height, in.Time, in.ProposerAddress, in.BlockIDHash, len(in.Txs), in.BlockJSON, in.ResultsJSON, indexedAt,
	); err != nil {
		return fmt.Errorf("store: upsert block: %w", err)
	}

	// Reindex idempotence: clear any prior child rows for this height.
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE height = ?`, in.Height); err != nil {
		return fmt.Errorf("store: delete events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM txs WHERE height = ?`, in.Height); err != nil {
		return fmt.Errorf("store: delete txs: %w", err)
	}

	insertEvent, err := tx.PrepareContext(ctx, `
		INSERT INTO events(height, tx_hash, source, event_index, event_type, attributes_json)
		VALUES(?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare event insert: %w", err)
	}
	defer insertEvent.Close()

	insertTx, err := tx.PrepareContext(ctx, `
		INSERT INTO txs(tx_hash, height, tx_index, code, gas_wanted, gas_used, tx_b64, raw_log, events_json, indexed_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tx_hash) DO UPDATE SET
			height = excluded.height,
			tx_index = excluded.tx_index,
			code = excluded.code,
			gas_wanted = excluded.gas_wanted,
			gas_used = excluded.gas_used,
			tx_b64 = excluded.tx_b64,
			raw_log = excluded.raw_log,
			events_json = excluded.events_json,
			indexed_at = excluded.indexed_at`)
	if err != nil {
		return fmt.Errorf("store: prepare tx insert: %w", err)
	}
	defer insertTx.Close()

	eventIndex := int64(0)
	writeEvents := func(source string, txHash *string, events []EventInput) error {
		for _, e := range events {
			attrsJSON, err := json.Marshal(e.Attributes)
			if err != nil {
				return fmt.Errorf("store: marshal attributes: %w", err)
			}
			if _, err := insertEvent.ExecContext(ctx, in.Height, txHash, source, eventIndex, e.EventType, string(attrsJSON)); err != nil {
				return fmt.Errorf("store: insert event: %w", err)
			}
			eventIndex++
		}
		return nil
	}

	if err := writeEvents("begin_block", nil, in.BeginBlockEvents); err != nil {
		return err
	}
	if err := writeEvents("end_block", nil, in.EndBlockEvents); err != nil {
		return err
	}
	if err := writeEvents("finalize_block", nil, in.FinalizeBlockEvents); err != nil {
		return err
	}

	for _, t := range in.Txs {
		eventsJSON, err := json.Marshal(t.Events)
		if err != nil {
			return fmt.Errorf("store: marshal tx events: %w", err)
		}
		if _, err := insertTx.ExecContext(ctx,
			t.TxHash, in.Height, t.TxIndex, nullInt64(t.Code), nullInt64(t.GasWanted), nullInt64(t.GasUsed),
			t.TxB64, t.RawLog, string(eventsJSON), indexedAt,
		); err != nil {
			return fmt.Errorf("store: insert tx: %w", err)
		}

		txHash := t.TxHash
		if err := writeEvents("tx", &txHash, t.Events); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

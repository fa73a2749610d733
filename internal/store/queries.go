package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned by single-row lookups when the row is absent.
var ErrNotFound = errors.New("store: not found")

// Blocks returns a page of block summaries ordered by height (spec §4.1).
func (r *ReadStore) Blocks(ctx context.Context, limit, offset int, order Order) (total int, items []BlockSummary, err error) {
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM blocks`).Scan(&total); err != nil {
		return 0, nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT height, time, proposer_address, block_id_hash, tx_count, indexed_at
		FROM blocks ORDER BY height `+order.sql()+`
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b BlockSummary
		var t, prop, hash sql.NullString
		if err := rows.Scan(&b.Height, &t, &prop, &hash, &b.TxCount, &b.IndexedAt); err != nil {
			return 0, nil, err
		}
		b.Time = t.String
		b.ProposerAddress = prop.String
		b.BlockIDHash = hash.String
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// Block returns the full row for height, or ErrNotFound.
func (r *ReadStore) Block(ctx context.Context, height int64) (BlockDetail, error) {
	var b BlockDetail
	var t, prop, hash sql.NullString
	row := r.db.QueryRowContext(ctx, `
		SELECT height, time, proposer_address, block_id_hash, tx_count, block_json, results_json, indexed_at
		FROM blocks WHERE height = ?`, height)
	if err := row.Scan(&b.Height, &t, &prop, &hash, &b.TxCount, &b.BlockJSON, &b.ResultsJSON, &b.IndexedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BlockDetail{}, ErrNotFound
		}
		return BlockDetail{}, err
	}
	b.Time = t.String
	b.ProposerAddress = prop.String
	b.BlockIDHash = hash.String
	return b, nil
}

// Tx returns the transaction with the given uppercase hash, joined with its
// block's time, or ErrNotFound.
func (r *ReadStore) Tx(ctx context.Context, txHash string) (TxDetail, error) {
	var d TxDetail
	var rawLog, blockTime, txB64 sql.NullString
	row := r.db.QueryRowContext(ctx, `
		SELECT t.tx_hash, t.height, t.tx_index, t.code, t.gas_wanted, t.gas_used, t.tx_b64, t.raw_log, t.events_json, t.indexed_at, b.time
		FROM txs t LEFT JOIN blocks b ON b.height = t.height
		WHERE t.tx_hash = ?`, txHash)
	if err := row.Scan(&d.TxHash, &d.Height, &d.TxIndex, &d.Code, &d.GasWanted, &d.GasUsed, &txB64, &rawLog, &d.EventsJSON, &d.IndexedAt, &blockTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TxDetail{}, ErrNotFound
		}
		return TxDetail{}, err
	}
	if rawLog.Valid {
		d.RawLog = &rawLog.String
	}
	if blockTime.Valid {
		d.BlockTime = &blockTime.String
	}
	if txB64.Valid {
		d.TxB64 = &txB64.String
	}
	return d, nil
}

// Txs returns a page of transactions, optionally restricted to one height.
// Ordering follows spec §4.1: height in the requested direction, tx_index
// always ascending within each height, so order=desc reverses the height
// scan only (reverse-scan semantics). This ordering is frozen by spec §9
// and must not be "fixed" to a more conventional scheme.
func (r *ReadStore) Txs(ctx context.Context, limit, offset int, order Order, height *int64) (total int, items []TxRow, err error) {
	where := ""
	args := []any{}
	if height != nil {
		where = "WHERE t.height = ?"
		args = append(args, *height)
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM txs t `+where, args...).Scan(&total); err != nil {
		return 0, nil, err
	}

	heightOrder := order.sql()

	q := `
		SELECT t.tx_hash, t.height, t.tx_index, t.code, t.gas_wanted, t.gas_used, t.raw_log, t.indexed_at, b.time
		FROM txs t LEFT JOIN blocks b ON b.height = t.height ` + where + `
		ORDER BY t.height ` + heightOrder + `, t.tx_index ASC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row TxRow
		var rawLog, blockTime sql.NullString
		if err := rows.Scan(&row.TxHash, &row.Height, &row.TxIndex, &row.Code, &row.GasWanted, &row.GasUsed, &rawLog, &row.IndexedAt, &blockTime); err != nil {
			return 0, nil, err
		}
		if rawLog.Valid {
			row.RawLog = &rawLog.String
		}
		if blockTime.Valid {
			row.BlockTime = &blockTime.String
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// EventFilters composes the optional AND-ed filters for the events
// endpoint (spec §4.3).
type EventFilters struct {
	Height    *int64
	TxHash    *string
	EventType *string
	Source    *string
}

// Events returns a page of events ordered by their surrogate id (spec §4.1
// "stable intra-height sequence").
func (r *ReadStore) Events(ctx context.Context, limit, offset int, order Order, f EventFilters) (total int, items []EventRow, err error) {
	where := []string{}
	args := []any{}
	if f.Height != nil {
		where = append(where, "height = ?")
		args = append(args, *f.Height)
	}
	if f.TxHash != nil {
		where = append(where, "tx_hash = ?")
		args = append(args, *f.TxHash)
	}
	if f.EventType != nil {
		where = append(where, "event_type = ?")
		args = append(args, *f.EventType)
	}
	if f.Source != nil {
		where = append(where, "source = ?")
		args = append(args, *f.Source)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + joinAnd(where)
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM events `+whereSQL, args...).Scan(&total); err != nil {
		return 0, nil, err
	}

	q := `
		SELECT id, height, tx_hash, source, event_index, event_type, attributes_json
		FROM events ` + whereSQL + `
		ORDER BY id ` + order.sql() + `
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(append([]any{}, args...), limit, offset)...)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e EventRow
		var txHash, eventType sql.NullString
		if err := rows.Scan(&e.ID, &e.Height, &txHash, &e.Source, &e.EventIndex, &eventType, &e.AttributesJSON); err != nil {
			return 0, nil, err
		}
		if txHash.Valid {
			e.TxHash = &txHash.String
		}
		if eventType.Valid {
			e.EventType = &eventType.String
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func joinAnd(clauses []string) string {
	out := clauses[0]
	for _, c := range clauses[1:] {
		out += " AND " + c
	}
	return out
}

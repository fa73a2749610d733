package store

const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS blocks (
  height           INTEGER PRIMARY KEY,
  time             TEXT,
  proposer_address TEXT,
  block_id_hash    TEXT,
  tx_count         INTEGER NOT NULL,
  block_json       TEXT NOT NULL,
  results_json     TEXT NOT NULL,
  indexed_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS txs (
  tx_hash     TEXT PRIMARY KEY,
  height      INTEGER NOT NULL,
  tx_index    INTEGER NOT NULL,
  code        INTEGER,
  gas_wanted  INTEGER,
  gas_used    INTEGER,
  tx_b64      TEXT,
  raw_log     TEXT,
  events_json TEXT NOT NULL,
  indexed_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS txs_height_idx ON txs(height);

CREATE TABLE IF NOT EXISTS events (
  id               INTEGER PRIMARY KEY AUTOINCREMENT,
  height           INTEGER NOT NULL,
  tx_hash          TEXT,
  source           TEXT NOT NULL,
  event_index      INTEGER NOT NULL,
  event_type       TEXT,
  attributes_json  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS events_height_idx  ON events(height);
CREATE INDEX IF NOT EXISTS events_type_idx    ON events(event_type);
CREATE INDEX IF NOT EXISTS events_tx_hash_idx ON events(tx_hash);
`

// ensureSchema creates the store's tables and indexes if they do not already
// exist. Safe to call repeatedly (spec §4.1 "open" is idempotent).
func (s *Store) ensureSchema() error {
	_, err := s.writeDB.Exec(schemaDDL)
	return err
}

package store

// EventAttribute is one normalized ABCI event attribute (spec §3 Event).
// Key/Value are preserved verbatim from the RPC payload; KeyText/ValueText
// hold the best-effort UTF-8 decoding of a base64 payload, falling back to
// the original value when it isn't decodable (spec §4.2 step 4) — never
// omitted from the JSON, so consumers can rely on *_text == the raw value
// on the non-decodable path (spec §3, §8 scenario 4). For an empty key or
// value the field is null.
type EventAttribute struct {
	Key       string  `json:"key"`
	Value     string  `json:"value"`
	KeyText   *string `json:"key_text"`
	ValueText *string `json:"value_text"`
	Index     *bool   `json:"index,omitempty"`
}

// EventInput is one normalized event awaiting a Store-assigned event_index.
type EventInput struct {
	Source     string // begin_block | end_block | finalize_block | tx
	EventType  string
	Attributes []EventAttribute
}

// TxInput is one normalized transaction awaiting persistence, including its
// own tx-scope events.
type TxInput struct {
	TxHash    string
	TxIndex   int
	Code      *int64
	GasWanted *int64
	GasUsed   *int64
	TxB64     string
	RawLog    string
	Events    []EventInput
}

// WriteHeightInput is the full normalized payload for one height, as
// produced by the indexer's normalizer and committed atomically by
// Store.WriteHeight (spec §4.2).
type WriteHeightInput struct {
	Height             int64
	Time               string
	ProposerAddress    string
	BlockIDHash        string
	BlockJSON          string
	ResultsJSON        string
	Txs                []TxInput
	BeginBlockEvents   []EventInput
	EndBlockEvents     []EventInput
	FinalizeBlockEvents []EventInput
}

// BlockSummary is the metadata-only projection returned by the blocks list
// endpoint (spec §4.3 "no raw payloads").
type BlockSummary struct {
	Height          int64  `json:"height"`
	Time            string `json:"time"`
	ProposerAddress string `json:"proposer_address"`
	BlockIDHash     string `json:"block_id_hash"`
	TxCount         int64  `json:"tx_count"`
	IndexedAt       string `json:"indexed_at"`
}

// BlockDetail is the full row for a single block, including the verbatim
// RPC payloads as opaque strings; the API layer decides whether to parse
// and include them (spec §4.3 "include_raw").
type BlockDetail struct {
	BlockSummary
	BlockJSON   string
	ResultsJSON string
}

// TxRow is a transaction joined with its block's time, used both for the
// list endpoint and (with Events) the single-tx endpoint.
type TxRow struct {
	TxHash     string  `json:"tx_hash"`
	Height     int64   `json:"height"`
	TxIndex    int64   `json:"tx_index"`
	Code       *int64  `json:"code"`
	GasWanted  *int64  `json:"gas_wanted"`
	GasUsed    *int64  `json:"gas_used"`
	RawLog     *string `json:"raw_log"`
	IndexedAt  string  `json:"indexed_at"`
	BlockTime  *string `json:"block_time"`
}

// TxDetail adds the raw tx bytes and the (still-encoded) events blob to
// TxRow; the API parses EventsJSON into an "events" field before responding.
type TxDetail struct {
	TxRow
	TxB64      *string
	EventsJSON string
}

// EventRow is one stored event, as returned by the events endpoint.
type EventRow struct {
	ID              int64   `json:"id"`
	Height          int64   `json:"height"`
	TxHash          *string `json:"tx_hash"`
	Source          string  `json:"source"`
	EventIndex      int64   `json:"event_index"`
	EventType       *string `json:"event_type"`
	AttributesJSON  string  `json:"-"`
}

// Order is a requested sort direction; anything other than OrderAsc
// normalizes to OrderDesc (spec §4.3 "unrecognized values take the
// endpoint default" is handled by callers choosing the default before
// passing it in; Order itself only distinguishes asc from everything else).
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

func (o Order) sql() string {
	if o == OrderAsc {
		return "ASC"
	}
	return "DESC"
}

package indexer

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"retrochain-indexer/internal/rpcclient"
	"retrochain-indexer/internal/store"
	"retrochain-indexer/utils"
)

// computeTxHash mirrors original_source/tools/sql_indexer.py's
// _tx_hash_hex: sha256 of the raw (base64-decoded) tx bytes, hex, upper.
// An undecodable payload hashes the empty byte string, matching the
// original's `_b64_to_bytes(...) or b""` fallback rather than failing the
// whole height.
func computeTxHash(txB64 string) string {
	raw, err := base64.StdEncoding.DecodeString(txB64)
	if err != nil {
		raw = nil
	}
	return strings.ToUpper(utils.GenerateSHA256Hash(string(raw)))
}

// maybeDecodeText attempts to recover human-readable text from a base64
// attribute key/value (spec §4.2 step 4). On success it returns the decoded
// text; otherwise — decode failure, invalid UTF-8, or a control byte below
// U+0009 — it falls back to raw itself, so *_text equals the original value
// on the non-decodable path (spec §3, §8 scenario 4). An empty raw returns
// nil.
func maybeDecodeText(raw string) *string {
	if raw == "" {
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return &raw
	}
	if !utf8.Valid(decoded) {
		return &raw
	}
	text := string(decoded)
	for _, r := range text {
		if r < 0x09 {
			return &raw
		}
	}
	return &text
}

func normalizeAttribute(a rpcclient.Attribute) store.EventAttribute {
	return store.EventAttribute{
		Key:       a.Key,
		Value:     a.Value,
		KeyText:   maybeDecodeText(a.Key),
		ValueText: maybeDecodeText(a.Value),
		Index:     a.Index,
	}
}

// normalizeEvents converts raw RPC events into store.EventInput, tagging
// each with source. A nil/empty input list normalizes to an empty slice
// (spec §4.2 step 4 "unknown or missing event lists normalize to empty
// arrays"), never nil, so the write path never has to special-case it.
func normalizeEvents(source string, events []rpcclient.Event) []store.EventInput {
	out := make([]store.EventInput, 0, len(events))
	for _, e := range events {
		attrs := make([]store.EventAttribute, 0, len(e.Attributes))
		for _, a := range e.Attributes {
			attrs = append(attrs, normalizeAttribute(a))
		}
		out = append(out, store.EventInput{
			Source:     source,
			EventType:  e.Type,
			Attributes: attrs,
		})
	}
	return out
}

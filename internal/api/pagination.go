package api

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"retrochain-indexer/internal/store"
)

// offsetMax bounds offset regardless of endpoint, grounded in
// original_source/tools/indexer_api.py's _parse_int offset ceiling
// (max_value=10_000_000) — prevents pathologically large OFFSET scans.
const offsetMax = 10_000_000

// queryInt mirrors indexer_api.py's _parse_int: a missing or non-numeric
// value silently falls back to def; an out-of-range numeric value is clamped
// to [min, max] rather than rejected (spec §4.3 "non-numeric values fall
// back to defaults silently").
func queryInt(c echo.Context, key string, def, min, max int) int {
	raw := strings.TrimSpace(c.QueryParam(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func queryOffset(c echo.Context) int {
	return queryInt(c, "offset", 0, 0, offsetMax)
}

// queryOrder parses "order", defaulting to def for anything other than a
// case-insensitive "asc"/"desc" (spec §4.3).
func queryOrder(c echo.Context, def store.Order) store.Order {
	switch strings.ToLower(strings.TrimSpace(c.QueryParam("order"))) {
	case "asc":
		return store.OrderAsc
	case "desc":
		return store.OrderDesc
	default:
		return def
	}
}

// queryOptionalHeight parses "height" as an optional int64 filter, gated the
// way indexer_api.py gates it with str.isdigit() — digits only, so a
// leading "-" is rejected rather than accepted as a negative height. An
// absent or non-digit value means "no filter", not an error.
func queryOptionalHeight(c echo.Context, key string) *int64 {
	raw := strings.TrimSpace(c.QueryParam(key))
	if raw == "" || !isDigits(raw) {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// queryOptionalString returns nil for an absent/blank query parameter.
func queryOptionalString(c echo.Context, key string) *string {
	raw := strings.TrimSpace(c.QueryParam(key))
	if raw == "" {
		return nil
	}
	return &raw
}

// truthy matches spec §4.3's include_raw acceptance list.
func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

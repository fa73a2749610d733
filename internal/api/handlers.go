package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"retrochain-indexer/internal/store"
)

// ServiceName and Version back the identity document at GET / (spec §4.3).
const (
	ServiceName = "retrochain-indexer-api"
	Version     = "1.0.0"
)

// handlers holds the dependencies every route needs: a read-only Store
// view. It never touches the write-side Store (spec §4.3 "the server must
// never mutate the database").
type handlers struct {
	rs *store.ReadStore
}

func (h *handlers) identity(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":    ServiceName,
		"version": Version,
	})
}

func (h *handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) status(c echo.Context) error {
	meta, err := h.rs.Meta(c.Request().Context())
	if err != nil {
		return err
	}
	resp := map[string]interface{}{
		"db_path":             h.rs.Path(),
		"chain_id":            nil,
		"last_indexed_height": nil,
	}
	if v, ok := meta["chain_id"]; ok {
		resp["chain_id"] = v
	}
	if v, ok := meta["last_indexed_height"]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			resp["last_indexed_height"] = n
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *handlers) listBlocks(c echo.Context) error {
	limit := queryInt(c, "limit", 20, 1, 200)
	offset := queryOffset(c)
	order := queryOrder(c, store.OrderDesc)

	total, items, err := h.rs.Blocks(c.Request().Context(), limit, offset, order)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageEnvelope(total, limit, offset, items))
}

func (h *handlers) getBlock(c echo.Context) error {
	height, err := strconv.ParseInt(c.Param("height"), 10, 64)
	if err != nil {
		return badRequest("height must be an integer")
	}

	b, err := h.rs.Block(c.Request().Context(), height)
	if err != nil {
		return err
	}

	resp := map[string]interface{}{
		"height":           b.Height,
		"time":             b.Time,
		"proposer_address": b.ProposerAddress,
		"block_id_hash":    b.BlockIDHash,
		"tx_count":         b.TxCount,
		"indexed_at":       b.IndexedAt,
	}
	if truthy(c.QueryParam("include_raw")) {
		resp["block_json"] = parsedOrRaw(b.BlockJSON)
		resp["results_json"] = parsedOrRaw(b.ResultsJSON)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *handlers) listTxs(c echo.Context) error {
	limit := queryInt(c, "limit", 50, 1, 500)
	offset := queryOffset(c)
	order := queryOrder(c, store.OrderDesc)
	height := queryOptionalHeight(c, "height")

	total, items, err := h.rs.Txs(c.Request().Context(), limit, offset, order, height)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageEnvelope(total, limit, offset, items))
}

func (h *handlers) getTx(c echo.Context) error {
	hash := strings.ToUpper(strings.TrimSpace(c.Param("hash")))
	d, err := h.rs.Tx(c.Request().Context(), hash)
	if err != nil {
		return err
	}

	resp := map[string]interface{}{
		"tx_hash":    d.TxHash,
		"height":     d.Height,
		"tx_index":   d.TxIndex,
		"code":       d.Code,
		"gas_wanted": d.GasWanted,
		"gas_used":   d.GasUsed,
		"raw_log":    d.RawLog,
		"indexed_at": d.IndexedAt,
		"block_time": d.BlockTime,
		"events":     parsedOrRaw(d.EventsJSON),
	}
	if d.TxB64 != nil {
		resp["tx_b64"] = *d.TxB64
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *handlers) listEvents(c echo.Context) error {
	limit := queryInt(c, "limit", 50, 1, 500)
	offset := queryOffset(c)
	order := queryOrder(c, store.OrderAsc)

	f := store.EventFilters{
		Height:    queryOptionalHeight(c, "height"),
		EventType: queryOptionalString(c, "type"),
		Source:    queryOptionalString(c, "source"),
	}
	if txHash := queryOptionalString(c, "tx_hash"); txHash != nil {
		upper := strings.ToUpper(*txHash)
		f.TxHash = &upper
	}

	total, rows, err := h.rs.Events(c.Request().Context(), limit, offset, order, f)
	if err != nil {
		return err
	}

	items := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		items = append(items, map[string]interface{}{
			"id":          r.ID,
			"height":      r.Height,
			"tx_hash":     r.TxHash,
			"source":      r.Source,
			"event_index": r.EventIndex,
			"event_type":  r.EventType,
			"attributes":  parsedOrRaw(r.AttributesJSON),
		})
	}
	return c.JSON(http.StatusOK, pageEnvelope(total, limit, offset, items))
}

// pageEnvelope is spec §4.3's global list-endpoint contract:
// { total, limit, offset, items }.
func pageEnvelope(total, limit, offset int, items interface{}) map[string]interface{} {
	return map[string]interface{}{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	}
}

// parsedOrRaw decodes a JSON blob column for re-embedding in a response;
// a decode failure (should not happen for data this service itself wrote)
// falls back to the raw string rather than failing the whole response.
func parsedOrRaw(raw string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

package rpcclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPClientBlockAndBlockResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/block":
			require.Equal(t, "42", r.URL.Query().Get("height"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{
					"block_id": map[string]any{"hash": "ABCDEF"},
					"block": map[string]any{
						"header": map[string]any{
							"time":             "2026-01-01T00:00:00Z",
							"proposer_address": "PROPOSER",
						},
						"data": map[string]any{
							"txs": []string{"dGVzdA=="},
						},
					},
				},
			})
		case "/block_results":
			require.Equal(t, "42", r.URL.Query().Get("height"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{
					"begin_block_events":   []any{},
					"end_block_events":     []any{},
					"finalize_block_events": []map[string]any{
						{"type": "transfer", "attributes": []map[string]any{
							{"key": "YWN0aW9u", "value": "c2VuZA=="},
						}},
					},
					"txs_results": []map[string]any{
						{"code": 0, "gas_wanted": "100", "gas_used": "90", "log": "[]"},
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := &HTTPClient{baseURL: srv.URL, httpClient: srv.Client()}

	blk, err := c.Block(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, "ABCDEF", blk.BlockIDHash)
	require.Equal(t, "PROPOSER", blk.ProposerAddress)
	require.Equal(t, []string{"dGVzdA=="}, blk.Txs)
	require.NotEmpty(t, blk.Raw)
	var rawBlock map[string]any
	require.NoError(t, json.Unmarshal(blk.Raw, &rawBlock))
	require.Contains(t, rawBlock, "result")
	require.Contains(t, string(blk.Raw), "block_id")

	res, err := c.BlockResults(context.Background(), 42)
	require.NoError(t, err)
	require.Empty(t, res.BeginBlockEvents)
	require.Empty(t, res.EndBlockEvents)
	require.Len(t, res.FinalizeBlockEvents, 1)
	require.Equal(t, "transfer", res.FinalizeBlockEvents[0].Type)
	require.Len(t, res.TxsResults, 1)
	require.NotNil(t, res.TxsResults[0].Code)
	require.Equal(t, int64(0), *res.TxsResults[0].Code)
	require.NotNil(t, res.TxsResults[0].GasWanted)
	require.Equal(t, int64(100), *res.TxsResults[0].GasWanted)
	require.NotEmpty(t, res.Raw)
	require.Contains(t, string(res.Raw), "txs_results")
}

func TestJoinPath(t *testing.T) {
	require.Equal(t, "/block", joinPath("", "block"))
	require.Equal(t, "/block", joinPath("/", "block"))
	require.Equal(t, "/sub/block", joinPath("/sub", "block"))
	require.Equal(t, "/sub/block", joinPath("/sub/", "block"))
}

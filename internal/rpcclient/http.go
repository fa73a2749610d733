package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	cmthttp "github.com/cometbft/cometbft/rpc/client/http"
)

// HTTPClient is the production Client, talking to a single CometBFT node.
// Status goes through the node's typed RPC client (grounded in
// cosmosclient/rpcclient.go's NewRpcClient/Status pattern, whose result
// shape is stable across CometBFT releases); /block and /block_results are
// fetched as raw JSON-RPC and decoded into our own wire structs, the way
// original_source/tools/sql_indexer.py's _http_get_json does it, so the
// indexer isn't coupled to a specific SDK version's Go struct layout.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tm         *cmthttp.HTTP
}

// NewHTTPClient builds a Client against remote, a CometBFT RPC base URL
// such as "http://localhost:26657". requestTimeout bounds every call.
func NewHTTPClient(remote string, requestTimeout time.Duration) (*HTTPClient, error) {
	tm, err := cmthttp.New(remote, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("rpcclient: new tendermint client: %w", err)
	}
	return &HTTPClient{
		baseURL:    remote,
		httpClient: &http.Client{Timeout: requestTimeout},
		tm:         tm,
	}, nil
}

func (c *HTTPClient) Status(ctx context.Context) (Status, error) {
	if c.httpClient.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}
	res, err := c.tm.Status(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("rpcclient: status: %w", err)
	}
	return Status{
		ChainID:        res.NodeInfo.Network,
		LatestHeight:   res.SyncInfo.LatestBlockHeight,
		EarliestHeight: res.SyncInfo.EarliestBlockHeight,
	}, nil
}

func (c *HTTPClient) Block(ctx context.Context, height int64) (Block, error) {
	var wire struct {
		Result struct {
			BlockID struct {
				Hash string `json:"hash"`
			} `json:"block_id"`
			Block struct {
				Header struct {
					Time            string `json:"time"`
					ProposerAddress string `json:"proposer_address"`
				} `json:"header"`
				Data struct {
					Txs []string `json:"txs"`
				} `json:"data"`
			} `json:"block"`
		} `json:"result"`
	}
	raw, err := c.getJSON(ctx, "block", height, &wire)
	if err != nil {
		return Block{}, fmt.Errorf("rpcclient: block: %w", err)
	}
	return Block{
		Time:            wire.Result.Block.Header.Time,
		ProposerAddress: wire.Result.Block.Header.ProposerAddress,
		BlockIDHash:     wire.Result.BlockID.Hash,
		Txs:             wire.Result.Block.Data.Txs,
		Raw:             raw,
	}, nil
}

func (c *HTTPClient) BlockResults(ctx context.Context, height int64) (BlockResults, error) {
	var wire struct {
		Result struct {
			BeginBlockEvents    []Event    `json:"begin_block_events"`
			EndBlockEvents      []Event    `json:"end_block_events"`
			FinalizeBlockEvents []Event    `json:"finalize_block_events"`
			TxsResults          []TxResult `json:"txs_results"`
		} `json:"result"`
	}
	raw, err := c.getJSON(ctx, "block_results", height, &wire)
	if err != nil {
		return BlockResults{}, fmt.Errorf("rpcclient: block_results: %w", err)
	}
	return BlockResults{
		BeginBlockEvents:    wire.Result.BeginBlockEvents,
		EndBlockEvents:      wire.Result.EndBlockEvents,
		FinalizeBlockEvents: wire.Result.FinalizeBlockEvents,
		TxsResults:          wire.Result.TxsResults,
		Raw:                 raw,
	}, nil
}

// getJSON issues a GET <baseURL>/<method>?height=N, decodes the JSON body
// into out, and returns the exact response bytes for Store to keep as the
// verbatim RPC document (spec §3, §9). height<=0 omits the query parameter,
// matching CometBFT's "latest height" default for /block and
// /block_results.
func (c *HTTPClient) getJSON(ctx context.Context, method string, height int64, out any) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	u.Path = joinPath(u.Path, method)
	if height > 0 {
		q := u.Query()
		q.Set("height", strconv.FormatInt(height, 10))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, u.String())
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return body, nil
}

func joinPath(base, method string) string {
	if base == "" {
		return "/" + method
	}
	if base[len(base)-1] == '/' {
		return base + method
	}
	return base + "/" + method
}

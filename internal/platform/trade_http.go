package platform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"solana-fee-recycler/internal/solana"
)

// Trade API actions shared by the launch platforms.
const (
	actionClaim        = "collectCreatorFee"
	actionBuy          = "buy"
	actionAddLiquidity = "addLiquidity"
)

// DefaultSlippagePct is the slippage tolerance sent with trades.
const DefaultSlippagePct = 10.0

// tradeRequest is the request body of a trade-local API call. The API
// builds an unsigned transaction for the custodial wallet to sign.
type tradeRequest struct {
	Action      string  `json:"action"`
	PublicKey   string  `json:"publicKey"`
	Mint        string  `json:"mint"`
	AmountSol   float64 `json:"amountSol,omitempty"`
	SlippagePct float64 `json:"slippage,omitempty"`
	Pool        string  `json:"pool,omitempty"`
}

// tradeResponse is the trade-local API response. Transaction is empty
// when there is nothing to do (e.g. no fees accrued).
type tradeResponse struct {
	Transaction string   `json:"transaction"` // base64 unsigned tx
	AmountSol   *float64 `json:"amountSol,omitempty"`
	TokenAmount *float64 `json:"tokenAmount,omitempty"`
	LPTokens    *float64 `json:"lpTokens,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// poolResponse is the pool lookup response.
type poolResponse struct {
	Address      string  `json:"address"`
	LPMint       string  `json:"lpMint"`
	BaseReserve  float64 `json:"baseReserve"`
	QuoteReserve float64 `json:"quoteReserve"`
	LPSupply     float64 `json:"lpSupply"`
}

// tradeClient drives one platform's trade-local HTTP API: request an
// unsigned transaction, sign it with the custodial keypair, submit it
// through the shared Solana client and wait for confirmation.
type tradeClient struct {
	endpoint string
	http     *http.Client
	rpc      solana.Client
	confirm  solana.Confirmer
	pool     string // pool identifier quirk, platform-specific
	logger   *log.Logger
}

func newTradeClient(endpoint, pool string, rpc solana.Client, confirm solana.Confirmer, logger *log.Logger) *tradeClient {
	if logger == nil {
		logger = log.Default()
	}
	return &tradeClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		rpc:      rpc,
		confirm:  confirm,
		pool:     pool,
		logger:   logger,
	}
}

// execute runs one trade action end to end. An empty Transaction in
// the response means there was nothing to do; the returned signature
// is empty in that case.
func (c *tradeClient) execute(ctx context.Context, signer *solana.Keypair, req tradeRequest) (string, *tradeResponse, error) {
	req.PublicKey = signer.Address()
	if req.Pool == "" {
		req.Pool = c.pool
	}

	resp, err := c.post(ctx, "/api/trade", req)
	if err != nil {
		return "", nil, err
	}
	if resp.Error != "" {
		return "", resp, fmt.Errorf("platform api: %s", resp.Error)
	}
	if resp.Transaction == "" {
		return "", resp, nil
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Transaction)
	if err != nil {
		return "", nil, fmt.Errorf("decode transaction: %w", err)
	}

	signed, _, err := solana.SignWireTransaction(raw, signer)
	if err != nil {
		return "", nil, fmt.Errorf("sign transaction: %w", err)
	}

	signature, err := c.rpc.SendTransaction(ctx, signed)
	if err != nil {
		return "", nil, fmt.Errorf("send transaction: %w", err)
	}

	if err := c.confirm.WaitForConfirmation(ctx, signature); err != nil {
		return signature, nil, fmt.Errorf("confirm %s: %w", req.Action, err)
	}

	return signature, resp, nil
}

func (c *tradeClient) post(ctx context.Context, path string, body interface{}) (*tradeResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp tradeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response (status %d): %w", httpResp.StatusCode, err)
	}
	if httpResp.StatusCode != http.StatusOK && resp.Error == "" {
		return nil, fmt.Errorf("unexpected status %d: %s", httpResp.StatusCode, string(respBody))
	}

	return &resp, nil
}

// lookupPool fetches pool info for a mint. Returns nil when the mint
// has no pool yet.
func (c *tradeClient) lookupPool(ctx context.Context, mint string) (*PoolInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/pools/"+mint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", httpResp.StatusCode, string(body))
	}

	var resp poolResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("unmarshal pool response: %w", err)
	}
	if resp.Address == "" {
		return nil, nil
	}

	return &PoolInfo{
		Address: resp.Address,
		LPMint:  resp.LPMint,
		Reserves: PoolReserves{
			Base:     resp.BaseReserve,
			Quote:    resp.QuoteReserve,
			LPSupply: resp.LPSupply,
		},
	}, nil
}

package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0

	// DefaultConfirmTimeout bounds the polling confirmation wait.
	DefaultConfirmTimeout = 60 * time.Second
	// DefaultConfirmPoll is the polling interval for confirmations.
	DefaultConfirmPoll = 2 * time.Second
)

// HTTPClient implements Client using HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint       string
	client         *http.Client
	maxRetries     int
	retryDelay     time.Duration
	maxDelay       time.Duration
	backoffMult    float64
	confirmTimeout time.Duration
	confirmPoll    time.Duration
	requestID      atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithConfirmTimeout sets the polling confirmation timeout.
func WithConfirmTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.confirmTimeout = d
	}
}

// WithConfirmPoll sets the polling confirmation interval.
func WithConfirmPoll(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.confirmPoll = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new Solana RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:       endpoint,
		client:         &http.Client{Timeout: DefaultTimeout},
		maxRetries:     DefaultMaxRetries,
		retryDelay:     DefaultRetryDelay,
		maxDelay:       DefaultMaxDelay,
		backoffMult:    DefaultBackoffMult,
		confirmTimeout: DefaultConfirmTimeout,
		confirmPoll:    DefaultConfirmPoll,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface checks.
var (
	_ Client    = (*HTTPClient)(nil)
	_ Confirmer = (*HTTPClient)(nil)
)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// GetBalance returns the lamport balance of an account.
func (c *HTTPClient) GetBalance(ctx context.Context, pubkey string) (uint64, error) {
	var result struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(ctx, "getBalance", []interface{}{pubkey}, &result); err != nil {
		return 0, err
	}
	return result.Value, nil
}

// GetLatestBlockhash returns a recent blockhash.
func (c *HTTPClient) GetLatestBlockhash(ctx context.Context) (string, error) {
	var result struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	params := []interface{}{
		map[string]interface{}{"commitment": "confirmed"},
	}
	if err := c.call(ctx, "getLatestBlockhash", params, &result); err != nil {
		return "", err
	}
	if result.Value.Blockhash == "" {
		return "", fmt.Errorf("empty blockhash in response")
	}
	return result.Value.Blockhash, nil
}

// SendTransaction submits a signed wire-format transaction.
func (c *HTTPClient) SendTransaction(ctx context.Context, signedTx []byte) (string, error) {
	params := []interface{}{
		base64.StdEncoding.EncodeToString(signedTx),
		map[string]interface{}{
			"encoding":            "base64",
			"skipPreflight":       false,
			"preflightCommitment": "confirmed",
		},
	}

	var signature string
	if err := c.call(ctx, "sendTransaction", params, &signature); err != nil {
		return "", err
	}
	return signature, nil
}

// GetSignatureStatuses returns confirmation statuses for signatures.
func (c *HTTPClient) GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error) {
	params := []interface{}{
		signatures,
		map[string]interface{}{"searchTransactionHistory": true},
	}

	var result struct {
		Value []*struct {
			ConfirmationStatus string      `json:"confirmationStatus"`
			Err                interface{} `json:"err"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getSignatureStatuses", params, &result); err != nil {
		return nil, err
	}

	statuses := make([]*SignatureStatus, len(result.Value))
	for i, v := range result.Value {
		if v == nil {
			continue
		}
		statuses[i] = &SignatureStatus{
			Signature:          signatures[i],
			ConfirmationStatus: v.ConfirmationStatus,
			Err:                v.Err,
		}
	}
	return statuses, nil
}

// WaitForConfirmation polls signature status until confirmed, failed
// or the confirmation timeout elapses.
func (c *HTTPClient) WaitForConfirmation(ctx context.Context, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	for {
		statuses, err := c.GetSignatureStatuses(ctx, []string{signature})
		if err == nil && len(statuses) == 1 && statuses[0] != nil {
			s := statuses[0]
			if s.Err != nil {
				return fmt.Errorf("transaction %s failed on-chain: %v", signature, s.Err)
			}
			if s.Confirmed() {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation timeout for %s: %w", signature, ctx.Err())
		case <-time.After(c.confirmPoll):
		}
	}
}

// parsedTokenAccount mirrors the jsonParsed token account layout.
type parsedTokenAccount struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		Owner string `json:"owner"` // token program
		Data  struct {
			Parsed struct {
				Info struct {
					Mint        string `json:"mint"`
					Owner       string `json:"owner"` // wallet
					TokenAmount struct {
						Amount   string  `json:"amount"`
						Decimals uint8   `json:"decimals"`
						UIAmount float64 `json:"uiAmount"`
					} `json:"tokenAmount"`
				} `json:"info"`
			} `json:"parsed"`
		} `json:"data"`
	} `json:"account"`
}

func (p *parsedTokenAccount) toTokenAccount() TokenAccount {
	info := p.Account.Data.Parsed.Info
	amount, _ := strconv.ParseUint(info.TokenAmount.Amount, 10, 64)
	return TokenAccount{
		Address:  p.Pubkey,
		Program:  p.Account.Owner,
		Owner:    info.Owner,
		Mint:     info.Mint,
		Amount:   amount,
		Decimals: info.TokenAmount.Decimals,
		UIAmount: info.TokenAmount.UIAmount,
	}
}

// GetTokenAccountsByOwner returns owner's token accounts for a mint,
// probing both the legacy and 2022 token programs.
func (c *HTTPClient) GetTokenAccountsByOwner(ctx context.Context, owner, mint string) ([]TokenAccount, error) {
	params := []interface{}{
		owner,
		map[string]interface{}{"mint": mint},
		map[string]interface{}{"encoding": "jsonParsed"},
	}

	var result struct {
		Value []parsedTokenAccount `json:"value"`
	}
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		return nil, err
	}

	accounts := make([]TokenAccount, 0, len(result.Value))
	for i := range result.Value {
		accounts = append(accounts, result.Value[i].toTokenAccount())
	}
	return accounts, nil
}

// GetProgramTokenAccounts scans a token program for all accounts of the
// given mint.
func (c *HTTPClient) GetProgramTokenAccounts(ctx context.Context, program, mint string) ([]TokenAccount, error) {
	filters := []interface{}{
		map[string]interface{}{
			"memcmp": map[string]interface{}{"offset": 0, "bytes": mint},
		},
	}
	// Legacy accounts have a fixed size; 2022 accounts carry extensions.
	if program == TokenProgramID {
		filters = append(filters, map[string]interface{}{"dataSize": 165})
	}

	params := []interface{}{
		program,
		map[string]interface{}{
			"encoding": "jsonParsed",
			"filters":  filters,
		},
	}

	var result []parsedTokenAccount
	if err := c.call(ctx, "getProgramAccounts", params, &result); err != nil {
		return nil, err
	}

	accounts := make([]TokenAccount, 0, len(result))
	for i := range result {
		accounts = append(accounts, result[i].toTokenAccount())
	}
	return accounts, nil
}

// GetTokenLargestAccounts returns the largest token accounts for a mint.
func (c *HTTPClient) GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenBalance, error) {
	var result struct {
		Value []struct {
			Address  string  `json:"address"`
			Amount   string  `json:"amount"`
			Decimals uint8   `json:"decimals"`
			UIAmount float64 `json:"uiAmount"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getTokenLargestAccounts", []interface{}{mint}, &result); err != nil {
		return nil, err
	}

	balances := make([]TokenBalance, 0, len(result.Value))
	for _, v := range result.Value {
		amount, _ := strconv.ParseUint(v.Amount, 10, 64)
		balances = append(balances, TokenBalance{
			Address:  v.Address,
			Amount:   amount,
			Decimals: v.Decimals,
			UIAmount: v.UIAmount,
		})
	}
	return balances, nil
}

// GetMultipleTokenAccounts resolves token account addresses to parsed
// accounts. Missing accounts are skipped.
func (c *HTTPClient) GetMultipleTokenAccounts(ctx context.Context, addresses []string) ([]TokenAccount, error) {
	params := []interface{}{
		addresses,
		map[string]interface{}{"encoding": "jsonParsed"},
	}

	var result struct {
		Value []*struct {
			Owner string `json:"owner"`
			Data  struct {
				Parsed struct {
					Info struct {
						Mint        string `json:"mint"`
						Owner       string `json:"owner"`
						TokenAmount struct {
							Amount   string  `json:"amount"`
							Decimals uint8   `json:"decimals"`
							UIAmount float64 `json:"uiAmount"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getMultipleAccounts", params, &result); err != nil {
		return nil, err
	}

	accounts := make([]TokenAccount, 0, len(result.Value))
	for i, v := range result.Value {
		if v == nil {
			continue
		}
		info := v.Data.Parsed.Info
		amount, _ := strconv.ParseUint(info.TokenAmount.Amount, 10, 64)
		accounts = append(accounts, TokenAccount{
			Address:  addresses[i],
			Program:  v.Owner,
			Owner:    info.Owner,
			Mint:     info.Mint,
			Amount:   amount,
			Decimals: info.TokenAmount.Decimals,
			UIAmount: info.TokenAmount.UIAmount,
		})
	}
	return accounts, nil
}

// GetAccountInfo retrieves account info by public key.
// Returns nil if account not found.
func (c *HTTPClient) GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error) {
	params := []interface{}{
		pubkey,
		map[string]interface{}{"encoding": "base64"},
	}

	var result struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Data       []string `json:"data"` // [base64_data, encoding]
			Executable bool     `json:"executable"`
			RentEpoch  uint64   `json:"rentEpoch"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}

	if result.Value == nil {
		return nil, nil
	}

	info := &AccountInfo{
		Lamports:   result.Value.Lamports,
		Owner:      result.Value.Owner,
		Executable: result.Value.Executable,
		RentEpoch:  result.Value.RentEpoch,
	}
	if len(result.Value.Data) >= 1 {
		info.Data = result.Value.Data[0]
	}
	return info, nil
}

package platform

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-fee-recycler/internal/solana"
	"solana-fee-recycler/internal/solana/stub"
)

const testMint = "BWsFVYy7vVXfFtpyefkCAwXKDaogoiSA4fFZqSXy1REh"

func testSigner(t *testing.T) *solana.Keypair {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	kp, err := solana.ParseKeypair(base58.Encode(priv))
	require.NoError(t, err)
	return kp
}

// unsignedTx returns a minimal wire transaction with one empty
// signature slot.
func unsignedTx() string {
	raw := make([]byte, 1+64)
	raw[0] = 1
	raw = append(raw, []byte("message-bytes-to-sign")...)
	return base64.StdEncoding.EncodeToString(raw)
}

func tradeServer(t *testing.T, handler func(req tradeRequest) tradeResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/trade" {
			http.NotFound(w, r)
			return
		}
		var req tradeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := handler(req)
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestClaimFees_NothingToClaim(t *testing.T) {
	srv := tradeServer(t, func(req tradeRequest) tradeResponse {
		return tradeResponse{Error: "nothing to claim"}
	})
	defer srv.Close()

	rpc := stub.New()
	adapter := NewPump(srv.URL, rpc, rpc, nil)

	res := adapter.ClaimFees(context.Background(), testSigner(t), testMint)
	assert.True(t, res.Success)
	assert.True(t, res.AmountKnown)
	assert.Zero(t, res.AmountSol)
	assert.Empty(t, res.Signature)
}

func TestClaimFees_EmptyTransactionIsZeroClaim(t *testing.T) {
	srv := tradeServer(t, func(req tradeRequest) tradeResponse {
		return tradeResponse{}
	})
	defer srv.Close()

	rpc := stub.New()
	adapter := NewPump(srv.URL, rpc, rpc, nil)

	res := adapter.ClaimFees(context.Background(), testSigner(t), testMint)
	assert.True(t, res.Success)
	assert.Zero(t, res.AmountSol)
}

func TestClaimFees_ReportsAmount(t *testing.T) {
	amount := 1.25
	srv := tradeServer(t, func(req tradeRequest) tradeResponse {
		assert.Equal(t, actionClaim, req.Action)
		assert.Equal(t, testMint, req.Mint)
		return tradeResponse{Transaction: unsignedTx(), AmountSol: &amount}
	})
	defer srv.Close()

	rpc := stub.New()
	adapter := NewPump(srv.URL, rpc, rpc, nil)

	res := adapter.ClaimFees(context.Background(), testSigner(t), testMint)
	require.True(t, res.Success, res.Err)
	assert.True(t, res.AmountKnown)
	assert.Equal(t, 1.25, res.AmountSol)
	assert.Equal(t, "stub-sig-1", res.Signature)
	assert.Len(t, rpc.Sent, 1)
}

func TestClaimFees_APIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))
	defer srv.Close()

	rpc := stub.New()
	adapter := NewPump(srv.URL, rpc, rpc, nil)

	res := adapter.ClaimFees(context.Background(), testSigner(t), testMint)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Err)
}

func TestBuy(t *testing.T) {
	tokensOut := 42000.5
	srv := tradeServer(t, func(req tradeRequest) tradeResponse {
		assert.Equal(t, actionBuy, req.Action)
		assert.Equal(t, 0.5, req.AmountSol)
		return tradeResponse{Transaction: unsignedTx(), TokenAmount: &tokensOut}
	})
	defer srv.Close()

	rpc := stub.New()
	adapter := NewBonk(srv.URL, rpc, rpc, nil)

	res := adapter.Buy(context.Background(), testSigner(t), testMint, 0.5)
	require.True(t, res.Success, res.Err)
	assert.Equal(t, tokensOut, res.TokenAmountOut)
	assert.NotEmpty(t, res.Signature)
}

func TestBuy_ConfirmationFailure(t *testing.T) {
	srv := tradeServer(t, func(req tradeRequest) tradeResponse {
		return tradeResponse{Transaction: unsignedTx()}
	})
	defer srv.Close()

	rpc := stub.New()
	rpc.FailConfirm["stub-sig-1"] = true
	adapter := NewPump(srv.URL, rpc, rpc, nil)

	res := adapter.Buy(context.Background(), testSigner(t), testMint, 0.5)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Err)
}

func TestAddLiquidity_UnsupportedPlatform(t *testing.T) {
	rpc := stub.New()
	adapter := NewBags("http://unused", rpc, rpc, nil)

	assert.False(t, adapter.SupportsLiquidity())

	res := adapter.AddLiquidity(context.Background(), testSigner(t), testMint, 1.0)
	assert.False(t, res.Success)
	assert.Contains(t, res.Err, "unsupported")
}

func TestPool_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	rpc := stub.New()
	adapter := NewPump(srv.URL, rpc, rpc, nil)

	pool, err := adapter.Pool(context.Background(), testMint)
	require.NoError(t, err)
	assert.Nil(t, pool)
}

func TestPool_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pools/"+testMint, r.URL.Path)
		json.NewEncoder(w).Encode(poolResponse{
			Address:      "PoolAddr111",
			BaseReserve:  1_000_000,
			QuoteReserve: 85,
			LPSupply:     9200,
		})
	}))
	defer srv.Close()

	rpc := stub.New()
	adapter := NewPump(srv.URL, rpc, rpc, nil)

	pool, err := adapter.Pool(context.Background(), testMint)
	require.NoError(t, err)
	require.NotNil(t, pool)
	assert.Equal(t, "PoolAddr111", pool.Address)
	assert.Equal(t, 85.0, pool.Reserves.Quote)
}

func TestQuoteAddLiquidity(t *testing.T) {
	reserves := PoolReserves{Base: 1_000_000, Quote: 100, LPSupply: 5000}

	q, err := QuoteAddLiquidity(reserves, 2, 10)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, q.LPTokensOut, 1e-9)   // 5000 * 2/100
	assert.InDelta(t, 22000.0, q.MaxBase, 1e-9)     // 20000 * 1.1
	assert.InDelta(t, 2.2, q.MaxQuote, 1e-9)

	_, err = QuoteAddLiquidity(PoolReserves{}, 2, 10)
	assert.ErrorIs(t, err, ErrEmptyPool)

	_, err = QuoteAddLiquidity(reserves, 0, 10)
	assert.ErrorIs(t, err, ErrZeroDeposit)
}

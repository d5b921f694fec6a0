package pools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/platform"
	"solana-fee-recycler/internal/solana"
	"solana-fee-recycler/internal/solana/stub"
)

const testMint = "BWsFVYy7vVXfFtpyefkCAwXKDaogoiSA4fFZqSXy1REh"

func poolServer(t *testing.T, hits *atomic.Int64, address string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if address == "" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"address":      address,
			"baseReserve":  1000.0,
			"quoteReserve": 10.0,
			"lpSupply":     100.0,
		})
	}))
}

func newDetector(srvURL string, rpc solana.Client) *Detector {
	reg := platform.Registry{
		domain.PlatformPump: platform.NewPump(srvURL, rpc, rpc.(solana.Confirmer), nil),
	}
	return NewDetector(reg, rpc, nil)
}

func TestIsGraduated_NoPool(t *testing.T) {
	srv := poolServer(t, nil, "")
	defer srv.Close()

	rpc := stub.New()
	d := newDetector(srv.URL, rpc)

	grad, err := d.IsGraduated(context.Background(), domain.PlatformPump, testMint)
	require.NoError(t, err)
	assert.False(t, grad.Graduated)
	assert.Empty(t, grad.Pool)
}

func TestIsGraduated_PoolVerifiedOnChain(t *testing.T) {
	srv := poolServer(t, nil, "PoolAddr111")
	defer srv.Close()

	rpc := stub.New()
	rpc.Accounts["PoolAddr111"] = &solana.AccountInfo{Lamports: 1}
	d := newDetector(srv.URL, rpc)

	grad, err := d.IsGraduated(context.Background(), domain.PlatformPump, testMint)
	require.NoError(t, err)
	assert.True(t, grad.Graduated)
	assert.Equal(t, "PoolAddr111", grad.Pool)
}

func TestIsGraduated_PoolNotYetOnChain(t *testing.T) {
	srv := poolServer(t, nil, "PoolAddr111")
	defer srv.Close()

	rpc := stub.New() // no account scripted
	d := newDetector(srv.URL, rpc)

	grad, err := d.IsGraduated(context.Background(), domain.PlatformPump, testMint)
	require.NoError(t, err)
	assert.True(t, grad.Graduated)
	assert.Empty(t, grad.Pool, "undiscoverable pool must be reported empty")
}

func TestIsGraduated_CachesVerdict(t *testing.T) {
	var hits atomic.Int64
	srv := poolServer(t, &hits, "")
	defer srv.Close()

	rpc := stub.New()
	d := newDetector(srv.URL, rpc)

	now := time.Now()
	d.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := d.IsGraduated(context.Background(), domain.PlatformPump, testMint)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), hits.Load())

	// Expired cache re-queries.
	now = now.Add(DefaultCacheTTL + time.Second)
	_, err := d.IsGraduated(context.Background(), domain.PlatformPump, testMint)
	require.NoError(t, err)
	assert.Equal(t, int64(2), hits.Load())
}

func TestIsGraduated_UnknownPlatform(t *testing.T) {
	rpc := stub.New()
	d := NewDetector(platform.Registry{}, rpc, nil)

	_, err := d.IsGraduated(context.Background(), domain.PlatformBags, testMint)
	assert.Error(t, err)
}

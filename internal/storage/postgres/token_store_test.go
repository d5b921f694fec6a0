package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/storage"
)

func sampleToken(mint string) *domain.Token {
	return &domain.Token{
		Mint:     mint,
		Platform: domain.PlatformPump,
		Status:   domain.StatusBonding,
		Keypair:  "keypair-" + mint,
		Buyback:  domain.FeatureConfig{Enabled: true, Percent: 50},
		AutoLiq:  domain.FeatureConfig{Enabled: true, Percent: 30},
		Revshare: domain.FeatureConfig{Enabled: false, Percent: 0},
		Jackpot: domain.JackpotConfig{
			FeatureConfig: domain.FeatureConfig{Enabled: true, Percent: 20},
			MinHold:       100,
		},
		CustomSplit: true,
		IntervalSec: 600,
	}
}

func TestTokenStore_InsertAndGetByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	token := sampleToken("MintAddr111")
	err := store.Insert(ctx, token)
	require.NoError(t, err)
	require.NotZero(t, token.ID)

	retrieved, err := store.GetByMint(ctx, "MintAddr111")
	require.NoError(t, err)

	assert.Equal(t, token.ID, retrieved.ID)
	assert.Equal(t, token.Mint, retrieved.Mint)
	assert.Equal(t, domain.PlatformPump, retrieved.Platform)
	assert.Equal(t, domain.StatusBonding, retrieved.Status)
	assert.Equal(t, token.Keypair, retrieved.Keypair)
	assert.Equal(t, token.Buyback, retrieved.Buyback)
	assert.Equal(t, token.AutoLiq, retrieved.AutoLiq)
	assert.Equal(t, token.Jackpot, retrieved.Jackpot)
	assert.True(t, retrieved.CustomSplit)
	assert.Equal(t, int64(600), retrieved.IntervalSec)
	assert.NotZero(t, retrieved.CreatedAt)
}

func TestTokenStore_InsertDuplicateMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, sampleToken("MintDup")))

	err := store.Insert(ctx, sampleToken("MintDup"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTokenStore_GetByMint_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)

	_, err := store.GetByMint(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_GetEligible(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	bonding := sampleToken("MintBonding")
	live := sampleToken("MintLive")
	live.Status = domain.StatusLive
	graduating := sampleToken("MintGrad")
	graduating.Status = domain.StatusGraduating
	paused := sampleToken("MintPaused")
	paused.Paused = true
	pending := sampleToken("MintPending")
	pending.Status = domain.StatusPending

	for _, tok := range []*domain.Token{bonding, live, graduating, paused, pending} {
		require.NoError(t, store.Insert(ctx, tok))
	}

	eligible, err := store.GetEligible(ctx, "")
	require.NoError(t, err)
	require.Len(t, eligible, 3)
	assert.Equal(t, "MintBonding", eligible[0].Mint)
	assert.Equal(t, "MintLive", eligible[1].Mint)
	assert.Equal(t, "MintGrad", eligible[2].Mint)

	eligible, err = store.GetEligible(ctx, "MintLive")
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	for _, tok := range eligible {
		assert.NotEqual(t, "MintLive", tok.Mint)
	}
}

func TestTokenStore_UpdateCounters(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	token := sampleToken("MintCounters")
	require.NoError(t, store.Insert(ctx, token))

	deltas := domain.CounterDeltas{
		FeesClaimed:  1.5,
		BoughtBack:   0.5,
		Burned:       10000,
		LPAdded:      0.25,
		RevsharePaid: 0.1,
		JackpotPaid:  0.05,
	}
	require.NoError(t, store.UpdateCounters(ctx, token.ID, deltas))
	require.NoError(t, store.UpdateCounters(ctx, token.ID, deltas))

	retrieved, err := store.GetByMint(ctx, "MintCounters")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, retrieved.TotalFeesClaimed, 1e-9)
	assert.InDelta(t, 1.0, retrieved.TotalBoughtBack, 1e-9)
	assert.InDelta(t, 20000, retrieved.TotalBurned, 1e-9)
	assert.InDelta(t, 0.5, retrieved.TotalLPAdded, 1e-9)
	assert.InDelta(t, 0.2, retrieved.TotalRevsharePaid, 1e-9)
	assert.InDelta(t, 0.1, retrieved.TotalJackpotPaid, 1e-9)

	err = store.UpdateCounters(ctx, 999999, deltas)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_SetLastRunAndStatus(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	token := sampleToken("MintRun")
	require.NoError(t, store.Insert(ctx, token))

	require.NoError(t, store.SetLastRun(ctx, token.ID, 1704067200000))
	require.NoError(t, store.SetStatus(ctx, token.ID, domain.StatusLive))

	retrieved, err := store.GetByMint(ctx, "MintRun")
	require.NoError(t, err)
	assert.Equal(t, int64(1704067200000), retrieved.LastRun)
	assert.Equal(t, domain.StatusLive, retrieved.Status)

	assert.ErrorIs(t, store.SetLastRun(ctx, 999999, 1), storage.ErrNotFound)
	assert.ErrorIs(t, store.SetStatus(ctx, 999999, domain.StatusFailed), storage.ErrNotFound)
}

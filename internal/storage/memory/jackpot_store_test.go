package memory

import (
	"context"
	"testing"

	"solana-fee-recycler/internal/domain"
)

func TestJackpotStore_UpsertAndGet(t *testing.T) {
	store := NewJackpotStore()
	ctx := context.Background()

	e := &domain.JackpotEntry{TokenID: 1, Wallet: "walletA", Balance: 1000, LastWonAt: 100}
	if err := store.Upsert(ctx, e); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByToken(ctx, 1)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(got) != 1 || got[0].Wallet != "walletA" || got[0].Balance != 1000 {
		t.Errorf("Unexpected entries: %+v", got)
	}
}

func TestJackpotStore_RepeatWinUpdatesInPlace(t *testing.T) {
	store := NewJackpotStore()
	ctx := context.Background()

	first := &domain.JackpotEntry{TokenID: 1, Wallet: "walletA", Balance: 1000, LastWonAt: 100}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	second := &domain.JackpotEntry{TokenID: 1, Wallet: "walletA", Balance: 2500, LastWonAt: 200}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	got, err := store.GetByToken(ctx, 1)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(got))
	}
	if got[0].Balance != 2500 || got[0].LastWonAt != 200 {
		t.Errorf("Entry not updated: %+v", got[0])
	}
}

func TestJackpotStore_TokenIsolation(t *testing.T) {
	store := NewJackpotStore()
	ctx := context.Background()

	_ = store.Upsert(ctx, &domain.JackpotEntry{TokenID: 1, Wallet: "walletA", LastWonAt: 100})
	_ = store.Upsert(ctx, &domain.JackpotEntry{TokenID: 2, Wallet: "walletA", LastWonAt: 200})
	_ = store.Upsert(ctx, &domain.JackpotEntry{TokenID: 1, Wallet: "walletB", LastWonAt: 300})

	got, err := store.GetByToken(ctx, 1)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries for token 1, got %d", len(got))
	}
	// Newest win first
	if got[0].Wallet != "walletB" || got[1].Wallet != "walletA" {
		t.Errorf("Unexpected order: %s, %s", got[0].Wallet, got[1].Wallet)
	}
}

package memory

import (
	"context"
	"errors"
	"testing"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/storage"
)

func historyEntry(id string, tokenID int64, action domain.ActionType, sol float64, createdAt int64) *domain.HistoryEntry {
	return &domain.HistoryEntry{
		EntryID:   id,
		TokenID:   tokenID,
		Mint:      "mint1",
		Action:    action,
		Signature: "sig-" + id,
		SolAmount: sol,
		CreatedAt: createdAt,
	}
}

func TestHistoryStore_AppendAndGet(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	entries := []*domain.HistoryEntry{
		historyEntry("e1", 1, domain.ActionClaimFees, 1.0, 100),
		historyEntry("e2", 1, domain.ActionBuyback, 0.5, 200),
		historyEntry("e3", 2, domain.ActionClaimFees, 2.0, 150),
	}
	if err := store.Append(ctx, entries); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := store.GetByToken(ctx, 1, 10)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}
	// Newest first
	if got[0].EntryID != "e2" || got[1].EntryID != "e1" {
		t.Errorf("Unexpected order: %s, %s", got[0].EntryID, got[1].EntryID)
	}

	// Limit applies
	got, err = store.GetByToken(ctx, 1, 1)
	if err != nil {
		t.Fatalf("GetByToken with limit failed: %v", err)
	}
	if len(got) != 1 || got[0].EntryID != "e2" {
		t.Errorf("Expected only e2, got %d entries", len(got))
	}
}

func TestHistoryStore_DuplicatesCollapse(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	e := historyEntry("e1", 1, domain.ActionClaimFees, 1.0, 100)
	if err := store.Append(ctx, []*domain.HistoryEntry{e}); err != nil {
		t.Fatalf("First append failed: %v", err)
	}
	// Re-appending the same deterministic entry is a no-op, not an error
	if err := store.Append(ctx, []*domain.HistoryEntry{e}); err != nil {
		t.Fatalf("Second append failed: %v", err)
	}

	got, err := store.GetByToken(ctx, 1, 10)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected 1 entry after duplicate append, got %d", len(got))
	}

	totals, err := store.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}
	if totals[domain.ActionClaimFees].Count != 1 {
		t.Errorf("Count = %d, want 1", totals[domain.ActionClaimFees].Count)
	}
}

func TestHistoryStore_EmptyEntryID(t *testing.T) {
	store := NewHistoryStore()

	err := store.Append(context.Background(), []*domain.HistoryEntry{{TokenID: 1}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestHistoryStore_Totals(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	entries := []*domain.HistoryEntry{
		historyEntry("e1", 1, domain.ActionClaimFees, 1.0, 100),
		historyEntry("e2", 2, domain.ActionClaimFees, 2.0, 110),
		historyEntry("e3", 1, domain.ActionBuyback, 0.5, 120),
	}
	entries[2].TokenAmount = 5000

	burn := historyEntry("e4", 1, domain.ActionBurnTokens, 0, 130)
	burn.TokenAmount = 5000
	entries = append(entries, burn)

	if err := store.Append(ctx, entries); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	totals, err := store.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}

	claims := totals[domain.ActionClaimFees]
	if claims.Count != 2 || claims.SolAmount != 3.0 {
		t.Errorf("claim totals = %+v, want count 2 sol 3.0", claims)
	}
	burns := totals[domain.ActionBurnTokens]
	if burns.Count != 1 || burns.TokenAmount != 5000 {
		t.Errorf("burn totals = %+v, want count 1 tokens 5000", burns)
	}
}

package memory

import (
	"context"
	"errors"
	"testing"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/storage"
)

func TestRevshareStore_MaxRoundEmpty(t *testing.T) {
	store := NewRevshareStore()

	max, err := store.MaxRound(context.Background(), 1)
	if err != nil {
		t.Fatalf("MaxRound failed: %v", err)
	}
	if max != 0 {
		t.Errorf("MaxRound = %d, want 0", max)
	}
}

func TestRevshareStore_InsertAndMaxRound(t *testing.T) {
	store := NewRevshareStore()
	ctx := context.Background()

	rounds := []*domain.RevshareRound{
		{TokenID: 1, Round: 1, DistributedLamports: 100000, HolderCount: 10, CreatedAt: 100},
		{TokenID: 1, Round: 2, DistributedLamports: 200000, HolderCount: 12, CreatedAt: 200},
		{TokenID: 2, Round: 5, DistributedLamports: 300000, HolderCount: 3, CreatedAt: 300},
	}
	for _, r := range rounds {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert round %d failed: %v", r.Round, err)
		}
	}

	max, err := store.MaxRound(ctx, 1)
	if err != nil {
		t.Fatalf("MaxRound failed: %v", err)
	}
	if max != 2 {
		t.Errorf("MaxRound token 1 = %d, want 2", max)
	}

	max, _ = store.MaxRound(ctx, 2)
	if max != 5 {
		t.Errorf("MaxRound token 2 = %d, want 5", max)
	}
}

func TestRevshareStore_DuplicateRound(t *testing.T) {
	store := NewRevshareStore()
	ctx := context.Background()

	r := &domain.RevshareRound{TokenID: 1, Round: 1, DistributedLamports: 100, HolderCount: 1}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, &domain.RevshareRound{TokenID: 1, Round: 1})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Same round for another token is fine
	if err := store.Insert(ctx, &domain.RevshareRound{TokenID: 2, Round: 1}); err != nil {
		t.Errorf("Insert for other token failed: %v", err)
	}
}

func TestRevshareStore_GetByToken(t *testing.T) {
	store := NewRevshareStore()
	ctx := context.Background()

	_ = store.Insert(ctx, &domain.RevshareRound{TokenID: 1, Round: 2, HolderCount: 5})
	_ = store.Insert(ctx, &domain.RevshareRound{TokenID: 1, Round: 1, HolderCount: 4})
	_ = store.Insert(ctx, &domain.RevshareRound{TokenID: 2, Round: 1, HolderCount: 9})

	got, err := store.GetByToken(ctx, 1)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 rounds, got %d", len(got))
	}
	if got[0].Round != 1 || got[1].Round != 2 {
		t.Errorf("Unexpected order: %d, %d", got[0].Round, got[1].Round)
	}
}

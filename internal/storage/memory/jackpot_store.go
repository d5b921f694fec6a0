package memory

import (
	"context"
	"sort"
	"sync"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/storage"
)

// JackpotStore is an in-memory implementation of storage.JackpotStore.
type JackpotStore struct {
	mu   sync.RWMutex
	data map[jackpotKey]*domain.JackpotEntry
}

type jackpotKey struct {
	tokenID int64
	wallet  string
}

// NewJackpotStore creates a new in-memory jackpot store.
func NewJackpotStore() *JackpotStore {
	return &JackpotStore{
		data: make(map[jackpotKey]*domain.JackpotEntry),
	}
}

// Upsert inserts or updates the (token, wallet) entry.
func (s *JackpotStore) Upsert(_ context.Context, e *domain.JackpotEntry) error {
	if e == nil || e.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entryCopy := *e
	s.data[jackpotKey{e.TokenID, e.Wallet}] = &entryCopy
	return nil
}

// GetByToken retrieves all winner entries for a token.
func (s *JackpotStore) GetByToken(_ context.Context, tokenID int64) ([]*domain.JackpotEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.JackpotEntry
	for _, e := range s.data {
		if e.TokenID == tokenID {
			entryCopy := *e
			result = append(result, &entryCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].LastWonAt != result[j].LastWonAt {
			return result[i].LastWonAt > result[j].LastWonAt
		}
		return result[i].Wallet < result[j].Wallet
	})

	return result, nil
}

// Compile-time interface check.
var _ storage.JackpotStore = (*JackpotStore)(nil)

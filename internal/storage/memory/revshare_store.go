package memory

import (
	"context"
	"sort"
	"sync"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/storage"
)

// RevshareStore is an in-memory implementation of storage.RevshareStore.
type RevshareStore struct {
	mu   sync.RWMutex
	data map[revshareKey]*domain.RevshareRound
}

type revshareKey struct {
	tokenID int64
	round   int64
}

// NewRevshareStore creates a new in-memory revshare store.
func NewRevshareStore() *RevshareStore {
	return &RevshareStore{
		data: make(map[revshareKey]*domain.RevshareRound),
	}
}

// MaxRound returns the highest round number for a token, 0 when none.
func (s *RevshareStore) MaxRound(_ context.Context, tokenID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max int64
	for k := range s.data {
		if k.tokenID == tokenID && k.round > max {
			max = k.round
		}
	}
	return max, nil
}

// Insert adds a completed round. Returns ErrDuplicateKey if (token_id, round) exists.
func (s *RevshareStore) Insert(_ context.Context, r *domain.RevshareRound) error {
	if r == nil || r.Round <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := revshareKey{r.TokenID, r.Round}
	if _, exists := s.data[k]; exists {
		return storage.ErrDuplicateKey
	}

	roundCopy := *r
	s.data[k] = &roundCopy
	return nil
}

// GetByToken retrieves a token's rounds ordered by round ASC.
func (s *RevshareStore) GetByToken(_ context.Context, tokenID int64) ([]*domain.RevshareRound, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RevshareRound
	for _, r := range s.data {
		if r.TokenID == tokenID {
			roundCopy := *r
			result = append(result, &roundCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Round < result[j].Round
	})

	return result, nil
}

// Compile-time interface check.
var _ storage.RevshareStore = (*RevshareStore)(nil)

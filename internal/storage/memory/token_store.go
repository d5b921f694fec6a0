package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]*domain.Token // keyed by id
	byMint map[string]int64
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		nextID: 1,
		data:   make(map[int64]*domain.Token),
		byMint: make(map[string]int64),
	}
}

// Insert adds a new token. Returns ErrDuplicateKey if the mint exists.
func (s *TokenStore) Insert(_ context.Context, t *domain.Token) error {
	if t == nil || t.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byMint[t.Mint]; exists {
		return storage.ErrDuplicateKey
	}

	t.ID = s.nextID
	s.nextID++
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().UnixMilli()
	}

	// Store a copy to prevent external mutation
	tokenCopy := *t
	s.data[t.ID] = &tokenCopy
	s.byMint[t.Mint] = t.ID
	return nil
}

// GetByMint retrieves a token by mint. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(_ context.Context, mint string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	tokenCopy := *s.data[id]
	return &tokenCopy, nil
}

// GetEligible retrieves tokens eligible for feed processing.
func (s *TokenStore) GetEligible(_ context.Context, excludeMint string) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Token
	for _, t := range s.data {
		if t.Paused || t.Mint == "" {
			continue
		}
		if excludeMint != "" && t.Mint == excludeMint {
			continue
		}
		switch t.Status {
		case domain.StatusBonding, domain.StatusGraduating, domain.StatusLive:
		default:
			continue
		}
		tokenCopy := *t
		result = append(result, &tokenCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// UpdateCounters applies counter increments to a token.
func (s *TokenStore) UpdateCounters(_ context.Context, id int64, deltas domain.CounterDeltas) error {
	if deltas.IsZero() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}

	t.TotalFeesClaimed += deltas.FeesClaimed
	t.TotalBoughtBack += deltas.BoughtBack
	t.TotalBurned += deltas.Burned
	t.TotalLPAdded += deltas.LPAdded
	t.TotalRevsharePaid += deltas.RevsharePaid
	t.TotalJackpotPaid += deltas.JackpotPaid
	return nil
}

// SetLastRun updates the last feed run timestamp (ms).
func (s *TokenStore) SetLastRun(_ context.Context, id int64, lastRun int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}

	t.LastRun = lastRun
	return nil
}

// SetStatus updates the lifecycle status.
func (s *TokenStore) SetStatus(_ context.Context, id int64, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}

	t.Status = status
	return nil
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

package memory

import (
	"context"
	"sort"
	"sync"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/storage"
)

// HistoryStore is an in-memory implementation of storage.HistoryStore.
// Mirrors the ReplacingMergeTree behavior of the ClickHouse store:
// entries are deduplicated by entry_id.
type HistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.HistoryEntry // keyed by entry_id
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		data: make(map[string]*domain.HistoryEntry),
	}
}

// Append adds history rows. Duplicate entry IDs are collapsed.
func (s *HistoryStore) Append(_ context.Context, entries []*domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if e == nil || e.EntryID == "" {
			return storage.ErrInvalidInput
		}
		entryCopy := *e
		s.data[e.EntryID] = &entryCopy
	}
	return nil
}

// GetByToken retrieves a token's history, newest first, up to limit.
func (s *HistoryStore) GetByToken(_ context.Context, tokenID int64, limit int) ([]*domain.HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.HistoryEntry
	for _, e := range s.data {
		if e.TokenID == tokenID {
			entryCopy := *e
			result = append(result, &entryCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].EntryID > result[j].EntryID
	})

	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Totals re-aggregates global statistics grouped by action type.
func (s *HistoryStore) Totals(_ context.Context) (map[domain.ActionType]domain.ActionTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[domain.ActionType]domain.ActionTotals)
	for _, e := range s.data {
		t := totals[e.Action]
		t.Count++
		t.SolAmount += e.SolAmount
		t.TokenAmount += e.TokenAmount
		t.LPAmount += e.LPAmount
		totals[e.Action] = t
	}

	return totals, nil
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

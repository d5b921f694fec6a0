package storage

import (
	"context"

	"solana-fee-recycler/internal/domain"
)

// TokenStore provides access to tokens storage.
type TokenStore interface {
	// Insert adds a new token. Returns ErrDuplicateKey if the mint exists.
	Insert(ctx context.Context, t *domain.Token) error

	// GetByMint retrieves a token by mint. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.Token, error)

	// GetEligible retrieves tokens eligible for feed processing:
	// status in {BONDING, GRADUATING, LIVE}, not paused, non-empty
	// mint, excluding excludeMint when non-empty. Ordered by id ASC.
	GetEligible(ctx context.Context, excludeMint string) ([]*domain.Token, error)

	// UpdateCounters applies counter increments to a token.
	UpdateCounters(ctx context.Context, id int64, deltas domain.CounterDeltas) error

	// SetLastRun updates the last feed run timestamp (ms).
	SetLastRun(ctx context.Context, id int64, lastRun int64) error

	// SetStatus updates the lifecycle status.
	SetStatus(ctx context.Context, id int64, status domain.Status) error
}

// HistoryStore provides access to the append-only feed_history log.
type HistoryStore interface {
	// Append adds history rows. Rows are never mutated after insert;
	// duplicate entry IDs are collapsed by the store.
	Append(ctx context.Context, entries []*domain.HistoryEntry) error

	// GetByToken retrieves a token's history, newest first, up to limit.
	GetByToken(ctx context.Context, tokenID int64, limit int) ([]*domain.HistoryEntry, error)

	// Totals re-aggregates global statistics grouped by action type.
	// This is the source of truth for totals, independent of the
	// tokens table's cached counters.
	Totals(ctx context.Context) (map[domain.ActionType]domain.ActionTotals, error)
}

// JackpotStore provides access to jackpot winner records.
type JackpotStore interface {
	// Upsert inserts or updates the (token, wallet) entry with the new
	// balance and win timestamp.
	Upsert(ctx context.Context, e *domain.JackpotEntry) error

	// GetByToken retrieves all winner entries for a token.
	GetByToken(ctx context.Context, tokenID int64) ([]*domain.JackpotEntry, error)
}

// RevshareStore provides access to revenue-share round records.
type RevshareStore interface {
	// MaxRound returns the highest round number for a token, 0 when none.
	MaxRound(ctx context.Context, tokenID int64) (int64, error)

	// Insert adds a completed round. Returns ErrDuplicateKey if
	// (token_id, round) exists.
	Insert(ctx context.Context, r *domain.RevshareRound) error

	// GetByToken retrieves a token's rounds ordered by round ASC.
	GetByToken(ctx context.Context, tokenID int64) ([]*domain.RevshareRound, error)
}

package postgres

import (
	"context"
	"fmt"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/storage"
)

// JackpotStore implements storage.JackpotStore using PostgreSQL.
type JackpotStore struct {
	pool *Pool
}

// NewJackpotStore creates a new JackpotStore.
func NewJackpotStore(pool *Pool) *JackpotStore {
	return &JackpotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.JackpotStore = (*JackpotStore)(nil)

// Upsert inserts or updates the (token, wallet) entry.
func (s *JackpotStore) Upsert(ctx context.Context, e *domain.JackpotEntry) error {
	query := `
		INSERT INTO jackpot_entries (token_id, wallet, balance, last_won_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_id, wallet) DO UPDATE SET
			balance = EXCLUDED.balance,
			last_won_at = EXCLUDED.last_won_at
	`

	_, err := s.pool.Exec(ctx, query, e.TokenID, e.Wallet, e.Balance, e.LastWonAt)
	if err != nil {
		return fmt.Errorf("upsert jackpot entry: %w", err)
	}
	return nil
}

// GetByToken retrieves all winner entries for a token.
func (s *JackpotStore) GetByToken(ctx context.Context, tokenID int64) ([]*domain.JackpotEntry, error) {
	query := `
		SELECT token_id, wallet, balance, last_won_at
		FROM jackpot_entries
		WHERE token_id = $1
		ORDER BY last_won_at DESC, wallet ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get jackpot entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.JackpotEntry
	for rows.Next() {
		var e domain.JackpotEntry
		if err := rows.Scan(&e.TokenID, &e.Wallet, &e.Balance, &e.LastWonAt); err != nil {
			return nil, fmt.Errorf("scan jackpot row: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jackpot rows: %w", err)
	}

	return entries, nil
}

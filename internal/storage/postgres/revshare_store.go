package postgres

import (
	"context"
	"fmt"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/storage"
)

// RevshareStore implements storage.RevshareStore using PostgreSQL.
type RevshareStore struct {
	pool *Pool
}

// NewRevshareStore creates a new RevshareStore.
func NewRevshareStore(pool *Pool) *RevshareStore {
	return &RevshareStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RevshareStore = (*RevshareStore)(nil)

// MaxRound returns the highest round number for a token, 0 when none.
func (s *RevshareStore) MaxRound(ctx context.Context, tokenID int64) (int64, error) {
	var max int64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(round), 0) FROM revshare_rounds WHERE token_id = $1`,
		tokenID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("get max revshare round: %w", err)
	}
	return max, nil
}

// Insert adds a completed round. Returns ErrDuplicateKey if (token_id, round) exists.
func (s *RevshareStore) Insert(ctx context.Context, r *domain.RevshareRound) error {
	query := `
		INSERT INTO revshare_rounds (token_id, round, distributed_lamports, holder_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		r.TokenID,
		r.Round,
		int64(r.DistributedLamports),
		r.HolderCount,
		r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert revshare round: %w", err)
	}
	return nil
}

// GetByToken retrieves a token's rounds ordered by round ASC.
func (s *RevshareStore) GetByToken(ctx context.Context, tokenID int64) ([]*domain.RevshareRound, error) {
	query := `
		SELECT token_id, round, distributed_lamports, holder_count, created_at
		FROM revshare_rounds
		WHERE token_id = $1
		ORDER BY round ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get revshare rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*domain.RevshareRound
	for rows.Next() {
		var r domain.RevshareRound
		var lamports int64
		if err := rows.Scan(&r.TokenID, &r.Round, &lamports, &r.HolderCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revshare row: %w", err)
		}
		r.DistributedLamports = uint64(lamports)
		rounds = append(rounds, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revshare rows: %w", err)
	}

	return rounds, nil
}

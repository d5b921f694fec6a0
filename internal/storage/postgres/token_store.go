package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

const tokenColumns = `
	id, mint, platform, status, keypair,
	buyback_enabled, buyback_percent,
	autoliq_enabled, autoliq_percent,
	revshare_enabled, revshare_percent,
	jackpot_enabled, jackpot_percent, jackpot_min_hold,
	custom_split, interval_sec, paused,
	total_fees_claimed, total_bought_back, total_burned,
	total_lp_added, total_revshare_paid, total_jackpot_paid,
	last_run, created_at
`

// Insert adds a new token. Returns ErrDuplicateKey if the mint exists.
// The assigned ID is written back into t.
func (s *TokenStore) Insert(ctx context.Context, t *domain.Token) error {
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().UnixMilli()
	}

	query := `
		INSERT INTO tokens (
			mint, platform, status, keypair,
			buyback_enabled, buyback_percent,
			autoliq_enabled, autoliq_percent,
			revshare_enabled, revshare_percent,
			jackpot_enabled, jackpot_percent, jackpot_min_hold,
			custom_split, interval_sec, paused,
			total_fees_claimed, total_bought_back, total_burned,
			total_lp_added, total_revshare_paid, total_jackpot_paid,
			last_run, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		t.Mint,
		string(t.Platform),
		string(t.Status),
		t.Keypair,
		t.Buyback.Enabled,
		t.Buyback.Percent,
		t.AutoLiq.Enabled,
		t.AutoLiq.Percent,
		t.Revshare.Enabled,
		t.Revshare.Percent,
		t.Jackpot.Enabled,
		t.Jackpot.Percent,
		t.Jackpot.MinHold,
		t.CustomSplit,
		t.IntervalSec,
		t.Paused,
		t.TotalFeesClaimed,
		t.TotalBoughtBack,
		t.TotalBurned,
		t.TotalLPAdded,
		t.TotalRevsharePaid,
		t.TotalJackpotPaid,
		t.LastRun,
		t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// GetByMint retrieves a token by mint. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(ctx context.Context, mint string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE mint = $1`

	row := s.pool.QueryRow(ctx, query, mint)
	t, err := scanToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by mint: %w", err)
	}
	return t, nil
}

// GetEligible retrieves tokens eligible for feed processing.
func (s *TokenStore) GetEligible(ctx context.Context, excludeMint string) ([]*domain.Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM tokens
		WHERE status IN ('BONDING', 'GRADUATING', 'LIVE')
		  AND paused = FALSE
		  AND mint <> ''
		  AND ($1 = '' OR mint <> $1)
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, excludeMint)
	if err != nil {
		return nil, fmt.Errorf("get eligible tokens: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// UpdateCounters applies counter increments to a token.
func (s *TokenStore) UpdateCounters(ctx context.Context, id int64, deltas domain.CounterDeltas) error {
	if deltas.IsZero() {
		return nil
	}

	query := `
		UPDATE tokens SET
			total_fees_claimed = total_fees_claimed + $2,
			total_bought_back = total_bought_back + $3,
			total_burned = total_burned + $4,
			total_lp_added = total_lp_added + $5,
			total_revshare_paid = total_revshare_paid + $6,
			total_jackpot_paid = total_jackpot_paid + $7
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id,
		deltas.FeesClaimed,
		deltas.BoughtBack,
		deltas.Burned,
		deltas.LPAdded,
		deltas.RevsharePaid,
		deltas.JackpotPaid,
	)
	if err != nil {
		return fmt.Errorf("update token counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetLastRun updates the last feed run timestamp (ms).
func (s *TokenStore) SetLastRun(ctx context.Context, id int64, lastRun int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE tokens SET last_run = $2 WHERE id = $1`, id, lastRun)
	if err != nil {
		return fmt.Errorf("set token last run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetStatus updates the lifecycle status.
func (s *TokenStore) SetStatus(ctx context.Context, id int64, status domain.Status) error {
	tag, err := s.pool.Exec(ctx, `UPDATE tokens SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("set token status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanToken scans a single row into a Token.
func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	var platformStr, statusStr string

	err := row.Scan(
		&t.ID,
		&t.Mint,
		&platformStr,
		&statusStr,
		&t.Keypair,
		&t.Buyback.Enabled,
		&t.Buyback.Percent,
		&t.AutoLiq.Enabled,
		&t.AutoLiq.Percent,
		&t.Revshare.Enabled,
		&t.Revshare.Percent,
		&t.Jackpot.Enabled,
		&t.Jackpot.Percent,
		&t.Jackpot.MinHold,
		&t.CustomSplit,
		&t.IntervalSec,
		&t.Paused,
		&t.TotalFeesClaimed,
		&t.TotalBoughtBack,
		&t.TotalBurned,
		&t.TotalLPAdded,
		&t.TotalRevsharePaid,
		&t.TotalJackpotPaid,
		&t.LastRun,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Platform = domain.Platform(platformStr)
	t.Status = domain.Status(statusStr)
	return &t, nil
}

// scanTokens scans multiple rows into a slice of Token.
func scanTokens(rows pgx.Rows) ([]*domain.Token, error) {
	var tokens []*domain.Token

	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		tokens = append(tokens, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}

	return tokens, nil
}

package clickhouse

import (
	"context"
	"fmt"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/storage"
)

// HistoryStore implements storage.HistoryStore using ClickHouse.
// The feed_history table uses ReplacingMergeTree keyed by entry_id, so
// re-inserting the same deterministic entry collapses on merge and the
// aggregation queries read with FINAL.
type HistoryStore struct {
	conn *Conn
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(conn *Conn) *HistoryStore {
	return &HistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

// Append adds history rows. Intra-batch duplicates are collapsed.
func (s *HistoryStore) Append(ctx context.Context, entries []*domain.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO feed_history (
			entry_id, token_id, mint, action, signature,
			sol_amount, token_amount, recipient, lp_amount, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.EntryID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[e.EntryID]; dup {
			continue
		}
		seen[e.EntryID] = struct{}{}

		err = batch.Append(
			e.EntryID, e.TokenID, e.Mint, string(e.Action), e.Signature,
			e.SolAmount, e.TokenAmount, e.Recipient, e.LPAmount, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByToken retrieves a token's history, newest first, up to limit.
func (s *HistoryStore) GetByToken(ctx context.Context, tokenID int64, limit int) ([]*domain.HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT entry_id, token_id, mint, action, signature,
		       sol_amount, token_amount, recipient, lp_amount, created_at
		FROM feed_history FINAL
		WHERE token_id = ?
		ORDER BY created_at DESC, entry_id DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, tokenID, limit)
	if err != nil {
		return nil, fmt.Errorf("get history by token: %w", err)
	}
	defer rows.Close()

	var entries []*domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var actionStr string

		err := rows.Scan(
			&e.EntryID, &e.TokenID, &e.Mint, &actionStr, &e.Signature,
			&e.SolAmount, &e.TokenAmount, &e.Recipient, &e.LPAmount, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		e.Action = domain.ActionType(actionStr)
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	return entries, nil
}

// Totals re-aggregates global statistics grouped by action type.
func (s *HistoryStore) Totals(ctx context.Context) (map[domain.ActionType]domain.ActionTotals, error) {
	query := `
		SELECT action,
		       count() AS cnt,
		       sum(sol_amount) AS sol,
		       sum(token_amount) AS tokens,
		       sum(lp_amount) AS lp
		FROM feed_history FINAL
		GROUP BY action
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("aggregate history totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[domain.ActionType]domain.ActionTotals)
	for rows.Next() {
		var actionStr string
		var t domain.ActionTotals

		if err := rows.Scan(&actionStr, &t.Count, &t.SolAmount, &t.TokenAmount, &t.LPAmount); err != nil {
			return nil, fmt.Errorf("scan totals row: %w", err)
		}

		totals[domain.ActionType(actionStr)] = t
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate totals rows: %w", err)
	}

	return totals, nil
}

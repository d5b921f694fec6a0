package domain

// HistoryEntry is one append-only feed history row.
// Corresponds to the feed_history table in ClickHouse. Rows are never
// mutated after insert; global statistics are computed by
// re-aggregation over this table, independent of the token's cached
// counters.
type HistoryEntry struct {
	EntryID     string     // deterministic sha256 hash, idempotency key
	TokenID     int64
	Mint        string
	Action      ActionType
	Signature   string
	SolAmount   float64
	TokenAmount float64 // human token units
	Recipient   string  // optional recipient wallet
	LPAmount    float64 // optional LP-token amount
	CreatedAt   int64   // Unix timestamp in milliseconds
}

// ActionTotals is the re-aggregated sum for one action type.
type ActionTotals struct {
	Count       uint64
	SolAmount   float64
	TokenAmount float64
	LPAmount    float64
}

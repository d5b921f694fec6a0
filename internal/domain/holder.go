package domain

// Holder is one entry of a holder snapshot: wallet address plus balance
// in human-readable token units. Snapshots are ephemeral, fetched fresh
// per distribution event.
type Holder struct {
	Address string
	Balance float64
}

// JackpotEntry records the latest win per (token, wallet) pair.
// Repeat wins update the row in place.
type JackpotEntry struct {
	TokenID   int64
	Wallet    string
	Balance   float64 // holder balance at win time, human units
	LastWonAt int64   // Unix timestamp in milliseconds
}

// RevshareRound is one completed revenue-share execution.
// Round numbers increase monotonically per token.
type RevshareRound struct {
	TokenID            int64
	Round              int64
	DistributedLamports uint64 // sum actually transferred, not intended
	HolderCount        int
	CreatedAt          int64 // Unix timestamp in milliseconds
}

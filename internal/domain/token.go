package domain

// Platform identifies the launch platform a token was created on.
type Platform string

const (
	PlatformPump Platform = "PUMP"
	PlatformBonk Platform = "BONK"
	PlatformBags Platform = "BAGS"
)

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformPump, PlatformBonk, PlatformBags:
		return true
	}
	return false
}

// Status is the lifecycle state of a token.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusBonding    Status = "BONDING"
	StatusGraduating Status = "GRADUATING"
	StatusLive       Status = "LIVE"
	StatusFailed     Status = "FAILED"
)

// FeatureConfig is the stored configuration for one payout feature.
// Percent is percent-of-claim in [0,100]. The engine does not require
// enabled percentages to sum to 100; any remainder stays in the
// custodial wallet.
type FeatureConfig struct {
	Enabled bool
	Percent float64
}

// JackpotConfig extends FeatureConfig with the minimum holding (in
// human token units) required to be eligible for the draw.
type JackpotConfig struct {
	FeatureConfig
	MinHold float64
}

// Token represents one launched or imported coin.
// Corresponds to the tokens table in PostgreSQL.
type Token struct {
	ID       int64    // PRIMARY KEY
	Mint     string   // token mint address (base58)
	Platform Platform // launch platform
	Status   Status

	// Keypair is the custodial signing credential, base58-encoded
	// 64-byte ed25519 keypair. Owned exclusively by this record.
	Keypair string

	// Payout feature configuration.
	Buyback  FeatureConfig
	AutoLiq  FeatureConfig
	Revshare FeatureConfig
	Jackpot  JackpotConfig

	// CustomSplit marks tokens with an operator-configured split.
	// Without it the engine applies the default phase policy.
	CustomSplit bool

	IntervalSec int64 // per-token feed interval in seconds
	Paused      bool  // job_paused

	// Cumulative counters, SOL amounts unless noted.
	TotalFeesClaimed  float64
	TotalBoughtBack   float64
	TotalBurned       float64 // human token units
	TotalLPAdded      float64
	TotalRevsharePaid float64
	TotalJackpotPaid  float64

	LastRun   int64 // Unix timestamp in milliseconds, 0 = never
	CreatedAt int64 // record creation timestamp (ms)
}

// CounterDeltas holds increments applied to a token's cumulative
// counters after a feed cycle.
type CounterDeltas struct {
	FeesClaimed  float64
	BoughtBack   float64
	Burned       float64 // human token units
	LPAdded      float64
	RevsharePaid float64
	JackpotPaid  float64
}

// IsZero reports whether no counter would change.
func (d CounterDeltas) IsZero() bool {
	return d == CounterDeltas{}
}

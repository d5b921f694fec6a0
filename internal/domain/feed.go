package domain

// Phase is the trading phase a token is in for one feed cycle.
type Phase string

const (
	PhaseBonding   Phase = "BONDING"
	PhaseGraduated Phase = "GRADUATED"
)

// ActionType enumerates on-chain actions recorded in feed history.
type ActionType string

const (
	ActionClaimFees       ActionType = "claim_fees"
	ActionBuyback         ActionType = "buyback"
	ActionAddLiquidity    ActionType = "add_liquidity"
	ActionBurnTokens      ActionType = "burn_tokens"
	ActionBurnLP          ActionType = "burn_lp"
	ActionFeeTransfer     ActionType = "fee_transfer"
	ActionJackpot         ActionType = "jackpot"
	ActionPlatformBuyback ActionType = "platform_buyback"
	ActionPlatformBurn    ActionType = "platform_burn"
	ActionCreate          ActionType = "create"
)

// ActionRecord is one on-chain action taken during a feed cycle.
type ActionRecord struct {
	Type      ActionType
	Signature string
}

// CycleResult is the transient outcome of one feed cycle for one token.
// The scheduler translates it into history rows and counter deltas,
// then discards it.
type CycleResult struct {
	TokenID int64
	Mint    string
	Phase   Phase

	FeesClaimed   float64 // SOL
	BuybackSol    float64
	BuybackTokens float64 // human token units burned
	LpSol         float64
	LpTokens      float64 // LP tokens burned
	RevshareSol   float64
	JackpotSol    float64

	// JackpotWinner is set when the jackpot feature paid out.
	JackpotWinner string

	// RevshareHolders is the number of holders actually paid.
	RevshareHolders int

	Actions []ActionRecord

	Success bool
	Err     string
}

// Record appends an action record for a transaction signature.
func (r *CycleResult) Record(t ActionType, signature string) {
	r.Actions = append(r.Actions, ActionRecord{Type: t, Signature: signature})
}

// Deltas derives the counter increments implied by this cycle.
func (r *CycleResult) Deltas() CounterDeltas {
	return CounterDeltas{
		FeesClaimed:  r.FeesClaimed,
		BoughtBack:   r.BuybackSol,
		Burned:       r.BuybackTokens,
		LPAdded:      r.LpSol,
		RevsharePaid: r.RevshareSol,
		JackpotPaid:  r.JackpotSol,
	}
}

// Graduation is the pool-existence signal for a mint.
type Graduation struct {
	Graduated bool
	Pool      string // pool address when discovered, empty otherwise
}

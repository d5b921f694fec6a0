// Package policy computes per-feature SOL allocations for a claimed
// fee amount.
package policy

import "solana-fee-recycler/internal/domain"

const (
	// DustFloorSol is the minimum per-feature allocation; smaller
	// sub-amounts are zeroed and the feature skipped for the cycle.
	DustFloorSol = 0.0001

	// defaultSplitPct is each side of the default graduated-phase
	// buyback/liquidity split.
	defaultSplitPct = 50.0
)

// Input is everything the evaluator consumes for one cycle.
type Input struct {
	Claimed float64 // SOL, already confirmed received

	Buyback  domain.FeatureConfig
	AutoLiq  domain.FeatureConfig
	Revshare domain.FeatureConfig
	Jackpot  domain.JackpotConfig

	// CustomSplit selects the stored per-feature percentages; without
	// it the default phase policy applies.
	CustomSplit bool

	Phase   domain.Phase
	HasPool bool
}

// Allocation is the four per-feature SOL sub-amounts. No
// normalization is applied: with percentages summing above 100 the
// outputs can exceed the claimed amount. Executors check wallet
// balance before spending; the spending order is buyback, autoliq,
// revshare, jackpot.
type Allocation struct {
	Buyback  float64
	AutoLiq  float64
	Revshare float64
	Jackpot  float64

	// OverAllocated flags enabled percentages summing above 100.
	OverAllocated bool
}

// Any reports whether at least one feature received an allocation.
func (a Allocation) Any() bool {
	return a.Buyback > 0 || a.AutoLiq > 0 || a.Revshare > 0 || a.Jackpot > 0
}

// Evaluate computes the allocation for a claimed amount.
func Evaluate(in Input) Allocation {
	if in.Claimed < DustFloorSol {
		return Allocation{}
	}

	if !in.CustomSplit {
		return defaultAllocation(in)
	}

	var alloc Allocation
	var pctSum float64

	share := func(cfg domain.FeatureConfig) float64 {
		if !cfg.Enabled || cfg.Percent <= 0 {
			return 0
		}
		pctSum += cfg.Percent
		amount := in.Claimed * cfg.Percent / 100
		if amount < DustFloorSol {
			return 0
		}
		return amount
	}

	alloc.Buyback = share(in.Buyback)
	alloc.AutoLiq = share(in.AutoLiq)
	alloc.Revshare = share(in.Revshare)
	alloc.Jackpot = share(in.Jackpot.FeatureConfig)
	alloc.OverAllocated = pctSum > 100

	return alloc
}

// defaultAllocation implements the phase policy for tokens without a
// custom split: graduated tokens with a discoverable pool split 50/50
// between buyback and liquidity; bonding tokens, and graduated tokens
// whose pool is not discoverable yet, go 100% buyback.
func defaultAllocation(in Input) Allocation {
	if in.Phase == domain.PhaseGraduated && in.HasPool {
		half := in.Claimed * defaultSplitPct / 100
		if half < DustFloorSol {
			return Allocation{}
		}
		return Allocation{Buyback: half, AutoLiq: half}
	}
	return Allocation{Buyback: in.Claimed}
}

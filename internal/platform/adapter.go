// Package platform provides the launch-platform fee adapters.
// Each supported platform exposes the same contract: claim creator
// fees, buy the token with SOL, and (where the platform has an AMM)
// add liquidity. All platform quirks stay behind this contract.
package platform

import (
	"context"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/solana"
)

// ClaimResult is the outcome of a claim-creator-fees call.
// "Nothing to claim" is Success=true with AmountSol 0, distinguished
// from transport/API failures (Success=false).
type ClaimResult struct {
	Success bool
	// AmountSol is the claimed amount when the platform reports it.
	AmountSol float64
	// AmountKnown marks platforms that report the claimed amount
	// directly; otherwise the engine measures by balance delta.
	AmountKnown bool
	Signature   string
	Err         string
}

// TradeResult is the outcome of a buy call.
type TradeResult struct {
	Success        bool
	TokenAmountOut float64 // human token units, 0 when unreported
	Signature      string
	Err            string
}

// LiquidityResult is the outcome of an add-liquidity call.
type LiquidityResult struct {
	Success     bool
	LPTokensOut float64
	Signature   string
	Err         string
}

// PoolReserves are the current AMM pool reserves for a mint.
type PoolReserves struct {
	Base     float64 // token side, human units
	Quote    float64 // SOL side
	LPSupply float64
}

// PoolInfo describes a discovered liquidity pool.
type PoolInfo struct {
	Address  string
	LPMint   string
	Reserves PoolReserves
}

// Adapter is the uniform per-platform capability set.
type Adapter interface {
	// Platform identifies the variant.
	Platform() domain.Platform

	// SupportsLiquidity reports whether the platform has an AMM the
	// engine can deposit into.
	SupportsLiquidity() bool

	// ClaimFees claims accrued creator fees into the custodial wallet.
	ClaimFees(ctx context.Context, signer *solana.Keypair, mint string) ClaimResult

	// Buy spends solAmount SOL buying the token on-market.
	Buy(ctx context.Context, signer *solana.Keypair, mint string, solAmount float64) TradeResult

	// AddLiquidity deposits solAmount SOL plus the required token
	// amount into the pool. Platforms without liquidity support return
	// Success=false with a descriptive error.
	AddLiquidity(ctx context.Context, signer *solana.Keypair, mint string, solAmount float64) LiquidityResult

	// Pool looks up the mint's liquidity pool. Returns nil when no
	// pool exists yet (pre-graduation).
	Pool(ctx context.Context, mint string) (*PoolInfo, error)
}

// Registry maps platforms to their adapter instances.
type Registry map[domain.Platform]Adapter

// For returns the adapter for a platform, or nil.
func (r Registry) For(p domain.Platform) Adapter {
	return r[p]
}

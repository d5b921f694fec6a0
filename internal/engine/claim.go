package engine

import (
	"context"
	"fmt"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/platform"
	"solana-fee-recycler/internal/policy"
	"solana-fee-recycler/internal/solana"
)

// claimFees claims accrued creator fees and measures the amount
// received. Platforms that report the amount directly are trusted;
// otherwise the wallet balance delta around the claim is used, clamped
// to [0, sanity cap] so refund quirks or unrelated deposits cannot
// poison the distribution amount.
func (e *Engine) claimFees(ctx context.Context, adapter platform.Adapter, signer *solana.Keypair, tok *domain.Token, res *domain.CycleResult) (float64, error) {
	address := signer.Address()

	before, beforeErr := e.rpc.GetBalance(ctx, address)

	claim := adapter.ClaimFees(ctx, signer, tok.Mint)
	if !claim.Success {
		e.metrics.RecordClaim(string(tok.Platform), "error", 0)
		return 0, fmt.Errorf("%w: %s", ErrClaimFailed, claim.Err)
	}
	if claim.Signature != "" {
		res.Record(domain.ActionClaimFees, claim.Signature)
	}

	var claimed float64
	switch {
	case claim.AmountKnown:
		claimed = claim.AmountSol
	case beforeErr != nil:
		// A claim went out but the pre-claim balance read failed, so
		// the delta cannot be measured.
		e.metrics.RecordClaim(string(tok.Platform), "unmeasured", 0)
		return 0, fmt.Errorf("%w: %v", ErrBalanceUnknown, beforeErr)
	default:
		after, err := e.rpc.GetBalance(ctx, address)
		if err != nil {
			e.metrics.RecordClaim(string(tok.Platform), "unmeasured", 0)
			return 0, fmt.Errorf("%w: %v", ErrBalanceUnknown, err)
		}
		if after > before {
			claimed = solana.LamportsToSol(after - before)
		}
		if claimed > e.claimSanityCap {
			e.logger.Printf("[engine] token %d: measured claim %.4f SOL exceeds sanity cap %.1f, capping",
				tok.ID, claimed, e.claimSanityCap)
			claimed = e.claimSanityCap
		}
	}

	// Delta noise below the dust floor counts as nothing claimed.
	if claimed < policy.DustFloorSol {
		claimed = 0
	}

	e.metrics.RecordClaim(string(tok.Platform), "ok", claimed)
	return claimed, nil
}

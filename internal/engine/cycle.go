package engine

import (
	"context"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/policy"
	"solana-fee-recycler/internal/solana"
)

// RunCycle executes one full feed cycle for a token: detect phase,
// claim fees, evaluate the split, then run the feature executors in
// spending order. Feature failures degrade the cycle, they do not
// fail it; only a broken token record or a failed claim does.
func (e *Engine) RunCycle(ctx context.Context, tok *domain.Token) *domain.CycleResult {
	res := &domain.CycleResult{TokenID: tok.ID, Mint: tok.Mint, Phase: domain.PhaseBonding}

	signer, err := solana.ParseKeypair(tok.Keypair)
	if err != nil {
		res.Err = "parse keypair: " + err.Error()
		return res
	}

	adapter := e.adapters.For(tok.Platform)
	if adapter == nil {
		res.Err = ErrNoAdapter.Error() + ": " + string(tok.Platform)
		return res
	}

	grad, err := e.detector.IsGraduated(ctx, tok.Platform, tok.Mint)
	if err != nil {
		// Phase detection failing means bonding-phase treatment, not a
		// dead cycle.
		e.logger.Printf("[engine] token %d: graduation probe failed: %v", tok.ID, err)
	}
	if grad.Graduated {
		res.Phase = domain.PhaseGraduated
		if tok.Status != domain.StatusLive && grad.Pool != "" {
			if err := e.tokens.SetStatus(ctx, tok.ID, domain.StatusLive); err != nil {
				e.logger.Printf("[engine] token %d: status update failed: %v", tok.ID, err)
			} else {
				tok.Status = domain.StatusLive
			}
		}
	}

	claimed, err := e.claimFees(ctx, adapter, signer, tok, res)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.FeesClaimed = claimed

	alloc := policy.Evaluate(policy.Input{
		Claimed:     claimed,
		Buyback:     tok.Buyback,
		AutoLiq:     tok.AutoLiq,
		Revshare:    tok.Revshare,
		Jackpot:     tok.Jackpot,
		CustomSplit: tok.CustomSplit,
		Phase:       res.Phase,
		HasPool:     grad.Pool != "",
	})
	if alloc.OverAllocated {
		e.logger.Printf("[engine] token %d: feature percentages exceed 100, spending first come first served", tok.ID)
	}
	if !alloc.Any() {
		res.Success = true
		return res
	}

	if alloc.Buyback > 0 {
		e.runBuyback(ctx, adapter, signer, tok, alloc.Buyback, res)
	}
	if alloc.AutoLiq > 0 {
		e.runAutoLiq(ctx, adapter, signer, tok, alloc.AutoLiq, res.Phase, res)
	}
	if alloc.Revshare > 0 {
		e.runRevshare(ctx, signer, tok, alloc.Revshare, res)
	}
	if alloc.Jackpot > 0 {
		e.runJackpot(ctx, signer, tok, alloc.Jackpot, res)
	}

	res.Success = true
	return res
}

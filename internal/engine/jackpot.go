package engine

import (
	"context"
	"time"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/solana"
)

// runJackpot pays the full allocated amount to one balance-weighted
// random holder. The same eligibility filters as revenue share apply,
// plus the configured minimum holding. Repeat winners update their
// stored entry in place.
func (e *Engine) runJackpot(ctx context.Context, signer *solana.Keypair, tok *domain.Token, amountSol float64, res *domain.CycleResult) {
	lamports := solana.SolToLamports(amountSol)
	if lamports < transferDustLamports {
		e.metrics.RecordFeature("jackpot", "skipped", 0)
		return
	}
	if !e.hasBalance(ctx, signer.Address(), amountSol) {
		e.logger.Printf("[engine] token %d: skipping jackpot, wallet below %.4f SOL", tok.ID, amountSol)
		e.metrics.RecordFeature("jackpot", "skipped", 0)
		return
	}

	holders, err := e.holders.GetHolders(ctx, tok.Mint, jackpotHolderLimit)
	if err != nil {
		e.logger.Printf("[engine] token %d: holder snapshot failed: %v", tok.ID, err)
		e.metrics.RecordFeature("jackpot", "error", 0)
		return
	}

	eligible, _ := filterHolders(holders, signer.Address(), tok.Jackpot.MinHold)
	if len(eligible) == 0 {
		e.logger.Printf("[engine] token %d: no eligible jackpot holders", tok.ID)
		e.metrics.RecordFeature("jackpot", "empty", 0)
		return
	}

	winner := e.drawWinner(eligible)

	signature, err := e.submitTransfers(ctx, signer, []payout{{wallet: winner.Address, lamports: lamports}})
	if err != nil {
		e.logger.Printf("[engine] token %d: jackpot transfer to %s failed: %v", tok.ID, winner.Address, err)
		e.metrics.RecordFeature("jackpot", "error", 0)
		return
	}

	res.JackpotSol = amountSol
	res.JackpotWinner = winner.Address
	res.Record(domain.ActionJackpot, signature)
	if e.metrics != nil {
		e.metrics.JackpotWinners.Inc()
	}
	e.metrics.RecordFeature("jackpot", "ok", amountSol)

	entry := &domain.JackpotEntry{
		TokenID:   tok.ID,
		Wallet:    winner.Address,
		Balance:   winner.Balance,
		LastWonAt: time.Now().UnixMilli(),
	}
	if err := e.jackpots.Upsert(ctx, entry); err != nil {
		e.logger.Printf("[engine] token %d: persist jackpot winner failed: %v", tok.ID, err)
	}
}

// drawWinner picks one holder with probability proportional to
// balance: a uniform draw in [0, totalWeight) walked down the list.
func (e *Engine) drawWinner(eligible []domain.Holder) domain.Holder {
	var total float64
	for _, h := range eligible {
		total += h.Balance
	}

	target := e.rng.Float64() * total
	for _, h := range eligible {
		target -= h.Balance
		if target < 0 {
			return h
		}
	}
	// Float rounding can leave target at exactly zero after the loop.
	return eligible[len(eligible)-1]
}

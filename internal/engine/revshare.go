package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/solana"
)

// runRevshare distributes the allocated SOL pro-rata across the top
// token holders. The snapshot's summed balance stands in for supply;
// holders above the whale ceiling, the custodial wallet itself and
// zero balances are excluded. Individual shares are floored exact
// lamport math, dust shares are skipped, and transfers go out in
// confirmed batches. A failed batch is logged and the remaining
// batches still run; the persisted round records what actually went
// out.
func (e *Engine) runRevshare(ctx context.Context, signer *solana.Keypair, tok *domain.Token, amountSol float64, res *domain.CycleResult) {
	if !e.hasBalance(ctx, signer.Address(), amountSol) {
		e.logger.Printf("[engine] token %d: skipping revshare, wallet below %.4f SOL", tok.ID, amountSol)
		e.metrics.RecordFeature("revshare", "skipped", 0)
		return
	}

	holders, err := e.holders.GetHolders(ctx, tok.Mint, revshareHolderLimit)
	if err != nil {
		e.logger.Printf("[engine] token %d: holder snapshot failed: %v", tok.ID, err)
		e.metrics.RecordFeature("revshare", "error", 0)
		return
	}

	eligible, eligibleTotal := filterHolders(holders, signer.Address(), 0)
	if len(eligible) == 0 || eligibleTotal <= 0 {
		e.logger.Printf("[engine] token %d: no eligible revshare holders", tok.ID)
		e.metrics.RecordFeature("revshare", "empty", 0)
		return
	}

	payouts := computeShares(eligible, eligibleTotal, solana.SolToLamports(amountSol))
	if len(payouts) == 0 {
		e.logger.Printf("[engine] token %d: all revshare shares below dust", tok.ID)
		e.metrics.RecordFeature("revshare", "empty", 0)
		return
	}

	var distributed uint64
	var paid int
	for start := 0; start < len(payouts); start += transferBatchSize {
		end := start + transferBatchSize
		if end > len(payouts) {
			end = len(payouts)
		}
		batch := payouts[start:end]

		signature, err := e.submitTransfers(ctx, signer, batch)
		if err != nil {
			e.logger.Printf("[engine] token %d: revshare batch %d-%d failed: %v", tok.ID, start, end, err)
			continue
		}

		res.Record(domain.ActionFeeTransfer, signature)
		for _, p := range batch {
			distributed += p.lamports
		}
		paid += len(batch)
	}

	if paid == 0 {
		e.metrics.RecordFeature("revshare", "error", 0)
		return
	}

	res.RevshareSol = solana.LamportsToSol(distributed)
	res.RevshareHolders = paid
	if e.metrics != nil {
		e.metrics.RevshareHoldersPaid.Add(float64(paid))
	}
	e.metrics.RecordFeature("revshare", "ok", res.RevshareSol)

	maxRound, err := e.revshare.MaxRound(ctx, tok.ID)
	if err != nil {
		e.logger.Printf("[engine] token %d: max revshare round lookup failed: %v", tok.ID, err)
		return
	}
	round := &domain.RevshareRound{
		TokenID:             tok.ID,
		Round:               maxRound + 1,
		DistributedLamports: distributed,
		HolderCount:         paid,
		CreatedAt:           time.Now().UnixMilli(),
	}
	if err := e.revshare.Insert(ctx, round); err != nil {
		e.logger.Printf("[engine] token %d: persist revshare round %d failed: %v", tok.ID, round.Round, err)
	}
}

// filterHolders drops the custodial wallet, zero balances, holders
// below minHold and whales above the ceiling share of the fetched
// supply. Returns the survivors and their summed balance.
func filterHolders(holders []domain.Holder, self string, minHold float64) ([]domain.Holder, float64) {
	var supply float64
	for _, h := range holders {
		supply += h.Balance
	}
	if supply <= 0 {
		return nil, 0
	}
	ceiling := supply * whaleCeilingPct / 100

	var eligible []domain.Holder
	var total float64
	for _, h := range holders {
		if h.Address == "" || h.Address == self {
			continue
		}
		if h.Balance <= 0 || h.Balance > ceiling {
			continue
		}
		if minHold > 0 && h.Balance < minHold {
			continue
		}
		eligible = append(eligible, h)
		total += h.Balance
	}
	return eligible, total
}

// computeShares floors each holder's pro-rata lamport share with exact
// decimal math and drops dust payouts.
func computeShares(eligible []domain.Holder, eligibleTotal float64, lamports uint64) []payout {
	totalDec := decimal.NewFromFloat(eligibleTotal)
	potDec := decimal.NewFromInt(int64(lamports))

	var payouts []payout
	for _, h := range eligible {
		share := decimal.NewFromFloat(h.Balance).Mul(potDec).Div(totalDec).Floor()
		amount := share.IntPart()
		if amount < transferDustLamports {
			continue
		}
		payouts = append(payouts, payout{wallet: h.Address, lamports: uint64(amount)})
	}
	return payouts
}

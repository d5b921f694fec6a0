package engine

import (
	"context"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/platform"
	"solana-fee-recycler/internal/solana"
)

// runAutoLiq deposits the allocated SOL plus the proportional token
// amount into the mint's pool, then burns all LP tokens minted for the
// deposit. Preconditions: the platform supports liquidity and the
// token has graduated with a discoverable pool. An LP-burn failure
// after a confirmed deposit is non-fatal; the deposit itself stands.
func (e *Engine) runAutoLiq(ctx context.Context, adapter platform.Adapter, signer *solana.Keypair, tok *domain.Token, amountSol float64, phase domain.Phase, res *domain.CycleResult) {
	if !adapter.SupportsLiquidity() {
		e.logger.Printf("[engine] token %d: skipping auto-liquidity, unsupported on %s", tok.ID, tok.Platform)
		e.metrics.RecordFeature("autoliq", "unsupported", 0)
		return
	}
	if phase != domain.PhaseGraduated {
		e.logger.Printf("[engine] token %d: skipping auto-liquidity, token still bonding", tok.ID)
		e.metrics.RecordFeature("autoliq", "skipped", 0)
		return
	}

	pool, err := adapter.Pool(ctx, tok.Mint)
	if err != nil {
		e.logger.Printf("[engine] token %d: pool lookup failed: %v", tok.ID, err)
		e.metrics.RecordFeature("autoliq", "error", 0)
		return
	}
	if pool == nil {
		e.logger.Printf("[engine] token %d: skipping auto-liquidity, no pool discovered", tok.ID)
		e.metrics.RecordFeature("autoliq", "skipped", 0)
		return
	}

	quote, err := platform.QuoteAddLiquidity(pool.Reserves, amountSol, e.slippagePct)
	if err != nil {
		e.logger.Printf("[engine] token %d: liquidity quote failed: %v", tok.ID, err)
		e.metrics.RecordFeature("autoliq", "error", 0)
		return
	}

	tokenBalance, err := e.walletTokenBalance(ctx, signer.Address(), tok.Mint)
	if err != nil {
		e.logger.Printf("[engine] token %d: token balance read failed: %v", tok.ID, err)
		e.metrics.RecordFeature("autoliq", "error", 0)
		return
	}
	if tokenBalance < quote.MaxBase {
		e.logger.Printf("[engine] token %d: not enough tokens for LP (have %.4f, need %.4f)",
			tok.ID, tokenBalance, quote.MaxBase)
		e.metrics.RecordFeature("autoliq", "skipped", 0)
		return
	}
	if !e.hasBalance(ctx, signer.Address(), amountSol) {
		e.logger.Printf("[engine] token %d: skipping auto-liquidity, wallet below %.4f SOL", tok.ID, amountSol)
		e.metrics.RecordFeature("autoliq", "skipped", 0)
		return
	}

	liq := adapter.AddLiquidity(ctx, signer, tok.Mint, amountSol)
	if !liq.Success {
		e.logger.Printf("[engine] token %d: add liquidity failed: %s", tok.ID, liq.Err)
		e.metrics.RecordFeature("autoliq", "error", 0)
		return
	}

	res.LpSol = amountSol
	res.Record(domain.ActionAddLiquidity, liq.Signature)
	e.metrics.RecordFeature("autoliq", "ok", amountSol)

	if pool.LPMint == "" {
		e.logger.Printf("[engine] token %d: pool reports no LP mint, skipping LP burn", tok.ID)
		return
	}

	burned, signature, err := e.burnWalletTokens(ctx, signer, pool.LPMint)
	if err != nil {
		e.logger.Printf("[engine] token %d: LP burn after deposit failed: %v", tok.ID, err)
		e.metrics.RecordFeature("lp_burn", "error", 0)
		return
	}
	if signature == "" {
		return
	}

	res.LpTokens = burned
	res.Record(domain.ActionBurnLP, signature)
	e.metrics.RecordFeature("lp_burn", "ok", 0)
}

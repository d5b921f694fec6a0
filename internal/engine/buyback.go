package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/platform"
	"solana-fee-recycler/internal/solana"
)

// runBuyback buys the token with the allocated SOL and burns whatever
// lands in the wallet. A failed buy aborts the feature; a failed burn
// after a confirmed buy still counts the SOL as spent, the tokens stay
// in the wallet and the next cycle's sweep picks them up.
func (e *Engine) runBuyback(ctx context.Context, adapter platform.Adapter, signer *solana.Keypair, tok *domain.Token, amountSol float64, res *domain.CycleResult) {
	if !e.hasBalance(ctx, signer.Address(), amountSol) {
		e.logger.Printf("[engine] token %d: skipping buyback, wallet below %.4f SOL", tok.ID, amountSol)
		e.metrics.RecordFeature("buyback", "skipped", 0)
		return
	}

	trade := adapter.Buy(ctx, signer, tok.Mint, amountSol)
	if !trade.Success {
		e.logger.Printf("[engine] token %d: buyback buy failed: %s", tok.ID, trade.Err)
		e.metrics.RecordFeature("buyback", "error", 0)
		return
	}

	res.BuybackSol = amountSol
	res.Record(domain.ActionBuyback, trade.Signature)
	e.metrics.RecordFeature("buyback", "ok", amountSol)

	if err := e.waitForTokens(ctx, signer.Address(), tok.Mint); err != nil {
		e.logger.Printf("[engine] token %d: bought tokens not visible yet: %v", tok.ID, err)
		return
	}

	burned, signature, err := e.burnWalletTokens(ctx, signer, tok.Mint)
	if err != nil {
		e.logger.Printf("[engine] token %d: burn after buyback failed: %v", tok.ID, err)
		e.metrics.RecordFeature("burn", "error", 0)
		return
	}
	if signature == "" {
		return
	}

	res.BuybackTokens = burned
	res.Record(domain.ActionBurnTokens, signature)
	if e.metrics != nil {
		e.metrics.TokensBurned.Add(burned)
	}
	e.metrics.RecordFeature("burn", "ok", 0)
}

// waitForTokens polls until the wallet shows a nonzero token balance
// for the mint, bounded by the configured constant-interval retries.
// RPC nodes lag a confirmed buy by a few seconds.
func (e *Engine) waitForTokens(ctx context.Context, owner, mint string) error {
	errNotVisible := errors.New("balance not visible")

	operation := func() error {
		balance, err := e.walletTokenBalance(ctx, owner, mint)
		if err != nil {
			return err
		}
		if balance <= 0 {
			return errNotVisible
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.pollInterval), e.pollTries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("after %d polls: %w", e.pollTries, err)
	}
	return nil
}

package engine

import (
	"context"
	"fmt"

	"solana-fee-recycler/internal/solana"
)

// payout is one pending lamport transfer to a holder wallet.
type payout struct {
	wallet   string
	lamports uint64
}

// submitTransfers builds, signs, submits and confirms one transaction
// carrying a batch of system transfers from the custodial wallet.
func (e *Engine) submitTransfers(ctx context.Context, signer *solana.Keypair, batch []payout) (string, error) {
	if len(batch) == 0 {
		return "", nil
	}
	if len(batch) > transferBatchSize {
		return "", fmt.Errorf("batch of %d exceeds %d transfers", len(batch), transferBatchSize)
	}

	instructions := make([]solana.Instruction, 0, len(batch))
	for _, p := range batch {
		to, err := solana.ParsePubkey(p.wallet)
		if err != nil {
			return "", fmt.Errorf("recipient %s: %w", p.wallet, err)
		}
		instructions = append(instructions, solana.NewTransferInstruction(signer.Pubkey(), to, p.lamports))
	}

	blockhash, err := e.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("get blockhash: %w", err)
	}

	wire, _, err := solana.BuildTransaction(blockhash, signer.Pubkey(), instructions, []*solana.Keypair{signer})
	if err != nil {
		return "", fmt.Errorf("build transfer transaction: %w", err)
	}

	signature, err := e.rpc.SendTransaction(ctx, wire)
	if err != nil {
		return "", fmt.Errorf("send transfer transaction: %w", err)
	}

	if err := e.confirm.WaitForConfirmation(ctx, signature); err != nil {
		return signature, fmt.Errorf("confirm transfers: %w", err)
	}

	return signature, nil
}

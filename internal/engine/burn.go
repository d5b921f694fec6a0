package engine

import (
	"context"
	"fmt"

	"solana-fee-recycler/internal/solana"
)

// burnWalletTokens burns the entire visible balance the wallet holds
// for a mint, across every token account and both token programs. The
// sweep intentionally includes residue from earlier cycles. Returns
// human-unit tokens burned and the transaction signature; (0, "") with
// nil error means there was nothing to burn.
func (e *Engine) burnWalletTokens(ctx context.Context, signer *solana.Keypair, mint string) (float64, string, error) {
	accounts, err := e.rpc.GetTokenAccountsByOwner(ctx, signer.Address(), mint)
	if err != nil {
		return 0, "", fmt.Errorf("list token accounts: %w", err)
	}

	mintPk, err := solana.ParsePubkey(mint)
	if err != nil {
		return 0, "", fmt.Errorf("mint %s: %w", mint, err)
	}

	var instructions []solana.Instruction
	var burnedUI float64
	for _, acc := range accounts {
		if acc.Amount == 0 {
			continue
		}
		accountPk, err := solana.ParsePubkey(acc.Address)
		if err != nil {
			return 0, "", fmt.Errorf("token account %s: %w", acc.Address, err)
		}
		programPk, err := solana.ParsePubkey(acc.Program)
		if err != nil {
			return 0, "", fmt.Errorf("token program %s: %w", acc.Program, err)
		}
		instructions = append(instructions, solana.NewBurnInstruction(programPk, accountPk, mintPk, signer.Pubkey(), acc.Amount))
		burnedUI += acc.UIAmount
	}

	if len(instructions) == 0 {
		return 0, "", nil
	}

	blockhash, err := e.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("get blockhash: %w", err)
	}

	wire, _, err := solana.BuildTransaction(blockhash, signer.Pubkey(), instructions, []*solana.Keypair{signer})
	if err != nil {
		return 0, "", fmt.Errorf("build burn transaction: %w", err)
	}

	signature, err := e.rpc.SendTransaction(ctx, wire)
	if err != nil {
		return 0, "", fmt.Errorf("send burn transaction: %w", err)
	}

	if err := e.confirm.WaitForConfirmation(ctx, signature); err != nil {
		return 0, signature, fmt.Errorf("confirm burn: %w", err)
	}

	return burnedUI, signature, nil
}

// walletTokenBalance sums the wallet's visible human-unit balance for
// a mint across all token accounts.
func (e *Engine) walletTokenBalance(ctx context.Context, owner, mint string) (float64, error) {
	accounts, err := e.rpc.GetTokenAccountsByOwner(ctx, owner, mint)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, acc := range accounts {
		total += acc.UIAmount
	}
	return total, nil
}

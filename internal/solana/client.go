// Package solana provides the Solana RPC/WebSocket clients, key
// handling and transaction building used by the fee engine.
package solana

import "context"

// Client is the read/submit surface the engine consumes.
type Client interface {
	// GetBalance returns the lamport balance of an account.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetLatestBlockhash returns a recent blockhash for transaction building.
	GetLatestBlockhash(ctx context.Context) (string, error)

	// SendTransaction submits a signed wire-format transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, signedTx []byte) (string, error)

	// GetSignatureStatuses returns confirmation statuses for the given
	// signatures. Unknown signatures yield nil entries.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)

	// GetTokenAccountsByOwner returns all token accounts of owner for
	// the given mint, across both token programs.
	GetTokenAccountsByOwner(ctx context.Context, owner, mint string) ([]TokenAccount, error)

	// GetProgramTokenAccounts scans a token program for accounts of the
	// given mint. Expensive; used as the holder snapshot primary source.
	GetProgramTokenAccounts(ctx context.Context, program, mint string) ([]TokenAccount, error)

	// GetTokenLargestAccounts returns the ~20 largest token accounts
	// for a mint.
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenBalance, error)

	// GetMultipleTokenAccounts resolves token account addresses to
	// parsed accounts. Missing accounts are skipped.
	GetMultipleTokenAccounts(ctx context.Context, addresses []string) ([]TokenAccount, error)

	// GetAccountInfo returns account info, or nil when the account does
	// not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

// Confirmer blocks until a submitted transaction is confirmed or the
// wait fails.
type Confirmer interface {
	WaitForConfirmation(ctx context.Context, signature string) error
}

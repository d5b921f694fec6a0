// Package stub provides a scriptable in-memory solana.Client for tests.
package stub

import (
	"context"
	"fmt"
	"sync"

	"solana-fee-recycler/internal/solana"
)

// Client is an in-memory implementation of solana.Client and
// solana.Confirmer. Zero value maps are allocated by New.
type Client struct {
	mu sync.Mutex

	// Balances maps pubkey to lamports.
	Balances map[string]uint64
	// TokenAccounts maps "owner|mint" to token accounts.
	TokenAccounts map[string][]solana.TokenAccount
	// ProgramAccounts maps "program|mint" to token accounts.
	ProgramAccounts map[string][]solana.TokenAccount
	// Largest maps mint to largest token balances.
	Largest map[string][]solana.TokenBalance
	// ParsedAccounts maps token account address to parsed account.
	ParsedAccounts map[string]solana.TokenAccount
	// Accounts maps pubkey to account info.
	Accounts map[string]*solana.AccountInfo

	Blockhash string

	// Sent accumulates submitted transactions.
	Sent [][]byte

	// OnSend, when set, overrides SendTransaction behavior.
	OnSend func(tx []byte) (string, error)

	// FailConfirm holds signatures whose confirmation should fail.
	FailConfirm map[string]bool

	// Errors to inject per call family.
	BalanceErr  error
	AccountsErr error
	SendErr     error

	sigCounter int
}

// New creates an empty stub client with a default blockhash.
func New() *Client {
	return &Client{
		Balances:        make(map[string]uint64),
		TokenAccounts:   make(map[string][]solana.TokenAccount),
		ProgramAccounts: make(map[string][]solana.TokenAccount),
		Largest:         make(map[string][]solana.TokenBalance),
		ParsedAccounts:  make(map[string]solana.TokenAccount),
		Accounts:        make(map[string]*solana.AccountInfo),
		FailConfirm:     make(map[string]bool),
		Blockhash:       "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
	}
}

var (
	_ solana.Client    = (*Client)(nil)
	_ solana.Confirmer = (*Client)(nil)
)

// SetBalance sets an account's lamport balance.
func (c *Client) SetBalance(pubkey string, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Balances[pubkey] = lamports
}

// SetTokenAccounts scripts getTokenAccountsByOwner for (owner, mint).
func (c *Client) SetTokenAccounts(owner, mint string, accounts []solana.TokenAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TokenAccounts[owner+"|"+mint] = accounts
}

// SetProgramAccounts scripts getProgramAccounts for (program, mint).
func (c *Client) SetProgramAccounts(program, mint string, accounts []solana.TokenAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ProgramAccounts[program+"|"+mint] = accounts
}

func (c *Client) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.BalanceErr != nil {
		return 0, c.BalanceErr
	}
	return c.Balances[pubkey], nil
}

func (c *Client) GetLatestBlockhash(_ context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Blockhash, nil
}

func (c *Client) SendTransaction(_ context.Context, signedTx []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return "", c.SendErr
	}
	if c.OnSend != nil {
		return c.OnSend(signedTx)
	}
	c.Sent = append(c.Sent, signedTx)
	c.sigCounter++
	return fmt.Sprintf("stub-sig-%d", c.sigCounter), nil
}

func (c *Client) GetSignatureStatuses(_ context.Context, signatures []string) ([]*solana.SignatureStatus, error) {
	statuses := make([]*solana.SignatureStatus, len(signatures))
	for i, sig := range signatures {
		statuses[i] = &solana.SignatureStatus{
			Signature:          sig,
			ConfirmationStatus: "confirmed",
		}
	}
	return statuses, nil
}

func (c *Client) WaitForConfirmation(_ context.Context, signature string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailConfirm[signature] {
		return fmt.Errorf("confirmation failed for %s", signature)
	}
	return nil
}

func (c *Client) GetTokenAccountsByOwner(_ context.Context, owner, mint string) ([]solana.TokenAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AccountsErr != nil {
		return nil, c.AccountsErr
	}
	return c.TokenAccounts[owner+"|"+mint], nil
}

func (c *Client) GetProgramTokenAccounts(_ context.Context, program, mint string) ([]solana.TokenAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AccountsErr != nil {
		return nil, c.AccountsErr
	}
	return c.ProgramAccounts[program+"|"+mint], nil
}

func (c *Client) GetTokenLargestAccounts(_ context.Context, mint string) ([]solana.TokenBalance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AccountsErr != nil {
		return nil, c.AccountsErr
	}
	return c.Largest[mint], nil
}

func (c *Client) GetMultipleTokenAccounts(_ context.Context, addresses []string) ([]solana.TokenAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []solana.TokenAccount
	for _, addr := range addresses {
		if acct, ok := c.ParsedAccounts[addr]; ok {
			out = append(out, acct)
		}
	}
	return out, nil
}

func (c *Client) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Accounts[pubkey], nil
}

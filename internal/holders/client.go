// Package holders fetches balance-weighted holder snapshots for a mint.
package holders

import (
	"context"
	"log"
	"sort"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/solana"
)

// Client fetches holder snapshots via RPC. The primary source is a
// token-program account scan; when that fails or returns nothing the
// client falls back to the largest-accounts list. Upstream failures
// degrade to an empty snapshot, never an error: distributions skip
// cleanly instead of failing the cycle.
type Client struct {
	rpc    solana.Client
	logger *log.Logger
}

// NewClient creates a holder snapshot client.
func NewClient(rpc solana.Client, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{rpc: rpc, logger: logger}
}

// GetHolders returns up to limit holders of mint with balances in
// human-readable token units, largest first. Balances of a wallet's
// multiple token accounts are merged.
func (c *Client) GetHolders(ctx context.Context, mint string, limit int) ([]domain.Holder, error) {
	if limit <= 0 {
		return nil, nil
	}

	holders := c.scanPrograms(ctx, mint)
	if len(holders) == 0 {
		holders = c.largestAccounts(ctx, mint)
	}

	sort.Slice(holders, func(i, j int) bool {
		if holders[i].Balance != holders[j].Balance {
			return holders[i].Balance > holders[j].Balance
		}
		return holders[i].Address < holders[j].Address
	})

	if len(holders) > limit {
		holders = holders[:limit]
	}
	return holders, nil
}

// scanPrograms aggregates token accounts across both token programs.
func (c *Client) scanPrograms(ctx context.Context, mint string) []domain.Holder {
	byOwner := make(map[string]float64)

	for _, program := range []string{solana.TokenProgramID, solana.Token2022ProgramID} {
		accounts, err := c.rpc.GetProgramTokenAccounts(ctx, program, mint)
		if err != nil {
			c.logger.Printf("[holders] program scan failed mint=%s program=%s: %v", mint, program, err)
			continue
		}
		for _, acct := range accounts {
			if acct.Owner == "" {
				continue
			}
			byOwner[acct.Owner] += acct.UIAmount
		}
	}

	holders := make([]domain.Holder, 0, len(byOwner))
	for owner, balance := range byOwner {
		holders = append(holders, domain.Holder{Address: owner, Balance: balance})
	}
	return holders
}

// largestAccounts resolves the largest token accounts to their owner
// wallets. Bounded to ~20 entries by the RPC method itself.
func (c *Client) largestAccounts(ctx context.Context, mint string) []domain.Holder {
	balances, err := c.rpc.GetTokenLargestAccounts(ctx, mint)
	if err != nil {
		c.logger.Printf("[holders] largest accounts failed mint=%s: %v", mint, err)
		return nil
	}
	if len(balances) == 0 {
		return nil
	}

	addresses := make([]string, 0, len(balances))
	for _, b := range balances {
		addresses = append(addresses, b.Address)
	}

	accounts, err := c.rpc.GetMultipleTokenAccounts(ctx, addresses)
	if err != nil {
		c.logger.Printf("[holders] resolve owners failed mint=%s: %v", mint, err)
		return nil
	}

	byOwner := make(map[string]float64)
	for _, acct := range accounts {
		if acct.Owner == "" || acct.Mint != mint {
			continue
		}
		byOwner[acct.Owner] += acct.UIAmount
	}

	holders := make([]domain.Holder, 0, len(byOwner))
	for owner, balance := range byOwner {
		holders = append(holders, domain.Holder{Address: owner, Balance: balance})
	}
	return holders
}

// Package main prints global feed statistics re-aggregated from the
// ClickHouse history, and, for a specific mint, the token's cached
// counters next to its recent feed entries. The history is the source
// of truth; diverging cached counters indicate a missed persist.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"solana-fee-recycler/internal/config"
	"solana-fee-recycler/internal/domain"
	chstore "solana-fee-recycler/internal/storage/clickhouse"
	pgstore "solana-fee-recycler/internal/storage/postgres"
)

// Actions in display order.
var actionOrder = []domain.ActionType{
	domain.ActionClaimFees,
	domain.ActionBuyback,
	domain.ActionBurnTokens,
	domain.ActionAddLiquidity,
	domain.ActionBurnLP,
	domain.ActionFeeTransfer,
	domain.ActionJackpot,
}

func main() {
	mint := flag.String("mint", "", "Show one token's counters and recent history")
	limit := flag.Int("limit", 20, "History entries to show with --mint")
	flag.Parse()

	logger := log.New(os.Stderr, "[stats] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.ClickHouseDSN == "" {
		logger.Fatal("CLICKHOUSE_DSN is required")
	}

	ctx := context.Background()

	conn, err := chstore.NewConn(ctx, cfg.ClickHouseDSN)
	if err != nil {
		logger.Fatalf("connect clickhouse: %v", err)
	}
	defer conn.Close()
	history := chstore.NewHistoryStore(conn)

	totals, err := history.Totals(ctx)
	if err != nil {
		logger.Fatalf("aggregate totals: %v", err)
	}

	fmt.Println("=== Global totals (feed_history) ===")
	fmt.Printf("%-14s %8s %14s %16s %12s\n", "action", "count", "sol", "tokens", "lp")
	for _, action := range actionOrder {
		t, ok := totals[action]
		if !ok {
			continue
		}
		fmt.Printf("%-14s %8d %14.6f %16.4f %12.4f\n",
			action, t.Count, t.SolAmount, t.TokenAmount, t.LPAmount)
	}

	if *mint == "" {
		return
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	tok, err := pgstore.NewTokenStore(pool).GetByMint(ctx, *mint)
	if err != nil {
		logger.Fatalf("load token %s: %v", *mint, err)
	}

	fmt.Printf("\n=== Token %s (%s, %s) ===\n", tok.Mint, tok.Platform, tok.Status)
	fmt.Printf("cached counters: claimed %.6f SOL, buyback %.6f SOL, burned %.4f tokens\n",
		tok.TotalFeesClaimed, tok.TotalBoughtBack, tok.TotalBurned)
	fmt.Printf("                 lp %.6f SOL, revshare %.6f SOL, jackpot %.6f SOL\n",
		tok.TotalLPAdded, tok.TotalRevsharePaid, tok.TotalJackpotPaid)
	if tok.LastRun > 0 {
		fmt.Printf("last run: %s\n", time.UnixMilli(tok.LastRun).UTC().Format(time.RFC3339))
	}

	entries, err := history.GetByToken(ctx, tok.ID, *limit)
	if err != nil {
		logger.Fatalf("load history: %v", err)
	}
	fmt.Printf("\nrecent history (%d):\n", len(entries))
	for _, e := range entries {
		ts := time.UnixMilli(e.CreatedAt).UTC().Format(time.RFC3339)
		fmt.Printf("  %s %-14s sol=%.6f tokens=%.4f sig=%s\n",
			ts, e.Action, e.SolAmount, e.TokenAmount, e.Signature)
	}
}

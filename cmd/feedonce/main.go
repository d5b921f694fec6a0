// Package main runs a single claim-and-redistribute cycle for one
// mint and exits. Useful for testing a token's configuration without
// waiting on the engine's timers.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"solana-fee-recycler/internal/config"
	"solana-fee-recycler/internal/engine"
	"solana-fee-recycler/internal/holders"
	"solana-fee-recycler/internal/platform"
	"solana-fee-recycler/internal/pools"
	"solana-fee-recycler/internal/solana"
	"solana-fee-recycler/internal/storage"
	chstore "solana-fee-recycler/internal/storage/clickhouse"
	"solana-fee-recycler/internal/storage/memory"
	"solana-fee-recycler/internal/storage/migrations"
	pgstore "solana-fee-recycler/internal/storage/postgres"
)

func main() {
	mint := flag.String("mint", "", "Token mint to process (required)")
	flag.Parse()

	logger := log.New(os.Stdout, "[feedonce] ", log.LstdFlags)
	if *mint == "" {
		logger.Fatal("--mint is required")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("postgres migrations: %v", err)
	}

	var history storage.HistoryStore = memory.NewHistoryStore()
	if cfg.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			logger.Fatalf("clickhouse migrations: %v", err)
		}
		defer conn.Close()
		history = chstore.NewHistoryStore(conn)
	}

	tokens := pgstore.NewTokenStore(pool)

	rpc := solana.NewHTTPClient(cfg.RPCEndpoint)
	adapters := platform.NewRegistry(cfg.PumpEndpoint, cfg.BonkEndpoint, cfg.BagsEndpoint, rpc, rpc, logger)

	eng := engine.New(engine.Options{
		RPC:               rpc,
		Confirm:           rpc,
		Adapters:          adapters,
		Holders:           holders.NewClient(rpc, logger),
		Detector:          pools.NewDetector(adapters, rpc, logger),
		Tokens:            tokens,
		Jackpots:          pgstore.NewJackpotStore(pool),
		Revshare:          pgstore.NewRevshareStore(pool),
		Logger:            logger,
		ClaimSanityCapSol: cfg.ClaimSanityCapSol,
		SlippagePct:       cfg.SlippagePct,
	})

	// The priority track is exactly a single-mint pass with full
	// persistence, so drive it directly.
	sched := engine.NewScheduler(engine.SchedulerOptions{
		Engine:       eng,
		Tokens:       tokens,
		History:      history,
		Logger:       logger,
		PriorityMint: *mint,
	})
	sched.RunPriority(ctx)
}

// Package main runs the fee recycling engine: timer-driven claim and
// redistribution cycles over every enabled token, with an optional
// fast track for a single priority mint.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"solana-fee-recycler/internal/config"
	"solana-fee-recycler/internal/engine"
	"solana-fee-recycler/internal/holders"
	"solana-fee-recycler/internal/observability"
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
	logger := log.New(os.Stdout, "[engine] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("received signal %v, shutting down", sig)
		cancel()
		sig = <-sigCh
		logger.Printf("received second signal %v, forcing exit", sig)
		os.Exit(1)
	}()

	// Postgres: tokens, jackpot entries, revshare rounds.
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("postgres migrations: %v", err)
	}

	tokens := pgstore.NewTokenStore(pool)
	jackpots := pgstore.NewJackpotStore(pool)
	revshare := pgstore.NewRevshareStore(pool)

	// ClickHouse history is optional; without it the feed survives
	// only for the life of the process.
	var history storage.HistoryStore
	if cfg.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			logger.Fatalf("clickhouse migrations: %v", err)
		}
		defer conn.Close()
		history = chstore.NewHistoryStore(conn)
	} else {
		logger.Println("CLICKHOUSE_DSN not set, keeping feed history in memory")
		history = memory.NewHistoryStore()
	}

	metrics := observability.NewMetrics("fee_recycler")

	rpc := solana.NewHTTPClient(cfg.RPCEndpoint)
	var confirm solana.Confirmer = rpc
	if cfg.WSEndpoint != "" {
		ws, err := solana.NewWSConfirmer(ctx, cfg.WSEndpoint, nil, rpc)
		if err != nil {
			logger.Printf("ws confirmer unavailable, falling back to polling: %v", err)
		} else {
			defer ws.Close()
			confirm = ws
		}
	}

	adapters := platform.NewRegistry(cfg.PumpEndpoint, cfg.BonkEndpoint, cfg.BagsEndpoint, rpc, confirm, logger)

	eng := engine.New(engine.Options{
		RPC:               rpc,
		Confirm:           confirm,
		Adapters:          adapters,
		Holders:           holders.NewClient(rpc, logger),
		Detector:          pools.NewDetector(adapters, rpc, logger),
		Tokens:            tokens,
		Jackpots:          jackpots,
		Revshare:          revshare,
		Metrics:           metrics,
		Logger:            logger,
		ClaimSanityCapSol: cfg.ClaimSanityCapSol,
		SlippagePct:       cfg.SlippagePct,
	})

	var lock engine.RunLock = engine.NoopLock{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatalf("connect redis: %v", err)
		}
		defer client.Close()
		lock = engine.NewRedisLock(client, "fee-recycler")
		logger.Printf("distributed run lock enabled via %s", cfg.RedisAddr)
	}

	sched := engine.NewScheduler(engine.SchedulerOptions{
		Engine:          eng,
		Tokens:          tokens,
		History:         history,
		Lock:            lock,
		LockTTL:         cfg.LockTTL,
		Metrics:         metrics,
		Logger:          logger,
		PriorityMint:    cfg.PriorityMint,
		InterTokenDelay: cfg.InterTokenDelay,
	})

	if cfg.MetricsAddr != "" {
		go serveMetrics(logger, cfg.MetricsAddr)
	}

	// The priority mint gets one immediate pass before cron takes over.
	if cfg.PriorityMint != "" {
		logger.Printf("priority track: %s every %s", cfg.PriorityMint, cfg.PriorityInterval)
		sched.RunPriority(ctx)
	}

	c := cron.New()
	if cfg.PriorityMint != "" {
		if _, err := c.AddFunc("@every "+cfg.PriorityInterval.String(), func() { sched.RunPriority(ctx) }); err != nil {
			logger.Fatalf("schedule priority track: %v", err)
		}
	}
	if _, err := c.AddFunc("@every "+cfg.GeneralInterval.String(), func() { sched.RunGeneral(ctx) }); err != nil {
		logger.Fatalf("schedule general track: %v", err)
	}
	c.Start()
	logger.Printf("general track every %s", cfg.GeneralInterval)

	<-ctx.Done()

	// Let the in-flight cycle finish its current token.
	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(30 * time.Second):
		logger.Println("graceful shutdown timed out after 30s")
	}
	logger.Println("shutdown complete")
}

func serveMetrics(logger *log.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Printf("metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("metrics server error: %v", err)
	}
}

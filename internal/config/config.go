// Package config loads engine configuration from the environment. A
// .env file in the working directory is merged in when present; real
// environment variables win.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for optional settings.
const (
	DefaultRPCEndpoint      = "https://api.mainnet-beta.solana.com"
	DefaultTradeAPIEndpoint = "http://127.0.0.1:3000"

	DefaultPriorityInterval = 15 * time.Second
	DefaultGeneralInterval  = time.Minute
	DefaultInterTokenDelay  = 2 * time.Second
	DefaultLockTTL          = 10 * time.Minute

	DefaultMetricsAddr       = ":9090"
	DefaultClaimSanityCapSol = 50.0
)

var errPostgresDSNRequired = errors.New("config: POSTGRES_DSN is required")

// Config holds everything the engine process needs. Zero values mean
// "feature off" for the optional backends (ClickHouse history, redis
// lock, WebSocket confirmations, priority track).
type Config struct {
	RPCEndpoint string
	WSEndpoint  string

	PostgresDSN   string
	ClickHouseDSN string

	RedisAddr     string
	RedisPassword string

	PumpEndpoint string
	BonkEndpoint string
	BagsEndpoint string

	PriorityMint     string
	PriorityInterval time.Duration
	GeneralInterval  time.Duration
	InterTokenDelay  time.Duration
	LockTTL          time.Duration

	MetricsAddr string

	ClaimSanityCapSol float64
	SlippagePct       float64
}

// Load reads the configuration, merging an optional .env file.
func Load() (*Config, error) {
	// Missing .env is fine; only report parse failures.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg := &Config{
		RPCEndpoint:       Env("SOLANA_RPC_ENDPOINT", DefaultRPCEndpoint),
		WSEndpoint:        Env("SOLANA_WS_ENDPOINT", ""),
		PostgresDSN:       Env("POSTGRES_DSN", ""),
		ClickHouseDSN:     Env("CLICKHOUSE_DSN", ""),
		RedisAddr:         Env("REDIS_ADDR", ""),
		RedisPassword:     Env("REDIS_PASSWORD", ""),
		PumpEndpoint:      Env("PUMP_API_ENDPOINT", DefaultTradeAPIEndpoint),
		BonkEndpoint:      Env("BONK_API_ENDPOINT", DefaultTradeAPIEndpoint),
		BagsEndpoint:      Env("BAGS_API_ENDPOINT", DefaultTradeAPIEndpoint),
		PriorityMint:      Env("PRIORITY_MINT", ""),
		PriorityInterval:  EnvDur("PRIORITY_INTERVAL", DefaultPriorityInterval),
		GeneralInterval:   EnvDur("GENERAL_INTERVAL", DefaultGeneralInterval),
		InterTokenDelay:   EnvDur("INTER_TOKEN_DELAY", DefaultInterTokenDelay),
		LockTTL:           EnvDur("LOCK_TTL", DefaultLockTTL),
		MetricsAddr:       Env("METRICS_ADDR", DefaultMetricsAddr),
		ClaimSanityCapSol: EnvFloat("CLAIM_SANITY_CAP_SOL", DefaultClaimSanityCapSol),
		SlippagePct:       EnvFloat("SLIPPAGE_PCT", 0),
	}

	if cfg.PostgresDSN == "" {
		return nil, errPostgresDSNRequired
	}
	return cfg, nil
}

// Env returns the variable's value, or def when unset or empty.
func Env(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// EnvInt returns the variable parsed as a positive int, or def.
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// EnvFloat returns the variable parsed as a positive float, or def.
func EnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

// EnvDur returns the variable parsed as a positive duration, or def.
func EnvDur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

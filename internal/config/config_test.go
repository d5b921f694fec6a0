package config

import (
	"testing"
	"time"
)

func TestLoadRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without POSTGRES_DSN")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/recycler")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RPCEndpoint != DefaultRPCEndpoint {
		t.Errorf("RPCEndpoint = %q", cfg.RPCEndpoint)
	}
	if cfg.GeneralInterval != DefaultGeneralInterval {
		t.Errorf("GeneralInterval = %v", cfg.GeneralInterval)
	}
	if cfg.ClaimSanityCapSol != DefaultClaimSanityCapSol {
		t.Errorf("ClaimSanityCapSol = %v", cfg.ClaimSanityCapSol)
	}
	if cfg.ClickHouseDSN != "" || cfg.RedisAddr != "" || cfg.PriorityMint != "" {
		t.Error("optional backends should default to off")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/recycler")
	t.Setenv("SOLANA_RPC_ENDPOINT", "https://rpc.example.com")
	t.Setenv("GENERAL_INTERVAL", "30s")
	t.Setenv("CLAIM_SANITY_CAP_SOL", "25.5")
	t.Setenv("PRIORITY_MINT", "So11111111111111111111111111111111111111112")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RPCEndpoint != "https://rpc.example.com" {
		t.Errorf("RPCEndpoint = %q", cfg.RPCEndpoint)
	}
	if cfg.GeneralInterval != 30*time.Second {
		t.Errorf("GeneralInterval = %v", cfg.GeneralInterval)
	}
	if cfg.ClaimSanityCapSol != 25.5 {
		t.Errorf("ClaimSanityCapSol = %v", cfg.ClaimSanityCapSol)
	}
	if cfg.PriorityMint != "So11111111111111111111111111111111111111112" {
		t.Errorf("PriorityMint = %q", cfg.PriorityMint)
	}
}

func TestEnvHelpersRejectGarbage(t *testing.T) {
	t.Setenv("X_INT", "not-a-number")
	t.Setenv("X_FLOAT", "-3")
	t.Setenv("X_DUR", "soon")

	if got := EnvInt("X_INT", 7); got != 7 {
		t.Errorf("EnvInt = %d", got)
	}
	if got := EnvFloat("X_FLOAT", 1.5); got != 1.5 {
		t.Errorf("EnvFloat = %v", got)
	}
	if got := EnvDur("X_DUR", time.Second); got != time.Second {
		t.Errorf("EnvDur = %v", got)
	}
}

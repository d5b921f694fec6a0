// Package engine runs the fee recycling cycle: claim creator fees,
// split them per the distribution policy, and execute the buyback,
// auto-liquidity, revenue-share and jackpot features.
package engine

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/observability"
	"solana-fee-recycler/internal/platform"
	"solana-fee-recycler/internal/solana"
	"solana-fee-recycler/internal/storage"
)

const (
	// revshareHolderLimit caps the revenue-share snapshot size.
	revshareHolderLimit = 100
	// jackpotHolderLimit caps the jackpot snapshot size.
	jackpotHolderLimit = 1000
	// whaleCeilingPct excludes holders above this share of the
	// fetched supply from distributions.
	whaleCeilingPct = 5.0
	// transferBatchSize is the maximum system transfers per transaction.
	transferBatchSize = 20
	// transferDustLamports is the minimum individual payout.
	transferDustLamports = 5000

	defaultClaimSanityCapSol   = 50.0
	defaultBalancePollInterval = 2 * time.Second
	defaultBalancePollTries    = 10
)

// Engine errors.
var (
	ErrNoAdapter      = errors.New("no adapter for platform")
	ErrClaimFailed    = errors.New("fee claim failed")
	ErrBalanceUnknown = errors.New("wallet balance unavailable")
)

// HolderSource produces holder snapshots for a mint.
type HolderSource interface {
	GetHolders(ctx context.Context, mint string, limit int) ([]domain.Holder, error)
}

// PhaseDetector reports whether a mint has graduated to an AMM pool.
type PhaseDetector interface {
	IsGraduated(ctx context.Context, p domain.Platform, mint string) (domain.Graduation, error)
}

// Options for creating an Engine.
type Options struct {
	RPC      solana.Client
	Confirm  solana.Confirmer
	Adapters platform.Registry
	Holders  HolderSource
	Detector PhaseDetector

	Tokens   storage.TokenStore
	Jackpots storage.JackpotStore
	Revshare storage.RevshareStore

	Metrics *observability.Metrics
	Logger  *log.Logger

	// Rand drives the jackpot draw. Defaults to a time-seeded source.
	Rand *rand.Rand

	// ClaimSanityCapSol caps delta-measured claim amounts. Defaults
	// to 50 SOL.
	ClaimSanityCapSol float64

	// BalancePollInterval and BalancePollTries bound the post-buy
	// token balance visibility wait.
	BalancePollInterval time.Duration
	BalancePollTries    uint64

	// SlippagePct is the liquidity quote tolerance. Defaults to the
	// platform trade default.
	SlippagePct float64
}

// Engine executes feed cycles for tokens. All feature executors run
// strictly sequentially; the engine holds no cross-cycle state beyond
// the injected dependencies.
type Engine struct {
	rpc      solana.Client
	confirm  solana.Confirmer
	adapters platform.Registry
	holders  HolderSource
	detector PhaseDetector

	tokens   storage.TokenStore
	jackpots storage.JackpotStore
	revshare storage.RevshareStore

	metrics *observability.Metrics
	logger  *log.Logger
	rng     *rand.Rand

	claimSanityCap float64
	pollInterval   time.Duration
	pollTries      uint64
	slippagePct    float64
}

// New creates an Engine from options, applying defaults.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	sanityCap := opts.ClaimSanityCapSol
	if sanityCap <= 0 {
		sanityCap = defaultClaimSanityCapSol
	}
	interval := opts.BalancePollInterval
	if interval <= 0 {
		interval = defaultBalancePollInterval
	}
	tries := opts.BalancePollTries
	if tries == 0 {
		tries = defaultBalancePollTries
	}
	slippage := opts.SlippagePct
	if slippage <= 0 {
		slippage = platform.DefaultSlippagePct
	}

	return &Engine{
		rpc:            opts.RPC,
		confirm:        opts.Confirm,
		adapters:       opts.Adapters,
		holders:        opts.Holders,
		detector:       opts.Detector,
		tokens:         opts.Tokens,
		jackpots:       opts.Jackpots,
		revshare:       opts.Revshare,
		metrics:        opts.Metrics,
		logger:         logger,
		rng:            rng,
		claimSanityCap: sanityCap,
		pollInterval:   interval,
		pollTries:      tries,
		slippagePct:    slippage,
	}
}

// hasBalance reports whether the custodial wallet holds at least
// amountSol. Used before each feature spend so an over-allocated
// split degrades to first-come-first-served instead of failing
// mid-transfer.
func (e *Engine) hasBalance(ctx context.Context, address string, amountSol float64) bool {
	lamports, err := e.rpc.GetBalance(ctx, address)
	if err != nil {
		e.logger.Printf("[engine] balance check for %s failed: %v", address, err)
		return false
	}
	return lamports >= solana.SolToLamports(amountSol)
}

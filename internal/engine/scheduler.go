package engine

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/idhash"
	"solana-fee-recycler/internal/observability"
	"solana-fee-recycler/internal/storage"
)

const (
	trackPriority = "priority"
	trackGeneral  = "general"

	defaultInterTokenDelay = 2 * time.Second
	defaultLockTTL         = 10 * time.Minute
)

// SchedulerOptions for creating a Scheduler.
type SchedulerOptions struct {
	Engine  *Engine
	Tokens  storage.TokenStore
	History storage.HistoryStore

	// Lock guards each track across instances. Defaults to NoopLock.
	Lock    RunLock
	LockTTL time.Duration

	Metrics *observability.Metrics
	Logger  *log.Logger

	// PriorityMint is processed by the priority track and excluded
	// from the general track. Empty disables the priority track.
	PriorityMint string

	// InterTokenDelay spaces sequential token cycles to stay under
	// RPC rate limits.
	InterTokenDelay time.Duration

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// Scheduler drives the two feed tracks. Each track owns an atomic
// guard: a tick that lands while the previous run is still going is a
// no-op. Tokens are processed strictly sequentially and a per-token
// panic or failure never takes down the batch.
type Scheduler struct {
	engine  *Engine
	tokens  storage.TokenStore
	history storage.HistoryStore
	lock    RunLock
	lockTTL time.Duration
	metrics *observability.Metrics
	logger  *log.Logger

	priorityMint string
	delay        time.Duration
	now          func() time.Time

	priorityBusy atomic.Bool
	generalBusy  atomic.Bool
}

// NewScheduler creates a Scheduler from options, applying defaults.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	lock := opts.Lock
	if lock == nil {
		lock = NoopLock{}
	}
	ttl := opts.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	delay := opts.InterTokenDelay
	if delay < 0 {
		delay = 0
	} else if delay == 0 {
		delay = defaultInterTokenDelay
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Scheduler{
		engine:       opts.Engine,
		tokens:       opts.Tokens,
		history:      opts.History,
		lock:         lock,
		lockTTL:      ttl,
		metrics:      opts.Metrics,
		logger:       logger,
		priorityMint: opts.PriorityMint,
		delay:        delay,
		now:          now,
	}
}

// RunPriority processes the designated priority mint once. Overlapping
// calls are dropped.
func (s *Scheduler) RunPriority(ctx context.Context) {
	if s.priorityMint == "" {
		return
	}
	if !s.priorityBusy.CompareAndSwap(false, true) {
		s.logger.Printf("[scheduler] priority track still running, skipping tick")
		return
	}
	defer s.priorityBusy.Store(false)

	held, err := s.lock.TryAcquire(ctx, trackPriority, s.lockTTL)
	if err != nil {
		s.logger.Printf("[scheduler] priority lock error: %v", err)
		return
	}
	if !held {
		s.logger.Printf("[scheduler] priority track locked by another instance")
		return
	}
	defer func() {
		if err := s.lock.Release(ctx, trackPriority); err != nil {
			s.logger.Printf("[scheduler] priority lock release: %v", err)
		}
	}()

	tok, err := s.tokens.GetByMint(ctx, s.priorityMint)
	if err != nil {
		s.logger.Printf("[scheduler] priority mint %s: %v", s.priorityMint, err)
		return
	}
	if tok.Paused {
		return
	}

	s.processToken(ctx, trackPriority, tok)
}

// RunGeneral processes every eligible, due token once. Overlapping
// calls are dropped.
func (s *Scheduler) RunGeneral(ctx context.Context) {
	if !s.generalBusy.CompareAndSwap(false, true) {
		s.logger.Printf("[scheduler] general track still running, skipping tick")
		return
	}
	defer s.generalBusy.Store(false)

	held, err := s.lock.TryAcquire(ctx, trackGeneral, s.lockTTL)
	if err != nil {
		s.logger.Printf("[scheduler] general lock error: %v", err)
		return
	}
	if !held {
		s.logger.Printf("[scheduler] general track locked by another instance")
		return
	}
	defer func() {
		if err := s.lock.Release(ctx, trackGeneral); err != nil {
			s.logger.Printf("[scheduler] general lock release: %v", err)
		}
	}()

	tokens, err := s.tokens.GetEligible(ctx, s.priorityMint)
	if err != nil {
		s.logger.Printf("[scheduler] load eligible tokens: %v", err)
		return
	}

	processed := 0
	for _, tok := range tokens {
		if ctx.Err() != nil {
			s.logger.Printf("[scheduler] shutdown requested, %d tokens left unprocessed", len(tokens)-processed)
			return
		}
		if !s.due(tok) {
			if s.metrics != nil {
				s.metrics.TokensSkipped.Inc()
			}
			continue
		}
		if processed > 0 {
			s.sleep(ctx, s.delay)
		}
		s.processToken(ctx, trackGeneral, tok)
		processed++
	}
}

// due reports whether the token's interval has elapsed since its last
// run. A token that never ran is always due.
func (s *Scheduler) due(tok *domain.Token) bool {
	if tok.LastRun == 0 {
		return true
	}
	interval := tok.IntervalSec
	if interval <= 0 {
		return true
	}
	return s.now().UnixMilli()-tok.LastRun >= interval*1000
}

// processToken runs one cycle and persists its outcome. Panics are
// contained so one broken token cannot take down the batch.
func (s *Scheduler) processToken(ctx context.Context, track string, tok *domain.Token) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("[scheduler] token %d (%s): cycle panicked: %v", tok.ID, tok.Mint, r)
			if s.metrics != nil {
				s.metrics.RecordCycle(track, "panic", 0)
			}
		}
	}()

	start := s.now()
	res := s.engine.RunCycle(ctx, tok)
	elapsed := s.now().Sub(start).Seconds()

	status := "ok"
	if !res.Success {
		status = "error"
		s.logger.Printf("[scheduler] token %d (%s): cycle failed: %s", tok.ID, tok.Mint, res.Err)
	} else {
		s.logger.Printf("[scheduler] token %d (%s): claimed %.4f SOL, %d actions",
			tok.ID, tok.Mint, res.FeesClaimed, len(res.Actions))
		if s.metrics != nil {
			s.metrics.LastSuccessfulCycle.Set(float64(s.now().Unix()))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordCycle(track, status, elapsed)
	}

	s.persist(ctx, tok, res)
}

// persist writes the cycle's history rows, counter deltas and last-run
// stamp. Entry IDs are deterministic, so a replayed persist cannot
// duplicate audit rows. The last-run stamp advances even for failed
// cycles to keep a broken token from hot-looping.
func (s *Scheduler) persist(ctx context.Context, tok *domain.Token, res *domain.CycleResult) {
	nowMs := s.now().UnixMilli()

	if len(res.Actions) > 0 {
		feeTransfers := 0
		for _, a := range res.Actions {
			if a.Type == domain.ActionFeeTransfer {
				feeTransfers++
			}
		}

		entries := make([]*domain.HistoryEntry, 0, len(res.Actions))
		for i, a := range res.Actions {
			entry := &domain.HistoryEntry{
				EntryID:   idhash.ComputeEntryID(tok.ID, string(a.Type), a.Signature, i),
				TokenID:   tok.ID,
				Mint:      tok.Mint,
				Action:    a.Type,
				Signature: a.Signature,
				CreatedAt: nowMs,
			}
			switch a.Type {
			case domain.ActionClaimFees:
				entry.SolAmount = res.FeesClaimed
			case domain.ActionBuyback:
				entry.SolAmount = res.BuybackSol
			case domain.ActionBurnTokens:
				entry.TokenAmount = res.BuybackTokens
			case domain.ActionAddLiquidity:
				entry.SolAmount = res.LpSol
			case domain.ActionBurnLP:
				entry.LPAmount = res.LpTokens
			case domain.ActionFeeTransfer:
				// Batches share the round total evenly; the exact
				// per-wallet split lives on chain.
				entry.SolAmount = res.RevshareSol / float64(feeTransfers)
			case domain.ActionJackpot:
				entry.SolAmount = res.JackpotSol
				entry.Recipient = res.JackpotWinner
			}
			entries = append(entries, entry)
		}

		if err := s.history.Append(ctx, entries); err != nil {
			s.logger.Printf("[scheduler] token %d: append history: %v", tok.ID, err)
		}
	}

	if deltas := res.Deltas(); !deltas.IsZero() {
		if err := s.tokens.UpdateCounters(ctx, tok.ID, deltas); err != nil {
			s.logger.Printf("[scheduler] token %d: update counters: %v", tok.ID, err)
		}
	}

	if err := s.tokens.SetLastRun(ctx, tok.ID, nowMs); err != nil {
		s.logger.Printf("[scheduler] token %d: set last run: %v", tok.ID, err)
	}
}

// sleep waits for d or until the context is cancelled.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

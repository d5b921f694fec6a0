package engine

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/platform"
	"solana-fee-recycler/internal/storage/memory"
)

type schedEnv struct {
	*testEnv
	history   *memory.HistoryStore
	scheduler *Scheduler
	clock     time.Time
	clockMu   sync.Mutex
}

func newSchedEnv(t *testing.T, priorityMint string) *schedEnv {
	t.Helper()

	env := &schedEnv{
		testEnv: newTestEnv(t),
		history: memory.NewHistoryStore(),
		clock:   time.UnixMilli(1_700_000_000_000),
	}

	env.scheduler = NewScheduler(SchedulerOptions{
		Engine:          env.engine,
		Tokens:          env.tokens,
		History:         env.history,
		Logger:          log.New(io.Discard, "", 0),
		PriorityMint:    priorityMint,
		InterTokenDelay: -1, // no pacing in tests
		Now:             env.now,
	})

	return env
}

func (e *schedEnv) now() time.Time {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()
	return e.clock
}

func (e *schedEnv) advance(d time.Duration) {
	e.clockMu.Lock()
	e.clock = e.clock.Add(d)
	e.clockMu.Unlock()
}

func TestScheduler_GeneralProcessesDueTokens(t *testing.T) {
	env := newSchedEnv(t, "")
	ctx := context.Background()

	env.adapter.claimFn = func() platform.ClaimResult {
		return platform.ClaimResult{Success: true, AmountKnown: true, AmountSol: 1.0, Signature: "claim-sig"}
	}

	tok := &domain.Token{
		Mint:        testAddr(200),
		Platform:    domain.PlatformPump,
		Status:      domain.StatusBonding,
		IntervalSec: 600,
	}
	env.insertToken(t, tok, 100)

	env.scheduler.RunGeneral(ctx)
	assert.Equal(t, 1, env.adapter.claimCount())

	// Counters and last_run persisted
	stored, err := env.tokens.GetByMint(ctx, tok.Mint)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, stored.TotalFeesClaimed, 1e-9)
	assert.Equal(t, env.now().UnixMilli(), stored.LastRun)

	// History carries the claim row
	entries, err := env.history.GetByToken(ctx, tok.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, domain.ActionClaimFees, entries[len(entries)-1].Action)

	// Not due yet: the next tick skips it
	env.advance(5 * time.Minute)
	env.scheduler.RunGeneral(ctx)
	assert.Equal(t, 1, env.adapter.claimCount())

	// Due again after the interval
	env.advance(6 * time.Minute)
	env.scheduler.RunGeneral(ctx)
	assert.Equal(t, 2, env.adapter.claimCount())
}

func TestScheduler_OverlappingTickIsNoop(t *testing.T) {
	env := newSchedEnv(t, "")
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	env.adapter.claimFn = func() platform.ClaimResult {
		once.Do(func() { close(started) })
		<-release
		return platform.ClaimResult{Success: true, AmountKnown: true}
	}

	tok := &domain.Token{
		Mint:     testAddr(200),
		Platform: domain.PlatformPump,
		Status:   domain.StatusBonding,
	}
	env.insertToken(t, tok, 100)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		env.scheduler.RunGeneral(ctx)
	}()

	<-started
	// Second tick while the first is blocked inside the claim
	env.scheduler.RunGeneral(ctx)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, env.adapter.claimCount())
}

func TestScheduler_PanicInOneTokenDoesNotStopBatch(t *testing.T) {
	env := newSchedEnv(t, "")
	ctx := context.Background()

	calls := 0
	env.adapter.claimFn = func() platform.ClaimResult {
		calls++
		if calls == 1 {
			panic("adapter exploded")
		}
		return platform.ClaimResult{Success: true, AmountKnown: true}
	}

	first := &domain.Token{Mint: testAddr(200), Platform: domain.PlatformPump, Status: domain.StatusBonding}
	env.insertToken(t, first, 100)
	second := &domain.Token{Mint: testAddr(210), Platform: domain.PlatformPump, Status: domain.StatusBonding}
	kp2, encoded := testKeypair(t, 9)
	second.Keypair = encoded
	require.NoError(t, env.tokens.Insert(ctx, second))
	env.rpc.SetBalance(kp2.Address(), 1_000_000_000)

	require.NotPanics(t, func() {
		env.scheduler.RunGeneral(ctx)
	})
	assert.Equal(t, 2, calls)
}

func TestScheduler_PriorityTrack(t *testing.T) {
	priorityMint := testAddr(200)
	env := newSchedEnv(t, priorityMint)
	ctx := context.Background()

	priority := &domain.Token{
		Mint:     priorityMint,
		Platform: domain.PlatformPump,
		Status:   domain.StatusLive,
	}
	env.insertToken(t, priority, 100)

	other := &domain.Token{Mint: testAddr(210), Platform: domain.PlatformPump, Status: domain.StatusLive}
	kp2, encoded := testKeypair(t, 9)
	other.Keypair = encoded
	require.NoError(t, env.tokens.Insert(ctx, other))
	env.rpc.SetBalance(kp2.Address(), 1_000_000_000)

	// Priority tick touches only the priority mint
	env.scheduler.RunPriority(ctx)
	assert.Equal(t, 1, env.adapter.claimCount())

	// The general track excludes it
	env.scheduler.RunGeneral(ctx)
	assert.Equal(t, 2, env.adapter.claimCount())

	stored, err := env.tokens.GetByMint(ctx, priorityMint)
	require.NoError(t, err)
	assert.Equal(t, env.now().UnixMilli(), stored.LastRun)
}

func TestScheduler_PriorityDisabledWithoutMint(t *testing.T) {
	env := newSchedEnv(t, "")

	tok := &domain.Token{Mint: testAddr(200), Platform: domain.PlatformPump, Status: domain.StatusLive}
	env.insertToken(t, tok, 100)

	env.scheduler.RunPriority(context.Background())
	assert.Zero(t, env.adapter.claimCount())
}

func TestScheduler_FailedCycleStillAdvancesLastRun(t *testing.T) {
	env := newSchedEnv(t, "")
	ctx := context.Background()

	env.adapter.claimFn = func() platform.ClaimResult {
		return platform.ClaimResult{Err: "platform down"}
	}

	tok := &domain.Token{Mint: testAddr(200), Platform: domain.PlatformPump, Status: domain.StatusBonding}
	env.insertToken(t, tok, 100)

	env.scheduler.RunGeneral(ctx)

	stored, err := env.tokens.GetByMint(ctx, tok.Mint)
	require.NoError(t, err)
	assert.Equal(t, env.now().UnixMilli(), stored.LastRun)
	assert.Zero(t, stored.TotalFeesClaimed)
}

func TestScheduler_HistoryEntriesAreIdempotent(t *testing.T) {
	env := newSchedEnv(t, "")
	ctx := context.Background()

	env.adapter.claimFn = func() platform.ClaimResult {
		return platform.ClaimResult{Success: true, AmountKnown: true, AmountSol: 1.0, Signature: "claim-sig"}
	}

	tok := &domain.Token{Mint: testAddr(200), Platform: domain.PlatformPump, Status: domain.StatusBonding}
	env.insertToken(t, tok, 100)

	env.scheduler.RunGeneral(ctx)
	env.advance(time.Hour)
	env.scheduler.RunGeneral(ctx)

	// Same action+signature across cycles produces the same entry ID,
	// so the second persist collapses instead of duplicating.
	entries, err := env.history.GetByToken(ctx, tok.ID, 100)
	require.NoError(t, err)

	claims := 0
	for _, e := range entries {
		if e.Action == domain.ActionClaimFees {
			claims++
		}
	}
	assert.Equal(t, 1, claims)
}

type deniedLock struct{}

func (deniedLock) TryAcquire(context.Context, string, time.Duration) (bool, error) {
	return false, nil
}
func (deniedLock) Release(context.Context, string) error { return nil }

func TestScheduler_LockHeldElsewhereSkipsRun(t *testing.T) {
	env := newSchedEnv(t, "")
	env.scheduler.lock = deniedLock{}

	tok := &domain.Token{Mint: testAddr(200), Platform: domain.PlatformPump, Status: domain.StatusBonding}
	env.insertToken(t, tok, 100)

	env.scheduler.RunGeneral(context.Background())
	assert.Zero(t, env.adapter.claimCount())
}

func TestScheduler_ShutdownStopsBetweenTokens(t *testing.T) {
	env := newSchedEnv(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	env.adapter.claimFn = func() platform.ClaimResult {
		cancel()
		return platform.ClaimResult{Success: true, AmountKnown: true}
	}

	for i := byte(0); i < 3; i++ {
		tok := &domain.Token{Mint: testAddr(200 + i), Platform: domain.PlatformPump, Status: domain.StatusBonding}
		kp, encoded := testKeypair(t, 9+i)
		tok.Keypair = encoded
		require.NoError(t, env.tokens.Insert(context.Background(), tok))
		env.rpc.SetBalance(kp.Address(), 1_000_000_000)
	}

	env.scheduler.RunGeneral(ctx)

	// The in-flight token finished, the rest were skipped
	assert.Equal(t, 1, env.adapter.claimCount())
}

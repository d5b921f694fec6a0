// Package pools detects the graduation phase of a mint by probing for
// an existing liquidity pool.
package pools

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/platform"
	"solana-fee-recycler/internal/solana"
)

// DefaultCacheTTL bounds how long a graduation verdict is reused.
// Graduation is monotonic, but reserves and pool discovery are not,
// so the cache stays short.
const DefaultCacheTTL = 2 * time.Minute

type cacheEntry struct {
	grad      domain.Graduation
	fetchedAt time.Time
}

// Detector answers "is this mint graduated, and where is its pool"
// by asking the mint's platform adapter and verifying the pool account
// exists on-chain. Verdicts are cached briefly per mint.
type Detector struct {
	adapters platform.Registry
	rpc      solana.Client
	ttl      time.Duration
	logger   *log.Logger
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewDetector creates a pool detector.
func NewDetector(adapters platform.Registry, rpc solana.Client, logger *log.Logger) *Detector {
	if logger == nil {
		logger = log.Default()
	}
	return &Detector{
		adapters: adapters,
		rpc:      rpc,
		ttl:      DefaultCacheTTL,
		logger:   logger,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
}

// IsGraduated reports whether the mint's trading has moved to a
// standalone pool. A pool reported by the platform but not yet visible
// on-chain yields Graduated=true with an empty Pool (callers fall back
// to buyback-only allocation).
func (d *Detector) IsGraduated(ctx context.Context, p domain.Platform, mint string) (domain.Graduation, error) {
	d.mu.Lock()
	if entry, ok := d.cache[mint]; ok && d.now().Sub(entry.fetchedAt) < d.ttl {
		d.mu.Unlock()
		return entry.grad, nil
	}
	d.mu.Unlock()

	adapter := d.adapters.For(p)
	if adapter == nil {
		return domain.Graduation{}, fmt.Errorf("no adapter for platform %s", p)
	}

	pool, err := adapter.Pool(ctx, mint)
	if err != nil {
		return domain.Graduation{}, fmt.Errorf("pool lookup for %s: %w", mint, err)
	}

	grad := domain.Graduation{}
	if pool != nil {
		grad.Graduated = true
		grad.Pool = pool.Address

		// The platform may index a pool before it is visible on-chain.
		info, err := d.rpc.GetAccountInfo(ctx, pool.Address)
		if err != nil {
			d.logger.Printf("[pools] verify pool %s failed: %v", pool.Address, err)
			grad.Pool = ""
		} else if info == nil {
			grad.Pool = ""
		}
	}

	d.mu.Lock()
	d.cache[mint] = cacheEntry{grad: grad, fetchedAt: d.now()}
	d.mu.Unlock()

	return grad, nil
}

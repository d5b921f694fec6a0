package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunLock serializes a scheduler track across engine instances. The
// in-process atomic guards already prevent overlap within one
// instance; the lock extends that to multi-instance deployments.
type RunLock interface {
	// TryAcquire attempts to take the named lock for ttl. Returns
	// false when another holder has it.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops the named lock.
	Release(ctx context.Context, key string) error
}

// NoopLock always acquires. Used in single-instance mode.
type NoopLock struct{}

func (NoopLock) TryAcquire(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (NoopLock) Release(context.Context, string) error                           { return nil }

// RedisLock implements RunLock with SET NX EX.
type RedisLock struct {
	client *redis.Client
	prefix string
}

// NewRedisLock creates a RunLock backed by the given redis client.
func NewRedisLock(client *redis.Client, prefix string) *RedisLock {
	if prefix == "" {
		prefix = "fee-recycler"
	}
	return &RedisLock{client: client, prefix: prefix}
}

var _ RunLock = (*RedisLock)(nil)

func (l *RedisLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+":"+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	return ok, nil
}

func (l *RedisLock) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+":"+key).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

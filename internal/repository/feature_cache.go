package repository

import (
	"context"
	"strconv"
	"time"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	"OptionPilot/pkg/cache"
)

// CachedFeatureLookup memoizes a FeatureLookup in a bounded in-process LRU.
// Features are rebuilt nightly, so a short TTL saves a ClickHouse round trip
// per request. Lookup errors are not cached.
type CachedFeatureLookup struct {
	next domrepo.FeatureLookup
	ttl  time.Duration
	mem  *cache.Memory[models.LiquidityFeatures]
}

// NewCachedFeatureLookup wraps next. A non-positive ttl disables caching.
// opts size the LRU; its sweep runs every ttl unless overridden.
func NewCachedFeatureLookup(next domrepo.FeatureLookup, ttl time.Duration, opts ...cache.MemoryOption) *CachedFeatureLookup {
	c := &CachedFeatureLookup{next: next, ttl: ttl}
	if ttl > 0 {
		opts = append([]cache.MemoryOption{cache.WithCleanupInterval(ttl)}, opts...)
		c.mem = cache.NewMemory[models.LiquidityFeatures](opts...)
	}
	return c
}

func (c *CachedFeatureLookup) Lookup(ctx context.Context, key models.FeatureKey) (models.LiquidityFeatures, error) {
	if c.mem == nil {
		return c.next.Lookup(ctx, key)
	}

	k := cache.Key(key.Symbol, key.Expiry, strconv.FormatFloat(key.Strike, 'f', -1, 64))
	if v, ok := c.mem.Get(k); ok {
		return v, nil
	}

	v, err := c.next.Lookup(ctx, key)
	if err != nil {
		return v, err
	}
	c.mem.Set(k, v, c.ttl)
	return v, nil
}

// Len reports how many lookups are held.
func (c *CachedFeatureLookup) Len() int {
	if c.mem == nil {
		return 0
	}
	return c.mem.Len()
}

// Close stops the cache sweep.
func (c *CachedFeatureLookup) Close() error {
	if c.mem == nil {
		return nil
	}
	return c.mem.Close()
}

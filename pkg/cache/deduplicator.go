package cache

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/snow-ghost/planner/core"
)

// Deduplicator collapses concurrent identical runs into one
type Deduplicator struct {
	group singleflight.Group

	requests     atomic.Int64
	deduplicated atomic.Int64
	cacheHits    atomic.Int64
}

// DedupStats represents deduplication statistics
type DedupStats struct {
	Requests     int64   `json:"requests"`
	Deduplicated int64   `json:"deduplicated"`
	CacheHits    int64   `json:"cache_hits"`
	DedupRate    float64 `json:"dedup_rate"`
	CacheHitRate float64 `json:"cache_hit_rate"`
}

// NewDeduplicator creates a new deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Execute runs fn once per key among concurrent callers. The caller's context only
// bounds its own wait; the shared run keeps going for the remaining waiters.
func (d *Deduplicator) Execute(ctx context.Context, key CacheKey, fn func() (*core.OptimizationResult, error)) (*core.OptimizationResult, error) {
	d.requests.Add(1)

	ch := d.group.DoChan(string(key), func() (interface{}, error) {
		return fn()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			d.deduplicated.Add(1)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*core.OptimizationResult), nil
	}
}

// ExecuteWithCache checks the cache first, then runs fn with deduplication and stores
// its result. The boolean reports a cache hit.
func (d *Deduplicator) ExecuteWithCache(
	ctx context.Context,
	key CacheKey,
	cache *LRUCache,
	ttl time.Duration,
	fn func() (*core.OptimizationResult, error),
) (*core.OptimizationResult, bool, error) {
	if cache != nil {
		if entry, exists := cache.Get(key); exists {
			d.requests.Add(1)
			d.cacheHits.Add(1)
			return entry.Result, true, nil
		}
	}

	result, err := d.Execute(ctx, key, func() (*core.OptimizationResult, error) {
		result, err := fn()
		if err != nil {
			return nil, err
		}
		if cache != nil {
			cache.Set(key, result, ttl)
		}
		return result, nil
	})
	return result, false, err
}

// Stats returns deduplication statistics
func (d *Deduplicator) Stats() DedupStats {
	s := DedupStats{
		Requests:     d.requests.Load(),
		Deduplicated: d.deduplicated.Load(),
		CacheHits:    d.cacheHits.Load(),
	}
	if s.Requests > 0 {
		s.DedupRate = float64(s.Deduplicated) / float64(s.Requests)
		s.CacheHitRate = float64(s.CacheHits) / float64(s.Requests)
	}
	return s
}

// Reset resets all statistics
func (d *Deduplicator) Reset() {
	d.requests.Store(0)
	d.deduplicated.Store(0)
	d.cacheHits.Store(0)
}

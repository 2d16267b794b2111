package cache

import (
	"context"
	"fmt"

	"github.com/snow-ghost/planner/core"
)

// CacheManager manages result caching and deduplication
type CacheManager struct {
	cache        *LRUCache
	deduplicator *Deduplicator
	config       *CacheConfig
}

// NewCacheManager creates a new cache manager
func NewCacheManager(config *CacheConfig) (*CacheManager, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	cache, err := NewLRUCache(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &CacheManager{
		cache:        cache,
		deduplicator: NewDeduplicator(),
		config:       config,
	}, nil
}

// ExecuteWithCache returns the cached result for req or computes it with fn. The
// boolean reports a cache hit.
func (cm *CacheManager) ExecuteWithCache(
	ctx context.Context,
	req RunKey,
	fn func() (*core.OptimizationResult, error),
) (*core.OptimizationResult, bool, error) {
	key, err := GenerateKey(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate cache key: %w", err)
	}

	return cm.deduplicator.ExecuteWithCache(ctx, key, cm.cache, cm.config.DefaultTTL, fn)
}

// Get retrieves a cached result
func (cm *CacheManager) Get(req RunKey) (*CacheEntry, bool) {
	key, err := GenerateKey(req)
	if err != nil {
		return nil, false
	}

	return cm.cache.Get(key)
}

// Delete removes a cached result
func (cm *CacheManager) Delete(req RunKey) error {
	key, err := GenerateKey(req)
	if err != nil {
		return fmt.Errorf("failed to generate cache key: %w", err)
	}

	cm.cache.Delete(key)
	return nil
}

// Clear removes all values from the cache
func (cm *CacheManager) Clear() {
	cm.cache.Clear()
	cm.cache.Reset()
	cm.deduplicator.Reset()
}

// Stats returns cache and deduplication statistics
func (cm *CacheManager) Stats() map[string]interface{} {
	cacheStats := cm.cache.Stats()
	dedupStats := cm.deduplicator.Stats()

	return map[string]interface{}{
		"cache": map[string]interface{}{
			"hits":        cacheStats.Hits,
			"misses":      cacheStats.Misses,
			"size":        cacheStats.Size,
			"max_size":    cacheStats.MaxSize,
			"hit_rate":    cacheStats.HitRate,
			"evictions":   cacheStats.Evictions,
			"expirations": cacheStats.Expirations,
		},
		"deduplication": map[string]interface{}{
			"total_requests":     dedupStats.Requests,
			"total_deduplicated": dedupStats.Deduplicated,
			"total_cache_hits":   dedupStats.CacheHits,
			"dedup_rate":         dedupStats.DedupRate,
			"cache_hit_rate":     dedupStats.CacheHitRate,
		},
		"config": map[string]interface{}{
			"max_size":         cm.config.MaxSize,
			"default_ttl":      cm.config.DefaultTTL.String(),
			"cleanup_interval": cm.config.CleanupInterval.String(),
		},
	}
}

// Close closes the cache manager and cleans up resources
func (cm *CacheManager) Close() {
	cm.cache.Close()
}

// Len returns the number of cached results
func (cm *CacheManager) Len() int {
	return cm.cache.Len()
}

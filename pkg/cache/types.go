package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/snow-ghost/planner/core"
)

// CacheKey represents a cache key
type CacheKey string

// CacheEntry represents a cached optimization result
type CacheEntry struct {
	Result       *core.OptimizationResult `json:"result"`
	CreatedAt    time.Time                `json:"created_at"`
	ExpiresAt    time.Time                `json:"expires_at"`
	AccessCount  int                      `json:"access_count"`
	LastAccessed time.Time                `json:"last_accessed"`
}

// IsExpired checks if the cache entry is expired
func (e *CacheEntry) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Touch updates the access time and count
func (e *CacheEntry) Touch(now time.Time) {
	e.LastAccessed = now
	e.AccessCount++
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	MaxSize         int           `json:"max_size" yaml:"max_size"`                 // Maximum number of entries
	DefaultTTL      time.Duration `json:"default_ttl" yaml:"default_ttl"`           // Default TTL for entries
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval"` // Zero disables the sweeper
}

// DefaultCacheConfig returns a default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		MaxSize:         256,
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 1 * time.Minute,
	}
}

// RunKey identifies a deterministic optimization request
type RunKey struct {
	Exercises []string       `json:"exercises"`
	Config    core.RunConfig `json:"config"`
}

// GenerateKey hashes a normalized request. Exercise order and duplicates do not change
// the key, since the pool is built in catalog order.
func GenerateKey(req RunKey) (CacheKey, error) {
	seen := make(map[string]struct{}, len(req.Exercises))
	names := make([]string, 0, len(req.Exercises))
	for _, name := range req.Exercises {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)

	normalized := RunKey{
		Exercises: names,
		Config:    req.Config.WithDefaults(),
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	hash := sha256.Sum256(data)
	return CacheKey(fmt.Sprintf("%x", hash)), nil
}

// CacheStats represents cache statistics
type CacheStats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Size        int     `json:"size"`
	MaxSize     int     `json:"max_size"`
	HitRate     float64 `json:"hit_rate"`
	Evictions   int64   `json:"evictions"`
	Expirations int64   `json:"expirations"`
}

// CalculateHitRate calculates the hit rate
func (s *CacheStats) CalculateHitRate() {
	total := s.Hits + s.Misses
	if total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	} else {
		s.HitRate = 0.0
	}
}

package limiter

import (
	"testing"
	"time"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, Burst: 2})
	fixed := time.Unix(1000, 0)
	rl.now = func() time.Time { return fixed }

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("Expected burst of 2 to be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Expected third request in the same instant to be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("Expected a different key to have its own bucket")
	}

	fixed = fixed.Add(time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("Expected a token to be refilled after one second")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	for i := 0; i < 100; i++ {
		if !rl.Allow("client") {
			t.Fatal("Expected disabled limiter to allow every request")
		}
	}
	if rl.Len() != 0 {
		t.Errorf("Expected no buckets when disabled, got %d", rl.Len())
	}
}

func TestRateLimiterEvictsIdleKeys(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute})
	now := time.Unix(0, 0)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	if rl.Len() != 2 {
		t.Fatalf("Expected 2 buckets, got %d", rl.Len())
	}

	now = now.Add(2 * time.Minute)
	rl.Allow("c")
	if rl.Len() != 1 {
		t.Errorf("Expected idle buckets to be evicted, got %d", rl.Len())
	}
}

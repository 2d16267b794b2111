package limiter

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
)

func TestCircuitBreakerManager(t *testing.T) {
	cbm := NewCircuitBreakerManager(DefaultCircuitBreakerConfig(), nil)

	result, err := cbm.Execute(context.Background(), "catalog", func(ctx context.Context) (interface{}, error) {
		return "success", nil
	})
	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected result 'success', got %v", result)
	}
	if cbm.State("catalog") != gobreaker.StateClosed {
		t.Error("Expected circuit breaker to be closed after success")
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cbm := NewCircuitBreakerManager(DefaultCircuitBreakerConfig(), nil)

	for i := 0; i < 3; i++ {
		_, err := cbm.Execute(context.Background(), "flaky", func(ctx context.Context) (interface{}, error) {
			return nil, errors.New("simulated failure")
		})
		if err == nil {
			t.Error("Expected error for failing function")
		}
	}

	if cbm.State("flaky") != gobreaker.StateOpen {
		t.Fatal("Expected circuit breaker to be open after failures")
	}

	calls := 0
	_, err := cbm.Execute(context.Background(), "flaky", func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState, got %v", err)
	}
	if calls != 0 {
		t.Error("Expected open breaker to short-circuit the call")
	}

	stats := cbm.GetStats("flaky")
	if stats["state"] != "open" {
		t.Errorf("Expected open state in stats, got %v", stats["state"])
	}
}

func TestGuardRetriesInsideBreaker(t *testing.T) {
	g := NewGuard(fastRetry(2), DefaultCircuitBreakerConfig(), nil)

	attempts := 0
	got, err := Do(context.Background(), g, "upstream", func(ctx context.Context) ([]byte, error) {
		attempts++
		if attempts == 1 {
			return nil, NewHTTPError(502, "bad gateway")
		}
		return []byte("ok"), nil
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if string(got) != "ok" || attempts != 2 {
		t.Errorf("Expected ok after 2 attempts, got %q after %d", got, attempts)
	}
	if g.Breakers().GetBreaker("upstream").Counts().TotalFailures != 0 {
		t.Error("Expected the retried call to count as a single success")
	}
}

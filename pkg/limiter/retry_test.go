package limiter

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(max int) RetryConfig {
	config := DefaultRetryConfig()
	config.MaxRetries = max
	config.BaseDelay = time.Millisecond
	config.Jitter = false
	return config
}

func TestRetrySuccessFirstAttempt(t *testing.T) {
	attempts := 0
	result, err := Retry(context.Background(), fastRetry(2), func(ctx context.Context) (string, error) {
		attempts++
		return "success", nil
	})

	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected result 'success', got %v", result)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestRetryRetryableStatus(t *testing.T) {
	attempts := 0
	result, err := Retry(context.Background(), fastRetry(3), func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, NewHTTPError(503, "unavailable")
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("Expected success after retries, got error: %v", err)
	}
	if result != 42 || attempts != 3 {
		t.Errorf("Expected 42 after 3 attempts, got %d after %d", result, attempts)
	}
}

func TestRetryExhausted(t *testing.T) {
	attempts := 0
	_, err := Retry(context.Background(), fastRetry(2), func(ctx context.Context) (int, error) {
		attempts++
		return 0, NewHTTPError(500, "boom")
	})

	if !errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("Expected ErrRetriesExhausted, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryNonRetryable(t *testing.T) {
	attempts := 0
	_, err := Retry(context.Background(), fastRetry(5), func(ctx context.Context) (int, error) {
		attempts++
		return 0, NewHTTPError(404, "missing")
	})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Errorf("Expected the 404 to be returned as is, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestRetryDelayCapped(t *testing.T) {
	config := RetryConfig{BaseDelay: time.Second, MaxDelay: 3 * time.Second, BackoffFactor: 2}
	if d := config.delay(0); d != time.Second {
		t.Errorf("Expected 1s, got %v", d)
	}
	if d := config.delay(5); d != 3*time.Second {
		t.Errorf("Expected cap of 3s, got %v", d)
	}
}

package limiter

import (
	"context"
	"log/slog"
)

// Guard protects calls to an upstream with retries inside a circuit breaker.
type Guard struct {
	retry    RetryConfig
	breakers *CircuitBreakerManager
}

func NewGuard(retry RetryConfig, breaker CircuitBreakerConfig, logger *slog.Logger) *Guard {
	return &Guard{
		retry:    retry,
		breakers: NewCircuitBreakerManager(breaker, logger),
	}
}

// Do runs fn for upstream name. A retried sequence counts as one breaker request.
func Do[T any](ctx context.Context, g *Guard, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	result, err := g.breakers.Execute(ctx, name, func(ctx context.Context) (interface{}, error) {
		return Retry(ctx, g.retry, fn)
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}

// Breakers exposes the underlying breaker manager for stats.
func (g *Guard) Breakers() *CircuitBreakerManager {
	return g.breakers
}

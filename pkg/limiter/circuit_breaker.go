package limiter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	MaxRequests uint32                             `json:"max_requests" yaml:"max_requests"`
	Interval    time.Duration                      `json:"interval" yaml:"interval"`
	Timeout     time.Duration                      `json:"timeout" yaml:"timeout"`
	ReadyToTrip func(counts gobreaker.Counts) bool `json:"-" yaml:"-"`
	// OnStateChange is called after the built-in log line, if set.
	OnStateChange func(name, from, to string) `json:"-" yaml:"-"`
}

// DefaultCircuitBreakerConfig opens after three consecutive failures.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
}

// CircuitBreakerManager keeps one breaker per upstream name.
type CircuitBreakerManager struct {
	config   CircuitBreakerConfig
	logger   *slog.Logger
	breakers map[string]*gobreaker.CircuitBreaker
	mu       sync.Mutex
}

func NewCircuitBreakerManager(config CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &CircuitBreakerManager{
		config:   config,
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// GetBreaker returns or creates the breaker for name.
func (cbm *CircuitBreakerManager) GetBreaker(name string) *gobreaker.CircuitBreaker {
	cbm.mu.Lock()
	defer cbm.mu.Unlock()

	if breaker, ok := cbm.breakers[name]; ok {
		return breaker
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cbm.config.MaxRequests,
		Interval:    cbm.config.Interval,
		Timeout:     cbm.config.Timeout,
		ReadyToTrip: cbm.config.ReadyToTrip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			cbm.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			if cbm.config.OnStateChange != nil {
				cbm.config.OnStateChange(name, from.String(), to.String())
			}
		},
	})
	cbm.breakers[name] = breaker
	return breaker
}

// Execute runs fn through the breaker for name.
func (cbm *CircuitBreakerManager) Execute(ctx context.Context, name string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := cbm.GetBreaker(name).Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("circuit breaker %s: %w", name, err)
	}
	return result, nil
}

// State returns the current state of the breaker for name.
func (cbm *CircuitBreakerManager) State(name string) gobreaker.State {
	return cbm.GetBreaker(name).State()
}

// GetStats returns circuit breaker statistics for name.
func (cbm *CircuitBreakerManager) GetStats(name string) map[string]interface{} {
	breaker := cbm.GetBreaker(name)
	counts := breaker.Counts()

	return map[string]interface{}{
		"name":                 name,
		"state":                breaker.State().String(),
		"requests":             counts.Requests,
		"total_success":        counts.TotalSuccesses,
		"total_failures":       counts.TotalFailures,
		"consecutive_failures": counts.ConsecutiveFailures,
	}
}

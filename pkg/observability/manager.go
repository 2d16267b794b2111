package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/snow-ghost/planner/core"
	"github.com/snow-ghost/planner/pkg/logging"
	"github.com/snow-ghost/planner/pkg/metrics"
	"github.com/snow-ghost/planner/pkg/tracing"
)

// Manager manages all observability components
type Manager struct {
	metrics *metrics.PrometheusMetrics
	tracer  *tracing.Tracer
	logger  *logging.Logger
}

// Config holds observability configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	JaegerEndpoint string
	LogLevel       string
	LogFormat      string
}

// NewManager creates a new observability manager
func NewManager(config Config) (*Manager, error) {
	tracer, err := tracing.NewTracer(tracing.Config{
		ServiceName:    config.ServiceName,
		ServiceVersion: config.ServiceVersion,
		JaegerEndpoint: config.JaegerEndpoint,
		Environment:    config.Environment,
	})
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:     config.LogLevel,
		Format:    config.LogFormat,
		Output:    "stdout",
		AddCaller: true,
		AddStack:  false,
	})
	if err != nil {
		return nil, err
	}

	return &Manager{
		metrics: metrics.NewPrometheusMetrics(),
		tracer:  tracer,
		logger:  logger,
	}, nil
}

// NewNopManager returns a manager with fresh metrics, a no-op tracer and a discarding logger
func NewNopManager() *Manager {
	return New(metrics.NewPrometheusMetrics(), tracing.NewNoopTracer(), logging.NewNop())
}

// New assembles a manager from existing components
func New(m *metrics.PrometheusMetrics, t *tracing.Tracer, l *logging.Logger) *Manager {
	return &Manager{metrics: m, tracer: t, logger: l}
}

// GetMetrics returns the metrics instance
func (m *Manager) GetMetrics() *metrics.PrometheusMetrics {
	return m.metrics
}

// GetTracer returns the tracer instance
func (m *Manager) GetTracer() *tracing.Tracer {
	return m.tracer
}

// GetLogger returns the logger instance
func (m *Manager) GetLogger() *logging.Logger {
	return m.logger
}

// StartRunSpan starts a span for an optimization run with logging
func (m *Manager) StartRunSpan(ctx context.Context, runID string, cfg core.RunConfig, poolSize int) (context.Context, trace.Span) {
	ctx, span := m.tracer.StartRunSpan(ctx, runID, string(cfg.Goal), cfg.PopulationSize, cfg.Generations, poolSize)

	logger := m.logger.WithFields(map[string]interface{}{
		"run_id":          runID,
		"goal":            string(cfg.Goal),
		"population_size": cfg.PopulationSize,
		"generations":     cfg.Generations,
		"pool_size":       poolSize,
	})
	if requestID := GetRequestIDFromContext(ctx); requestID != "" {
		logger = logger.WithRequestID(ctx, requestID)
	}
	logger.Debug("Optimization run started")

	return ctx, span
}

// FinishRun ends the run span and records metrics and a log line for the outcome
func (m *Manager) FinishRun(ctx context.Context, span trace.Span, runID string, cfg core.RunConfig, result *core.OptimizationResult, cached bool, duration time.Duration, err error) {
	goal := string(cfg.Goal)
	tracing.RecordSpanDuration(span, duration)

	var best float64
	if err != nil {
		tracing.RecordSpanError(span, err)
		m.metrics.RecordRun(goal, runStatus(err), duration)
	} else {
		best = result.BestFitness
		tracing.RecordSpanFitness(span, best, cached)
		tracing.RecordSpanSuccess(span)
		m.metrics.RecordRun(goal, "ok", duration)
		m.metrics.RecordBestFitness(goal, best)
	}
	span.End()

	m.logger.LogRun(ctx, runID, goal, cfg.PopulationSize, cfg.Generations, best, duration, err)
}

func runStatus(err error) string {
	switch {
	case core.IsClientError(err):
		return "rejected"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// RecordCacheMetrics records cache metrics
func (m *Manager) RecordCacheMetrics(ctx context.Context, hit bool, runID string) {
	if hit {
		m.metrics.RecordCacheHit()
	} else {
		m.metrics.RecordCacheMiss()
	}
	m.logger.LogCacheOperation(ctx, "result", hit, runID)
}

// RecordRateLimited records a request rejected by the rate limiter
func (m *Manager) RecordRateLimited() {
	m.metrics.RecordRateLimited()
}

// RecordCircuitState records a circuit breaker transition
func (m *Manager) RecordCircuitState(name, from, to string) {
	m.metrics.RecordCircuitState(name, to)
	m.logger.Warn("Circuit breaker state changed", "name", name, "from", from, "to", to)
}

// Shutdown shuts down all observability components
func (m *Manager) Shutdown(ctx context.Context) error {
	if err := m.tracer.Shutdown(ctx); err != nil {
		return err
	}

	// Syncing stdout fails on some platforms; it is not worth failing shutdown over.
	_ = m.logger.Sync()
	return nil
}

type contextKey string

const requestIDKey contextKey = "request_id"

// GetRequestIDFromContext extracts request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

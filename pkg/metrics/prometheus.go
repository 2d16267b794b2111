package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// Run metrics
	RunsTotal        *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	GenerationsTotal prometheus.Counter
	BestFitness      *prometheus.GaugeVec

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// HTTP metrics
	RateLimitedTotal prometheus.Counter

	// Circuit breaker metrics
	CircuitStateChanges *prometheus.CounterVec
}

// NewPrometheusMetrics registers the planner metrics on a fresh registry, together with
// the Go runtime and process collectors.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_runs_total",
				Help: "Total number of optimization runs",
			},
			[]string{"goal", "status"},
		),

		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planner_run_duration_seconds",
				Help:    "Optimization run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"goal"},
		),

		GenerationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "planner_generations_total",
				Help: "Total number of evaluated generations",
			},
		),

		BestFitness: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "planner_best_fitness",
				Help: "Best fitness of the most recent run per goal",
			},
			[]string{"goal"},
		),

		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "planner_cache_hits_total",
				Help: "Total number of result cache hits",
			},
		),

		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "planner_cache_misses_total",
				Help: "Total number of result cache misses",
			},
		),

		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "planner_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),

		CircuitStateChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_circuit_state_changes_total",
				Help: "Total number of circuit breaker state changes",
			},
			[]string{"name", "to"},
		),
	}
}

// Registry returns the registry holding every metric
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRun records a finished run
func (m *PrometheusMetrics) RecordRun(goal, status string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(goal, status).Inc()
	m.RunDuration.WithLabelValues(goal).Observe(duration.Seconds())
}

// RecordBestFitness records the best fitness of a successful run
func (m *PrometheusMetrics) RecordBestFitness(goal string, fitness float64) {
	m.BestFitness.WithLabelValues(goal).Set(fitness)
}

// RecordGeneration records one evaluated generation
func (m *PrometheusMetrics) RecordGeneration() {
	m.GenerationsTotal.Inc()
}

// RecordCacheHit records a cache hit
func (m *PrometheusMetrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func (m *PrometheusMetrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// RecordRateLimited records a rejected request
func (m *PrometheusMetrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}

// RecordCircuitState records a circuit breaker transition
func (m *PrometheusMetrics) RecordCircuitState(name, to string) {
	m.CircuitStateChanges.WithLabelValues(name, to).Inc()
}

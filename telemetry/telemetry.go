// Package telemetry turns engine progress into logs, counters and a health report.
package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/snow-ghost/planner/core"
	"github.com/snow-ghost/planner/evolve"
	"github.com/snow-ghost/planner/pkg/logging"
	"github.com/snow-ghost/planner/pkg/metrics"
	"github.com/snow-ghost/planner/population"
)

// Telemetry aggregates counters across runs
type Telemetry struct {
	mu sync.RWMutex

	runsTotal       int64
	runsFailed      int64
	generationsSeen int64
	totalRunTime    time.Duration
	started         time.Time

	logger  *logging.Logger
	metrics *metrics.PrometheusMetrics
	now     func() time.Time
}

// Stats is a point-in-time view of the counters
type Stats struct {
	RunsTotal     int64   `json:"runs_total"`
	RunsFailed    int64   `json:"runs_failed"`
	Generations   int64   `json:"generations_total"`
	AvgRunTimeMs  float64 `json:"avg_run_time_ms"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewTelemetry creates a new telemetry instance. metrics may be nil.
func NewTelemetry(logger *logging.Logger, m *metrics.PrometheusMetrics) *Telemetry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Telemetry{
		logger:  logger,
		metrics: m,
		now:     time.Now,
		started: time.Now(),
	}
}

// Observer returns an engine observer bound to one run
func (t *Telemetry) Observer(runID string) evolve.Observer {
	return &runObserver{t: t, runID: runID}
}

type runObserver struct {
	t     *Telemetry
	runID string
	start time.Time
}

func (o *runObserver) RunStarted(ctx context.Context, cfg core.RunConfig, poolSize int) {
	o.start = o.t.now()
	o.t.logger.Debug("Evolution started",
		"run_id", o.runID,
		"goal", string(cfg.Goal),
		"pool_size", poolSize,
		"population_size", cfg.PopulationSize,
		"generations", cfg.Generations,
	)
}

func (o *runObserver) GenerationEvaluated(ctx context.Context, _ *population.Population, m core.GenerationMetrics) {
	o.t.mu.Lock()
	o.t.generationsSeen++
	o.t.mu.Unlock()

	if o.t.metrics != nil {
		o.t.metrics.RecordGeneration()
	}
	o.t.logger.LogGeneration(ctx, o.runID, m.Generation, m.Best, m.Average, m.Diversity)
}

func (o *runObserver) RunFinished(ctx context.Context, out *evolve.Outcome, err error) {
	elapsed := o.t.now().Sub(o.start)

	o.t.mu.Lock()
	o.t.runsTotal++
	o.t.totalRunTime += elapsed
	if err != nil {
		o.t.runsFailed++
	}
	o.t.mu.Unlock()

	if err != nil {
		o.t.logger.Debug("Evolution stopped", "run_id", o.runID, "error", err.Error())
		return
	}
	o.t.logger.Debug("Evolution finished",
		"run_id", o.runID,
		"best_fitness", out.Best.Score,
		"duration_ms", elapsed.Milliseconds(),
	)
}

// Stats returns the current counters
func (t *Telemetry) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Stats{
		RunsTotal:     t.runsTotal,
		RunsFailed:    t.runsFailed,
		Generations:   t.generationsSeen,
		UptimeSeconds: t.now().Sub(t.started).Seconds(),
	}
	if t.runsTotal > 0 {
		s.AvgRunTimeMs = float64(t.totalRunTime.Milliseconds()) / float64(t.runsTotal)
	}
	return s
}

// HealthHandler reports liveness together with the run counters
func (t *Telemetry) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "planner",
		"stats":   t.Stats(),
	})
}

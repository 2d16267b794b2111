package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *PrometheusMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRecordRun(t *testing.T) {
	m := NewPrometheusMetrics()

	m.RecordRun("fat_loss", "ok", 20*time.Millisecond)
	m.RecordRun("fat_loss", "ok", 30*time.Millisecond)
	m.RecordRun("endurance", "error", time.Millisecond)
	m.RecordBestFitness("fat_loss", 420)

	body := scrape(t, m)
	assert.Contains(t, body, `planner_runs_total{goal="fat_loss",status="ok"} 2`)
	assert.Contains(t, body, `planner_runs_total{goal="endurance",status="error"} 1`)
	assert.Contains(t, body, `planner_best_fitness{goal="fat_loss"} 420`)
	assert.Contains(t, body, `planner_run_duration_seconds_count{goal="fat_loss"} 2`)
}

func TestInstancesDoNotShareRegistry(t *testing.T) {
	a := NewPrometheusMetrics()
	b := NewPrometheusMetrics()

	a.RecordCacheHit()
	a.RecordGeneration()

	assert.Contains(t, scrape(t, a), "planner_cache_hits_total 1")
	assert.Contains(t, scrape(t, b), "planner_cache_hits_total 0")
}

func TestHandlerExposesRuntimeMetrics(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordRateLimited()
	m.RecordCacheMiss()
	m.RecordCircuitState("catalog", "open")

	body := scrape(t, m)
	assert.Contains(t, body, "planner_rate_limited_total 1")
	assert.Contains(t, body, "planner_cache_misses_total 1")
	assert.Contains(t, body, `planner_circuit_state_changes_total{name="catalog",to="open"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

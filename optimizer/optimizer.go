// Package optimizer implements the optimize operation: catalog filtering, validation,
// policy wiring, the evolution run and result assembly.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/snow-ghost/planner/core"
	"github.com/snow-ghost/planner/evolve"
	"github.com/snow-ghost/planner/genome"
	"github.com/snow-ghost/planner/pkg/cache"
	"github.com/snow-ghost/planner/pkg/observability"
	"github.com/snow-ghost/planner/selection"
	"github.com/snow-ghost/planner/telemetry"
)

// Limits are host-side caps on run size. Zero means unlimited.
type Limits struct {
	MaxPopulation  int
	MaxGenerations int
}

// Options configures an Optimizer. Only Catalog is required.
type Options struct {
	Catalog          core.Catalog
	Cache            *cache.CacheManager
	Observability    *observability.Manager
	Telemetry        *telemetry.Telemetry
	Limits           Limits
	BatchConcurrency int
	RunTimeout       time.Duration
}

// Optimizer runs independent optimizations against a shared read-only catalog.
// It is safe for concurrent use.
type Optimizer struct {
	catalog    core.Catalog
	cache      *cache.CacheManager
	obs        *observability.Manager
	telemetry  *telemetry.Telemetry
	limits     Limits
	batchLimit int
	runTimeout time.Duration
	newID      func() string
}

// DefaultBatchConcurrency bounds parallel runs in a batch when Options leaves it unset.
const DefaultBatchConcurrency = 4

func New(opts Options) *Optimizer {
	obs := opts.Observability
	if obs == nil {
		obs = observability.NewNopManager()
	}
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.NewTelemetry(obs.GetLogger(), obs.GetMetrics())
	}
	limit := opts.BatchConcurrency
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}
	return &Optimizer{
		catalog:    opts.Catalog,
		cache:      opts.Cache,
		obs:        obs,
		telemetry:  tel,
		limits:     opts.Limits,
		batchLimit: limit,
		runTimeout: opts.RunTimeout,
		newID:      func() string { return uuid.New().String() },
	}
}

// Telemetry returns the run counters shared by every run of this optimizer.
func (o *Optimizer) Telemetry() *telemetry.Telemetry { return o.telemetry }

// Cache returns the result cache, or nil when caching is off.
func (o *Optimizer) Cache() *cache.CacheManager { return o.cache }

// Optimize evolves a plan from the exercises named by ids. Missing policy names and
// plan lengths in cfg take their defaults; numeric parameters are validated as given.
// Seeded runs are deterministic and are served from the result cache when one is set.
func (o *Optimizer) Optimize(ctx context.Context, ids []string, cfg core.RunConfig) (*core.OptimizationResult, error) {
	cfg = cfg.WithDefaults()
	runID := o.newID()
	start := time.Now()

	pool, err := o.catalog.Filter(ids)
	if err != nil {
		return nil, o.reject(ctx, runID, cfg, start, err)
	}
	if err := o.validate(cfg); err != nil {
		return nil, o.reject(ctx, runID, cfg, start, err)
	}

	ctx, span := o.obs.StartRunSpan(ctx, runID, cfg, len(pool))

	var (
		result *core.OptimizationResult
		cached bool
	)
	if o.cache != nil && cfg.Seed != 0 {
		result, cached, err = o.cache.ExecuteWithCache(ctx, cache.RunKey{Exercises: core.Candidate(pool).Names(), Config: cfg}, func() (*core.OptimizationResult, error) {
			// The shared run must not die with the first caller's request.
			return o.run(context.WithoutCancel(ctx), runID, pool, cfg)
		})
		if err == nil {
			o.obs.RecordCacheMetrics(ctx, cached, runID)
			if result.RunID != runID {
				// Shared and cached results carry the id of the run that computed them.
				own := *result
				own.RunID = runID
				result = &own
			}
		}
	} else {
		result, err = o.run(ctx, runID, pool, cfg)
	}

	o.obs.FinishRun(ctx, span, runID, cfg, result, cached, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (o *Optimizer) reject(ctx context.Context, runID string, cfg core.RunConfig, start time.Time, err error) error {
	_, span := o.obs.StartRunSpan(ctx, runID, cfg, 0)
	o.obs.FinishRun(ctx, span, runID, cfg, nil, false, time.Since(start), err)
	return err
}

func (o *Optimizer) validate(cfg core.RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if o.limits.MaxPopulation > 0 && cfg.PopulationSize > o.limits.MaxPopulation {
		return &core.InvalidConfigError{Field: "population_size", Reason: fmt.Sprintf("must be at most %d", o.limits.MaxPopulation)}
	}
	if o.limits.MaxGenerations > 0 && cfg.Generations > o.limits.MaxGenerations {
		return &core.InvalidConfigError{Field: "generations", Reason: fmt.Sprintf("must be at most %d", o.limits.MaxGenerations)}
	}
	return nil
}

func (o *Optimizer) run(ctx context.Context, runID string, pool []*core.Exercise, cfg core.RunConfig) (*core.OptimizationResult, error) {
	if o.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.runTimeout)
		defer cancel()
	}

	engine, err := NewEngine(cfg, evolve.NewRand(cfg.Seed), o.telemetry.Observer(runID))
	if err != nil {
		return nil, err
	}
	out, err := engine.Run(ctx, pool, cfg)
	if err != nil {
		return nil, err
	}
	return assemble(runID, cfg, out), nil
}

// NewEngine wires the policies named in cfg into an engine.
func NewEngine(cfg core.RunConfig, rng *rand.Rand, observer evolve.Observer) (*evolve.Engine, error) {
	g, err := genome.New(cfg.Genome, cfg.MinLength, cfg.MaxLength)
	if err != nil {
		return nil, err
	}
	sel, err := selection.New(cfg.Selection)
	if err != nil {
		return nil, err
	}
	fitness := core.NewGoalFitness(cfg.CalorieModel)
	if cfg.DurationPenalty {
		fitness.WithDurationPenalty(cfg.BlockMinutes)
	}
	return evolve.NewEngine(evolve.Options{
		Genome:   g,
		Fitness:  fitness,
		Selector: sel,
		Rand:     rng,
		Observer: observer,
	}), nil
}

func assemble(runID string, cfg core.RunConfig, out *evolve.Outcome) *core.OptimizationResult {
	plan := make([]core.PlanEntry, len(out.Best.Candidate))
	for i, ex := range out.Best.Candidate {
		plan[i] = core.PlanEntry{Name: ex.Name, CaloriesBurned: core.CaloriesBurned(ex, cfg.Minutes)}
	}

	best := make([]float64, len(out.Metrics))
	avg := make([]float64, len(out.Metrics))
	diversity := make([]int, len(out.Metrics))
	for i, m := range out.Metrics {
		best[i] = m.Best
		avg[i] = m.Average
		diversity[i] = m.Diversity
	}
	progression := make([]float64, len(best))
	copy(progression, best)

	return &core.OptimizationResult{
		RunID:                  runID,
		BestPlan:               plan,
		BestFitness:            out.Best.Score,
		FitnessOverGenerations: best,
		AverageFitness:         avg,
		Diversity:              diversity,
		BestFitnessProgression: progression,
		MutationRate:           cfg.MutationRate,
		CrossoverRate:          cfg.CrossoverRate,
		ElitismRate:            cfg.ElitismRate,
		Generations:            cfg.Generations,
	}
}

// Request is one entry of a batch.
type Request struct {
	Exercises []string       `json:"selected_exercises"`
	Config    core.RunConfig `json:"config"`
}

// BatchResult holds the outcome of one batch entry. Exactly one of Result and Error is set.
type BatchResult struct {
	Index  int                      `json:"index"`
	Result *core.OptimizationResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
	Code   string                   `json:"code,omitempty"`
}

// ErrBatchTooLarge is returned when a batch exceeds MaxBatchSize.
var ErrBatchTooLarge = errors.New("batch too large")

// MaxBatchSize caps the number of requests in one batch.
const MaxBatchSize = 64

// OptimizeBatch runs independent requests in parallel, each with its own random source.
// A failing entry is reported in its BatchResult and does not stop the others; only
// cancellation of ctx aborts the batch.
func (o *Optimizer) OptimizeBatch(ctx context.Context, reqs []Request) ([]BatchResult, error) {
	if len(reqs) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d requests, limit %d", ErrBatchTooLarge, len(reqs), MaxBatchSize)
	}

	ctx, span := o.obs.GetTracer().StartBatchSpan(ctx, len(reqs))
	defer span.End()

	results := make([]BatchResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.batchLimit)

	for i, req := range reqs {
		g.Go(func() error {
			res, err := o.Optimize(gctx, req.Exercises, req.Config)
			results[i] = BatchResult{Index: i, Result: res}
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					if ctxErr := ctx.Err(); ctxErr != nil {
						return ctxErr
					}
				}
				results[i].Error = err.Error()
				results[i].Code = ErrorCode(err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ErrorCode maps an optimize error to the code reported to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyPool):
		return "EMPTY_POOL"
	case errors.Is(err, core.ErrInvalidConfig):
		return "INVALID_CONFIG"
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	case errors.Is(err, context.Canceled):
		return "CANCELLED"
	default:
		return "INTERNAL_ERROR"
	}
}

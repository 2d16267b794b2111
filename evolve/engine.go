// Package evolve runs the generational loop: evaluate, rank, select, breed, replace.
package evolve

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/snow-ghost/planner/core"
	"github.com/snow-ghost/planner/population"
)

// State is the phase the engine is in.
type State int

const (
	StateIdle State = iota
	StateInitialized
	StateEvaluating
	StateSelecting
	StateBreeding
	StateReplaced
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateEvaluating:
		return "evaluating"
	case StateSelecting:
		return "selecting"
	case StateBreeding:
		return "breeding"
	case StateReplaced:
		return "replaced"
	case StateTerminated:
		return "terminated"
	default:
		return "idle"
	}
}

// Observer receives progress callbacks. The population passed to GenerationEvaluated is
// ranked and must not be retained or modified.
type Observer interface {
	RunStarted(ctx context.Context, cfg core.RunConfig, poolSize int)
	GenerationEvaluated(ctx context.Context, pop *population.Population, m core.GenerationMetrics)
	RunFinished(ctx context.Context, out *Outcome, err error)
}

// Options wires the policies of one engine.
type Options struct {
	Genome   core.GenomePolicy
	Fitness  core.FitnessPolicy
	Selector core.Selector
	// Rand is the only source of randomness. Nil means NewRand(0).
	Rand     *rand.Rand
	Observer Observer
}

// Outcome is the result of a completed run.
type Outcome struct {
	Best    core.Scored
	Metrics []core.GenerationMetrics
	// Final is the terminal population, evaluated and ranked.
	Final *population.Population
}

// Engine runs one optimization at a time. It is not safe for concurrent use; give each
// concurrent run its own engine and random source.
type Engine struct {
	opts  Options
	rng   *rand.Rand
	state State
}

var errMissingPolicy = errors.New("evolve: genome, fitness and selector are required")

func NewEngine(opts Options) *Engine {
	rng := opts.Rand
	if rng == nil {
		rng = NewRand(0)
	}
	return &Engine{opts: opts, rng: rng}
}

// NewRand returns a PCG-backed generator. Seed 0 draws a random seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// State returns the phase reached by the last Run.
func (e *Engine) State() State { return e.state }

// Run evolves cfg.Generations generations over pool. Invalid input is rejected before
// any population is built. Cancellation is checked between generations; a cancelled run
// returns the context error and no outcome.
func (e *Engine) Run(ctx context.Context, pool []*core.Exercise, cfg core.RunConfig) (*Outcome, error) {
	if e.opts.Genome == nil || e.opts.Fitness == nil || e.opts.Selector == nil {
		return nil, errMissingPolicy
	}
	if len(pool) == 0 {
		return nil, core.ErrEmptyPool
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e.notifyStart(ctx, cfg, len(pool))
	out, err := e.run(ctx, pool, cfg)
	e.notifyFinish(ctx, out, err)
	return out, err
}

func (e *Engine) run(ctx context.Context, pool []*core.Exercise, cfg core.RunConfig) (*Outcome, error) {
	initial := make([]core.Candidate, cfg.PopulationSize)
	for i := range initial {
		initial[i] = e.opts.Genome.CreateRandom(e.rng, pool)
	}
	pop := population.New(initial)
	e.state = StateInitialized

	recorder := NewRecorder(cfg.Generations)
	eliteCount := population.EliteCount(cfg.ElitismRate, cfg.PopulationSize)

	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.state = StateEvaluating
		pop.Evaluate(e.opts.Fitness, cfg.Goal, cfg.Minutes)
		pop.Rank()
		m := pop.Metrics(gen + 1)
		recorder.Record(m)
		if e.opts.Observer != nil {
			e.opts.Observer.GenerationEvaluated(ctx, pop, m)
		}

		e.state = StateSelecting
		e.opts.Selector.Prepare(pop.Members())

		e.state = StateBreeding
		next := e.breed(pop, pool, cfg, eliteCount)

		pop = population.New(next)
		e.state = StateReplaced
	}

	pop.Evaluate(e.opts.Fitness, cfg.Goal, cfg.Minutes)
	pop.Rank()
	e.state = StateTerminated

	return &Outcome{
		Best:    pop.Members()[0],
		Metrics: recorder.Snapshot(),
		Final:   pop,
	}, nil
}

// breed builds exactly cfg.PopulationSize candidates: elites first, then offspring.
func (e *Engine) breed(ranked *population.Population, pool []*core.Exercise, cfg core.RunConfig, eliteCount int) []core.Candidate {
	next := make([]core.Candidate, 0, cfg.PopulationSize)
	next = append(next, ranked.Elite(eliteCount)...)

	for len(next) < cfg.PopulationSize {
		a := ranked.Candidate(e.opts.Selector.Pick(e.rng))
		b := ranked.Candidate(e.opts.Selector.Pick(e.rng))

		var child core.Candidate
		if e.rng.Float64() < cfg.CrossoverRate {
			child = e.opts.Genome.Crossover(e.rng, a, b)
		} else {
			child = a.Clone()
		}
		if e.rng.Float64() < cfg.MutationRate {
			child = e.opts.Genome.Mutate(e.rng, child, pool)
		}
		next = append(next, child)
	}
	return next
}

func (e *Engine) notifyStart(ctx context.Context, cfg core.RunConfig, poolSize int) {
	if e.opts.Observer != nil {
		e.opts.Observer.RunStarted(ctx, cfg, poolSize)
	}
}

func (e *Engine) notifyFinish(ctx context.Context, out *Outcome, err error) {
	if e.opts.Observer != nil {
		e.opts.Observer.RunFinished(ctx, out, err)
	}
}

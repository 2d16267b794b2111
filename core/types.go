package core

import (
	"sort"
	"strings"
)

// Category groups exercises by training effect.
type Category string

const (
	CategoryStrength Category = "strength"
	CategoryCardio   Category = "cardio"
	CategoryCore     Category = "core"
)

// Exercise is a catalog record. Records are shared by pointer and never mutated after load.
type Exercise struct {
	Name              string   `json:"name" yaml:"name"`
	Category          Category `json:"type" yaml:"type"`
	CaloriesPerMinute float64  `json:"calories_per_minute" yaml:"calories_per_minute"`
	CaloriesFixed     float64  `json:"calories_fixed,omitempty" yaml:"calories_fixed,omitempty"`
}

// Candidate is one workout plan: an ordered sequence of exercises.
type Candidate []*Exercise

// Clone returns a candidate with its own backing array.
func (c Candidate) Clone() Candidate {
	out := make(Candidate, len(c))
	copy(out, c)
	return out
}

// Names returns exercise names in plan order.
func (c Candidate) Names() []string {
	names := make([]string, len(c))
	for i, ex := range c {
		names[i] = ex.Name
	}
	return names
}

// Key identifies the candidate's exercise multiset. Order is ignored, duplicates are kept.
func (c Candidate) Key() string {
	names := c.Names()
	sort.Strings(names)
	return strings.Join(names, "\x1f")
}

// Equal reports whether both candidates hold the same exercises in the same order.
func (c Candidate) Equal(other Candidate) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Goal names the quantity a run optimizes for.
type Goal string

const (
	GoalFatLoss    Goal = "fat_loss"
	GoalMuscleGain Goal = "muscle_gain"
	GoalEndurance  Goal = "endurance"
)

// Known reports whether the goal has a scoring rule.
func (g Goal) Known() bool {
	switch g {
	case GoalFatLoss, GoalMuscleGain, GoalEndurance:
		return true
	}
	return false
}

// CalorieModel selects how fat_loss scores are computed for a whole run.
type CalorieModel string

const (
	CalorieModelRate  CalorieModel = "rate"
	CalorieModelFixed CalorieModel = "fixed"
)

// RunConfig holds the parameters of one optimization run. It is not modified during a run.
type RunConfig struct {
	Goal            Goal         `json:"goal" yaml:"goal"`
	Minutes         float64      `json:"minutes" yaml:"minutes"`
	PopulationSize  int          `json:"population_size" yaml:"population_size"`
	Generations     int          `json:"generations" yaml:"generations"`
	MutationRate    float64      `json:"mutation_rate" yaml:"mutation_rate"`
	CrossoverRate   float64      `json:"crossover_rate" yaml:"crossover_rate"`
	ElitismRate     float64      `json:"elitism_rate" yaml:"elitism_rate"`
	Selection       string       `json:"selection,omitempty" yaml:"selection,omitempty"`
	Genome          string       `json:"genome,omitempty" yaml:"genome,omitempty"`
	CalorieModel    CalorieModel `json:"calorie_model,omitempty" yaml:"calorie_model,omitempty"`
	DurationPenalty bool         `json:"duration_penalty,omitempty" yaml:"duration_penalty,omitempty"`
	// BlockMinutes is the planned length of one exercise when DurationPenalty is on.
	// Zero splits the session evenly, so plans never overrun.
	BlockMinutes    float64      `json:"block_minutes,omitempty" yaml:"block_minutes,omitempty"`
	MinLength       int          `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength       int          `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Seed            uint64       `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Default run parameters, matching what the web client has always been served.
const (
	DefaultMinutes        = 10
	DefaultPopulationSize = 10
	DefaultGenerations    = 10
	DefaultMutationRate   = 0.1
	DefaultCrossoverRate  = 0.7
	DefaultMinLength      = 3
	DefaultMaxLength      = 5
	DefaultSelection      = "truncation"
	DefaultGenome         = "sample"
)

// DefaultRunConfig returns the configuration used when a request leaves fields out.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Goal:           GoalFatLoss,
		Minutes:        DefaultMinutes,
		PopulationSize: DefaultPopulationSize,
		Generations:    DefaultGenerations,
		MutationRate:   DefaultMutationRate,
		CrossoverRate:  DefaultCrossoverRate,
		Selection:      DefaultSelection,
		Genome:         DefaultGenome,
		CalorieModel:   CalorieModelRate,
		MinLength:      DefaultMinLength,
		MaxLength:      DefaultMaxLength,
	}
}

// WithDefaults fills zero-valued policy names and plan lengths.
// Numeric run parameters are left alone so that Validate can reject them.
func (c RunConfig) WithDefaults() RunConfig {
	if c.Selection == "" {
		c.Selection = DefaultSelection
	}
	if c.Genome == "" {
		c.Genome = DefaultGenome
	}
	if c.CalorieModel == "" {
		c.CalorieModel = CalorieModelRate
	}
	if c.MinLength == 0 {
		c.MinLength = DefaultMinLength
	}
	if c.MaxLength == 0 {
		c.MaxLength = DefaultMaxLength
	}
	return c
}

// GenerationMetrics is the snapshot recorded after a generation is evaluated.
type GenerationMetrics struct {
	Generation int     `json:"generation"`
	Best       float64 `json:"best"`
	Average    float64 `json:"average"`
	Diversity  int     `json:"diversity"`
}

// PlanEntry is one exercise of the returned plan.
type PlanEntry struct {
	Name           string  `json:"name"`
	CaloriesBurned float64 `json:"calories_burned"`
}

// OptimizationResult is what a run hands back to the host.
type OptimizationResult struct {
	RunID                  string      `json:"run_id"`
	BestPlan               []PlanEntry `json:"best_plan"`
	BestFitness            float64     `json:"best_fitness"`
	FitnessOverGenerations []float64   `json:"fitness_over_generations"`
	AverageFitness         []float64   `json:"average_fitness"`
	Diversity              []int       `json:"diversity"`
	BestFitnessProgression []float64   `json:"best_fitness_progression"`
	MutationRate           float64     `json:"mutation_rate"`
	CrossoverRate          float64     `json:"crossover_rate"`
	ElitismRate            float64     `json:"elitism_rate"`
	Generations            int         `json:"generations"`
}

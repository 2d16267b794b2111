package core

import "math/rand/v2"

type Catalog interface {
	// Filter returns the known subset of ids, or ErrEmptyPool when none are known.
	Filter(ids []string) ([]*Exercise, error)
	List() []*Exercise
	Get(name string) (*Exercise, bool)
}

// GenomePolicy creates and varies candidates. Implementations never return a slice that
// shares its backing array with an argument.
type GenomePolicy interface {
	Name() string
	CreateRandom(rng *rand.Rand, pool []*Exercise) Candidate
	Crossover(rng *rand.Rand, a, b Candidate) Candidate
	Mutate(rng *rand.Rand, c Candidate, pool []*Exercise) Candidate
}

type FitnessPolicy interface {
	Evaluate(c Candidate, goal Goal, minutes float64) float64
}

// Scored pairs a candidate with its fitness.
type Scored struct {
	Candidate Candidate
	Score     float64
}

// Selector picks breeding parents from a ranked population.
type Selector interface {
	Name() string
	// Prepare is called once per generation with the population ranked best first.
	Prepare(ranked []Scored)
	// Pick returns the index into ranked of one parent.
	Pick(rng *rand.Rand) int
}

// Package selection provides the parent selection strategies of the evolution loop.
package selection

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/snow-ghost/planner/core"
)

// Truncation breeds from the top half of the ranked population, drawing parents
// uniformly with replacement.
type Truncation struct {
	size int
}

func NewTruncation() *Truncation { return &Truncation{} }

func (*Truncation) Name() string { return "truncation" }

func (t *Truncation) Prepare(ranked []core.Scored) {
	t.size = max(len(ranked)/2, 1)
}

// Pick returns an index in [0, size) of the ranked population.
func (t *Truncation) Pick(rng *rand.Rand) int {
	return rng.IntN(t.size)
}

// Proportionate is roulette wheel selection over the whole population. When the total
// fitness is zero every candidate is equally likely.
type Proportionate struct {
	cumulative []float64
	total      float64
}

func NewProportionate() *Proportionate { return &Proportionate{} }

func (*Proportionate) Name() string { return "proportionate" }

func (p *Proportionate) Prepare(ranked []core.Scored) {
	p.cumulative = p.cumulative[:0]
	p.total = 0
	for _, s := range ranked {
		// Negative scores get no share of the wheel.
		if s.Score > 0 {
			p.total += s.Score
		}
		p.cumulative = append(p.cumulative, p.total)
	}
}

// Uniform reports whether the last Prepare fell back to uniform selection.
func (p *Proportionate) Uniform() bool {
	return p.total <= 0
}

func (p *Proportionate) Pick(rng *rand.Rand) int {
	n := len(p.cumulative)
	if p.Uniform() {
		return rng.IntN(n)
	}
	spin := rng.Float64() * p.total
	// First slot whose cumulative share exceeds the spin; zero-width slots are skipped.
	i := sort.Search(n, func(i int) bool { return p.cumulative[i] > spin })
	if i >= n {
		i = n - 1
	}
	return i
}

// Tournament draws Size candidates uniformly and keeps the fittest. Ties favour the
// better ranked one.
type Tournament struct {
	Size   int
	ranked []core.Scored
}

func NewTournament(size int) *Tournament {
	if size <= 0 {
		size = 3
	}
	return &Tournament{Size: size}
}

func (*Tournament) Name() string { return "tournament" }

func (t *Tournament) Prepare(ranked []core.Scored) {
	t.ranked = ranked
}

func (t *Tournament) Pick(rng *rand.Rand) int {
	n := len(t.ranked)
	best := rng.IntN(n)
	for i := 1; i < min(t.Size, n); i++ {
		c := rng.IntN(n)
		if t.ranked[c].Score > t.ranked[best].Score || (t.ranked[c].Score == t.ranked[best].Score && c < best) {
			best = c
		}
	}
	return best
}

// New returns a fresh selector for name. Selectors hold per-run state and must not be
// shared between concurrent runs.
func New(name string) (core.Selector, error) {
	switch name {
	case "", "truncation":
		return NewTruncation(), nil
	case "proportionate", "roulette":
		return NewProportionate(), nil
	case "tournament":
		return NewTournament(3), nil
	default:
		return nil, &core.InvalidConfigError{Field: "selection", Reason: fmt.Sprintf("unknown strategy %q", name)}
	}
}

// Available returns the selectable strategy names.
func Available() []string {
	return []string{"truncation", "proportionate", "tournament"}
}

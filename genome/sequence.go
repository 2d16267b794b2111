// Package genome defines how workout plans are represented, created and varied.
package genome

import (
	"fmt"
	"math/rand/v2"

	"github.com/snow-ghost/planner/core"
)

// SequencePolicy represents a plan as an ordered exercise sequence of bounded length.
// When Distinct is set a plan never repeats an exercise at creation time, and its length
// is also bounded by the pool size. Crossover and mutation may still introduce repeats.
type SequencePolicy struct {
	name      string
	MinLength int
	MaxLength int
	Distinct  bool
}

// NewSamplePolicy samples plans without replacement.
func NewSamplePolicy(minLen, maxLen int) *SequencePolicy {
	return &SequencePolicy{name: "sample", MinLength: minLen, MaxLength: maxLen, Distinct: true}
}

// NewRepeatPolicy samples plans with replacement.
func NewRepeatPolicy(minLen, maxLen int) *SequencePolicy {
	return &SequencePolicy{name: "repeat", MinLength: minLen, MaxLength: maxLen}
}

// New returns the named policy.
func New(name string, minLen, maxLen int) (*SequencePolicy, error) {
	switch name {
	case "", "sample":
		return NewSamplePolicy(minLen, maxLen), nil
	case "repeat":
		return NewRepeatPolicy(minLen, maxLen), nil
	default:
		return nil, &core.InvalidConfigError{Field: "genome", Reason: fmt.Sprintf("unknown policy %q", name)}
	}
}

// Available lists policy names.
func Available() []string {
	return []string{"sample", "repeat"}
}

func (p *SequencePolicy) Name() string { return p.name }

// LengthBounds returns the inclusive length range used for a pool of the given size.
func (p *SequencePolicy) LengthBounds(poolSize int) (int, int) {
	lo, hi := p.MinLength, p.MaxLength
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	if p.Distinct && hi > poolSize {
		hi = poolSize
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

func (p *SequencePolicy) CreateRandom(rng *rand.Rand, pool []*core.Exercise) core.Candidate {
	if len(pool) == 0 {
		return core.Candidate{}
	}
	lo, hi := p.LengthBounds(len(pool))
	n := lo + rng.IntN(hi-lo+1)

	c := make(core.Candidate, n)
	if p.Distinct {
		idx := rng.Perm(len(pool))
		for i := 0; i < n; i++ {
			c[i] = pool[idx[i]]
		}
		return c
	}
	for i := range c {
		c[i] = pool[rng.IntN(len(pool))]
	}
	return c
}

// Crossover is single-point: a[:split] followed by b[split:], split in [1, min(len)-1].
// With no valid split point the child is a copy of a.
func (p *SequencePolicy) Crossover(rng *rand.Rand, a, b core.Candidate) core.Candidate {
	shortest := min(len(a), len(b))
	if shortest <= 1 {
		return a.Clone()
	}
	split := 1 + rng.IntN(shortest-1)

	child := make(core.Candidate, 0, len(b))
	child = append(child, a[:split]...)
	child = append(child, b[split:]...)
	return child
}

// Mutate replaces one random position with a random pool exercise, on a copy.
func (p *SequencePolicy) Mutate(rng *rand.Rand, c core.Candidate, pool []*core.Exercise) core.Candidate {
	out := c.Clone()
	if len(out) == 0 || len(pool) == 0 {
		return out
	}
	out[rng.IntN(len(out))] = pool[rng.IntN(len(pool))]
	return out
}

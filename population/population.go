// Package population holds a generation of candidate plans and their scores.
package population

import (
	"math"
	"sort"

	"github.com/snow-ghost/planner/core"
)

// Population is an ordered set of scored candidates. Each slot owns its candidate; no two
// slots share a backing array.
type Population struct {
	members []core.Scored
}

// New wraps candidates. Scores start at zero until Evaluate is called.
func New(candidates []core.Candidate) *Population {
	members := make([]core.Scored, len(candidates))
	for i, c := range candidates {
		members[i] = core.Scored{Candidate: c}
	}
	return &Population{members: members}
}

func (p *Population) Len() int { return len(p.members) }

// Members returns the scored slots in current order. Callers must not modify candidates.
func (p *Population) Members() []core.Scored { return p.members }

// Candidate returns the candidate in slot i.
func (p *Population) Candidate(i int) core.Candidate { return p.members[i].Candidate }

// Evaluate scores every candidate.
func (p *Population) Evaluate(fitness core.FitnessPolicy, goal core.Goal, minutes float64) {
	for i := range p.members {
		p.members[i].Score = fitness.Evaluate(p.members[i].Candidate, goal, minutes)
	}
}

// Rank orders members by score, best first. Equal scores keep their insertion order.
func (p *Population) Rank() {
	sort.SliceStable(p.members, func(i, j int) bool {
		return p.members[i].Score > p.members[j].Score
	})
}

// Best returns the highest scored member; the earliest one wins ties.
func (p *Population) Best() core.Scored {
	if len(p.members) == 0 {
		return core.Scored{}
	}
	best := p.members[0]
	for _, m := range p.members[1:] {
		if m.Score > best.Score {
			best = m
		}
	}
	return best
}

func (p *Population) Average() float64 {
	if len(p.members) == 0 {
		return 0
	}
	var total float64
	for _, m := range p.members {
		total += m.Score
	}
	return total / float64(len(p.members))
}

// Diversity counts structurally distinct candidates (see core.Candidate.Key).
func (p *Population) Diversity() int {
	keys := make(map[string]struct{}, len(p.members))
	for _, m := range p.members {
		keys[m.Candidate.Key()] = struct{}{}
	}
	return len(keys)
}

// Metrics summarizes the population for generation gen.
func (p *Population) Metrics(gen int) core.GenerationMetrics {
	return core.GenerationMetrics{
		Generation: gen,
		Best:       p.Best().Score,
		Average:    p.Average(),
		Diversity:  p.Diversity(),
	}
}

// Elite returns copies of the first n members. Call Rank first.
func (p *Population) Elite(n int) []core.Candidate {
	n = min(max(n, 0), len(p.members))
	out := make([]core.Candidate, n)
	for i := 0; i < n; i++ {
		out[i] = p.members[i].Candidate.Clone()
	}
	return out
}

// EliteCount is ceil(rate * size), capped at size.
func EliteCount(rate float64, size int) int {
	if rate <= 0 || size <= 0 {
		return 0
	}
	// The epsilon keeps products such as 0.3*10 from rounding up past the exact value.
	n := int(math.Ceil(rate*float64(size) - 1e-9))
	return min(n, size)
}

package evolve

import "github.com/snow-ghost/planner/core"

// Recorder accumulates one GenerationMetrics per generation. Entries are never changed
// once appended.
type Recorder struct {
	entries []core.GenerationMetrics
}

func NewRecorder(capacity int) *Recorder {
	return &Recorder{entries: make([]core.GenerationMetrics, 0, capacity)}
}

func (r *Recorder) Record(m core.GenerationMetrics) {
	r.entries = append(r.entries, m)
}

func (r *Recorder) Len() int { return len(r.entries) }

// Snapshot returns a copy of every recorded entry.
func (r *Recorder) Snapshot() []core.GenerationMetrics {
	out := make([]core.GenerationMetrics, len(r.entries))
	copy(out, r.entries)
	return out
}

// Best is the best-fitness series.
func (r *Recorder) Best() []float64 {
	out := make([]float64, len(r.entries))
	for i, m := range r.entries {
		out[i] = m.Best
	}
	return out
}

// Average is the mean-fitness series.
func (r *Recorder) Average() []float64 {
	out := make([]float64, len(r.entries))
	for i, m := range r.entries {
		out[i] = m.Average
	}
	return out
}

// Diversity is the distinct-candidate series.
func (r *Recorder) Diversity() []int {
	out := make([]int, len(r.entries))
	for i, m := range r.entries {
		out[i] = m.Diversity
	}
	return out
}

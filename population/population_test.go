package population

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/planner/catalog"
	"github.com/snow-ghost/planner/core"
)

func TestRankIsStable(t *testing.T) {
	ex := catalog.Default().List()
	a := core.Candidate{ex[0]}
	b := core.Candidate{ex[1]}
	c := core.Candidate{ex[2]}
	p := New([]core.Candidate{a, b, c})
	p.members[0].Score = 1
	p.members[1].Score = 5
	p.members[2].Score = 1

	p.Rank()

	require.True(t, p.Candidate(0).Equal(b))
	require.True(t, p.Candidate(1).Equal(a), "tie keeps insertion order")
	require.True(t, p.Candidate(2).Equal(c))
}

func TestEvaluateAndMetrics(t *testing.T) {
	cat := catalog.Default()
	push, _ := cat.Get("Push-ups")
	run, _ := cat.Get("Running")

	p := New([]core.Candidate{{push, run}, {run, push}, {run, run}})
	p.Evaluate(core.NewGoalFitness(core.CalorieModelRate), core.GoalFatLoss, 10)

	m := p.Metrics(3)
	assert.Equal(t, 3, m.Generation)
	assert.Equal(t, 200.0, m.Best)
	assert.InDelta(t, (150.0+150+200)/3, m.Average, 1e-9)
	assert.Equal(t, 2, m.Diversity)
	assert.GreaterOrEqual(t, m.Best, m.Average)
}

func TestBestPrefersEarliestOnTie(t *testing.T) {
	ex := catalog.Default().List()
	p := New([]core.Candidate{{ex[0]}, {ex[1]}})
	best := p.Best()
	assert.True(t, best.Candidate.Equal(core.Candidate{ex[0]}))
}

func TestEliteClones(t *testing.T) {
	ex := catalog.Default().List()
	p := New([]core.Candidate{{ex[0], ex[1]}, {ex[2], ex[3]}})

	elite := p.Elite(5)
	require.Len(t, elite, 2)
	elite[0][0] = ex[5]
	assert.Equal(t, ex[0], p.Candidate(0)[0])
}

func TestEliteCount(t *testing.T) {
	assert.Equal(t, 0, EliteCount(0, 10))
	assert.Equal(t, 2, EliteCount(0.2, 10))
	assert.Equal(t, 1, EliteCount(0.01, 10))
	assert.Equal(t, 3, EliteCount(0.25, 10))
	assert.Equal(t, 4, EliteCount(1, 4))
}

func TestEmptyPopulation(t *testing.T) {
	p := New(nil)
	assert.Equal(t, 0.0, p.Average())
	assert.Equal(t, 0, p.Diversity())
	assert.Equal(t, core.Scored{}, p.Best())
}

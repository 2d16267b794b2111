package genome

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/planner/catalog"
	"github.com/snow-ghost/planner/core"
)

func testPool(t *testing.T, names ...string) []*core.Exercise {
	t.Helper()
	pool, err := catalog.Default().Filter(names)
	require.NoError(t, err)
	return pool
}

func TestCreateRandomDistinctClampsToPool(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	pool := testPool(t, "Push-ups", "Running")
	p := NewSamplePolicy(3, 5)

	for i := 0; i < 50; i++ {
		c := p.CreateRandom(rng, pool)
		require.Len(t, c, 2)
		assert.NotEqual(t, c[0], c[1])
	}
}

func TestCreateRandomDistinctLengths(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	pool := catalog.Default().List()
	p := NewSamplePolicy(3, 5)

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		c := p.CreateRandom(rng, pool)
		require.GreaterOrEqual(t, len(c), 3)
		require.LessOrEqual(t, len(c), 5)
		seen[len(c)] = true

		names := map[string]bool{}
		for _, ex := range c {
			require.False(t, names[ex.Name], "duplicate exercise in distinct plan")
			names[ex.Name] = true
		}
	}
	assert.Len(t, seen, 3)
}

func TestCreateRandomRepeatIgnoresPoolSize(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	pool := testPool(t, "Running")
	p := NewRepeatPolicy(2, 5)

	for i := 0; i < 50; i++ {
		c := p.CreateRandom(rng, pool)
		require.GreaterOrEqual(t, len(c), 2)
		require.LessOrEqual(t, len(c), 5)
		for _, ex := range c {
			require.Equal(t, "Running", ex.Name)
		}
	}
}

func TestCrossoverPrefixSuffix(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	pool := catalog.Default().List()
	a := core.Candidate{pool[0], pool[1], pool[2], pool[3]}
	b := core.Candidate{pool[4], pool[5], pool[4]}
	p := NewSamplePolicy(3, 5)

	for i := 0; i < 100; i++ {
		child := p.Crossover(rng, a, b)
		require.Len(t, child, len(b))

		split := 0
		for split < len(child) && child[split] == a[split] {
			split++
		}
		require.GreaterOrEqual(t, split, 1, "prefix of a must be non-empty")
		require.Less(t, split, len(b), "suffix of b must be non-empty")
		assert.True(t, child[split:].Equal(b[split:]))
	}
}

func TestCrossoverDegenerateReturnsCopy(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	pool := catalog.Default().List()
	a := core.Candidate{pool[0]}
	b := core.Candidate{pool[1], pool[2]}
	p := NewSamplePolicy(1, 5)

	child := p.Crossover(rng, a, b)
	require.True(t, child.Equal(a))

	child[0] = pool[5]
	assert.Equal(t, pool[0], a[0], "child must not alias the parent")
}

func TestMutateChangesAtMostOnePositionOnCopy(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	pool := catalog.Default().List()
	parent := core.Candidate{pool[0], pool[1], pool[2]}
	before := parent.Clone()
	p := NewSamplePolicy(3, 5)

	for i := 0; i < 100; i++ {
		child := p.Mutate(rng, parent, pool)
		require.Len(t, child, len(parent))
		diff := 0
		for j := range child {
			if child[j] != parent[j] {
				diff++
			}
		}
		require.LessOrEqual(t, diff, 1)
		require.True(t, parent.Equal(before), "parent must be untouched")
	}
}

func TestNewUnknownPolicy(t *testing.T) {
	_, err := New("tree", 1, 2)
	require.ErrorIs(t, err, core.ErrInvalidConfig)

	p, err := New("", 3, 5)
	require.NoError(t, err)
	assert.Equal(t, "sample", p.Name())
}

package catalog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snow-ghost/planner/core"
)

var _ core.Catalog = (*Catalog)(nil)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, 6, c.Len())

	run, ok := c.Get("Running")
	require.True(t, ok)
	assert.Equal(t, core.CategoryCardio, run.Category)
	assert.Equal(t, 10.0, run.CaloriesPerMinute)

	_, ok = c.Get("Yoga")
	assert.False(t, ok)
}

func TestFilterKeepsCatalogOrder(t *testing.T) {
	c := Default()

	pool, err := c.Filter([]string{"Plank", "Yoga", "Push-ups", "Plank", " Running "})
	require.NoError(t, err)

	assert.Equal(t, []string{"Push-ups", "Running", "Plank"}, core.Candidate(pool).Names())
}

func TestFilterSharesRecords(t *testing.T) {
	c := Default()
	pool, err := c.Filter([]string{"Squats"})
	require.NoError(t, err)

	squats, _ := c.Get("Squats")
	assert.Same(t, squats, pool[0])
}

func TestFilterEmptyPool(t *testing.T) {
	c := Default()

	_, err := c.Filter(nil)
	assert.ErrorIs(t, err, core.ErrEmptyPool)

	_, err = c.Filter([]string{"Yoga"})
	assert.ErrorIs(t, err, core.ErrEmptyPool)
}

func TestNewRejectsBadRecords(t *testing.T) {
	_, err := New([]core.Exercise{{Name: ""}})
	assert.Error(t, err)

	_, err = New([]core.Exercise{{Name: "A"}, {Name: "A"}})
	assert.Error(t, err)

	_, err = New([]core.Exercise{{Name: "A", CaloriesPerMinute: -1}})
	assert.Error(t, err)
}

func TestListIsCopy(t *testing.T) {
	c := Default()
	list := c.List()
	list[0] = nil

	assert.NotNil(t, c.List()[0])
}

func TestConcurrentReads(t *testing.T) {
	c := Default()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = c.Filter([]string{"Running", "Plank"})
				_, _ = c.Get("Squats")
				_ = c.List()
			}
		}()
	}
	wg.Wait()
}

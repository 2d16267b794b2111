package catalog

import (
	"fmt"
	"strings"

	"github.com/snow-ghost/planner/core"
)

// Catalog is the read-only set of exercises known to the service. It is never mutated
// after New returns, so concurrent readers need no locking.
type Catalog struct {
	exercises []*core.Exercise
	byName    map[string]*core.Exercise
}

// New builds a catalog from records. Names must be unique and non-empty.
func New(records []core.Exercise) (*Catalog, error) {
	c := &Catalog{
		exercises: make([]*core.Exercise, 0, len(records)),
		byName:    make(map[string]*core.Exercise, len(records)),
	}
	for i := range records {
		rec := records[i]
		rec.Name = strings.TrimSpace(rec.Name)
		if rec.Name == "" {
			return nil, fmt.Errorf("exercise %d has no name", i)
		}
		if _, dup := c.byName[rec.Name]; dup {
			return nil, fmt.Errorf("duplicate exercise %q", rec.Name)
		}
		if rec.CaloriesPerMinute < 0 || rec.CaloriesFixed < 0 {
			return nil, fmt.Errorf("exercise %q has negative calorie cost", rec.Name)
		}
		ex := &rec
		c.exercises = append(c.exercises, ex)
		c.byName[rec.Name] = ex
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(DefaultExercises())
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultExercises lists the built-in records. Fixed costs assume a ten minute block.
func DefaultExercises() []core.Exercise {
	return []core.Exercise{
		{Name: "Push-ups", Category: core.CategoryStrength, CaloriesPerMinute: 5, CaloriesFixed: 50},
		{Name: "Squats", Category: core.CategoryStrength, CaloriesPerMinute: 6, CaloriesFixed: 60},
		{Name: "Running", Category: core.CategoryCardio, CaloriesPerMinute: 10, CaloriesFixed: 100},
		{Name: "Cycling", Category: core.CategoryCardio, CaloriesPerMinute: 8, CaloriesFixed: 80},
		{Name: "Plank", Category: core.CategoryCore, CaloriesPerMinute: 4, CaloriesFixed: 40},
		{Name: "Jumping Jacks", Category: core.CategoryCardio, CaloriesPerMinute: 7, CaloriesFixed: 70},
	}
}

// Filter returns the known exercises among ids, in catalog order and without duplicates.
// Unknown ids are dropped.
func (c *Catalog) Filter(ids []string) ([]*core.Exercise, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[strings.TrimSpace(id)] = struct{}{}
	}

	pool := make([]*core.Exercise, 0, len(want))
	for _, ex := range c.exercises {
		if _, ok := want[ex.Name]; ok {
			pool = append(pool, ex)
		}
	}
	if len(pool) == 0 {
		return nil, core.ErrEmptyPool
	}
	return pool, nil
}

// List returns all exercises in catalog order. The slice is a copy.
func (c *Catalog) List() []*core.Exercise {
	out := make([]*core.Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

func (c *Catalog) Get(name string) (*core.Exercise, bool) {
	ex, ok := c.byName[name]
	return ex, ok
}

// Len returns the number of exercises.
func (c *Catalog) Len() int {
	return len(c.exercises)
}

// Records returns value copies of every exercise, for serialization.
func (c *Catalog) Records() []core.Exercise {
	out := make([]core.Exercise, len(c.exercises))
	for i, ex := range c.exercises {
		out[i] = *ex
	}
	return out
}

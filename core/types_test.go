package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pushups = &Exercise{Name: "Push-ups", Category: CategoryStrength, CaloriesPerMinute: 5, CaloriesFixed: 50}
	squats  = &Exercise{Name: "Squats", Category: CategoryStrength, CaloriesPerMinute: 6, CaloriesFixed: 60}
	running = &Exercise{Name: "Running", Category: CategoryCardio, CaloriesPerMinute: 10, CaloriesFixed: 100}
	plank   = &Exercise{Name: "Plank", Category: CategoryCore, CaloriesPerMinute: 4, CaloriesFixed: 40}
)

func TestCandidateCloneDoesNotAlias(t *testing.T) {
	c := Candidate{pushups, running}
	cl := c.Clone()
	cl[0] = plank

	require.Equal(t, pushups, c[0])
	require.True(t, Candidate{pushups, running}.Equal(c))
	require.False(t, c.Equal(cl))
}

func TestCandidateKeyIgnoresOrderKeepsDuplicates(t *testing.T) {
	assert.Equal(t, Candidate{pushups, running}.Key(), Candidate{running, pushups}.Key())
	assert.NotEqual(t, Candidate{pushups, running}.Key(), Candidate{pushups, running, running}.Key())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*RunConfig)
		field string
	}{
		{"ok", func(*RunConfig) {}, ""},
		{"zero population", func(c *RunConfig) { c.PopulationSize = 0 }, "population_size"},
		{"zero generations", func(c *RunConfig) { c.Generations = 0 }, "generations"},
		{"zero minutes", func(c *RunConfig) { c.Minutes = 0 }, "minutes"},
		{"mutation above one", func(c *RunConfig) { c.MutationRate = 1.5 }, "mutation_rate"},
		{"negative crossover", func(c *RunConfig) { c.CrossoverRate = -0.1 }, "crossover_rate"},
		{"elitism above one", func(c *RunConfig) { c.ElitismRate = 2 }, "elitism_rate"},
		{"inverted lengths", func(c *RunConfig) { c.MinLength, c.MaxLength = 4, 2 }, "max_length"},
		{"negative block minutes", func(c *RunConfig) { c.BlockMinutes = -1 }, "block_minutes"},
		{"bad calorie model", func(c *RunConfig) { c.CalorieModel = "joules" }, "calorie_model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRunConfig()
			tt.edit(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidConfig)
			var ice *InvalidConfigError
			require.True(t, errors.As(err, &ice))
			assert.Equal(t, tt.field, ice.Field)
		})
	}
}

func TestValidateAcceptsUnknownGoal(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Goal = "unknown_goal"
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Goal.Known())
}

func TestWithDefaultsKeepsNumericFields(t *testing.T) {
	cfg := RunConfig{PopulationSize: 0}.WithDefaults()
	assert.Equal(t, DefaultSelection, cfg.Selection)
	assert.Equal(t, DefaultGenome, cfg.Genome)
	assert.Equal(t, CalorieModelRate, cfg.CalorieModel)
	assert.Equal(t, 0, cfg.PopulationSize)
	require.Error(t, cfg.Validate())
}

func TestResultJSONKeys(t *testing.T) {
	res := OptimizationResult{
		BestPlan:               []PlanEntry{{Name: "Running", CaloriesBurned: 100}},
		FitnessOverGenerations: []float64{100},
		AverageFitness:         []float64{80},
		Diversity:              []int{3},
		BestFitnessProgression: []float64{100},
		MutationRate:           0.1,
		CrossoverRate:          0.7,
	}

	b, err := json.Marshal(res)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	for _, key := range []string{"best_plan", "fitness_over_generations", "average_fitness", "diversity", "best_fitness_progression", "mutation_rate", "crossover_rate"} {
		assert.Contains(t, raw, key)
	}
	plan := raw["best_plan"].([]any)[0].(map[string]any)
	assert.Equal(t, "Running", plan["name"])
	assert.Equal(t, 100.0, plan["calories_burned"])
}

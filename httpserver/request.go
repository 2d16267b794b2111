package httpserver

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/snow-ghost/planner/core"
	"github.com/snow-ghost/planner/optimizer"
)

// ExerciseSelection accepts exercise names either as plain strings or as the
// {name, type} objects the web client sends.
type ExerciseSelection []string

func (s *ExerciseSelection) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("selected_exercises must be an array: %w", err)
	}

	names := make([]string, 0, len(items))
	for i, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			names = append(names, name)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("selected_exercises[%d] must be a name or an object with a name", i)
		}
		names = append(names, obj.Name)
	}
	*s = names
	return nil
}

// Names returns the non-blank names.
func (s ExerciseSelection) Names() []string {
	out := make([]string, 0, len(s))
	for _, name := range s {
		if strings.TrimSpace(name) != "" {
			out = append(out, name)
		}
	}
	return out
}

// OptimizeRequest is the body of POST /optimize. Absent fields take the defaults the
// web client has always relied on; fields sent explicitly are validated as given.
type OptimizeRequest struct {
	SelectedExercises ExerciseSelection `json:"selected_exercises"`
	Minutes           *float64          `json:"minutes"`
	Goal              *string           `json:"goal"`
	PopulationSize    *int              `json:"population_size"`
	MutationRate      *float64          `json:"mutation_rate"`
	CrossoverRate     *float64          `json:"crossover_rate"`
	Generations       *int              `json:"generations"`
	ElitismRate       *float64          `json:"elitism_rate"`

	Selection       string  `json:"selection"`
	Genome          string  `json:"genome"`
	CalorieModel    string  `json:"calorie_model"`
	DurationPenalty bool    `json:"duration_penalty"`
	BlockMinutes    float64 `json:"block_minutes"`
	MinLength       int     `json:"min_length"`
	MaxLength       int     `json:"max_length"`
	Seed            uint64  `json:"seed"`
}

// RunConfig merges the request over the defaults.
func (r OptimizeRequest) RunConfig() core.RunConfig {
	cfg := core.DefaultRunConfig()
	if r.Minutes != nil {
		cfg.Minutes = *r.Minutes
	}
	if r.Goal != nil {
		cfg.Goal = core.Goal(*r.Goal)
	}
	if r.PopulationSize != nil {
		cfg.PopulationSize = *r.PopulationSize
	}
	if r.MutationRate != nil {
		cfg.MutationRate = *r.MutationRate
	}
	if r.CrossoverRate != nil {
		cfg.CrossoverRate = *r.CrossoverRate
	}
	if r.Generations != nil {
		cfg.Generations = *r.Generations
	}
	if r.ElitismRate != nil {
		cfg.ElitismRate = *r.ElitismRate
	}
	if r.Selection != "" {
		cfg.Selection = r.Selection
	}
	if r.Genome != "" {
		cfg.Genome = r.Genome
	}
	if r.CalorieModel != "" {
		cfg.CalorieModel = core.CalorieModel(r.CalorieModel)
	}
	if r.MinLength != 0 {
		cfg.MinLength = r.MinLength
	}
	if r.MaxLength != 0 {
		cfg.MaxLength = r.MaxLength
	}
	cfg.DurationPenalty = r.DurationPenalty
	cfg.BlockMinutes = r.BlockMinutes
	cfg.Seed = r.Seed
	return cfg
}

// BatchRequest is the body of POST /v1/optimize/batch.
type BatchRequest struct {
	Requests []OptimizeRequest `json:"requests"`
}

func (b BatchRequest) toOptimizer() []optimizer.Request {
	out := make([]optimizer.Request, len(b.Requests))
	for i, r := range b.Requests {
		out[i] = optimizer.Request{Exercises: r.SelectedExercises.Names(), Config: r.RunConfig()}
	}
	return out
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

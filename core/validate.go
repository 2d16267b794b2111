package core

import "math"

// Validate rejects configurations the engine cannot run. Unknown goals are accepted and
// score zero.
func (c RunConfig) Validate() error {
	if c.PopulationSize <= 0 {
		return invalid("population_size", "must be positive")
	}
	if c.Generations <= 0 {
		return invalid("generations", "must be positive")
	}
	if c.Minutes <= 0 || math.IsNaN(c.Minutes) || math.IsInf(c.Minutes, 0) {
		return invalid("minutes", "must be positive")
	}
	if !unitInterval(c.MutationRate) {
		return invalid("mutation_rate", "must be in [0,1]")
	}
	if !unitInterval(c.CrossoverRate) {
		return invalid("crossover_rate", "must be in [0,1]")
	}
	if !unitInterval(c.ElitismRate) {
		return invalid("elitism_rate", "must be in [0,1]")
	}
	if c.BlockMinutes < 0 || math.IsNaN(c.BlockMinutes) || math.IsInf(c.BlockMinutes, 0) {
		return invalid("block_minutes", "must not be negative")
	}
	if c.MinLength < 1 {
		return invalid("min_length", "must be at least 1")
	}
	if c.MaxLength < c.MinLength {
		return invalid("max_length", "must not be below min_length")
	}
	switch c.CalorieModel {
	case CalorieModelRate, CalorieModelFixed:
	default:
		return invalid("calorie_model", "must be rate or fixed")
	}
	return nil
}

func unitInterval(v float64) bool {
	return v >= 0 && v <= 1
}

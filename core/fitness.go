package core

// DefaultPenaltyFactor scales scores of plans that overrun the session.
const DefaultPenaltyFactor = 0.5

// GoalFitness scores a plan against a goal. The calorie model and the penalty rule are
// fixed when the policy is built, so every evaluation of a run agrees.
type GoalFitness struct {
	Model CalorieModel
	// DurationPenalty enables the overrun rule. BlockMinutes is the length of one
	// exercise block; zero splits the session evenly, which never overruns.
	DurationPenalty bool
	BlockMinutes    float64
	PenaltyFactor   float64
}

func NewGoalFitness(model CalorieModel) *GoalFitness {
	if model == "" {
		model = CalorieModelRate
	}
	return &GoalFitness{Model: model, PenaltyFactor: DefaultPenaltyFactor}
}

// WithDurationPenalty enables the overrun rule with the given block length.
func (f *GoalFitness) WithDurationPenalty(blockMinutes float64) *GoalFitness {
	f.DurationPenalty = true
	f.BlockMinutes = blockMinutes
	return f
}

func (f *GoalFitness) Evaluate(c Candidate, goal Goal, minutes float64) float64 {
	var score float64
	switch goal {
	case GoalFatLoss:
		for _, ex := range c {
			score += f.calories(ex, minutes)
		}
	case GoalMuscleGain:
		score = float64(countCategory(c, CategoryStrength))
	case GoalEndurance:
		score = float64(countCategory(c, CategoryCardio))
	default:
		return 0
	}

	if f.DurationPenalty && f.Duration(c, minutes) > minutes {
		score *= f.PenaltyFactor
	}
	return score
}

// Duration is the planned session length of c.
func (f *GoalFitness) Duration(c Candidate, minutes float64) float64 {
	if len(c) == 0 {
		return 0
	}
	if f.BlockMinutes <= 0 {
		return minutes
	}
	return f.BlockMinutes * float64(len(c))
}

func (f *GoalFitness) calories(ex *Exercise, minutes float64) float64 {
	if f.Model == CalorieModelFixed {
		return ex.CaloriesFixed
	}
	return CaloriesBurned(ex, minutes)
}

// CaloriesBurned is the rate-model energy cost of doing ex for the given minutes.
func CaloriesBurned(ex *Exercise, minutes float64) float64 {
	return ex.CaloriesPerMinute * minutes
}

func countCategory(c Candidate, cat Category) int {
	n := 0
	for _, ex := range c {
		if ex.Category == cat {
			n++
		}
	}
	return n
}

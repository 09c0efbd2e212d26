package game

import "math"

const baseScore = 100

// Score converts a response into points. Incorrect answers score 0. Correct
// answers score between 50 (at the time limit) and 100 (instantaneous): half
// the base is guaranteed, the other half scales linearly with the time left.
// The final multiplication rounds half up so results are reproducible.
func Score(responseTime, timeLimit float64, correct bool) int {
	if !correct {
		return 0
	}

	timeBonus := 0.0
	if timeLimit > 0 {
		timeBonus = (timeLimit - responseTime) / timeLimit
	}
	if timeBonus < 0 {
		timeBonus = 0
	}
	if timeBonus > 1 {
		timeBonus = 1
	}

	return int(math.Round(baseScore * (0.5 + 0.5*timeBonus)))
}

// Package rating implements the ELO skill rating update.
package rating

import "math"

// KFactor is the rating change sensitivity.
const KFactor = 32

// Calculate returns the new ratings for the winner and loser of a decisive
// game. Expected scores use the standard logistic curve with a 400-point
// scale. Results are rounded half away from zero.
func Calculate(winnerRating, loserRating int) (winnerNewRating, loserNewRating int) {
	winnerExpected := expectedScore(float64(winnerRating), float64(loserRating))
	loserExpected := expectedScore(float64(loserRating), float64(winnerRating))

	winnerNewRating = round(float64(winnerRating) + KFactor*(1-winnerExpected))
	loserNewRating = round(float64(loserRating) + KFactor*(0-loserExpected))
	return winnerNewRating, loserNewRating
}

// expectedScore is the probability that a player rated a beats a player
// rated b.
func expectedScore(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/400.0))
}

func round(x float64) int {
	return int(math.Round(x))
}

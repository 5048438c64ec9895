package visibility

import "math"

// ScoreInput is the slice element the scorer reduces over. Position is the
// 1-4 bucket and only read when Mentioned is true.
type ScoreInput struct {
	Mentioned bool
	Position  int
}

// Score weighting: mention rate carries up to 70 points, position prominence
// up to 30. The split and per-bucket bonuses are product constants and must
// not drift.
const (
	mentionWeight = 70.0
	bonusCap      = 30.0
)

func positionBonus(bucket int) float64 {
	switch bucket {
	case 1:
		return 1.5
	case 2:
		return 1.0
	case 3:
		return 0.5
	default:
		return 0
	}
}

// Score reduces a result set to the 0-100 visibility score. Pure; order of
// inputs does not matter. An empty set scores 0.
func Score(results []ScoreInput) int {
	if len(results) == 0 {
		return 0
	}

	mentions := 0
	bonus := 0.0
	for _, r := range results {
		if !r.Mentioned {
			continue
		}
		mentions++
		bonus += positionBonus(r.Position)
	}
	if bonus > bonusCap {
		bonus = bonusCap
	}

	rate := float64(mentions) / float64(len(results))
	score := rate*mentionWeight + bonus
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

// MentionRate returns the fraction of results with a mention, 0 for an empty
// set.
func MentionRate(results []ScoreInput) float64 {
	if len(results) == 0 {
		return 0
	}
	mentions := 0
	for _, r := range results {
		if r.Mentioned {
			mentions++
		}
	}
	return float64(mentions) / float64(len(results))
}

// AveragePosition returns the mean bucket across mentioned results, 0 when
// nothing was mentioned.
func AveragePosition(results []ScoreInput) float64 {
	sum, n := 0, 0
	for _, r := range results {
		if r.Mentioned {
			sum += r.Position
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

package assessment

import "alcyxob/confidence-coach/internal/domain"

const defaultBaseScore = 50.0

var timeMultiplier = map[string]float64{
	"30 minutes": 0.8,
	"1 hour":     1.0,
	"2 hours":    1.2,
	"3+ hours":   1.3,
}

var motivationBonus = map[string]float64{
	"Achieving specific goals": 10,
	"Building habits":          15,
	"Learning new things":      10,
	"Helping others":           5,
	"Personal growth":          15,
	"Recognition and success":  8,
}

const challengePenalty = 5.0

// Score computes the initial confidence score from questionnaire answers.
// Unrecognized or missing answers contribute nothing; the result is always
// an integer in [0, 100].
func Score(r domain.Responses) int {
	score := defaultBaseScore
	if r.Confidence != nil {
		score = *r.Confidence * 10
	}

	if m, ok := timeMultiplier[r.AvailableTime]; ok {
		score *= m
	}
	score += motivationBonus[r.Motivation]
	score -= float64(len(r.Challenges)) * challengePenalty

	return domain.ClampConfidence(domain.RoundHalfUp(score))
}

package domain

import "math"

const (
	MinConfidence = 0
	MaxConfidence = 100
)

// ClampConfidence bounds a score to [MinConfidence, MaxConfidence].
func ClampConfidence(v int) int {
	if v < MinConfidence {
		return MinConfidence
	}
	if v > MaxConfidence {
		return MaxConfidence
	}
	return v
}

// RoundHalfUp rounds x.5 towards positive infinity, so -2.5 becomes -2.
func RoundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}

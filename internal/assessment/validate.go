package assessment

import (
	"fmt"
	"slices"

	"alcyxob/confidence-coach/internal/domain"
)

// Validate checks the confidence answer against the scale bounds. With strict
// set, single-choice answers must also be one of the question's options.
// Empty answers are always accepted.
func Validate(r domain.Responses, strict bool) error {
	for _, q := range questions {
		switch q.Type {
		case TypeScale:
			if q.ID != "confidence" || r.Confidence == nil {
				continue
			}
			if c := *r.Confidence; c < float64(*q.Min) || c > float64(*q.Max) {
				return fmt.Errorf("%s must be between %d and %d", q.ID, *q.Min, *q.Max)
			}
		case TypeSingle:
			if !strict {
				continue
			}
			v := singleAnswer(r, q.ID)
			if v != "" && !slices.Contains(q.Options, v) {
				return fmt.Errorf("%s: unknown option %q", q.ID, v)
			}
		}
	}
	return nil
}

func singleAnswer(r domain.Responses, id string) string {
	switch id {
	case "fitness_level":
		return r.FitnessLevel
	case "available_time":
		return r.AvailableTime
	case "motivation":
		return r.Motivation
	case "preferences":
		return r.Preferences
	}
	return ""
}

package planner

import "alcyxob/confidence-coach/internal/domain"

// Draft is the content of a plan before it is persisted.
type Draft struct {
	Tasks            []domain.Task
	ConfidenceImpact int
	Insights         string
	AIGenerated      bool
}

// Outcome is either a ParsedPlan or a FallbackPlan.
type Outcome interface {
	Result() Draft
	outcome()
}

// ParsedPlan is a plan successfully read from provider output.
type ParsedPlan struct{ Draft }

func (p ParsedPlan) Result() Draft { return p.Draft }
func (ParsedPlan) outcome()        {}

// FallbackPlan replaces provider output that failed; Cause says why.
type FallbackPlan struct {
	Draft
	Cause error
}

func (p FallbackPlan) Result() Draft { return p.Draft }
func (FallbackPlan) outcome()        {}

const fallbackConfidenceImpact = 3

// Fallback builds the fixed two-task plan.
func Fallback(cause error) FallbackPlan {
	return FallbackPlan{
		Draft: Draft{
			Tasks: []domain.Task{
				{
					ID:            "task_1",
					Title:         "Morning Reflection",
					Description:   "Take 5 minutes to write down your top 3 priorities for today",
					Category:      "general",
					Priority:      domain.PriorityHigh,
					EstimatedTime: 5,
					Difficulty:    domain.DifficultyEasy,
				},
				{
					ID:            "task_2",
					Title:         "Physical Activity",
					Description:   "Do 10 minutes of any physical activity you enjoy",
					Category:      "fitness",
					Priority:      domain.PriorityMedium,
					EstimatedTime: 10,
					Difficulty:    domain.DifficultyEasy,
				},
			},
			ConfidenceImpact: fallbackConfidenceImpact,
			Insights:         "Start small and build momentum. Every step forward counts!",
			AIGenerated:      false,
		},
		Cause: cause,
	}
}

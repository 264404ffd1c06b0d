package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanType string

const (
	PlanDaily   PlanType = "daily"
	PlanWeekly  PlanType = "weekly"
	PlanMonthly PlanType = "monthly"
)

// PlanStatus tracks the plan lifecycle. Completed and cancelled are terminal.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanCancelled PlanStatus = "cancelled"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Task is a single actionable item inside a Plan.
type Task struct {
	ID            string     `bson:"id" json:"id"`
	Title         string     `bson:"title" json:"title"`
	Description   string     `bson:"description" json:"description"`
	Category      string     `bson:"category" json:"category"`
	Priority      Priority   `bson:"priority" json:"priority"`
	EstimatedTime int        `bson:"estimatedTime" json:"estimatedTime"` // minutes
	Difficulty    Difficulty `bson:"difficulty" json:"difficulty"`
	Completed     bool       `bson:"completed" json:"completed"`
	CompletedAt   *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// Plan is a dated, ordered set of tasks owned by one user.
type Plan struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	Date             time.Time          `bson:"date" json:"date"`
	Type             PlanType           `bson:"type" json:"type"`
	Tasks            []Task             `bson:"tasks" json:"tasks"`
	AIGenerated      bool               `bson:"aiGenerated" json:"aiGenerated"`
	ConfidenceImpact int                `bson:"confidenceImpact" json:"confidenceImpact"`
	Insights         string             `bson:"insights,omitempty" json:"insights,omitempty"`
	Status           PlanStatus         `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TaskIndex returns the position of the task with the given id, or -1.
func (p *Plan) TaskIndex(taskID string) int {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// Completion counts completed tasks and returns the rate in percent.
// A plan without tasks has a rate of 0.
func (p *Plan) Completion() (completed, total int, rate float64) {
	total = len(p.Tasks)
	for _, t := range p.Tasks {
		if t.Completed {
			completed++
		}
	}
	if total == 0 {
		return completed, total, 0
	}
	return completed, total, float64(completed) / float64(total) * 100
}

// CanTransition reports whether the lifecycle allows moving to next.
// Only active plans move, and only to a terminal state.
func (s PlanStatus) CanTransition(next PlanStatus) bool {
	return s == PlanActive && (next == PlanCompleted || next == PlanCancelled)
}

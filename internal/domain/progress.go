package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Mood string

const (
	MoodExcellent Mood = "excellent"
	MoodGood      Mood = "good"
	MoodOkay      Mood = "okay"
	MoodPoor      Mood = "poor"
	MoodTerrible  Mood = "terrible"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodExcellent, MoodGood, MoodOkay, MoodPoor, MoodTerrible:
		return true
	}
	return false
}

// CategoryStat is the completion breakdown for one task category.
type CategoryStat struct {
	Name      string  `bson:"name" json:"name"`
	Completed int     `bson:"completed" json:"completed"`
	Total     int     `bson:"total" json:"total"`
	Rate      float64 `bson:"rate" json:"rate"`
}

// Progress is an append-only daily snapshot. It is never updated after insert.
type Progress struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Date            time.Time          `bson:"date" json:"date"`
	ConfidenceScore int                `bson:"confidenceScore" json:"confidenceScore"`
	TasksCompleted  int                `bson:"tasksCompleted" json:"tasksCompleted"`
	TotalTasks      int                `bson:"totalTasks" json:"totalTasks"`
	CompletionRate  float64            `bson:"completionRate" json:"completionRate"`
	Categories      []CategoryStat     `bson:"categories" json:"categories"`
	Mood            Mood               `bson:"mood" json:"mood"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Achievements    []string           `bson:"achievements" json:"achievements"`
	Challenges      []string           `bson:"challenges" json:"challenges"`
	NextDayGoals    []string           `bson:"nextDayGoals" json:"nextDayGoals"`
}

// TrendPoint is one (date, confidence) pair of the confidence series.
type TrendPoint struct {
	Date       time.Time `json:"date"`
	Confidence int       `json:"confidence"`
}

// Stats is the rollup over a trailing window of progress records.
type Stats struct {
	AverageCompletion int `json:"averageCompletion"`
	AverageConfidence int `json:"averageConfidence"`
	TotalTasks        int `json:"totalTasks"`
	CompletedTasks    int `json:"completedTasks"`
	Streak            int `json:"streak"`
}

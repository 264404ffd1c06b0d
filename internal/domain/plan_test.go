package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan_Completion(t *testing.T) {
	p := &Plan{Tasks: []Task{{ID: "a", Completed: true}, {ID: "b"}, {ID: "c", Completed: true}, {ID: "d"}}}
	completed, total, rate := p.Completion()
	assert.Equal(t, 2, completed)
	assert.Equal(t, 4, total)
	assert.InDelta(t, 50.0, rate, 0.0001)

	_, _, rate = (&Plan{}).Completion()
	assert.Zero(t, rate)
}

func TestPlan_TaskIndex(t *testing.T) {
	p := &Plan{Tasks: []Task{{ID: "task_1"}, {ID: "task_2"}}}
	assert.Equal(t, 1, p.TaskIndex("task_2"))
	assert.Equal(t, -1, p.TaskIndex("task_9"))
}

func TestPlanStatus_CanTransition(t *testing.T) {
	assert.True(t, PlanActive.CanTransition(PlanCompleted))
	assert.True(t, PlanActive.CanTransition(PlanCancelled))
	assert.False(t, PlanActive.CanTransition(PlanActive))
	assert.False(t, PlanCompleted.CanTransition(PlanCancelled))
	assert.False(t, PlanCancelled.CanTransition(PlanActive))
}

func TestConfidenceHelpers(t *testing.T) {
	assert.Equal(t, 0, ClampConfidence(-4))
	assert.Equal(t, 100, ClampConfidence(140))
	assert.Equal(t, 42, ClampConfidence(42))

	assert.Equal(t, 3, RoundHalfUp(2.5))
	assert.Equal(t, -2, RoundHalfUp(-2.5))
	assert.Equal(t, -3, RoundHalfUp(-2.6))
}

func TestMood_Valid(t *testing.T) {
	assert.True(t, MoodOkay.Valid())
	assert.False(t, Mood("meh").Valid())
}

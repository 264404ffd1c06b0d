package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlanService_GeneratePreconditions(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.planService.Generate(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)

	fresh := f.addUser(t, "fresh@example.com", -1)
	_, err = f.planService.Generate(ctx, fresh.ID)
	assert.ErrorIs(t, err, ErrAssessmentIncomplete)
	assert.Zero(t, f.drafter.calls.Load())
}

func TestPlanService_GenerateStoresActivePlan(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	u := f.addUser(t, "gen@example.com", 50)

	gen, err := f.planService.Generate(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, gen.Tasks, 4)
	assert.Equal(t, 4, gen.ConfidenceImpact)
	assert.Equal(t, "Keep going.", gen.AIInsights)
	assert.True(t, gen.AIGenerated)

	today, err := f.planService.GetToday(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, gen.PlanID, today.ID)
	assert.Equal(t, domain.PlanActive, today.Status)
	assert.Equal(t, domain.PlanDaily, today.Type)
	assert.Equal(t, testNow, today.Date)
}

func TestPlanService_FallbackIsStoredAsNotAIGenerated(t *testing.T) {
	f := newFixture(t, true)
	f.drafter.outcome = planner.Fallback(errors.New("provider down"))
	u := f.addUser(t, "fb@example.com", 50)

	gen, err := f.planService.Generate(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, gen.AIGenerated)
	assert.Equal(t, 3, gen.ConfidenceImpact)

	stored, err := f.plans.GetByID(context.Background(), gen.PlanID)
	require.NoError(t, err)
	assert.False(t, stored.AIGenerated)
	require.Len(t, stored.Tasks, 2)
	assert.Equal(t, "Morning Reflection", stored.Tasks[0].Title)
}

func TestPlanService_SupersedeSameDay(t *testing.T) {
	ctx := context.Background()

	t.Run("enabled", func(t *testing.T) {
		f := newFixture(t, true)
		u := f.addUser(t, "s1@example.com", 50)

		first, err := f.planService.Generate(ctx, u.ID)
		require.NoError(t, err)
		f.now = f.now.Add(time.Hour)
		second, err := f.planService.Generate(ctx, u.ID)
		require.NoError(t, err)

		old, err := f.plans.GetByID(ctx, first.PlanID)
		require.NoError(t, err)
		assert.Equal(t, domain.PlanCancelled, old.Status)

		today, err := f.planService.GetToday(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, second.PlanID, today.ID)
	})

	t.Run("disabled keeps duplicates", func(t *testing.T) {
		f := newFixture(t, false)
		u := f.addUser(t, "s2@example.com", 50)

		first, err := f.planService.Generate(ctx, u.ID)
		require.NoError(t, err)
		f.now = f.now.Add(time.Hour)
		second, err := f.planService.Generate(ctx, u.ID)
		require.NoError(t, err)

		old, err := f.plans.GetByID(ctx, first.PlanID)
		require.NoError(t, err)
		assert.Equal(t, domain.PlanActive, old.Status)

		today, err := f.planService.GetToday(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, second.PlanID, today.ID, "most recently created wins")
	})

	t.Run("yesterday's plan is left alone", func(t *testing.T) {
		f := newFixture(t, true)
		u := f.addUser(t, "s3@example.com", 50)

		f.now = testNow.AddDate(0, 0, -1)
		yesterday, err := f.planService.Generate(ctx, u.ID)
		require.NoError(t, err)
		f.now = testNow
		_, err = f.planService.Generate(ctx, u.ID)
		require.NoError(t, err)

		old, err := f.plans.GetByID(ctx, yesterday.PlanID)
		require.NoError(t, err)
		assert.Equal(t, domain.PlanActive, old.Status)
	})
}

func TestPlanService_ConcurrentGenerateCollapses(t *testing.T) {
	f := newFixture(t, true)
	f.drafter.entered = make(chan struct{})
	f.drafter.release = make(chan struct{})
	u := f.addUser(t, "burst@example.com", 50)

	const callers = 5
	results := make([]*GeneratedPlan, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			gen, err := f.planService.GenerateFor(context.Background(), u)
			assert.NoError(t, err)
			results[i] = gen
		}(i)
	}

	<-f.drafter.entered
	// Give the remaining callers time to join the in-flight call.
	time.Sleep(100 * time.Millisecond)
	close(f.drafter.release)
	wg.Wait()

	assert.EqualValues(t, 1, f.drafter.calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, results[0].PlanID, r.PlanID)
	}
	history, err := f.planService.History(context.Background(), u.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPlanService_GetTodayNotFound(t *testing.T) {
	f := newFixture(t, true)
	u := f.addUser(t, "none@example.com", 50)

	f.now = testNow.AddDate(0, 0, -1)
	_, err := f.planService.Generate(context.Background(), u.ID)
	require.NoError(t, err)
	f.now = testNow

	_, err = f.planService.GetToday(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlanService_ToggleTask(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	u := f.addUser(t, "toggle@example.com", 50)
	gen, err := f.planService.Generate(ctx, u.ID)
	require.NoError(t, err)

	res, err := f.planService.ToggleTask(ctx, primitive.NilObjectID, gen.PlanID, "task_2", true)
	require.NoError(t, err)
	assert.True(t, res.Task.Completed)
	require.NotNil(t, res.Task.CompletedAt)
	assert.Equal(t, testNow, *res.Task.CompletedAt)
	assert.Equal(t, 1, res.CompletedTasks)
	assert.Equal(t, 4, res.TotalTasks)
	assert.InDelta(t, 25.0, res.CompletionRate, 0.0001)

	res, err = f.planService.ToggleTask(ctx, primitive.NilObjectID, gen.PlanID, "task_2", false)
	require.NoError(t, err)
	assert.False(t, res.Task.Completed)
	assert.Nil(t, res.Task.CompletedAt)
	assert.Zero(t, res.CompletionRate)

	_, err = f.planService.ToggleTask(ctx, primitive.NilObjectID, gen.PlanID, "task_99", true)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = f.planService.ToggleTask(ctx, primitive.NilObjectID, primitive.NewObjectID(), "task_1", true)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = f.planService.Complete(ctx, primitive.NilObjectID, gen.PlanID)
	require.NoError(t, err)
	_, err = f.planService.ToggleTask(ctx, primitive.NilObjectID, gen.PlanID, "task_1", true)
	assert.ErrorIs(t, err, ErrPlanNotActive)
}

func TestPlanService_Lifecycle(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	u := f.addUser(t, "life@example.com", 50)
	gen, err := f.planService.Generate(ctx, u.ID)
	require.NoError(t, err)

	done, err := f.planService.Complete(ctx, primitive.NilObjectID, gen.PlanID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCompleted, done.Status)

	again, err := f.planService.Complete(ctx, primitive.NilObjectID, gen.PlanID)
	require.NoError(t, err, "completing twice is a no-op")
	assert.Equal(t, domain.PlanCompleted, again.Status)

	_, err = f.planService.Cancel(ctx, primitive.NilObjectID, gen.PlanID)
	assert.ErrorIs(t, err, ErrPlanNotActive)

	_, err = f.planService.Complete(ctx, primitive.NilObjectID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPlanNotFound)

	f.now = f.now.AddDate(0, 0, 1)
	next, err := f.planService.Generate(ctx, u.ID)
	require.NoError(t, err)
	cancelled, err := f.planService.Cancel(ctx, primitive.NilObjectID, next.PlanID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCancelled, cancelled.Status)
	_, err = f.planService.Complete(ctx, primitive.NilObjectID, next.PlanID)
	assert.ErrorIs(t, err, ErrPlanNotActive)
}

func TestPlanService_MutationsRequireOwner(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.addUser(t, "owner@example.com", 50)
	other := f.addUser(t, "other@example.com", 50)
	gen, err := f.planService.Generate(ctx, owner.ID)
	require.NoError(t, err)

	_, err = f.planService.ToggleTask(ctx, other.ID, gen.PlanID, "task_1", true)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
	_, err = f.planService.Complete(ctx, other.ID, gen.PlanID)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
	_, err = f.planService.Cancel(ctx, other.ID, gen.PlanID)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)

	stored, err := f.plans.GetByID(ctx, gen.PlanID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanActive, stored.Status)
	assert.False(t, stored.Tasks[0].Completed)

	res, err := f.planService.ToggleTask(ctx, owner.ID, gen.PlanID, "task_1", true)
	require.NoError(t, err)
	assert.True(t, res.Task.Completed)
	cancelled, err := f.planService.Cancel(ctx, owner.ID, gen.PlanID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCancelled, cancelled.Status)
}

func TestPlanService_HistoryDefaultsToSeven(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	u := f.addUser(t, "hist@example.com", 50)

	for i := 9; i >= 0; i-- {
		f.now = testNow.AddDate(0, 0, -i)
		_, err := f.planService.Generate(ctx, u.ID)
		require.NoError(t, err)
	}

	history, err := f.planService.History(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, DefaultHistoryLimit)
	assert.Equal(t, testNow, history[0].Date)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].Date.After(history[i].Date))
	}

	limited, err := f.planService.History(ctx, u.ID, 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

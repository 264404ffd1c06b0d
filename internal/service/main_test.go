package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/planner"
	"alcyxob/confidence-coach/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

// fakeDrafter returns a fixed outcome and can hold callers until released.
type fakeDrafter struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	outcome planner.Outcome

	mu          sync.Mutex
	motivations []string
}

func (d *fakeDrafter) seenMotivations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.motivations...)
}

func (d *fakeDrafter) Draft(ctx context.Context, user *domain.User, responses domain.Responses) planner.Outcome {
	d.calls.Add(1)
	d.mu.Lock()
	d.motivations = append(d.motivations, responses.Motivation)
	d.mu.Unlock()
	if d.entered != nil {
		d.once.Do(func() { close(d.entered) })
	}
	if d.release != nil {
		<-d.release
	}
	if d.outcome != nil {
		return d.outcome
	}
	return planner.ParsedPlan{Draft: planner.Draft{
		Tasks: []domain.Task{
			{ID: "task_1", Title: "Walk", Category: "fitness", Priority: domain.PriorityHigh, Difficulty: domain.DifficultyEasy, EstimatedTime: 20},
			{ID: "task_2", Title: "Journal", Category: "mindset", Priority: domain.PriorityMedium, Difficulty: domain.DifficultyEasy, EstimatedTime: 10},
			{ID: "task_3", Title: "Call a friend", Category: "social", Priority: domain.PriorityLow, Difficulty: domain.DifficultyMedium, EstimatedTime: 15},
			{ID: "task_4", Title: "Stretch", Category: "fitness", Priority: domain.PriorityLow, Difficulty: domain.DifficultyEasy, EstimatedTime: 5},
		},
		ConfidenceImpact: 4,
		Insights:         "Keep going.",
		AIGenerated:      true,
	}}
}

type fixture struct {
	users    *memory.UserRepository
	plans    *memory.PlanRepository
	progress *memory.ProgressRepository
	drafter  *fakeDrafter
	now      time.Time

	planService     PlanService
	progressService ProgressService
}

func (f *fixture) clock() time.Time { return f.now }

func newFixture(t *testing.T, supersede bool) *fixture {
	t.Helper()
	f := &fixture{
		users:    memory.NewUserRepository(),
		plans:    memory.NewPlanRepository(),
		progress: memory.NewProgressRepository(),
		drafter:  &fakeDrafter{},
		now:      testNow,
	}
	logger := zap.NewNop()
	f.planService = NewPlanService(f.plans, f.users, f.drafter, PlanOptions{
		SupersedeSameDay: supersede,
		Location:         time.UTC,
		Now:              f.clock,
	}, logger)
	f.progressService = NewProgressService(f.progress, f.users, f.plans, ProgressOptions{
		Location: time.UTC,
		Now:      f.clock,
	}, logger)
	return f
}

// addUser stores a user; a non-negative confidence marks the assessment completed.
func (f *fixture) addUser(t *testing.T, email string, confidence int) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x", Profile: domain.Profile{Name: "Test"}}
	_, err := f.users.Create(context.Background(), u)
	require.NoError(t, err)
	if confidence >= 0 {
		a := domain.Assessment{
			Completed:         true,
			Responses:         &domain.Responses{Goals: []string{"Improve fitness"}},
			InitialConfidence: confidence,
			CurrentConfidence: confidence,
		}
		require.NoError(t, f.users.SaveAssessment(context.Background(), u.ID, a))
		u.Assessment = a
	}
	return u
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/planner"
	"alcyxob/confidence-coach/internal/progress"
	"alcyxob/confidence-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultHistoryLimit is used when a history request carries no limit.
const DefaultHistoryLimit = 7

// PlanDrafter produces plan content for a user. planner.Generator implements it.
type PlanDrafter interface {
	Draft(ctx context.Context, user *domain.User, responses domain.Responses) planner.Outcome
}

// GeneratedPlan is the result of plan generation as returned to clients.
type GeneratedPlan struct {
	PlanID           primitive.ObjectID `json:"planId"`
	Tasks            []domain.Task      `json:"tasks"`
	ConfidenceImpact int                `json:"confidenceImpact"`
	AIInsights       string             `json:"aiInsights"`
	AIGenerated      bool               `json:"aiGenerated"`
}

// TaskToggleResult carries the updated task and the plan's recomputed completion.
type TaskToggleResult struct {
	Task           domain.Task
	CompletionRate float64
	CompletedTasks int
	TotalTasks     int
}

type PlanService interface {
	// Generate regenerates a plan for a user who finished the assessment.
	Generate(ctx context.Context, userID primitive.ObjectID) (*GeneratedPlan, error)
	// GenerateFor drafts and stores a plan for an already loaded user.
	GenerateFor(ctx context.Context, user *domain.User) (*GeneratedPlan, error)
	GetToday(ctx context.Context, userID primitive.ObjectID) (*domain.Plan, error)
	// The plan mutations take the acting user; primitive.NilObjectID skips
	// the ownership check for unauthenticated deployments.
	ToggleTask(ctx context.Context, actorID, planID primitive.ObjectID, taskID string, completed bool) (*TaskToggleResult, error)
	History(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Plan, error)
	Complete(ctx context.Context, actorID, planID primitive.ObjectID) (*domain.Plan, error)
	Cancel(ctx context.Context, actorID, planID primitive.ObjectID) (*domain.Plan, error)
}

// PlanOptions tunes plan generation and the calendar used for "today".
type PlanOptions struct {
	SupersedeSameDay bool
	HistoryLimit     int
	Location         *time.Location
	Now              func() time.Time
}

type planService struct {
	planRepo repository.PlanRepository
	userRepo repository.UserRepository
	drafter  PlanDrafter
	opts     PlanOptions
	logger   *zap.Logger

	inflight singleflight.Group
}

func NewPlanService(
	planRepo repository.PlanRepository,
	userRepo repository.UserRepository,
	drafter PlanDrafter,
	opts PlanOptions,
	logger *zap.Logger,
) PlanService {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &planService{
		planRepo: planRepo,
		userRepo: userRepo,
		drafter:  drafter,
		opts:     opts,
		logger:   logger,
	}
}

func (s *planService) startOfToday() time.Time {
	return progress.StartOfDay(s.opts.Now(), s.opts.Location)
}

func (s *planService) Generate(ctx context.Context, userID primitive.ObjectID) (*GeneratedPlan, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.Assessment.Completed {
		return nil, ErrAssessmentIncomplete
	}
	return s.GenerateFor(ctx, user)
}

// GenerateFor collapses concurrent calls for the same user and the same
// responses into one provider round trip; every caller receives the same
// stored plan.
func (s *planService) GenerateFor(ctx context.Context, user *domain.User) (*GeneratedPlan, error) {
	v, err, shared := s.inflight.Do(flightKey(user), func() (interface{}, error) {
		// Detached so one disconnecting caller does not fail the others.
		return s.generate(context.WithoutCancel(ctx), user)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("plan generation shared with concurrent request", zap.String("userId", user.ID.Hex()))
	}
	out := *v.(*GeneratedPlan)
	return &out, nil
}

// flightKey separates generations drafted from different answers.
func flightKey(user *domain.User) string {
	key := user.ID.Hex()
	if user.Assessment.Responses == nil {
		return key
	}
	answers, err := json.Marshal(user.Assessment.Responses)
	if err != nil {
		return key + ":" + primitive.NewObjectID().Hex()
	}
	return key + ":" + string(answers)
}

func (s *planService) generate(ctx context.Context, user *domain.User) (*GeneratedPlan, error) {
	var responses domain.Responses
	if user.Assessment.Responses != nil {
		responses = *user.Assessment.Responses
	}

	outcome := s.drafter.Draft(ctx, user, responses)
	draft := outcome.Result()

	now := s.opts.Now().UTC()
	plan := &domain.Plan{
		UserID:           user.ID,
		Date:             now,
		Type:             domain.PlanDaily,
		Tasks:            draft.Tasks,
		AIGenerated:      draft.AIGenerated,
		ConfidenceImpact: draft.ConfidenceImpact,
		Insights:         draft.Insights,
		Status:           domain.PlanActive,
		CreatedAt:        now,
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, processing("save plan", err)
	}

	if s.opts.SupersedeSameDay {
		n, err := s.planRepo.CancelActiveSince(ctx, user.ID, progress.StartOfDay(now, s.opts.Location), planID)
		if err != nil {
			// The new plan is stored and is what today's lookup returns.
			s.logger.Warn("failed to cancel superseded plans", zap.String("userId", user.ID.Hex()), zap.Error(err))
		} else if n > 0 {
			s.logger.Info("superseded same-day plans", zap.String("userId", user.ID.Hex()), zap.Int64("cancelled", n))
		}
	}

	fields := []zap.Field{zap.String("userId", user.ID.Hex()), zap.String("planId", planID.Hex()), zap.Int("tasks", len(plan.Tasks))}
	if fb, ok := outcome.(planner.FallbackPlan); ok {
		fields = append(fields, zap.NamedError("fallbackCause", fb.Cause))
	}
	s.logger.Info("plan generated", fields...)

	return &GeneratedPlan{
		PlanID:           planID,
		Tasks:            plan.Tasks,
		ConfidenceImpact: plan.ConfidenceImpact,
		AIInsights:       plan.Insights,
		AIGenerated:      plan.AIGenerated,
	}, nil
}

func (s *planService) GetToday(ctx context.Context, userID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetLatestActiveSince(ctx, userID, s.startOfToday())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) getPlan(ctx context.Context, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// getOwnedPlan loads a plan and checks it belongs to actorID, unless actorID is nil.
func (s *planService) getOwnedPlan(ctx context.Context, actorID, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !actorID.IsZero() && plan.UserID != actorID {
		s.logger.Warn("plan access denied", zap.String("planId", planID.Hex()), zap.String("actorId", actorID.Hex()))
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

func (s *planService) ToggleTask(ctx context.Context, actorID, planID primitive.ObjectID, taskID string, completed bool) (*TaskToggleResult, error) {
	plan, err := s.getOwnedPlan(ctx, actorID, planID)
	if err != nil {
		return nil, err
	}
	if plan.Status != domain.PlanActive {
		return nil, ErrPlanNotActive
	}
	idx := plan.TaskIndex(taskID)
	if idx < 0 {
		return nil, ErrTaskNotFound
	}

	updated, err := s.planRepo.SetTaskCompletion(ctx, planID, taskID, completed, s.opts.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Plan and task existed a moment ago, so the status moved under us.
			return nil, ErrPlanNotActive
		}
		return nil, err
	}

	done, total, rate := updated.Completion()
	return &TaskToggleResult{
		Task:           updated.Tasks[updated.TaskIndex(taskID)],
		CompletionRate: rate,
		CompletedTasks: done,
		TotalTasks:     total,
	}, nil
}

func (s *planService) History(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Plan, error) {
	if limit <= 0 {
		limit = s.opts.HistoryLimit
	}
	return s.planRepo.GetRecentByUser(ctx, userID, limit)
}

// Complete is idempotent for plans that are already completed.
func (s *planService) Complete(ctx context.Context, actorID, planID primitive.ObjectID) (*domain.Plan, error) {
	return s.transition(ctx, actorID, planID, domain.PlanCompleted, true)
}

func (s *planService) Cancel(ctx context.Context, actorID, planID primitive.ObjectID) (*domain.Plan, error) {
	return s.transition(ctx, actorID, planID, domain.PlanCancelled, false)
}

func (s *planService) transition(ctx context.Context, actorID, planID primitive.ObjectID, to domain.PlanStatus, idempotent bool) (*domain.Plan, error) {
	plan, err := s.getOwnedPlan(ctx, actorID, planID)
	if err != nil {
		return nil, err
	}
	if idempotent && plan.Status == to {
		return plan, nil
	}
	if !plan.Status.CanTransition(to) {
		return nil, ErrPlanNotActive
	}

	updated, err := s.planRepo.UpdateStatus(ctx, planID, plan.Status, to)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// Lost a race with another transition; report what won.
	current, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if idempotent && current.Status == to {
		return current, nil
	}
	return nil, ErrPlanNotActive
}

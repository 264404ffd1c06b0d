package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/progress"
	"alcyxob/confidence-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	DefaultProgressDays = 7
	DefaultTrendDays    = 30
	DefaultStatsDays    = 30

	// confidenceAttempts bounds the compare-and-swap loop on the user's score.
	confidenceAttempts = 3
)

// ProgressSubmission is one day's self-report.
type ProgressSubmission struct {
	UserID         primitive.ObjectID
	TasksCompleted int
	TotalTasks     int
	Mood           domain.Mood
	Notes          string
	Achievements   []string
	Challenges     []string
	NextDayGoals   []string
}

// ProgressResult reports the stored record and the confidence change actually applied.
type ProgressResult struct {
	Progress         *domain.Progress
	ConfidenceChange int
	NewConfidence    int
}

type ProgressService interface {
	Submit(ctx context.Context, in ProgressSubmission) (*ProgressResult, error)
	Recent(ctx context.Context, userID primitive.ObjectID, days int) ([]domain.Progress, error)
	Trend(ctx context.Context, userID primitive.ObjectID, days int) ([]domain.TrendPoint, error)
	Stats(ctx context.Context, userID primitive.ObjectID, days int) (domain.Stats, error)
}

// Clock settings shared by the progress calculations.
type ProgressOptions struct {
	Location *time.Location
	Now      func() time.Time
}

type progressService struct {
	progressRepo repository.ProgressRepository
	userRepo     repository.UserRepository
	planRepo     repository.PlanRepository
	opts         ProgressOptions
	logger       *zap.Logger
}

func NewProgressService(
	progressRepo repository.ProgressRepository,
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	opts ProgressOptions,
	logger *zap.Logger,
) ProgressService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &progressService{
		progressRepo: progressRepo,
		userRepo:     userRepo,
		planRepo:     planRepo,
		opts:         opts,
		logger:       logger,
	}
}

func validateSubmission(in *ProgressSubmission) error {
	if in.TotalTasks <= 0 {
		return fmt.Errorf("%w: totalTasks must be positive", ErrInvalidProgress)
	}
	if in.TasksCompleted < 0 || in.TasksCompleted > in.TotalTasks {
		return fmt.Errorf("%w: tasksCompleted must be between 0 and totalTasks", ErrInvalidProgress)
	}
	if in.Mood == "" {
		in.Mood = domain.MoodOkay
	}
	if !in.Mood.Valid() {
		return fmt.Errorf("%w: unknown mood %q", ErrInvalidProgress, in.Mood)
	}
	return nil
}

func (s *progressService) Submit(ctx context.Context, in ProgressSubmission) (*ProgressResult, error) {
	if err := validateSubmission(&in); err != nil {
		return nil, err
	}

	previous, next, err := s.applyConfidence(ctx, in.UserID, progress.ConfidenceChange(in.TasksCompleted, in.TotalTasks))
	if err != nil {
		return nil, err
	}

	now := s.opts.Now().UTC()
	record := &domain.Progress{
		UserID:          in.UserID,
		Date:            now,
		ConfidenceScore: next,
		TasksCompleted:  in.TasksCompleted,
		TotalTasks:      in.TotalTasks,
		CompletionRate:  progress.CompletionRate(in.TasksCompleted, in.TotalTasks),
		Categories:      s.todaysCategories(ctx, in.UserID, now),
		Mood:            in.Mood,
		Notes:           in.Notes,
		Achievements:    nonNil(in.Achievements),
		Challenges:      nonNil(in.Challenges),
		NextDayGoals:    nonNil(in.NextDayGoals),
	}
	if _, err := s.progressRepo.Create(ctx, record); err != nil {
		s.logger.Error("progress record not stored after confidence update",
			zap.String("userId", in.UserID.Hex()), zap.Int("newConfidence", next), zap.Error(err))
		return nil, processing("save progress", err)
	}

	return &ProgressResult{
		Progress:         record,
		ConfidenceChange: next - previous,
		NewConfidence:    next,
	}, nil
}

// applyConfidence reads, recomputes and conditionally writes the score.
// next depends only on the value it replaces, so a score that moved away and
// back between the read and the swap still yields the right result.
func (s *progressService) applyConfidence(ctx context.Context, userID primitive.ObjectID, change int) (previous, next int, err error) {
	for attempt := 1; attempt <= confidenceAttempts; attempt++ {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return 0, 0, ErrUserNotFound
			}
			return 0, 0, processing("load user", err)
		}

		previous = user.Assessment.CurrentConfidence
		next = progress.ApplyChange(previous, change)

		err = s.userRepo.CompareAndSwapConfidence(ctx, userID, previous, next)
		switch {
		case err == nil:
			return previous, next, nil
		case errors.Is(err, repository.ErrConflict):
			s.logger.Debug("confidence update conflicted", zap.String("userId", userID.Hex()), zap.Int("attempt", attempt))
			continue
		case errors.Is(err, repository.ErrNotFound):
			return 0, 0, ErrUserNotFound
		default:
			return 0, 0, processing("update confidence", err)
		}
	}
	return 0, 0, ErrConfidenceConflict
}

// todaysCategories breaks down today's plan when there is one. It never fails the submission.
func (s *progressService) todaysCategories(ctx context.Context, userID primitive.ObjectID, now time.Time) []domain.CategoryStat {
	plan, err := s.planRepo.GetLatestActiveSince(ctx, userID, progress.StartOfDay(now, s.opts.Location))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("could not load today's plan for category breakdown", zap.String("userId", userID.Hex()), zap.Error(err))
		}
		return []domain.CategoryStat{}
	}
	return progress.CategoryBreakdown(plan.Tasks)
}

func (s *progressService) Recent(ctx context.Context, userID primitive.ObjectID, days int) ([]domain.Progress, error) {
	if days <= 0 {
		days = DefaultProgressDays
	}
	return s.progressRepo.GetRecentByUser(ctx, userID, days)
}

// Trend uses the last N records, not N calendar days.
func (s *progressService) Trend(ctx context.Context, userID primitive.ObjectID, days int) ([]domain.TrendPoint, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}
	records, err := s.progressRepo.GetRecentByUser(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	return progress.Trend(records), nil
}

func (s *progressService) Stats(ctx context.Context, userID primitive.ObjectID, days int) (domain.Stats, error) {
	if days <= 0 {
		days = DefaultStatsDays
	}
	now := s.opts.Now()
	records, err := s.progressRepo.GetSince(ctx, userID, now.AddDate(0, 0, -days))
	if err != nil {
		return domain.Stats{}, err
	}
	return progress.Summarize(records, now, s.opts.Location), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

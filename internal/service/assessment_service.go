package service

import (
	"context"
	"errors"
	"fmt"

	"alcyxob/confidence-coach/internal/assessment"
	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AssessmentResult is the initial score plus the first plan built from it.
type AssessmentResult struct {
	ConfidenceScore int
	Plan            *GeneratedPlan
}

type AssessmentService interface {
	Questions() []assessment.Question
	Submit(ctx context.Context, userID primitive.ObjectID, responses domain.Responses) (*AssessmentResult, error)
}

type assessmentService struct {
	userRepo    repository.UserRepository
	planService PlanService
	logger      *zap.Logger
}

func NewAssessmentService(userRepo repository.UserRepository, planService PlanService, logger *zap.Logger) AssessmentService {
	return &assessmentService{
		userRepo:    userRepo,
		planService: planService,
		logger:      logger,
	}
}

func (s *assessmentService) Questions() []assessment.Question {
	return assessment.Questions()
}

// Submit scores the responses, stores them on the user and generates the
// first plan synchronously. Resubmitting resets both confidence values.
func (s *assessmentService) Submit(ctx context.Context, userID primitive.ObjectID, responses domain.Responses) (*AssessmentResult, error) {
	if err := assessment.Validate(responses, false); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, processing("load user", err)
	}

	score := assessment.Score(responses)
	stored := domain.Assessment{
		Completed:         true,
		Responses:         &responses,
		InitialConfidence: score,
		CurrentConfidence: score,
	}
	if err := s.userRepo.SaveAssessment(ctx, userID, stored); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, processing("save assessment", err)
	}
	user.Assessment = stored

	s.logger.Info("assessment submitted", zap.String("userId", userID.Hex()), zap.Int("confidenceScore", score))

	plan, err := s.planService.GenerateFor(ctx, user)
	if err != nil {
		return nil, processing("generate plan", err)
	}

	return &AssessmentResult{ConfidenceScore: score, Plan: plan}, nil
}

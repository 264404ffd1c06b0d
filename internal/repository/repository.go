package repository

import (
	"context"
	"time"

	"alcyxob/confidence-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrConflict     = RepositoryError("concurrent modification")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	// Create assigns ID and timestamps. A taken email yields ErrDuplicate.
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// SaveAssessment replaces the embedded assessment as a whole.
	SaveAssessment(ctx context.Context, id primitive.ObjectID, assessment domain.Assessment) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, profile domain.Profile) error
	// CompareAndSwapConfidence sets assessment.currentConfidence to next only if
	// it still equals expected. A stale expected value yields ErrConflict.
	CompareAndSwapConfidence(ctx context.Context, id primitive.ObjectID, expected, next int) error
}

// PlanRepository defines the interface for interacting with plan data.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	// GetLatestActiveSince returns the most recently created active plan dated at or after since.
	GetLatestActiveSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (*domain.Plan, error)
	// GetRecentByUser returns up to limit plans, newest date first.
	GetRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Plan, error)
	// SetTaskCompletion updates one task of an active plan and returns the stored plan.
	// ErrNotFound covers a missing plan, a missing task and a plan that is no longer active.
	SetTaskCompletion(ctx context.Context, planID primitive.ObjectID, taskID string, completed bool, at time.Time) (*domain.Plan, error)
	// UpdateStatus moves a plan from one status to another and returns the stored plan.
	// ErrNotFound is returned when no plan with that id is in status from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.PlanStatus) (*domain.Plan, error)
	// CancelActiveSince cancels the user's active plans dated at or after since, except keep.
	CancelActiveSince(ctx context.Context, userID primitive.ObjectID, since time.Time, keep primitive.ObjectID) (int64, error)
}

// ProgressRepository defines the interface for the append-only progress history.
type ProgressRepository interface {
	Create(ctx context.Context, progress *domain.Progress) (primitive.ObjectID, error)
	// GetRecentByUser returns up to limit records, newest first.
	GetRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Progress, error)
	// GetSince returns every record dated at or after since, newest first.
	GetSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.Progress, error)
}

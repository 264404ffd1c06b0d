package service

import (
	"context"
	"errors"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, profile domain.Profile) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile replaces the profile and returns the stored user.
// The name cannot be blanked; an empty name keeps the current one.
func (s *userService) UpdateProfile(ctx context.Context, id primitive.ObjectID, profile domain.Profile) (*domain.User, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.Name == "" {
		profile.Name = current.Profile.Name
	}

	if err := s.userRepo.UpdateProfile(ctx, id, profile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	mu      sync.RWMutex
	users   map[primitive.ObjectID]*domain.User
	byEmail map[string]primitive.ObjectID
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[primitive.ObjectID]*domain.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return primitive.NilObjectID, repository.ErrDuplicate
	}

	user.ID = primitive.NewObjectID()
	user.Email = email
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.LastActive.IsZero() {
		user.LastActive = now
	}

	r.users[user.ID] = cloneUser(user)
	r.byEmail[email] = user.ID
	return user.ID, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) SaveAssessment(_ context.Context, id primitive.ObjectID, assessment domain.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	u.Assessment = cloneAssessment(assessment)
	u.LastActive = now
	u.UpdatedAt = now
	return nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id primitive.ObjectID, profile domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	u.Profile = cloneProfile(profile)
	u.LastActive = now
	u.UpdatedAt = now
	return nil
}

func (r *UserRepository) CompareAndSwapConfidence(_ context.Context, id primitive.ObjectID, expected, next int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Assessment.CurrentConfidence != expected {
		return repository.ErrConflict
	}
	now := time.Now().UTC()
	u.Assessment.CurrentConfidence = next
	u.LastActive = now
	u.UpdatedAt = now
	return nil
}

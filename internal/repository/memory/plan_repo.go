package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanRepository struct {
	mu    sync.RWMutex
	plans []*domain.Plan // insertion order
}

var _ repository.PlanRepository = (*PlanRepository)(nil)

func NewPlanRepository() *PlanRepository {
	return &PlanRepository{}
}

func (r *PlanRepository) Create(_ context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = plan.CreatedAt
	r.plans = append(r.plans, clonePlan(plan))
	return plan.ID, nil
}

// find must be called with the lock held.
func (r *PlanRepository) find(id primitive.ObjectID) *domain.Plan {
	for _, p := range r.plans {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *PlanRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.find(id)
	if p == nil {
		return nil, repository.ErrNotFound
	}
	return clonePlan(p), nil
}

func (r *PlanRepository) GetLatestActiveSince(_ context.Context, userID primitive.ObjectID, since time.Time) (*domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.Plan
	for _, p := range r.plans {
		if p.UserID != userID || p.Status != domain.PlanActive || p.Date.Before(since) {
			continue
		}
		// Later insertions win ties on createdAt.
		if latest == nil || !p.CreatedAt.Before(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	return clonePlan(latest), nil
}

func (r *PlanRepository) GetRecentByUser(_ context.Context, userID primitive.ObjectID, limit int) ([]domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plans := []domain.Plan{}
	for i := len(r.plans) - 1; i >= 0; i-- {
		if r.plans[i].UserID == userID {
			plans = append(plans, *clonePlan(r.plans[i]))
		}
	}
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].Date.After(plans[j].Date)
	})
	if limit > 0 && len(plans) > limit {
		plans = plans[:limit]
	}
	return plans, nil
}

func (r *PlanRepository) SetTaskCompletion(_ context.Context, planID primitive.ObjectID, taskID string, completed bool, at time.Time) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.find(planID)
	if p == nil || p.Status != domain.PlanActive {
		return nil, repository.ErrNotFound
	}
	i := p.TaskIndex(taskID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}

	p.Tasks[i].Completed = completed
	if completed {
		ts := at
		p.Tasks[i].CompletedAt = &ts
	} else {
		p.Tasks[i].CompletedAt = nil
	}
	p.UpdatedAt = at
	return clonePlan(p), nil
}

func (r *PlanRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to domain.PlanStatus) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.find(id)
	if p == nil || p.Status != from {
		return nil, repository.ErrNotFound
	}
	p.Status = to
	p.UpdatedAt = time.Now().UTC()
	return clonePlan(p), nil
}

func (r *PlanRepository) CancelActiveSince(_ context.Context, userID primitive.ObjectID, since time.Time, keep primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	now := time.Now().UTC()
	for _, p := range r.plans {
		if p.UserID != userID || p.ID == keep || p.Status != domain.PlanActive || p.Date.Before(since) {
			continue
		}
		p.Status = domain.PlanCancelled
		p.UpdatedAt = now
		n++
	}
	return n, nil
}

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

type ProgressRepository struct {
	mu      sync.RWMutex
	records []*domain.Progress
}

var _ repository.ProgressRepository = (*ProgressRepository)(nil)

func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

func (r *ProgressRepository) Create(_ context.Context, progress *domain.Progress) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	progress.ID = primitive.NewObjectID()
	if progress.Date.IsZero() {
		progress.Date = time.Now().UTC()
	}
	r.records = append(r.records, cloneProgress(progress))
	return progress.ID, nil
}

// byUser must be called with the read lock held. Results are newest first.
func (r *ProgressRepository) byUser(userID primitive.ObjectID, keep func(*domain.Progress) bool) []domain.Progress {
	out := []domain.Progress{}
	for i := len(r.records) - 1; i >= 0; i-- {
		p := r.records[i]
		if p.UserID == userID && keep(p) {
			out = append(out, *cloneProgress(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func (r *ProgressRepository) GetRecentByUser(_ context.Context, userID primitive.ObjectID, limit int) ([]domain.Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.byUser(userID, func(*domain.Progress) bool { return true })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProgressRepository) GetSince(_ context.Context, userID primitive.ObjectID, since time.Time) ([]domain.Progress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byUser(userID, func(p *domain.Progress) bool { return !p.Date.Before(since) }), nil
}

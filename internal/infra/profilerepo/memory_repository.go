package profilerepo

import (
	"context"
	"sync"

	"github.com/yanqian/label-insight/internal/domain/profile"
)

// MemoryRepository keeps profiles in a map keyed by user id.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[int64]profile.HealthProfile
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[int64]profile.HealthProfile)}
}

func (r *MemoryRepository) Get(_ context.Context, userID int64) (profile.HealthProfile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	return p, ok, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, p profile.HealthProfile) (profile.HealthProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = p
	return p, nil
}

var _ profile.Repository = (*MemoryRepository)(nil)

package profile

import "context"

// Repository persists one profile per user.
type Repository interface {
	Get(ctx context.Context, userID int64) (HealthProfile, bool, error)
	Upsert(ctx context.Context, profile HealthProfile) (HealthProfile, error)
}

package profilerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/label-insight/internal/domain/profile"
)

const profileColumns = `user_id, name, age, gender, height, weight,
	dietary_preferences, allergies, medical_conditions, lifestyle_habits, updated_at`

// PostgresRepository persists profiles in the health_profiles table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Get(ctx context.Context, userID int64) (profile.HealthProfile, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM health_profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return profile.HealthProfile{}, false, nil
	}
	if err != nil {
		return profile.HealthProfile{}, false, err
	}
	return p, true, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, p profile.HealthProfile) (profile.HealthProfile, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO health_profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			height = EXCLUDED.height,
			weight = EXCLUDED.weight,
			dietary_preferences = EXCLUDED.dietary_preferences,
			allergies = EXCLUDED.allergies,
			medical_conditions = EXCLUDED.medical_conditions,
			lifestyle_habits = EXCLUDED.lifestyle_habits,
			updated_at = EXCLUDED.updated_at
		RETURNING `+profileColumns,
		p.UserID, p.Name, p.Age, p.Gender, p.Height, p.Weight,
		p.DietaryPreferences, p.Allergies, p.MedicalConditions, p.LifestyleHabits, p.UpdatedAt,
	)
	return scanProfile(row)
}

func scanProfile(row pgx.Row) (profile.HealthProfile, error) {
	var p profile.HealthProfile
	err := row.Scan(&p.UserID, &p.Name, &p.Age, &p.Gender, &p.Height, &p.Weight,
		&p.DietaryPreferences, &p.Allergies, &p.MedicalConditions, &p.LifestyleHabits, &p.UpdatedAt)
	if err != nil {
		return profile.HealthProfile{}, err
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

var _ profile.Repository = (*PostgresRepository)(nil)

package profilerepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yanqian/label-insight/internal/domain/profile"
	"github.com/yanqian/label-insight/internal/infra/sqlitestore"
)

// SQLiteRepository persists profiles through gorm.
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository wraps an opened database.
func NewSQLiteRepository(db *gorm.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, userID int64) (profile.HealthProfile, bool, error) {
	var model sqlitestore.ProfileModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile.HealthProfile{}, false, nil
	}
	if err != nil {
		return profile.HealthProfile{}, false, err
	}
	return toProfile(model), true, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p profile.HealthProfile) (profile.HealthProfile, error) {
	model := sqlitestore.ProfileModel{
		UserID:             p.UserID,
		Name:               p.Name,
		Age:                p.Age,
		Gender:             p.Gender,
		Height:             p.Height,
		Weight:             p.Weight,
		DietaryPreferences: p.DietaryPreferences,
		Allergies:          p.Allergies,
		MedicalConditions:  p.MedicalConditions,
		LifestyleHabits:    p.LifestyleHabits,
		UpdatedAt:          p.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(updatableColumns),
	}).Create(&model).Error
	if err != nil {
		return profile.HealthProfile{}, err
	}
	return p, nil
}

var updatableColumns = []string{
	"name", "age", "gender", "height", "weight",
	"dietary_preferences", "allergies", "medical_conditions", "lifestyle_habits", "updated_at",
}

func toProfile(m sqlitestore.ProfileModel) profile.HealthProfile {
	return profile.HealthProfile{
		UserID:             m.UserID,
		Name:               m.Name,
		Age:                m.Age,
		Gender:             m.Gender,
		Height:             m.Height,
		Weight:             m.Weight,
		DietaryPreferences: m.DietaryPreferences,
		Allergies:          m.Allergies,
		MedicalConditions:  m.MedicalConditions,
		LifestyleHabits:    m.LifestyleHabits,
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
}

var _ profile.Repository = (*SQLiteRepository)(nil)

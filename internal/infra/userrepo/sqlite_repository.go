package userrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yanqian/label-insight/internal/domain/auth"
	"github.com/yanqian/label-insight/internal/infra/sqlitestore"
	"github.com/yanqian/label-insight/pkg/util"
)

// SQLiteRepository persists users through gorm.
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository wraps an opened database.
func NewSQLiteRepository(db *gorm.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new user row.
func (r *SQLiteRepository) Create(ctx context.Context, email, passwordHash string) (auth.User, error) {
	model := sqlitestore.UserModel{Email: email, PasswordHash: passwordHash, CreatedAt: util.NowUTC()}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return auth.User{}, auth.ErrEmailExists
		}
		return auth.User{}, err
	}
	return toUser(model), nil
}

// GetByEmail fetches a user by email.
func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByID fetches by primary key.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *SQLiteRepository) first(ctx context.Context, cond string, arg any) (auth.User, bool, error) {
	var model sqlitestore.UserModel
	err := r.db.WithContext(ctx).Where(cond, arg).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.User{}, false, nil
	}
	if err != nil {
		return auth.User{}, false, err
	}
	return toUser(model), true, nil
}

func toUser(m sqlitestore.UserModel) auth.User {
	return auth.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

var _ auth.Repository = (*SQLiteRepository)(nil)

// Package sqlitestore opens the embedded SQLite database and owns its schema.
package sqlitestore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// UserModel is the users table.
type UserModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Email        string    `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:60;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName pins the table name.
func (UserModel) TableName() string { return "users" }

// ProfileModel is the health_profiles table, one row per user.
type ProfileModel struct {
	ID                 int64   `gorm:"primaryKey;autoIncrement"`
	UserID             int64   `gorm:"uniqueIndex;not null"`
	Name               string  `gorm:"size:100;not null"`
	Age                int     `gorm:"not null"`
	Gender             string  `gorm:"size:10;not null"`
	Height             float64 `gorm:"not null"`
	Weight             float64 `gorm:"not null"`
	DietaryPreferences string  `gorm:"size:200"`
	Allergies          string  `gorm:"size:300"`
	MedicalConditions  string  `gorm:"size:300"`
	LifestyleHabits    string  `gorm:"size:300"`
	UpdatedAt          time.Time
}

// TableName pins the table name.
func (ProfileModel) TableName() string { return "health_profiles" }

// Open connects to the database at path, creating parent directories, and
// migrates the schema.
func Open(path string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &ProfileModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package profilerepo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/label-insight/internal/domain/profile"
	"github.com/yanqian/label-insight/internal/infra/sqlitestore"
)

func exerciseRepository(t *testing.T, repo profile.Repository) {
	t.Helper()
	ctx := context.Background()

	_, found, err := repo.Get(ctx, 9)
	require.NoError(t, err)
	require.False(t, found)

	p := profile.HealthProfile{
		UserID:    9,
		Name:      "Ana",
		Age:       30,
		Gender:    "Female",
		Height:    170,
		Weight:    62.5,
		Allergies: "peanuts",
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err = repo.Upsert(ctx, p)
	require.NoError(t, err)

	p.Age = 31
	p.Allergies = ""
	_, err = repo.Upsert(ctx, p)
	require.NoError(t, err)

	got, found, err := repo.Get(ctx, 9)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 31, got.Age)
	require.Empty(t, got.Allergies)
	require.Equal(t, 62.5, got.Weight)
	require.True(t, p.UpdatedAt.Equal(got.UpdatedAt))
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestSQLiteRepository(t *testing.T) {
	db, err := sqlitestore.Open(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlitestore.Close(db) })
	repo := NewSQLiteRepository(db)
	exerciseRepository(t, repo)

	var count int64
	require.NoError(t, db.Model(&sqlitestore.ProfileModel{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

package sqlitestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "site.db"))
	require.NoError(t, err)
	defer func() { require.NoError(t, Close(db)) }()

	require.True(t, db.Migrator().HasTable("users"))
	require.True(t, db.Migrator().HasTable("health_profiles"))
	require.True(t, db.Migrator().HasIndex(&ProfileModel{}, "idx_health_profiles_user_id"))
}

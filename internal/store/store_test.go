package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/lungsight/apiserver/types"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// testDB opens an isolated sqlite database and applies the real migration.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "db", "migrations", "sqlite", "000001_init.up.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

func TestUserRepositoryCreateAndGet(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, types.User{
		FullName:     "Alice Smith",
		Gender:       "F",
		Age:          34,
		Username:     "alice",
		PasswordHash: "hash",
		UUID:         "uuid-alice",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "uuid-alice", byName.UUID)
	require.Equal(t, "hash", byName.PasswordHash)

	byUUID, err := repo.GetByUUID(ctx, "uuid-alice")
	require.NoError(t, err)
	require.Equal(t, "alice", byUUID.Username)
}

func TestUserRepositoryNotFound(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	_, err := repo.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByUUID(ctx, "no-uuid")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepositoryDuplicateUsername(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	user := types.User{
		FullName:     "Alice Smith",
		Gender:       "F",
		Age:          34,
		Username:     "alice",
		PasswordHash: "hash",
		UUID:         "uuid-alice",
	}
	_, err := repo.Create(ctx, user)
	require.NoError(t, err)

	user.UUID = "uuid-other"
	_, err = repo.Create(ctx, user)
	require.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestArtifactRepositoryVersioning(t *testing.T) {
	repo := NewArtifactRepository(testDB(t))
	ctx := context.Background()

	first, err := repo.NextVersion(ctx, "Report_XR1.pdf", 100)
	require.NoError(t, err)
	require.Equal(t, 1, first.Version)

	second, err := repo.NextVersion(ctx, "Report_XR1.pdf", 200)
	require.NoError(t, err)
	require.Equal(t, 2, second.Version)

	// Versions are counted per filename.
	other, err := repo.NextVersion(ctx, "Report_XR2.pdf", 50)
	require.NoError(t, err)
	require.Equal(t, 1, other.Version)

	latest, err := repo.GetLatest(ctx, "Report_XR1.pdf")
	require.NoError(t, err)
	require.Equal(t, 2, latest.Version)
	require.Equal(t, int64(200), latest.SizeBytes)
}

func TestArtifactRepositoryGetLatestNotFound(t *testing.T) {
	repo := NewArtifactRepository(testDB(t))

	_, err := repo.GetLatest(context.Background(), "Report_Missing.pdf")
	require.ErrorIs(t, err, ErrNotFound)
}

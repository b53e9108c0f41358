package sessionstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:sessionstore_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS session (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM session`)
	require.NoError(t, err)
	return db
}

func TestSQLiteRepository_SetGet(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyAccessToken, []byte("tok-1")))

	got, err := repo.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, []byte("tok-1"), got)
}

func TestSQLiteRepository_Get_MissingKeyIsNil(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)

	got, err := repo.Get(context.Background(), KeyResetToken)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLiteRepository_Set_OverwritesExisting(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyAccessToken, []byte("old")))
	require.NoError(t, repo.Set(ctx, KeyAccessToken, []byte("new")))

	got, err := repo.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, []byte("new"), got)
}

func TestSQLiteRepository_Delete(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyVerifyToken, []byte("vt123")))
	require.NoError(t, repo.Delete(ctx, KeyVerifyToken))

	got, err := repo.Get(ctx, KeyVerifyToken)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLiteRepository_Clear_RemovesAllRows(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyAccessToken, []byte("tok")))
	require.NoError(t, repo.Set(ctx, KeyUser, []byte(`{"id":1}`)))

	require.NoError(t, repo.Clear(ctx))

	for _, key := range []string{KeyAccessToken, KeyUser} {
		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		require.Nil(t, got, "key %s must be gone", key)
	}
}

func TestInitDatabase_AppliesMigrations(t *testing.T) {
	db, err := InitDatabase(context.Background(), t.TempDir()+"/session.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSQLiteRepository(db)
	require.NoError(t, repo.Set(context.Background(), KeyAccessToken, []byte("tok")))
}

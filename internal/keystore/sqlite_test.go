package keystore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func TestSQLiteStore_GetAbsentKey(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))

	v, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestSQLiteStore_SetGetOverwrite(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v1"))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestSQLiteStore_Delete(t *testing.T) {
	s := NewSQLiteStore(setupDB(t))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Delete(ctx, "k"))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	// deleting again is not an error
	require.NoError(t, s.Delete(ctx, "k"))
}

func TestMemoryStore_Basics(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, s.Set(ctx, "k", "v"))
	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Delete(ctx, "k"))
	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

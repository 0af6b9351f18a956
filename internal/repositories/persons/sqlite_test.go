package persons

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/rememberme/internal/models"
	"github.com/dmitrijs2005/rememberme/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE person_cards (
		id TEXT PRIMARY KEY,
		fullName TEXT NOT NULL,
		preferredName TEXT,
		title TEXT,
		company TEXT,
		photoURI TEXT,
		oneLineContext TEXT,
		lastMet TEXT,
		linkedContacts TEXT NOT NULL,
		privacy TEXT NOT NULL,
		starred INTEGER NOT NULL DEFAULT 0,
		createdAt TEXT NOT NULL,
		updatedAt TEXT NOT NULL
	)`)
	require.NoError(t, err)
	return db
}

func repositories(t *testing.T) map[string]Repository {
	t.Helper()
	var mu sync.RWMutex
	return map[string]Repository{
		"sqlite": NewSQLiteRepository(newTestDB(t)),
		"memory": NewMemoryRepository(&mu, make(map[string]models.PersonRow)),
	}
}

func row(id, updatedAt string, starred bool) *models.PersonRow {
	return &models.PersonRow{
		ID:             id,
		FullName:       "0011:ZnVsbE5hbWU=",
		LinkedContacts: "2233:Y29udGFjdHM=",
		Privacy:        "4455:cHJpdmFjeQ==",
		Starred:        starred,
		CreatedAt:      "2025-03-14T08:00:00.000Z",
		UpdatedAt:      updatedAt,
	}
}

func TestRepository_InsertAndGetByID(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			full := row("p1", "2025-03-14T10:00:00.000Z", true)
			full.PreferredName = "6677:cHJlZg=="
			full.Title = "8899:dGl0bGU="
			full.PhotoURI = "file:///p1.jpg"
			full.LastMet = "2025-03-13T10:00:00.000Z"
			require.NoError(t, repo.Insert(ctx, full))

			got, err := repo.GetByID(ctx, "p1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, *full, *got)

			// optional fields absent: stored as NULL, read back as ""
			sparse := row("p2", "2025-03-14T09:00:00.000Z", false)
			require.NoError(t, repo.Insert(ctx, sparse))

			got, err = repo.GetByID(ctx, "p2")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Empty(t, got.PreferredName)
			assert.Empty(t, got.LastMet)

			got, err = repo.GetByID(ctx, "absent")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestRepository_InsertDuplicate(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, repo.Insert(ctx, row("p1", "2025-03-14T10:00:00.000Z", false)))
			err := repo.Insert(ctx, row("p1", "2025-03-14T10:00:00.000Z", false))
			assert.ErrorIs(t, err, shared.ErrDuplicateID)
		})
	}
}

func TestRepository_Update(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := repo.Update(ctx, row("ghost", "2025-03-14T10:00:00.000Z", false))
			assert.ErrorIs(t, err, shared.ErrNotFound)

			require.NoError(t, repo.Insert(ctx, row("p1", "2025-03-14T10:00:00.000Z", false)))

			changed := row("p1", "2025-03-14T12:00:00.000Z", true)
			changed.FullName = "aabb:bmV3TmFtZQ=="
			changed.CreatedAt = "1999-01-01T00:00:00.000Z" // must be ignored
			require.NoError(t, repo.Update(ctx, changed))

			got, err := repo.GetByID(ctx, "p1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "aabb:bmV3TmFtZQ==", got.FullName)
			assert.True(t, got.Starred)
			assert.Equal(t, "2025-03-14T12:00:00.000Z", got.UpdatedAt)
			assert.Equal(t, "2025-03-14T08:00:00.000Z", got.CreatedAt, "createdAt is immutable")
		})
	}
}

func TestRepository_GetAllOrderingAndLimit(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, repo.Insert(ctx, row("b", "2025-03-14T10:00:00.000Z", false)))
			require.NoError(t, repo.Insert(ctx, row("c", "2025-03-14T12:00:00.000Z", false)))
			// same updatedAt as "b": id breaks the tie ascending
			require.NoError(t, repo.Insert(ctx, row("a", "2025-03-14T10:00:00.000Z", false)))

			all, err := repo.GetAll(ctx, 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"c", "a", "b"}, rowIDs(all))

			limited, err := repo.GetAll(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"c", "a"}, rowIDs(limited))
		})
	}
}

func TestRepository_GetStarred(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, repo.Insert(ctx, row("a", "2025-03-14T10:00:00.000Z", true)))
			require.NoError(t, repo.Insert(ctx, row("b", "2025-03-14T12:00:00.000Z", false)))
			require.NoError(t, repo.Insert(ctx, row("c", "2025-03-14T11:00:00.000Z", true)))

			starred, err := repo.GetStarred(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"c", "a"}, rowIDs(starred))
		})
	}
}

func TestRepository_ExistsAndDelete(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			exists, err := repo.Exists(ctx, "p1")
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, repo.Insert(ctx, row("p1", "2025-03-14T10:00:00.000Z", false)))

			exists, err = repo.Exists(ctx, "p1")
			require.NoError(t, err)
			assert.True(t, exists)

			require.NoError(t, repo.Delete(ctx, "p1"))
			require.NoError(t, repo.Delete(ctx, "p1")) // idempotent

			exists, err = repo.Exists(ctx, "p1")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func rowIDs(rows []models.PersonRow) []string {
	result := make([]string, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.ID)
	}
	return result
}

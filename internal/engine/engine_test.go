package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/rememberme/internal/cryptox"
	"github.com/dmitrijs2005/rememberme/internal/models"
	"github.com/dmitrijs2005/rememberme/internal/repositories/repomanager"
	"github.com/dmitrijs2005/rememberme/internal/shared"
)

type backend struct {
	name string
	open func(t *testing.T, key []byte) *Engine
}

func openSQLite(t *testing.T, key []byte) *Engine {
	t.Helper()
	mgr, err := repomanager.NewSQLiteManager(":memory:")
	require.NoError(t, err)
	e, err := Open(context.Background(), key, mgr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func openMemory(t *testing.T, key []byte) *Engine {
	t.Helper()
	e, err := Open(context.Background(), key, repomanager.NewInMemoryManager())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

var backends = []backend{
	{"sqlite", openSQLite},
	{"memory", openMemory},
}

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := cryptox.GenerateSecureKey()
	require.NoError(t, err)
	return key
}

func samplePerson(id string, updatedAt time.Time) *models.Person {
	lastMet := updatedAt.Add(-24 * time.Hour)
	return &models.Person{
		ID:             id,
		FullName:       "Jordan Lee",
		PreferredName:  "Jo",
		Title:          "Staff Engineer",
		Company:        "Acme Corp",
		PhotoURI:       "file:///photos/" + id + ".jpg",
		OneLineContext: "met at the storage meetup",
		QuickFacts: []models.QuickFact{
			{ID: id + "-f1", Label: "Coffee order", Value: "flat white", Icon: "cup"},
			{ID: id + "-f2", Label: "Kids", Value: "two"},
		},
		Tags:    []string{"vendor", "Conference"},
		LastMet: &lastMet,
		Notes: []models.Note{
			{ID: id + "-n1", Date: updatedAt.Add(-48 * time.Hour), ShortNote: "intro call", MeetingContext: "zoom"},
		},
		LinkedContacts: models.LinkedContacts{Phone: "+1 555 0100", Email: "jordan@acme.test"},
		Privacy:        models.PrivacySettings{SharedWith: []string{"assistant"}, ConsentGiven: true},
		Starred:        true,
		CreatedAt:      updatedAt.Add(-72 * time.Hour),
		UpdatedAt:      updatedAt,
	}
}

var baseTime = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func TestAddGetPerson_RoundTrip(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))
			ctx := context.Background()

			want := samplePerson("p1", baseTime)
			require.NoError(t, e.AddPerson(ctx, want))

			got, err := e.GetPerson(ctx, "p1")
			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, want.ID, got.ID)
			assert.Equal(t, "Jordan Lee", got.FullName)
			assert.Equal(t, "Jo", got.PreferredName)
			assert.Equal(t, "Staff Engineer", got.Title)
			assert.Equal(t, "Acme Corp", got.Company)
			assert.Equal(t, want.PhotoURI, got.PhotoURI)
			assert.Equal(t, "met at the storage meetup", got.OneLineContext)
			assert.Equal(t, want.QuickFacts, got.QuickFacts)
			assert.Equal(t, []string{"vendor", "conference"}, got.Tags)
			require.NotNil(t, got.LastMet)
			assert.True(t, got.LastMet.Equal(*want.LastMet))
			assert.Empty(t, got.Notes, "notes are loaded lazily, not joined")
			assert.Equal(t, want.LinkedContacts, got.LinkedContacts)
			assert.Equal(t, want.Privacy, got.Privacy)
			assert.True(t, got.Starred)
			assert.True(t, got.CreatedAt.Equal(want.CreatedAt))
			assert.True(t, got.UpdatedAt.Equal(want.UpdatedAt))
		})
	}
}

func TestGetPerson_AbsentIsNilNotError(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))

			got, err := e.GetPerson(context.Background(), "nope")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestAddPerson_DuplicateID(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))
			ctx := context.Background()

			require.NoError(t, e.AddPerson(ctx, samplePerson("p1", baseTime)))
			err := e.AddPerson(ctx, samplePerson("p1", baseTime))
			assert.ErrorIs(t, err, shared.ErrDuplicateID)
		})
	}
}

func TestAddPerson_RequiresFullName(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))

			p := samplePerson("p1", baseTime)
			p.FullName = "   "
			assert.ErrorIs(t, e.AddPerson(context.Background(), p), shared.ErrValidation)
		})
	}
}

func TestUpdatePerson_NotFound(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))

			err := e.UpdatePerson(context.Background(), samplePerson("ghost", baseTime))
			assert.ErrorIs(t, err, shared.ErrNotFound)
		})
	}
}

func TestUpdatePerson_ReplacesSubCollectionsKeepsNotes(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))
			ctx := context.Background()

			p := samplePerson("p1", baseTime)
			require.NoError(t, e.AddPerson(ctx, p))

			updated := samplePerson("p1", baseTime)
			updated.FullName = "Jordan A. Lee"
			updated.QuickFacts = []models.QuickFact{{ID: "p1-f3", Label: "Team", Value: "Platform"}}
			updated.Tags = []string{"mentor"}
			updated.Notes = nil // notes must survive regardless
			require.NoError(t, e.UpdatePerson(ctx, updated))

			got, err := e.GetPerson(ctx, "p1")
			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, "Jordan A. Lee", got.FullName)
			assert.Equal(t, []models.QuickFact{{ID: "p1-f3", Label: "Team", Value: "Platform"}}, got.QuickFacts)
			assert.Equal(t, []string{"mentor"}, got.Tags)
			assert.True(t, got.CreatedAt.Equal(p.CreatedAt), "createdAt is immutable")
			assert.True(t, got.UpdatedAt.After(p.UpdatedAt), "updatedAt is refreshed server-side")

			notes, err := e.GetNotes(ctx, "p1")
			require.NoError(t, err)
			require.Len(t, notes, 1)
			assert.Equal(t, "intro call", notes[0].ShortNote)
		})
	}
}

func TestUpdatePerson_IgnoresCallerUpdatedAt(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))
			ctx := context.Background()

			require.NoError(t, e.AddPerson(ctx, samplePerson("p1", baseTime)))

			updated := samplePerson("p1", baseTime)
			updated.UpdatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
			require.NoError(t, e.UpdatePerson(ctx, updated))

			got, err := e.GetPerson(ctx, "p1")
			require.NoError(t, err)
			assert.True(t, got.UpdatedAt.Year() >= 2025)
		})
	}
}

func TestDeletePerson_CascadesAndIsIdempotent(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))
			ctx := context.Background()

			require.NoError(t, e.AddPerson(ctx, samplePerson("p1", baseTime)))
			require.NoError(t, e.DeletePerson(ctx, "p1"))

			got, err := e.GetPerson(ctx, "p1")
			require.NoError(t, err)
			assert.Nil(t, got)

			notes, err := e.GetNotes(ctx, "p1")
			require.NoError(t, err)
			assert.Empty(t, notes)

			// deleting again is not an error
			require.NoError(t, e.DeletePerson(ctx, "p1"))
		})
	}
}

func TestDeletePerson_RemovesAllRows_SQLite(t *testing.T) {
	mgr, err := repomanager.NewSQLiteManager(":memory:")
	require.NoError(t, err)
	e, err := Open(context.Background(), testKey(t), mgr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	ctx := context.Background()

	require.NoError(t, e.AddPerson(ctx, samplePerson("p1", baseTime)))
	require.NoError(t, e.DeletePerson(ctx, "p1"))

	for _, table := range []string{"person_cards", "quick_facts", "notes", "tags"} {
		var n int
		require.NoError(t, mgr.Conn().QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestEncryptionOpacity_SQLite(t *testing.T) {
	mgr, err := repomanager.NewSQLiteManager(":memory:")
	require.NoError(t, err)
	e, err := Open(context.Background(), testKey(t), mgr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	ctx := context.Background()

	require.NoError(t, e.AddPerson(ctx, samplePerson("p1", baseTime)))

	var fullName, title, tag, factValue, shortNote string
	require.NoError(t, mgr.Conn().QueryRow(`SELECT fullName, title FROM person_cards WHERE id = 'p1'`).Scan(&fullName, &title))
	require.NoError(t, mgr.Conn().QueryRow(`SELECT tag FROM tags LIMIT 1`).Scan(&tag))
	require.NoError(t, mgr.Conn().QueryRow(`SELECT value FROM quick_facts WHERE id = 'p1-f1'`).Scan(&factValue))
	require.NoError(t, mgr.Conn().QueryRow(`SELECT shortNote FROM notes WHERE id = 'p1-n1'`).Scan(&shortNote))

	assert.NotEqual(t, "Jordan Lee", fullName)
	assert.NotContains(t, fullName, "Jordan")
	assert.NotEqual(t, "Staff Engineer", title)
	assert.NotContains(t, tag, "vendor")
	assert.NotEqual(t, "flat white", factValue)
	assert.NotEqual(t, "intro call", shortNote)

	// plaintext columns stay readable for indexing and sorting
	var starred int
	var updatedAt string
	require.NoError(t, mgr.Conn().QueryRow(`SELECT starred, updatedAt FROM person_cards WHERE id = 'p1'`).Scan(&starred, &updatedAt))
	assert.Equal(t, 1, starred)
	assert.Equal(t, models.FormatTime(baseTime), updatedAt)
}

func TestFieldIVsAreIndependent_SQLite(t *testing.T) {
	mgr, err := repomanager.NewSQLiteManager(":memory:")
	require.NoError(t, err)
	e, err := Open(context.Background(), testKey(t), mgr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	ctx := context.Background()

	p := samplePerson("p1", baseTime)
	p.Title = p.FullName // identical plaintext in two fields
	require.NoError(t, e.AddPerson(ctx, p))

	var fullName, title string
	require.NoError(t, mgr.Conn().QueryRow(`SELECT fullName, title FROM person_cards WHERE id = 'p1'`).Scan(&fullName, &title))
	assert.NotEqual(t, fullName, title, "same plaintext must not share an IV across fields")
}

func TestGetAllPeople_OrderAndLimit(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))
			ctx := context.Background()

			require.NoError(t, e.AddPerson(ctx, samplePerson("a", baseTime.Add(-2*time.Hour))))
			require.NoError(t, e.AddPerson(ctx, samplePerson("b", baseTime)))
			require.NoError(t, e.AddPerson(ctx, samplePerson("c", baseTime.Add(-1*time.Hour))))

			all, err := e.GetAllPeople(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []string{"b", "c", "a"}, ids(all))

			limited, err := e.GetAllPeople(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"b", "c"}, ids(limited))
		})
	}
}

func TestGetStarredPeople(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))
			ctx := context.Background()

			starred := samplePerson("a", baseTime)
			plain := samplePerson("b", baseTime.Add(time.Hour))
			plain.Starred = false
			require.NoError(t, e.AddPerson(ctx, starred))
			require.NoError(t, e.AddPerson(ctx, plain))

			got, err := e.GetStarredPeople(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a"}, ids(got))
		})
	}
}

func TestSearchPeople(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))
			ctx := context.Background()

			require.NoError(t, e.AddPerson(ctx, samplePerson("p1", baseTime)))

			other := samplePerson("p2", baseTime.Add(time.Hour))
			other.FullName = "Sam Park"
			other.PreferredName = ""
			other.Title = "Designer"
			other.Company = "Globex"
			other.Tags = []string{"climbing"}
			other.QuickFacts = []models.QuickFact{{ID: "p2-f1", Label: "Dog", Value: "golden retriever"}}
			require.NoError(t, e.AddPerson(ctx, other))

			tests := []struct {
				query string
				want  []string
			}{
				{"jordan", []string{"p1"}},    // full name, case-insensitive
				{"VENDOR", []string{"p1"}},    // tag
				{"design", []string{"p2"}},    // title substring
				{"acme", []string{"p1"}},      // company
				{"retriever", []string{"p2"}}, // quick-fact value
				{"er", []string{"p2", "p1"}},  // matches both, newest-first
				{"xyz-no-match", nil},
				{"", nil},    // empty query returns nothing
				{"   ", nil}, // whitespace-only too
			}

			for _, tt := range tests {
				got, err := e.SearchPeople(ctx, tt.query)
				require.NoError(t, err, tt.query)
				assert.Equal(t, tt.want, ids(got), "query %q", tt.query)
			}
		})
	}
}

func TestTagUniqueness_CaseInsensitive(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))
			ctx := context.Background()

			p := samplePerson("p1", baseTime)
			p.Tags = []string{"Vendor", "vendor", "VENDOR", "friend"}
			require.NoError(t, e.AddPerson(ctx, p))

			got, err := e.GetPerson(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, []string{"vendor", "friend"}, got.Tags)
		})
	}
}

func TestAddNote_And_GetNotesNewestFirst(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))
			ctx := context.Background()

			p := samplePerson("p1", baseTime)
			p.Notes = nil
			require.NoError(t, e.AddPerson(ctx, p))

			require.NoError(t, e.AddNote(ctx, "p1", &models.Note{ID: "n1", Date: baseTime.Add(-time.Hour), ShortNote: "older"}))
			require.NoError(t, e.AddNote(ctx, "p1", &models.Note{ID: "n2", Date: baseTime, ShortNote: "newer", MeetingContext: "lunch"}))

			notes, err := e.GetNotes(ctx, "p1")
			require.NoError(t, err)
			require.Len(t, notes, 2)
			assert.Equal(t, "newer", notes[0].ShortNote)
			assert.Equal(t, "lunch", notes[0].MeetingContext)
			assert.Equal(t, "older", notes[1].ShortNote)

			// adding a note does not refresh the person's updatedAt
			got, err := e.GetPerson(ctx, "p1")
			require.NoError(t, err)
			assert.True(t, got.UpdatedAt.Equal(baseTime))
		})
	}
}

func TestAddNote_UnknownPerson(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			e := b.open(t, testKey(t))

			err := e.AddNote(context.Background(), "ghost", &models.Note{ID: "n1", ShortNote: "orphan"})
			assert.ErrorIs(t, err, shared.ErrNotFound)
		})
	}
}

func TestWrongKeyFailsLoudly(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "cards.db")

	key1 := testKey(t)
	mgr1, err := repomanager.NewSQLiteManager(dbPath)
	require.NoError(t, err)
	e1, err := Open(ctx, key1, mgr1)
	require.NoError(t, err)
	require.NoError(t, e1.AddPerson(ctx, samplePerson("p1", baseTime)))
	require.NoError(t, e1.Close())

	key2 := testKey(t)
	mgr2, err := repomanager.NewSQLiteManager(dbPath)
	require.NoError(t, err)
	e2, err := Open(ctx, key2, mgr2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e2.Close() })

	got, err := e2.GetPerson(ctx, "p1")
	if err == nil {
		// CBC padding is probabilistic without an auth tag; even then the
		// plaintext must never come back intact
		require.NotNil(t, got)
		assert.NotEqual(t, "Jordan Lee", got.FullName)
		return
	}
	assert.ErrorIs(t, err, shared.ErrDecryptionFailed)
}

func TestEngine_UnusableAfterClose(t *testing.T) {
	e := openMemory(t, testKey(t))
	require.NoError(t, e.Close())

	_, err := e.GetAllPeople(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrNotInitialized)

	err = e.AddPerson(context.Background(), samplePerson("p1", baseTime))
	assert.ErrorIs(t, err, shared.ErrNotInitialized)
}

func TestOpen_RejectsBadKey(t *testing.T) {
	_, err := Open(context.Background(), []byte("short"), repomanager.NewInMemoryManager())
	assert.ErrorIs(t, err, shared.ErrEncryptionKeyMissing)
}

func TestOpen_IsIdempotentOverSameStore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "cards.db")
	key := testKey(t)

	mgr1, err := repomanager.NewSQLiteManager(dbPath)
	require.NoError(t, err)
	e1, err := Open(ctx, key, mgr1)
	require.NoError(t, err)
	require.NoError(t, e1.AddPerson(ctx, samplePerson("p1", baseTime)))
	require.NoError(t, e1.Close())

	mgr2, err := repomanager.NewSQLiteManager(dbPath)
	require.NoError(t, err)
	e2, err := Open(ctx, key, mgr2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e2.Close() })

	got, err := e2.GetPerson(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Jordan Lee", got.FullName)
}

func ids(people []models.Person) []string {
	if len(people) == 0 {
		return nil
	}
	result := make([]string, 0, len(people))
	for _, p := range people {
		result = append(result, p.ID)
	}
	return result
}

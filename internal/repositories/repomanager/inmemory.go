package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/rememberme/internal/keystore"
	"github.com/dmitrijs2005/rememberme/internal/models"
	"github.com/dmitrijs2005/rememberme/internal/repositories/notes"
	"github.com/dmitrijs2005/rememberme/internal/repositories/persons"
	"github.com/dmitrijs2005/rememberme/internal/repositories/quickfacts"
	"github.com/dmitrijs2005/rememberme/internal/repositories/tags"
)

// InMemoryManager is the volatile backend. Direct repository access locks
// per call; InTransaction holds the store lock for the whole function and
// restores a snapshot when it fails, so readers never observe a
// half-applied aggregate.
type InMemoryManager struct {
	mu sync.RWMutex

	persons map[string]models.PersonRow
	facts   map[string][]models.QuickFactRow
	notes   map[string]models.NoteRow
	tags    map[string][]models.TagRow

	ks *keystore.MemoryStore
}

func NewInMemoryManager() *InMemoryManager {
	return &InMemoryManager{
		persons: make(map[string]models.PersonRow),
		facts:   make(map[string][]models.QuickFactRow),
		notes:   make(map[string]models.NoteRow),
		tags:    make(map[string][]models.TagRow),
		ks:      keystore.NewMemoryStore(),
	}
}

func (m *InMemoryManager) Persons() persons.Repository {
	return persons.NewMemoryRepository(&m.mu, m.persons)
}

func (m *InMemoryManager) QuickFacts() quickfacts.Repository {
	return quickfacts.NewMemoryRepository(&m.mu, m.facts)
}

func (m *InMemoryManager) Notes() notes.Repository {
	return notes.NewMemoryRepository(&m.mu, m.notes)
}

func (m *InMemoryManager) Tags() tags.Repository {
	return tags.NewMemoryRepository(&m.mu, m.tags)
}

func (m *InMemoryManager) RunMigrations(context.Context) error {
	return nil
}

// unlockedRepos binds repositories to the live maps without locking; the
// manager already holds the write lock around the transaction body.
type unlockedRepos struct {
	m *InMemoryManager
}

func (r unlockedRepos) Persons() persons.Repository {
	return persons.NewMemoryRepository(nil, r.m.persons)
}

func (r unlockedRepos) QuickFacts() quickfacts.Repository {
	return quickfacts.NewMemoryRepository(nil, r.m.facts)
}

func (r unlockedRepos) Notes() notes.Repository {
	return notes.NewMemoryRepository(nil, r.m.notes)
}

func (r unlockedRepos) Tags() tags.Repository {
	return tags.NewMemoryRepository(nil, r.m.tags)
}

func (m *InMemoryManager) InTransaction(ctx context.Context, fn func(ctx context.Context, r Repositories) error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapPersons := clonePersonMap(m.persons)
	snapFacts := cloneSliceMap(m.facts)
	snapNotes := cloneNoteMap(m.notes)
	snapTags := cloneSliceMap(m.tags)

	restore := func() {
		restorePersonMap(m.persons, snapPersons)
		restoreSliceMap(m.facts, snapFacts)
		restoreNoteMap(m.notes, snapNotes)
		restoreSliceMap(m.tags, snapTags)
	}

	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
		if err != nil {
			restore()
		}
	}()

	err = fn(ctx, unlockedRepos{m: m})
	return err
}

func (m *InMemoryManager) Keystore() keystore.Store {
	return m.ks
}

func (m *InMemoryManager) Close() error {
	return nil
}

func clonePersonMap(src map[string]models.PersonRow) map[string]models.PersonRow {
	dst := make(map[string]models.PersonRow, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func restorePersonMap(live, snap map[string]models.PersonRow) {
	for k := range live {
		delete(live, k)
	}
	for k, v := range snap {
		live[k] = v
	}
}

func cloneNoteMap(src map[string]models.NoteRow) map[string]models.NoteRow {
	dst := make(map[string]models.NoteRow, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func restoreNoteMap(live, snap map[string]models.NoteRow) {
	for k := range live {
		delete(live, k)
	}
	for k, v := range snap {
		live[k] = v
	}
}

func cloneSliceMap[T any](src map[string][]T) map[string][]T {
	dst := make(map[string][]T, len(src))
	for k, v := range src {
		cp := make([]T, len(v))
		copy(cp, v)
		dst[k] = cp
	}
	return dst
}

func restoreSliceMap[T any](live, snap map[string][]T) {
	for k := range live {
		delete(live, k)
	}
	for k, v := range snap {
		live[k] = v
	}
}

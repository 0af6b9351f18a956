// Package engine implements the persistence engine: durable, queryable
// storage of person aggregates with transparent field-level encryption.
//
// An Engine is obtained only through Open, which binds the data-encryption
// key, migrates the store and returns a ready handle; there is no separate
// init step to forget. Every multi-entity operation runs inside one backend
// transaction so no reader can observe a half-applied aggregate.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/rememberme/internal/cryptox"
	"github.com/dmitrijs2005/rememberme/internal/logging"
	"github.com/dmitrijs2005/rememberme/internal/models"
	"github.com/dmitrijs2005/rememberme/internal/repositories/repomanager"
	"github.com/dmitrijs2005/rememberme/internal/shared"
)

// Engine owns the active data-encryption key and a storage backend handle.
// The key is immutable for the lifetime of the handle; Close wipes it.
type Engine struct {
	key []byte
	mgr repomanager.Manager
	log logging.Logger
}

// Option customizes an Engine created by Open.
type Option func(*Engine)

// WithLogger attaches a structured logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.log = l.With("component", "engine") }
}

// Open binds the 256-bit data-encryption key to the given backend, runs
// migrations and returns a ready engine. Opening an existing store again
// with the same key is safe; a store whose schema does not match this build
// fails with shared.ErrSchemaIncompatible and is never silently migrated.
func Open(ctx context.Context, key []byte, mgr repomanager.Manager, opts ...Option) (*Engine, error) {
	if len(key) != cryptox.KeyLength {
		return nil, fmt.Errorf("%w: expected %d-byte key", shared.ErrEncryptionKeyMissing, cryptox.KeyLength)
	}
	if mgr == nil {
		return nil, fmt.Errorf("%w: no storage backend", shared.ErrNotInitialized)
	}

	e := &Engine{key: append([]byte(nil), key...), mgr: mgr, log: logging.Discard{}}
	for _, opt := range opts {
		opt(e)
	}

	if err := mgr.RunMigrations(ctx); err != nil {
		return nil, err
	}

	e.log.Debug(ctx, "store opened")
	return e, nil
}

// Close wipes the key and closes the backend. The handle is unusable
// afterwards; every operation returns shared.ErrNotInitialized.
func (e *Engine) Close() error {
	if e.mgr == nil {
		return nil
	}
	shared.WipeByteArray(e.key)
	e.key = nil
	mgr := e.mgr
	e.mgr = nil
	return mgr.Close()
}

func (e *Engine) ready() error {
	if e == nil || e.mgr == nil || len(e.key) == 0 {
		return shared.ErrNotInitialized
	}
	return nil
}

// AddPerson encrypts and writes the person row plus one row per quick fact,
// note and tag, all in one transaction. The caller assigns the id and
// timestamps; zero timestamps default to now. Fails with
// shared.ErrDuplicateID when the id already exists.
func (e *Engine) AddPerson(ctx context.Context, p *models.Person) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := validatePerson(p); err != nil {
		return err
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	p.Tags = normalizeTags(p.Tags)

	row, err := e.encryptPerson(p)
	if err != nil {
		return err
	}
	factRows, tagRows, err := e.encryptSubEntities(p)
	if err != nil {
		return err
	}

	noteRows := make([]models.NoteRow, 0, len(p.Notes))
	for i := range p.Notes {
		noteRow, err := e.encryptNote(p.ID, &p.Notes[i])
		if err != nil {
			return err
		}
		noteRows = append(noteRows, *noteRow)
	}

	err = e.mgr.InTransaction(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Persons().Insert(ctx, row); err != nil {
			return err
		}
		for i := range factRows {
			if err := r.QuickFacts().Insert(ctx, &factRows[i]); err != nil {
				return err
			}
		}
		for i := range noteRows {
			if err := r.Notes().Insert(ctx, &noteRows[i]); err != nil {
				return err
			}
		}
		for i := range tagRows {
			if err := r.Tags().Insert(ctx, &tagRows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log.Debug(ctx, "person added", "id", p.ID)
	return nil
}

// UpdatePerson re-encrypts and overwrites the person row and fully replaces
// the quick-fact and tag sub-collections; notes are untouched. UpdatedAt is
// refreshed server-side, ignoring any caller-supplied value. Fails with
// shared.ErrNotFound when the id does not exist; it never upserts.
func (e *Engine) UpdatePerson(ctx context.Context, p *models.Person) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := validatePerson(p); err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()
	p.Tags = normalizeTags(p.Tags)

	row, err := e.encryptPerson(p)
	if err != nil {
		return err
	}
	factRows, tagRows, err := e.encryptSubEntities(p)
	if err != nil {
		return err
	}

	err = e.mgr.InTransaction(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Persons().Update(ctx, row); err != nil {
			return err
		}
		if err := r.QuickFacts().DeleteByPerson(ctx, p.ID); err != nil {
			return err
		}
		for i := range factRows {
			if err := r.QuickFacts().Insert(ctx, &factRows[i]); err != nil {
				return err
			}
		}
		if err := r.Tags().DeleteByPerson(ctx, p.ID); err != nil {
			return err
		}
		for i := range tagRows {
			if err := r.Tags().Insert(ctx, &tagRows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log.Debug(ctx, "person updated", "id", p.ID)
	return nil
}

// GetPerson reconstructs the aggregate: person row plus quick facts and
// tags, decrypted. Returns nil without error when absent. Notes are loaded
// only via GetNotes, so listing screens never pay for decrypting history.
func (e *Engine) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	var person *models.Person
	err := e.mgr.InTransaction(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		row, err := r.Persons().GetByID(ctx, id)
		if err != nil || row == nil {
			return err
		}
		person, err = e.assemblePerson(ctx, r, row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return person, nil
}

// GetAllPeople lists every person, newest-first by updatedAt. A limit <= 0
// means no limit.
func (e *Engine) GetAllPeople(ctx context.Context, limit int) ([]models.Person, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.listPeople(ctx, func(ctx context.Context, r repomanager.Repositories) ([]models.PersonRow, error) {
		return r.Persons().GetAll(ctx, limit)
	})
}

// GetStarredPeople lists starred persons, newest-first by updatedAt.
func (e *Engine) GetStarredPeople(ctx context.Context) ([]models.Person, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.listPeople(ctx, func(ctx context.Context, r repomanager.Repositories) ([]models.PersonRow, error) {
		return r.Persons().GetStarred(ctx)
	})
}

// SearchPeople performs a case-insensitive substring match across full
// name, preferred name, title, company, tag text and quick-fact values.
// The matched fields are encrypted at rest, so the whole candidate set is
// decrypted and filtered in memory, O(n) decryptions per search. Fine for a
// personal dataset, a scaling limit beyond that. An empty or whitespace-only
// query returns no results.
func (e *Engine) SearchPeople(ctx context.Context, query string) ([]models.Person, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	people, err := e.listPeople(ctx, func(ctx context.Context, r repomanager.Repositories) ([]models.PersonRow, error) {
		return r.Persons().GetAll(ctx, 0)
	})
	if err != nil {
		return nil, err
	}

	var result []models.Person
	for i := range people {
		if personMatches(&people[i], needle) {
			result = append(result, people[i])
		}
	}
	return result, nil
}

// DeletePerson removes the person and cascades to all quick facts, notes
// and tags in one transaction. Deleting a non-existent id is not an error.
func (e *Engine) DeletePerson(ctx context.Context, id string) error {
	if err := e.ready(); err != nil {
		return err
	}

	err := e.mgr.InTransaction(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.QuickFacts().DeleteByPerson(ctx, id); err != nil {
			return err
		}
		if err := r.Notes().DeleteByPerson(ctx, id); err != nil {
			return err
		}
		if err := r.Tags().DeleteByPerson(ctx, id); err != nil {
			return err
		}
		return r.Persons().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	e.log.Debug(ctx, "person deleted", "id", id)
	return nil
}

// AddNote appends a note to an existing person. Fails with
// shared.ErrNotFound when the person does not exist; orphan notes are never
// inserted silently. Adding a note does not refresh the person's UpdatedAt.
func (e *Engine) AddNote(ctx context.Context, personID string, note *models.Note) error {
	if err := e.ready(); err != nil {
		return err
	}
	if note.ID == "" {
		return fmt.Errorf("%w: note id is required", shared.ErrValidation)
	}
	if note.Date.IsZero() {
		note.Date = time.Now().UTC()
	}

	row, err := e.encryptNote(personID, note)
	if err != nil {
		return err
	}

	return e.mgr.InTransaction(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		exists, err := r.Persons().Exists(ctx, personID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: person %s", shared.ErrNotFound, personID)
		}
		return r.Notes().Insert(ctx, row)
	})
}

// GetNotes returns the person's notes, newest-first by date.
func (e *Engine) GetNotes(ctx context.Context, personID string) ([]models.Note, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	rows, err := e.mgr.Notes().GetByPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	result := make([]models.Note, 0, len(rows))
	for i := range rows {
		note, err := e.decryptNote(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *note)
	}
	return result, nil
}

func (e *Engine) listPeople(ctx context.Context, fetch func(ctx context.Context, r repomanager.Repositories) ([]models.PersonRow, error)) ([]models.Person, error) {
	var result []models.Person
	err := e.mgr.InTransaction(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		rows, err := fetch(ctx, r)
		if err != nil {
			return err
		}
		for i := range rows {
			person, err := e.assemblePerson(ctx, r, &rows[i])
			if err != nil {
				return err
			}
			result = append(result, *person)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validatePerson(p *models.Person) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: person id is required", shared.ErrValidation)
	}
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("%w: full name is required", shared.ErrValidation)
	}
	return nil
}

// normalizeTags lowercases, trims and deduplicates, preserving first-seen
// order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}

func personMatches(p *models.Person, needle string) bool {
	haystacks := []string{p.FullName, p.PreferredName, p.Title, p.Company}
	haystacks = append(haystacks, p.Tags...)
	for _, fact := range p.QuickFacts {
		haystacks = append(haystacks, fact.Value)
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

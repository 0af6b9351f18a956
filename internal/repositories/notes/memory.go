package notes

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/rememberme/internal/models"
)

// MemoryRepository implements Repository over a plain map keyed by note id.
// A nil mutex means the caller already holds the store lock.
type MemoryRepository struct {
	mu   *sync.RWMutex
	rows map[string]models.NoteRow
}

func NewMemoryRepository(mu *sync.RWMutex, rows map[string]models.NoteRow) *MemoryRepository {
	return &MemoryRepository{mu: mu, rows: rows}
}

func (r *MemoryRepository) Insert(_ context.Context, row *models.NoteRow) error {
	if r.mu != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	r.rows[row.ID] = *row
	return nil
}

func (r *MemoryRepository) GetByPerson(_ context.Context, personID string) ([]models.NoteRow, error) {
	if r.mu != nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}
	var result []models.NoteRow
	for _, row := range r.rows {
		if row.PersonID == personID {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *MemoryRepository) DeleteByPerson(_ context.Context, personID string) error {
	if r.mu != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	for id, row := range r.rows {
		if row.PersonID == personID {
			delete(r.rows, id)
		}
	}
	return nil
}

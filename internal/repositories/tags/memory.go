package tags

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/rememberme/internal/models"
)

// MemoryRepository implements Repository over a map of per-person slices,
// preserving insertion order. A nil mutex means the caller already holds
// the store lock.
type MemoryRepository struct {
	mu   *sync.RWMutex
	rows map[string][]models.TagRow
}

func NewMemoryRepository(mu *sync.RWMutex, rows map[string][]models.TagRow) *MemoryRepository {
	return &MemoryRepository{mu: mu, rows: rows}
}

func (r *MemoryRepository) Insert(_ context.Context, row *models.TagRow) error {
	if r.mu != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	r.rows[row.PersonID] = append(r.rows[row.PersonID], *row)
	return nil
}

func (r *MemoryRepository) GetByPerson(_ context.Context, personID string) ([]models.TagRow, error) {
	if r.mu != nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}
	stored := r.rows[personID]
	result := make([]models.TagRow, len(stored))
	copy(result, stored)
	return result, nil
}

func (r *MemoryRepository) DeleteByPerson(_ context.Context, personID string) error {
	if r.mu != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	delete(r.rows, personID)
	return nil
}

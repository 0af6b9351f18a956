package persons

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/rememberme/internal/models"
	"github.com/dmitrijs2005/rememberme/internal/shared"
)

// MemoryRepository implements Repository over a plain map. The mutex is
// shared with the owning repository manager; a nil mutex means the caller
// already holds the store lock (inside a transaction).
type MemoryRepository struct {
	mu   *sync.RWMutex
	rows map[string]models.PersonRow
}

func NewMemoryRepository(mu *sync.RWMutex, rows map[string]models.PersonRow) *MemoryRepository {
	return &MemoryRepository{mu: mu, rows: rows}
}

func (r *MemoryRepository) Insert(_ context.Context, row *models.PersonRow) error {
	if unlock := r.lock(); unlock != nil {
		defer unlock()
	}
	if _, ok := r.rows[row.ID]; ok {
		return fmt.Errorf("%w: person %s", shared.ErrDuplicateID, row.ID)
	}
	r.rows[row.ID] = *row
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, row *models.PersonRow) error {
	if unlock := r.lock(); unlock != nil {
		defer unlock()
	}
	old, ok := r.rows[row.ID]
	if !ok {
		return fmt.Errorf("%w: person %s", shared.ErrNotFound, row.ID)
	}
	updated := *row
	updated.CreatedAt = old.CreatedAt
	r.rows[row.ID] = updated
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.PersonRow, error) {
	if unlock := r.rlock(); unlock != nil {
		defer unlock()
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *MemoryRepository) GetAll(_ context.Context, limit int) ([]models.PersonRow, error) {
	if unlock := r.rlock(); unlock != nil {
		defer unlock()
	}
	result := r.sorted(func(models.PersonRow) bool { return true })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *MemoryRepository) GetStarred(_ context.Context) ([]models.PersonRow, error) {
	if unlock := r.rlock(); unlock != nil {
		defer unlock()
	}
	return r.sorted(func(row models.PersonRow) bool { return row.Starred }), nil
}

func (r *MemoryRepository) Exists(_ context.Context, id string) (bool, error) {
	if unlock := r.rlock(); unlock != nil {
		defer unlock()
	}
	_, ok := r.rows[id]
	return ok, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	if unlock := r.lock(); unlock != nil {
		defer unlock()
	}
	delete(r.rows, id)
	return nil
}

// sorted returns matching rows newest-first by updatedAt, id as tie-break.
// The fixed-width timestamp layout makes string comparison chronological.
func (r *MemoryRepository) sorted(match func(models.PersonRow) bool) []models.PersonRow {
	var result []models.PersonRow
	for _, row := range r.rows {
		if match(row) {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UpdatedAt != result[j].UpdatedAt {
			return result[i].UpdatedAt > result[j].UpdatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (r *MemoryRepository) lock() func() {
	if r.mu == nil {
		return nil
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *MemoryRepository) rlock() func() {
	if r.mu == nil {
		return nil
	}
	r.mu.RLock()
	return r.mu.RUnlock
}

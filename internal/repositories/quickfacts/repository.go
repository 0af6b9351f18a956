// Package quickfacts stores quick-fact rows owned by person cards.
package quickfacts

import (
	"context"

	"github.com/dmitrijs2005/rememberme/internal/models"
)

// Repository has no update operation: the engine replaces a person's whole
// fact list on every person update.
type Repository interface {
	Insert(ctx context.Context, row *models.QuickFactRow) error
	GetByPerson(ctx context.Context, personID string) ([]models.QuickFactRow, error)
	DeleteByPerson(ctx context.Context, personID string) error
}

// Package tags stores tag rows owned by person cards. A tag row's id is the
// composite "{personId}-{tagText}", so duplicate tag text per person cannot
// exist at the storage level; the engine additionally lowercases and
// deduplicates before writing.
package tags

import (
	"context"

	"github.com/dmitrijs2005/rememberme/internal/models"
)

// Repository has no update operation: the engine replaces a person's whole
// tag set on every person update.
type Repository interface {
	Insert(ctx context.Context, row *models.TagRow) error
	GetByPerson(ctx context.Context, personID string) ([]models.TagRow, error)
	DeleteByPerson(ctx context.Context, personID string) error
}

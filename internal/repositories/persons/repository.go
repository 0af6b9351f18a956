// Package persons stores person card rows. Sensitive columns arrive and
// leave as ciphertext envelopes; encryption is the engine's concern.
package persons

import (
	"context"

	"github.com/dmitrijs2005/rememberme/internal/models"
)

type Repository interface {
	// Insert adds a new row. Fails with shared.ErrDuplicateID when the id
	// is already present.
	Insert(ctx context.Context, row *models.PersonRow) error

	// Update overwrites an existing row. Fails with shared.ErrNotFound when
	// the id is absent; it never upserts.
	Update(ctx context.Context, row *models.PersonRow) error

	// GetByID returns the row, or nil without error when absent.
	GetByID(ctx context.Context, id string) (*models.PersonRow, error)

	// GetAll lists rows newest-first by updatedAt (id as tie-break).
	// A limit <= 0 means no limit.
	GetAll(ctx context.Context, limit int) ([]models.PersonRow, error)

	// GetStarred lists starred rows newest-first by updatedAt.
	GetStarred(ctx context.Context) ([]models.PersonRow, error)

	// Exists reports whether the id is present.
	Exists(ctx context.Context, id string) (bool, error)

	// Delete removes the row. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
}

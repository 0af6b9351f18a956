// Package notes stores note rows owned by person cards. Notes are
// append-only: the engine exposes no update or single-note delete.
package notes

import (
	"context"

	"github.com/dmitrijs2005/rememberme/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, row *models.NoteRow) error
	// GetByPerson lists notes newest-first by date (id as tie-break).
	GetByPerson(ctx context.Context, personID string) ([]models.NoteRow, error)
	DeleteByPerson(ctx context.Context, personID string) error
}

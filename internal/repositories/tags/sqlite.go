package tags

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rememberme/internal/dbx"
	"github.com/dmitrijs2005/rememberme/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, row *models.TagRow) error {
	query := `INSERT INTO tags (id, personId, tag) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, row.ID, row.PersonID, row.Tag); err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByPerson(ctx context.Context, personID string) ([]models.TagRow, error) {
	query := `SELECT id, personId, tag FROM tags WHERE personId = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	var result []models.TagRow
	for rows.Next() {
		var item models.TagRow
		if err := rows.Scan(&item.ID, &item.PersonID, &item.Tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByPerson(ctx context.Context, personID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE personId = ?`, personID); err != nil {
		return fmt.Errorf("failed to delete tags: %w", err)
	}
	return nil
}

package quickfacts

import (
	"context"
	"database/sql"
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

func (r *SQLiteRepository) Insert(ctx context.Context, row *models.QuickFactRow) error {
	query := `INSERT INTO quick_facts (id, personId, label, value, icon) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.PersonID, row.Label, row.Value, dbx.NullIfEmpty(row.Icon))
	if err != nil {
		return fmt.Errorf("failed to insert quick fact: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByPerson(ctx context.Context, personID string) ([]models.QuickFactRow, error) {
	query := `SELECT id, personId, label, value, icon FROM quick_facts WHERE personId = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to select quick facts: %w", err)
	}
	defer rows.Close()

	var result []models.QuickFactRow
	for rows.Next() {
		var item models.QuickFactRow
		var icon sql.NullString
		if err := rows.Scan(&item.ID, &item.PersonID, &item.Label, &item.Value, &icon); err != nil {
			return nil, fmt.Errorf("failed to scan quick fact row: %w", err)
		}
		item.Icon = dbx.StringOrEmpty(icon)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quick fact rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByPerson(ctx context.Context, personID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM quick_facts WHERE personId = ?`, personID); err != nil {
		return fmt.Errorf("failed to delete quick facts: %w", err)
	}
	return nil
}

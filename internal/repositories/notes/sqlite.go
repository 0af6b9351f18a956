package notes

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

func (r *SQLiteRepository) Insert(ctx context.Context, row *models.NoteRow) error {
	query := `INSERT INTO notes (id, personId, date, shortNote, meetingContext) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.PersonID, row.Date, row.ShortNote, dbx.NullIfEmpty(row.MeetingContext))
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByPerson(ctx context.Context, personID string) ([]models.NoteRow, error) {
	query := `SELECT id, personId, date, shortNote, meetingContext
		FROM notes WHERE personId = ? ORDER BY date DESC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []models.NoteRow
	for rows.Next() {
		var item models.NoteRow
		var meetingContext sql.NullString
		if err := rows.Scan(&item.ID, &item.PersonID, &item.Date, &item.ShortNote, &meetingContext); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		item.MeetingContext = dbx.StringOrEmpty(meetingContext)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate note rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByPerson(ctx context.Context, personID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE personId = ?`, personID); err != nil {
		return fmt.Errorf("failed to delete notes: %w", err)
	}
	return nil
}

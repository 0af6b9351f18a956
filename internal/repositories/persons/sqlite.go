package persons

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rememberme/internal/dbx"
	"github.com/dmitrijs2005/rememberme/internal/models"
	"github.com/dmitrijs2005/rememberme/internal/shared"
)

const selectColumns = `id, fullName, preferredName, title, company, photoURI,
	oneLineContext, lastMet, linkedContacts, privacy, starred, createdAt, updatedAt`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, row *models.PersonRow) error {
	exists, err := r.Exists(ctx, row.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: person %s", shared.ErrDuplicateID, row.ID)
	}

	query := `INSERT INTO person_cards (
			id, fullName, preferredName, title, company, photoURI,
			oneLineContext, lastMet, linkedContacts, privacy, starred,
			createdAt, updatedAt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		row.ID, row.FullName,
		dbx.NullIfEmpty(row.PreferredName), dbx.NullIfEmpty(row.Title),
		dbx.NullIfEmpty(row.Company), dbx.NullIfEmpty(row.PhotoURI),
		dbx.NullIfEmpty(row.OneLineContext), dbx.NullIfEmpty(row.LastMet),
		row.LinkedContacts, row.Privacy, boolToInt(row.Starred),
		row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, row *models.PersonRow) error {
	query := `UPDATE person_cards SET
			fullName = ?, preferredName = ?, title = ?, company = ?,
			photoURI = ?, oneLineContext = ?, lastMet = ?, linkedContacts = ?,
			privacy = ?, starred = ?, updatedAt = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		row.FullName,
		dbx.NullIfEmpty(row.PreferredName), dbx.NullIfEmpty(row.Title),
		dbx.NullIfEmpty(row.Company), dbx.NullIfEmpty(row.PhotoURI),
		dbx.NullIfEmpty(row.OneLineContext), dbx.NullIfEmpty(row.LastMet),
		row.LinkedContacts, row.Privacy, boolToInt(row.Starred),
		row.UpdatedAt, row.ID)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: person %s", shared.ErrNotFound, row.ID)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.PersonRow, error) {
	query := `SELECT ` + selectColumns + ` FROM person_cards WHERE id = ?`
	row, err := scanPerson(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select person: %w", err)
	}
	return row, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, limit int) ([]models.PersonRow, error) {
	query := `SELECT ` + selectColumns + ` FROM person_cards ORDER BY updatedAt DESC, id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.queryPersons(ctx, query, args...)
}

func (r *SQLiteRepository) GetStarred(ctx context.Context) ([]models.PersonRow, error) {
	query := `SELECT ` + selectColumns + ` FROM person_cards WHERE starred = 1 ORDER BY updatedAt DESC, id ASC`
	return r.queryPersons(ctx, query)
}

func (r *SQLiteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM person_cards WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check person existence: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM person_cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) queryPersons(ctx context.Context, query string, args ...any) ([]models.PersonRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select persons: %w", err)
	}
	defer rows.Close()

	var result []models.PersonRow
	for rows.Next() {
		item, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person row: %w", err)
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate person rows: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(s scanner) (*models.PersonRow, error) {
	var row models.PersonRow
	var preferredName, title, company, photoURI, oneLineContext, lastMet sql.NullString
	var starred int

	err := s.Scan(&row.ID, &row.FullName, &preferredName, &title, &company,
		&photoURI, &oneLineContext, &lastMet, &row.LinkedContacts, &row.Privacy,
		&starred, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		return nil, err
	}

	row.PreferredName = dbx.StringOrEmpty(preferredName)
	row.Title = dbx.StringOrEmpty(title)
	row.Company = dbx.StringOrEmpty(company)
	row.PhotoURI = dbx.StringOrEmpty(photoURI)
	row.OneLineContext = dbx.StringOrEmpty(oneLineContext)
	row.LastMet = dbx.StringOrEmpty(lastMet)
	row.Starred = starred == 1
	return &row, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

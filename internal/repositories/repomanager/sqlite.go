package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/rememberme/internal/dbx"
	"github.com/dmitrijs2005/rememberme/internal/keystore"
	"github.com/dmitrijs2005/rememberme/internal/migrations"
	"github.com/dmitrijs2005/rememberme/internal/repositories/notes"
	"github.com/dmitrijs2005/rememberme/internal/repositories/persons"
	"github.com/dmitrijs2005/rememberme/internal/repositories/quickfacts"
	"github.com/dmitrijs2005/rememberme/internal/repositories/tags"
	"github.com/dmitrijs2005/rememberme/internal/shared"
)

// sqliteRepos binds the per-entity repositories to one DBTX.
type sqliteRepos struct {
	db dbx.DBTX
}

func (r sqliteRepos) Persons() persons.Repository       { return persons.NewSQLiteRepository(r.db) }
func (r sqliteRepos) QuickFacts() quickfacts.Repository { return quickfacts.NewSQLiteRepository(r.db) }
func (r sqliteRepos) Notes() notes.Repository           { return notes.NewSQLiteRepository(r.db) }
func (r sqliteRepos) Tags() tags.Repository             { return tags.NewSQLiteRepository(r.db) }

// SQLiteManager is the durable backend over a single SQLite database file.
type SQLiteManager struct {
	sqliteRepos
	conn *sql.DB
}

// NewSQLiteManager opens (creating if absent) the database at dsn. The
// connection pool is capped at one connection: the store follows a single
// logical writer model and this keeps transactions serialized.
func NewSQLiteManager(dsn string) (*SQLiteManager, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteManager{sqliteRepos: sqliteRepos{db: db}, conn: db}, nil
}

// RunMigrations sets up goose with the embedded migrations, runs them and
// verifies the resulting schema. Safe to call again on an already migrated
// store; a store with a diverging shape fails with ErrSchemaIncompatible.
func (m *SQLiteManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, m.conn, "."); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSchemaIncompatible, err)
	}
	return m.verifySchema(ctx)
}

// verifySchema prepares a zero-row select with the full expected column set
// against every collection. A missing table or column fails at prepare time.
func (m *SQLiteManager) verifySchema(ctx context.Context) error {
	probes := []string{
		`SELECT id, fullName, preferredName, title, company, photoURI,
			oneLineContext, lastMet, linkedContacts, privacy, starred,
			createdAt, updatedAt FROM person_cards LIMIT 0`,
		`SELECT id, personId, label, value, icon FROM quick_facts LIMIT 0`,
		`SELECT id, personId, date, shortNote, meetingContext FROM notes LIMIT 0`,
		`SELECT id, personId, tag FROM tags LIMIT 0`,
		`SELECT key, value FROM metadata LIMIT 0`,
	}
	for _, probe := range probes {
		rows, err := m.conn.QueryContext(ctx, probe)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrSchemaIncompatible, err)
		}
		_ = rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrSchemaIncompatible, err)
		}
	}
	return nil
}

func (m *SQLiteManager) InTransaction(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return dbx.WithTx(ctx, m.conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, sqliteRepos{db: tx})
	})
}

// Conn exposes the underlying handle for callers that need raw access
// (inspection tooling, tests).
func (m *SQLiteManager) Conn() *sql.DB {
	return m.conn
}

func (m *SQLiteManager) Keystore() keystore.Store {
	return keystore.NewSQLiteStore(m.conn)
}

func (m *SQLiteManager) Close() error {
	return m.conn.Close()
}

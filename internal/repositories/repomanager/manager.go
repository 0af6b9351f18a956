// Package repomanager wires the per-entity repositories to a storage
// backend. Two interchangeable backends implement the same contract:
// SQLite (durable, the default) and in-memory (tests, throwaway sessions).
// The engine's logic never depends on which backend is active.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/rememberme/internal/keystore"
	"github.com/dmitrijs2005/rememberme/internal/repositories/notes"
	"github.com/dmitrijs2005/rememberme/internal/repositories/persons"
	"github.com/dmitrijs2005/rememberme/internal/repositories/quickfacts"
	"github.com/dmitrijs2005/rememberme/internal/repositories/tags"
)

// Repositories is the set of per-entity repositories bound to one backend
// handle, either the live store or a single atomic transaction.
type Repositories interface {
	Persons() persons.Repository
	QuickFacts() quickfacts.Repository
	Notes() notes.Repository
	Tags() tags.Repository
}

// Manager owns a storage backend: direct (auto-committed) repository
// access, atomic multi-statement transactions, schema migrations and the
// auth keystore living next to the data.
type Manager interface {
	Repositories

	// RunMigrations brings the store to the expected schema. It never
	// migrates an incompatible shape; that fails with
	// shared.ErrSchemaIncompatible.
	RunMigrations(ctx context.Context) error

	// InTransaction runs fn against a repository set bound to one atomic
	// unit: either every write in fn becomes visible, or none does.
	InTransaction(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error

	// Keystore returns the key-value store for auth material.
	Keystore() keystore.Store

	Close() error
}

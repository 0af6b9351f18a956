// Package keystore provides the small persistent key-value store that holds
// the auth material: the data-encryption key, the passcode hash and the salt.
// Values are opaque strings under fixed, namespaced keys.
//
// Three interchangeable implementations exist: a SQLite-backed one (the
// default, shares the database file with the card collections), an in-memory
// one for tests and throwaway sessions, and an OS-keyring one for callers
// who want the key material guarded by the platform secret service.
package keystore

import "context"

// Store is a minimal persistent string-to-string map. Get returns an empty
// string (not an error) when the key is absent; empty values are never
// stored.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

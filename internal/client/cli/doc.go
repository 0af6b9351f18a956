// Package cli provides the interactive RememberMe command-line client.
//
// It wires configuration, the storage backend, the key lifecycle and an
// interactive REPL. Typical flow: on first launch the user sets a passcode,
// afterwards the store is unlocked with it; the session locks itself after a
// configurable idle interval.
//
// Key features:
//   - Passcode setup, unlock, lock, full reset
//   - Add / edit / star / delete person cards
//   - List, starred-only list and case-insensitive search
//   - Append and list interaction notes per person
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

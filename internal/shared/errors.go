package shared

import "errors"

// Sentinel errors used across the engine, crypto and auth layers.
// Callers should match them with errors.Is.
var (
	// Engine lifecycle errors.
	ErrNotInitialized     = errors.New("engine not initialized")
	ErrAlreadyInitialized = errors.New("engine already initialized")

	// Crypto errors.
	ErrEncryptionKeyMissing = errors.New("encryption key missing")
	ErrMalformedEnvelope    = errors.New("malformed ciphertext envelope")
	ErrDecryptionFailed     = errors.New("decryption failed")

	// Repository errors.
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate id")

	// Store shape errors. No automatic migration is attempted when the
	// on-disk schema does not match what this build expects.
	ErrSchemaIncompatible = errors.New("incompatible store schema")

	// Validation errors.
	ErrValidation = errors.New("validation error")

	// Auth errors.
	ErrPasscodeTooShort = errors.New("passcode too short")
)

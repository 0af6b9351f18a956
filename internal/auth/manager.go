// Package auth manages the key lifecycle around a user passcode: first
// launch detection, passcode setup and verification, the biometric gate and
// storage of the data-encryption key.
//
// The data key is random and merely *stored* behind the passcode check, not
// derived from the passcode, so a passcode change never re-encrypts data.
// The flip side: the key sits in the same key-value store as the hash that
// gates it, so anyone who can read the raw store can recover the key
// without the passcode. A deliberate trade-off inherited from the storage
// contract; the keyring-backed keystore moves the material behind the OS
// secret service for callers who want better.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/rememberme/internal/cryptox"
	"github.com/dmitrijs2005/rememberme/internal/keystore"
	"github.com/dmitrijs2005/rememberme/internal/logging"
	"github.com/dmitrijs2005/rememberme/internal/shared"
)

// Fixed, namespaced keystore entry names. Durable contract: changing them
// strands existing installs.
const (
	encryptionKeyEntry = "rememberme/encryption_key"
	passwordHashEntry  = "rememberme/password_hash"
	saltEntry          = "rememberme/salt"
)

// MinPasscodeLength is the minimum accepted passcode length.
const MinPasscodeLength = 4

// Manager drives the Uninitialized -> Locked -> Unlocked lifecycle. It owns
// no session state itself; Unlocked simply means the caller obtained the
// key and opened the engine with it.
type Manager struct {
	store keystore.Store
	bio   Biometric
	log   logging.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithBiometric attaches a platform biometric gate. The default reports no
// hardware.
func WithBiometric(b Biometric) Option {
	return func(m *Manager) { m.bio = b }
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l.With("component", "auth") }
}

func NewManager(store keystore.Store, opts ...Option) *Manager {
	m := &Manager{store: store, bio: Unavailable{}, log: logging.Discard{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsFirstLaunch reports true iff no data-encryption key has ever been
// stored (also true again right after DeleteAllAuthData).
func (m *Manager) IsFirstLaunch(ctx context.Context) (bool, error) {
	key, err := m.store.Get(ctx, encryptionKeyEntry)
	if err != nil {
		return false, err
	}
	return key == "", nil
}

// SetupPasscode generates a salt, the passcode hash and a fresh random data
// key, and persists all three. Fails with shared.ErrPasscodeTooShort for
// passcodes under MinPasscodeLength characters.
func (m *Manager) SetupPasscode(ctx context.Context, passcode string) error {
	if len([]rune(passcode)) < MinPasscodeLength {
		return fmt.Errorf("%w: need at least %d characters", shared.ErrPasscodeTooShort, MinPasscodeLength)
	}

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return err
	}
	hash := cryptox.HashPassword([]byte(passcode), salt)
	key, err := cryptox.GenerateSecureKey()
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(key)

	if err := m.store.Set(ctx, passwordHashEntry, hash); err != nil {
		return err
	}
	if err := m.store.Set(ctx, saltEntry, hex.EncodeToString(salt)); err != nil {
		return err
	}
	if err := m.store.Set(ctx, encryptionKeyEntry, hex.EncodeToString(key)); err != nil {
		return err
	}

	m.log.Info(ctx, "passcode configured")
	return nil
}

// VerifyPasscode recomputes the hash with the stored salt and compares.
// A mismatch (or an uninitialized store) is false, never an error.
func (m *Manager) VerifyPasscode(ctx context.Context, passcode string) (bool, error) {
	storedHash, err := m.store.Get(ctx, passwordHashEntry)
	if err != nil {
		return false, err
	}
	storedSalt, err := m.store.Get(ctx, saltEntry)
	if err != nil {
		return false, err
	}
	if storedHash == "" || storedSalt == "" {
		return false, nil
	}

	salt, err := hex.DecodeString(storedSalt)
	if err != nil {
		return false, fmt.Errorf("stored salt is corrupted: %w", err)
	}

	hash := cryptox.HashPassword([]byte(passcode), salt)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(storedHash)) == 1, nil
}

// IsBiometricAvailable reports true only when the hardware capability and
// the enrollment check both pass. Any error counts as unavailable.
func (m *Manager) IsBiometricAvailable(ctx context.Context) bool {
	hasHardware, err := m.bio.HasHardware(ctx)
	if err != nil || !hasHardware {
		return false
	}
	enrolled, err := m.bio.IsEnrolled(ctx)
	return err == nil && enrolled
}

// AuthenticateBiometric invokes the platform prompt. Failure or
// cancellation is false; it never surfaces an error to the caller.
func (m *Manager) AuthenticateBiometric(ctx context.Context) bool {
	ok, err := m.bio.Authenticate(ctx, "Unlock RememberMe")
	if err != nil {
		m.log.Warn(ctx, "biometric authentication failed", "error", err)
		return false
	}
	return ok
}

// GetEncryptionKey returns the persisted data key, or nil when none is
// stored. The caller should wipe the slice when done with it.
func (m *Manager) GetEncryptionKey(ctx context.Context) ([]byte, error) {
	stored, err := m.store.Get(ctx, encryptionKeyEntry)
	if err != nil {
		return nil, err
	}
	if stored == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(stored)
	if err != nil {
		return nil, fmt.Errorf("stored key is corrupted: %w", err)
	}
	return key, nil
}

// DeleteAllAuthData removes the key, hash and salt, a full reset. Losing
// the data key makes all encrypted data irrecoverable by design.
func (m *Manager) DeleteAllAuthData(ctx context.Context) error {
	for _, entry := range []string{encryptionKeyEntry, passwordHashEntry, saltEntry} {
		if err := m.store.Delete(ctx, entry); err != nil {
			return err
		}
	}
	m.log.Info(ctx, "auth data deleted")
	return nil
}

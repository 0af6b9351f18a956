package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rememberme/internal/auth"
	"github.com/dmitrijs2005/rememberme/internal/client/config"
	"github.com/dmitrijs2005/rememberme/internal/engine"
	"github.com/dmitrijs2005/rememberme/internal/shared"
)

// getSimpleText and getPasscode are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPasscode = GetPasscode

// Setup configures a passcode on first launch: prompts twice, stores the
// salt, hash and a fresh random data key.
func (a *App) Setup(ctx context.Context) error {
	am, err := a.authManager(ctx)
	if err != nil {
		return err
	}

	first, err := am.IsFirstLaunch(ctx)
	if err != nil {
		return err
	}
	if !first {
		return fmt.Errorf("%w: use 'unlock', or 'reset' to start over", shared.ErrAlreadyInitialized)
	}

	passcode, err := getPasscode("Choose a passcode", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(passcode)

	confirm, err := getPasscode("Repeat the passcode", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(confirm)

	if string(passcode) != string(confirm) {
		return errors.New("passcodes do not match")
	}

	if err := am.SetupPasscode(ctx, string(passcode)); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Passcode set. Use 'unlock' to open the store.")
	return nil
}

// Unlock opens the engine with the stored data key. The biometric gate is
// tried first when hardware is available and enrolled; failure or
// cancellation falls back to the passcode prompt.
func (a *App) Unlock(ctx context.Context) error {
	if a.isUnlocked() {
		fmt.Fprintln(a.out, "Already unlocked.")
		return nil
	}

	am, err := a.authManager(ctx)
	if err != nil {
		return err
	}

	first, err := am.IsFirstLaunch(ctx)
	if err != nil {
		return err
	}
	if first {
		return errors.New("no passcode configured yet; run 'setup' first")
	}

	if am.IsBiometricAvailable(ctx) {
		if am.AuthenticateBiometric(ctx) {
			return a.openStore(ctx, am)
		}
		fmt.Fprintln(a.out, "Biometric authentication failed; enter your passcode.")
	}

	passcode, err := getPasscode("Passcode", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(passcode)

	ok, err := am.VerifyPasscode(ctx, string(passcode))
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("wrong passcode")
	}

	return a.openStore(ctx, am)
}

// openStore fetches the data key and opens the engine with it.
func (a *App) openStore(ctx context.Context, am *auth.Manager) error {
	key, err := am.GetEncryptionKey(ctx)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(key)

	mgr, err := a.manager(ctx)
	if err != nil {
		return err
	}

	eng, err := engine.Open(ctx, key, mgr, engine.WithLogger(a.log))
	if err != nil {
		return err
	}

	a.eng = eng
	a.touch()
	fmt.Fprintln(a.out, "Unlocked.")
	return nil
}

// Lock wipes the in-memory key and closes the backend handle. Data stays on
// disk; 'unlock' reopens it.
func (a *App) Lock(ctx context.Context) error {
	if !a.isUnlocked() {
		return nil
	}

	err := a.eng.Close()
	a.eng = nil
	// the engine closed the backend with it; a fresh SQLite handle is
	// created on the next unlock, the in-memory backend survives Close
	if a.config.Backend != config.BackendMemory {
		a.mgr = nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Locked.")
	return nil
}

// Reset deletes all auth material after an explicit confirmation. The data
// key is destroyed with it, so everything encrypted becomes irrecoverable.
func (a *App) Reset(ctx context.Context) error {
	answer, err := getSimpleText(a.reader,
		"This destroys the encryption key; all stored data becomes unreadable.\nType YES to confirm", a.out)
	if err != nil {
		return err
	}
	if answer != "YES" {
		fmt.Fprintln(a.out, "Aborted.")
		return nil
	}

	if err := a.Lock(ctx); err != nil {
		return err
	}

	am, err := a.authManager(ctx)
	if err != nil {
		return err
	}
	if err := am.DeleteAllAuthData(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Reset complete. Run 'setup' to start over.")
	return nil
}

// requireUnlocked returns the engine or an instruction to unlock first.
func (a *App) requireUnlocked() (*engine.Engine, error) {
	if a.eng == nil {
		return nil, errors.New("store is locked; run 'unlock' first")
	}
	return a.eng, nil
}

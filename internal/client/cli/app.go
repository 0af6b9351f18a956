package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/rememberme/internal/auth"
	"github.com/dmitrijs2005/rememberme/internal/client/config"
	"github.com/dmitrijs2005/rememberme/internal/engine"
	"github.com/dmitrijs2005/rememberme/internal/filex"
	"github.com/dmitrijs2005/rememberme/internal/keystore"
	"github.com/dmitrijs2005/rememberme/internal/logging"
	"github.com/dmitrijs2005/rememberme/internal/repositories/repomanager"
)

const keyringService = "rememberme"

// App drives the interactive session. The engine handle exists only while
// the store is unlocked; Lock drops it and wipes the key with it.
type App struct {
	config *config.Config
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer

	mgr   repomanager.Manager
	memKS *keystore.MemoryStore
	bio   auth.Biometric
	eng   *engine.Engine

	lastActivity time.Time
}

func NewApp(cfg *config.Config) (*App, error) {
	a := &App{
		config: cfg,
		log:    logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	if cfg.Keystore == config.KeystoreMemory {
		a.memKS = keystore.NewMemoryStore()
	}

	// fail fast on an unusable store before entering the REPL
	if _, err := a.manager(context.Background()); err != nil {
		return nil, err
	}
	return a, nil
}

// manager returns the current backend, creating and migrating one when the
// previous handle was closed by Lock.
func (a *App) manager(ctx context.Context) (repomanager.Manager, error) {
	if a.mgr != nil {
		return a.mgr, nil
	}

	var mgr repomanager.Manager
	if a.config.Backend == config.BackendMemory {
		mgr = repomanager.NewInMemoryManager()
	} else {
		path, err := filex.EnsureParentDir(a.config.DatabasePath)
		if err != nil {
			return nil, err
		}
		sqliteMgr, err := repomanager.NewSQLiteManager(path)
		if err != nil {
			return nil, err
		}
		mgr = sqliteMgr
	}

	if err := mgr.RunMigrations(ctx); err != nil {
		_ = mgr.Close()
		return nil, err
	}

	a.mgr = mgr
	return mgr, nil
}

// authManager binds the key lifecycle to the configured keystore.
func (a *App) authManager(ctx context.Context) (*auth.Manager, error) {
	var store keystore.Store
	switch a.config.Keystore {
	case config.KeystoreKeyring:
		store = keystore.NewKeyringStore(keyringService)
	case config.KeystoreMemory:
		store = a.memKS
	default:
		mgr, err := a.manager(ctx)
		if err != nil {
			return nil, err
		}
		store = mgr.Keystore()
	}

	opts := []auth.Option{auth.WithLogger(a.log)}
	if a.bio != nil {
		opts = append(opts, auth.WithBiometric(a.bio))
	}
	return auth.NewManager(store, opts...), nil
}

func (a *App) isUnlocked() bool {
	return a.eng != nil
}

func (a *App) status() string {
	if a.isUnlocked() {
		return "unlocked"
	}
	return "locked"
}

// touch records user activity for the idle auto-lock.
func (a *App) touch() {
	a.lastActivity = time.Now()
}

// autoLockIfIdle locks the session when it sat unused longer than the
// configured interval. A zero interval disables the check.
func (a *App) autoLockIfIdle() {
	if !a.isUnlocked() || a.config.AutoLockInterval <= 0 {
		return
	}
	if time.Since(a.lastActivity) >= a.config.AutoLockInterval {
		fmt.Fprintln(a.out, "Session locked after inactivity.")
		_ = a.Lock(context.Background())
	}
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.eng != nil {
			_ = a.eng.Close()
		} else if a.mgr != nil {
			_ = a.mgr.Close()
		}
	}()

	fmt.Fprintln(a.out, "RememberMe CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner, a.out)
}

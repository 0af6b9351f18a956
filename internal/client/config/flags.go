package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/rememberme/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path to the SQLite database file
//	-b string   storage backend: sqlite or memory
//	-k string   keystore: sqlite, keyring or memory
//	-i int      auto-lock interval in seconds (0 disables)
//
// os.Args is filtered through flagx.FilterArgs so flags owned by other
// components do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-b", "-k", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the database file")
	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "storage backend (sqlite or memory)")
	fs.StringVar(&cfg.Keystore, "k", cfg.Keystore, "keystore (sqlite, keyring or memory)")
	autoLock := fs.Int("i", int(cfg.AutoLockInterval.Seconds()), "auto-lock interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AutoLockInterval = time.Duration(*autoLock) * time.Second
}

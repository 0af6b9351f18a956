package config

import "time"

// Backend selects where person cards are persisted.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Keystore selects where auth material (salt, hash, data key) lives.
const (
	KeystoreSQLite  = "sqlite"
	KeystoreKeyring = "keyring"
	KeystoreMemory  = "memory"
)

// Config holds runtime settings for the RememberMe CLI.
//
// Fields:
//   - DatabasePath: location of the SQLite file (ignored for the memory backend).
//   - Backend: "sqlite" or "memory".
//   - Keystore: "sqlite", "keyring" or "memory".
//   - AutoLockInterval: idle time after which the session locks itself;
//     zero disables auto-lock.
type Config struct {
	DatabasePath     string
	Backend          string
	Keystore         string
	AutoLockInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "data/rememberme.db"
	c.Backend = BackendSQLite
	c.Keystore = KeystoreSQLite
	c.AutoLockInterval = 5 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

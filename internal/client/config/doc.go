// Package config loads runtime configuration for the RememberMe CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path to the SQLite database file
//	-b string   storage backend: sqlite or memory
//	-k string   keystore: sqlite, keyring or memory
//	-i int      auto-lock interval (seconds, 0 disables)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5m" or integer nanoseconds:
//
//	{
//	  "database_path": "data/rememberme.db",
//	  "backend": "sqlite",
//	  "keystore": "sqlite",
//	  "auto_lock_interval": "5m"
//	}
//
// Note: This package does not read environment variables; use the JSON file
// or flags to configure values.
package config

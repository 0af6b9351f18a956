package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/rememberme/internal/flagx"
	"github.com/dmitrijs2005/rememberme/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "5m"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabasePath     string         `json:"database_path"`
	Backend          string         `json:"backend"`
	Keystore         string         `json:"keystore"`
	AutoLockInterval timex.Duration `json:"auto_lock_interval"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c or -config flags; when neither is present nothing
// is loaded. Empty JSON fields keep the current Config value. Read or
// unmarshal errors panic (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.Backend != "" {
		cfg.Backend = jc.Backend
	}
	if jc.Keystore != "" {
		cfg.Keystore = jc.Keystore
	}
	if jc.AutoLockInterval.Duration != 0 {
		cfg.AutoLockInterval = time.Duration(jc.AutoLockInterval.Duration)
	}
}

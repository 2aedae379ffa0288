package config

import "fmt"

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Backend selects the store type: "memory", "sheet" or "sqlite".
	Backend string `json:"backend"`
	// Path is the directory for the sheet backend or the database file for
	// the sqlite backend.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sheet":
			c.Path = "data"
		case "sqlite":
			c.Path = "fleetmatch.db"
		}
	}
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "sheet", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("store path is required for backend %s", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("unknown store backend %s", c.Backend)
	}
}

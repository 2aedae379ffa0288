package config

import "fmt"

// ReassignConfig drives the periodic urgent-reassignment sweep.
type ReassignConfig struct {
	// SweepIntervalSeconds is the period between automatic sweeps. Zero
	// disables the periodic sweep; triggered sweeps stay available.
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ReassignConfig) SetDefaults() {}

// Validate checks mandatory fields.
func (c ReassignConfig) Validate() error {
	if c.SweepIntervalSeconds < 0 {
		return fmt.Errorf("sweep_interval_seconds must not be negative")
	}
	return nil
}

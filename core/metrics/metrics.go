package metrics

import "time"

// AssignmentRecord captures one committed assignment for recording.
type AssignmentRecord struct {
	MissionID  string
	PilotID    string
	DroneID    string
	Score      float64
	Reassigned bool
	Timestamp  time.Time
}

// SweepRecord summarizes one urgent-reassignment sweep.
type SweepRecord struct {
	Checked    int
	Reassigned int
	Failed     int
	Skipped    int
	Duration   time.Duration
	Timestamp  time.Time
}

// Sink records matching activity. Implementations must be safe for
// concurrent use.
type Sink interface {
	RecordAssignment(rec AssignmentRecord) error
	RecordSweep(rec SweepRecord) error
	Close() error
}

// Config selects and configures metric sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = "2112"
	}
}

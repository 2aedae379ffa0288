package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/skyops/fleetmatch/core/decision"
	"github.com/skyops/fleetmatch/core/metrics"
	"github.com/skyops/fleetmatch/infra/mqtt"
)

type Config struct {
	Store    StoreConfig    `json:"store"`
	Decision DecisionConfig `json:"decision"`
	Reassign ReassignConfig `json:"reassign"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  metrics.Config `json:"metrics"`
	MQTT     mqtt.Config    `json:"mqtt"`
	API      APIConfig      `json:"api"`
}

// Load reads the configuration file (yaml or json by extension) and applies
// FM_*/__ environment overrides, then validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("FM_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fm_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Store.SetDefaults()
	cfg.Decision.SetDefaults()
	cfg.Reassign.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.API.SetDefaults()
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Decision.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Reassign.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DecisionConfig holds the candidate scoring weights.
type DecisionConfig struct {
	Weights decision.Weights `json:"weights"`
}

func (c *DecisionConfig) SetDefaults() { c.Weights.SetDefaults() }
func (c DecisionConfig) Validate() error {
	return c.Weights.Validate()
}

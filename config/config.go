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

	"raktsetu/core/dispatch"
	"raktsetu/core/lifecycle"
	"raktsetu/core/metrics"
	"raktsetu/infra/notify"
)

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Backend is "postgres" or "memory".
	Backend string `json:"backend"`
	DSN     string `json:"dsn"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("store dsn is required for postgres backend")
		}
		return nil
	default:
		return fmt.Errorf("unknown store backend %s", c.Backend)
	}
}

// NotifierConfig selects the notification transport.
type NotifierConfig struct {
	// Backend is "console" or "mqtt".
	Backend string        `json:"backend"`
	MQTT    notify.Config `json:"mqtt"`
}

// SetDefaults applies sane defaults.
func (c *NotifierConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "console"
	}
}

// Validate checks mandatory fields.
func (c NotifierConfig) Validate() error {
	switch c.Backend {
	case "console":
		return nil
	case "mqtt":
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt broker is required for mqtt notifier")
		}
		return nil
	default:
		return fmt.Errorf("unknown notifier backend %s", c.Backend)
	}
}

// Config aggregates all component configurations.
type Config struct {
	Store     StoreConfig      `json:"store"`
	Notifier  NotifierConfig   `json:"notifier"`
	Dispatch  dispatch.Config  `json:"dispatch"`
	Lifecycle lifecycle.Config `json:"lifecycle"`
	Metrics   metrics.Config   `json:"metrics"`
}

// Load reads the configuration file at path, applying RS_-prefixed
// environment overrides.
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
	if err := k.Load(env.Provider("RS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "rs_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Store.SetDefaults()
	cfg.Notifier.SetDefaults()
	cfg.Dispatch.SetDefaults()
	cfg.Lifecycle.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Notifier.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

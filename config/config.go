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

	"github.com/kilianp07/standwait/core/capacity"
	"github.com/kilianp07/standwait/core/metrics"
	"github.com/kilianp07/standwait/core/queue"
	"github.com/kilianp07/standwait/core/recommend"
	"github.com/kilianp07/standwait/core/replay"
	"github.com/kilianp07/standwait/infra/kafka"
	"github.com/kilianp07/standwait/infra/logger"
	"github.com/kilianp07/standwait/infra/mqtt"
	"github.com/kilianp07/standwait/pkg/export"
)

// EnvPrefix prefixes environment overrides, e.g. SW_STORE__DRIVER.
const EnvPrefix = "SW_"

type Config struct {
	Server    ServerConfig     `json:"server"`
	Store     StoreConfig      `json:"store"`
	Replay    replay.Config    `json:"replay"`
	Queue     queue.Config     `json:"queue"`
	Capacity  capacity.Config  `json:"capacity"`
	Recommend recommend.Config `json:"recommend"`
	MQTT      mqtt.Config      `json:"mqtt"`
	Kafka     kafka.Config     `json:"kafka"`
	Metrics   metrics.Config   `json:"metrics"`
	Export    export.Config    `json:"export"`
	Sentry    SentryConfig     `json:"sentry"`
	Logging   logger.Options   `json:"logging"`
}

// Load reads the file at path, applies environment overrides and validates
// every section. An empty path loads from the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
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
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Store.SetDefaults()
	c.Replay.SetDefaults()
	c.Queue.SetDefaults()
	c.Capacity.SetDefaults()
	c.Recommend.SetDefaults()
	c.MQTT.SetDefaults()
	c.Kafka.SetDefaults()
	c.Export.SetDefaults()
	c.Sentry.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section and names the failing one.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Validate},
		{"store", c.Store.Validate},
		{"replay", c.Replay.Validate},
		{"queue", c.Queue.Validate},
		{"capacity", c.Capacity.Validate},
		{"recommend", c.Recommend.Validate},
		{"mqtt", c.MQTT.Validate},
		{"kafka", c.Kafka.Validate},
		{"export", c.Export.Validate},
		{"logging", c.Logging.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("config %s: %w", ch.name, err)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Zones   ZonesConfig   `yaml:"zones"`
	Events  EventsConfig  `yaml:"events"`
	Scoring ScoringConfig `yaml:"scoring"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

// ZonesConfig selects where the zone collection comes from.
// Source is "file" (a GeoJSON FeatureCollection) or "postgres".
type ZonesConfig struct {
	Source      string `yaml:"source"`
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
}

type EventsConfig struct {
	URL string `yaml:"url"`
}

type ScoringConfig struct {
	DefaultWeights WeightsConfig `yaml:"default_weights"`
}

// WeightsConfig mirrors the scoring weight set in yaml form, UI range [0,100].
type WeightsConfig struct {
	Amenity   float64 `yaml:"amenity"`
	Bank      float64 `yaml:"bank"`
	Food      float64 `yaml:"food"`
	Health    float64 `yaml:"health"`
	Shop      float64 `yaml:"shop"`
	Sport     float64 `yaml:"sport"`
	Transport float64 `yaml:"transport"`
	Greenery  float64 `yaml:"greenery"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Zones: ZonesConfig{
			Source: "file",
			Path:   "final_result.geojson",
		},
		Scoring: ScoringConfig{
			DefaultWeights: WeightsConfig{
				Amenity:   20,
				Bank:      20,
				Food:      20,
				Health:    20,
				Shop:      20,
				Sport:     20,
				Transport: 20,
				Greenery:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Zones.Source {
	case "file":
		if c.Zones.Path == "" {
			return fmt.Errorf("zones.path required for file source")
		}
	case "postgres":
		if c.Zones.DatabaseURL == "" {
			return fmt.Errorf("zones.database_url required for postgres source")
		}
	default:
		return fmt.Errorf("unknown zones.source %q", c.Zones.Source)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUARTERHOUR_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("QUARTERHOUR_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("QUARTERHOUR_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("QUARTERHOUR_ZONES_SOURCE"); v != "" {
		cfg.Zones.Source = v
	}
	if v := os.Getenv("QUARTERHOUR_ZONES_PATH"); v != "" {
		cfg.Zones.Path = v
	}
	if v := os.Getenv("QUARTERHOUR_DATABASE_URL"); v != "" {
		cfg.Zones.DatabaseURL = v
	}
	if v := os.Getenv("QUARTERHOUR_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("QUARTERHOUR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

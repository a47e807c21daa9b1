// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port           string   `envconfig:"PORT" default:"8080"`
	StoreDriver    string   `envconfig:"STORE_DRIVER" default:"file"`
	StorePath      string   `envconfig:"STORE_PATH" default:"db.json"`
	PostgresURL    string   `envconfig:"POSTGRES_URL"`
	KafkaBrokers   []string `envconfig:"KAFKA_BROKERS"`
	OrderTopic     string   `envconfig:"ORDER_TOPIC" default:"order.placed"`
	EmailGroupID   string   `envconfig:"EMAIL_GROUP_ID" default:"order-notification-worker"`
	EmailURL       string   `envconfig:"EMAIL_SERVICE_URL"`
	OTelEnabled    bool     `envconfig:"OTEL_ENABLED" default:"false"`
	OTelEndpoint   string   `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	ServiceVersion string   `envconfig:"SERVICE_VERSION" default:"0.1.0"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
	AdminEmail     string   `envconfig:"ADMIN_EMAIL"`
	AdminPassword  string   `envconfig:"ADMIN_PASSWORD"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverFile:
		if c.StorePath == "" {
			return fmt.Errorf("STORE_PATH is required for the %s driver", DriverFile)
		}
	case DriverPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required for the %s driver", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// Level maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

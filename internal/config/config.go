package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the widget service.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"sitesearch"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8095"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"` // json or console
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Remote index
	SearchEndpoint      string        `env:"SEARCH_ENDPOINT"`
	SearchTransport     string        `env:"SEARCH_TRANSPORT" envDefault:"xhr"` // xhr or jsonp
	SearchCallbackParam string        `env:"SEARCH_CALLBACK_PARAM" envDefault:"callback"`
	SearchJSONPTimeout  time.Duration `env:"SEARCH_JSONP_TIMEOUT" envDefault:"5s"`
	SearchUsername      string        `env:"SEARCH_USERNAME"`
	SearchPassword      string        `env:"SEARCH_PASSWORD"`
	SearchHTTPTimeout   time.Duration `env:"SEARCH_HTTP_TIMEOUT" envDefault:"15s"`

	// Endpoint profiles file; the active profile overrides the env endpoint
	// settings above when both are present.
	EndpointsFile   string `env:"SEARCH_ENDPOINTS_FILE" envDefault:"configs/endpoints.yml"`
	EndpointProfile string `env:"SEARCH_ENDPOINT_PROFILE"`

	// History persistence; empty DSN keeps history in memory.
	DatabaseURL    string        `env:"DB_POSTGRESQL_WRITE_DSN"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Tracing
	EnableTracing bool   `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	switch strings.ToLower(cfg.SearchTransport) {
	case "xhr", "jsonp":
	default:
		return nil, fmt.Errorf("SEARCH_TRANSPORT must be xhr or jsonp, got %q", cfg.SearchTransport)
	}

	if cfg.EnableTracing && strings.TrimSpace(cfg.OTLPEndpoint) == "" {
		return nil, fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when ENABLE_TRACING is true")
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

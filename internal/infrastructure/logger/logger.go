package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sitesearch/internal/config"
)

// New creates a zerolog.Logger configured for the widget service and installs
// it as the process-wide default.
func New(cfg *config.Config) zerolog.Logger {
	level := parseLevel(cfg.LogLevel)

	var base zerolog.Logger
	if strings.EqualFold(cfg.LogFormat, "console") {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		base = zerolog.New(output)
	} else {
		base = zerolog.New(os.Stdout)
	}

	base = base.With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger().
		Level(level)

	log.Logger = base
	return base
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

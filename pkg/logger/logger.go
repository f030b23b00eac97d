// Package logger configures zerolog for the pump selection service.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultService is stamped on every event unless Config.Service overrides it.
const defaultService = "pumpselect"

// Config holds logger configuration
type Config struct {
	Level   string // debug, info, warn, error
	Pretty  bool   // human-readable console output for local runs
	Service string // service field on every event; empty means "pumpselect"
}

// New creates a new structured logger
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	service := cfg.Service
	if service == "" {
		service = defaultService
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Str("service", service).
		Caller().
		Logger()
}

// SetGlobalLogger sets the package-level logger
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}

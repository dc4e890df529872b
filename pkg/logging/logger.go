// Package logging provides structured logging for tally using zerolog.
// Console output is used when stderr is a terminal, JSON everywhere else,
// so that drop-count reports from a pipeline run can be read by humans or
// shipped to a log collector unchanged.
//
// Loggers travel in the context. Each pipeline run, stage and dataset
// adds its own field:
//
//	ctx := logging.WithStage(logging.WithRunID(ctx, id), "association")
//	logging.FromContext(ctx).Debug().Msg("Normalizing department codes")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is returned by FromContext when the context carries none.
var defaultLogger zerolog.Logger

func init() {
	defaultLogger = NewLoggerFromConfig(envConfig())
}

// envConfig reads the default logger settings from LOG_LEVEL, DEBUG,
// LOG_FORMAT and NO_COLOR.
func envConfig() *Config {
	cfg := DefaultConfig()
	switch level := os.Getenv("LOG_LEVEL"); {
	case level != "":
		cfg.Level = level
	case os.Getenv("DEBUG") != "":
		cfg.Level = "debug"
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = format
	}
	return cfg
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger // Also update zerolog's global logger
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Package app provides the application context and dependency management
// for the tally CLI. It centralizes configuration, logging and dataset
// loading, and hands them to commands through application.Application.
package app

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/tally/internal/cmd/application"
	"github.com/agentstation/tally/internal/embedded"
	"github.com/agentstation/tally/internal/loader"
	"github.com/agentstation/tally/pkg/logging"
	"github.com/agentstation/tally/pkg/tables"
)

// App represents the tally application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the default locations and can be replaced
// with functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config, os.Stderr)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Quiet reports whether -q was given.
func (a *App) Quiet() bool {
	return a.config.Quiet
}

// NoColor reports whether colored output is disabled.
func (a *App) NoColor() bool {
	return a.config.NoColor
}

// Settings returns the data and pipeline configuration.
func (a *App) Settings() application.Settings {
	return application.Settings{
		DataDir:         a.config.DataDir,
		Files:           a.config.Files(),
		Denominator:     a.config.Denominator,
		Duplicates:      a.config.Duplicates,
		StrictBallots:   a.config.StrictBallots,
		FailOnUnmatched: a.config.FailOnUnmatched,
	}
}

// Load reads the named dataset files from the data directory, or from
// the embedded sample when --sample is set.
func (a *App) Load(ctx context.Context, files loader.Files) (tables.Input, *loader.Report, error) {
	ctx = logging.WithLogger(ctx, a.logger)
	if a.config.Sample {
		return loader.New(&loader.FSReader{FS: embedded.Sample()}).Load(ctx, loader.DefaultFiles().Only(files))
	}
	return loader.LoadDir(ctx, a.config.DataDir, files)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

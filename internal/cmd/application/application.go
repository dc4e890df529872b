// Package application provides the application interface for tally commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            in, report, err := app.Load(cmd.Context(), app.Settings().Files)
//	            if err != nil {
//	                return err
//	            }
//	            // ... run the pipeline
//	            return nil
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    LoadFunc: func(ctx context.Context, files loader.Files) (tables.Input, *loader.Report, error) {
//	        return testInput, &loader.Report{}, nil
//	    },
//	}
//	cmd := aggregate.NewCommand(mock)
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/tally/internal/loader"
	"github.com/agentstation/tally/pkg/aggregate"
	"github.com/agentstation/tally/pkg/areas"
	"github.com/agentstation/tally/pkg/pipeline"
	"github.com/agentstation/tally/pkg/tables"
)

// Settings is the data and pipeline configuration resolved from config
// files, environment and global flags. Command flags override it.
type Settings struct {
	DataDir         string
	Files           loader.Files
	Denominator     string
	Duplicates      string
	StrictBallots   bool
	FailOnUnmatched bool
}

// PipelineOptions converts the settings to pipeline options. Invalid
// values are reported by pipeline.Run.
func (s Settings) PipelineOptions() []pipeline.Option {
	return []pipeline.Option{
		pipeline.WithDuplicatePolicy(areas.DuplicatePolicy(s.Duplicates)),
		pipeline.WithDenominator(aggregate.Denominator(s.Denominator)),
		pipeline.WithStrictBallots(s.StrictBallots),
		pipeline.WithFailOnUnmatched(s.FailOnUnmatched),
	}
}

// Application provides the application interface that commands need.
// The App struct from cmd/tally/app implements this interface.
type Application interface {
	// Load reads the named dataset files from the configured data directory.
	Load(ctx context.Context, files loader.Files) (tables.Input, *loader.Report, error)

	// Settings returns the resolved data and pipeline configuration.
	Settings() Settings

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, etc).
	OutputFormat() string

	// Quiet reports whether status messages should be suppressed.
	Quiet() bool

	// NoColor reports whether colored output is disabled.
	NoColor() bool

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

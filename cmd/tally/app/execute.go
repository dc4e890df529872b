package app

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/tally/internal/cmd/alerts"
	"github.com/agentstation/tally/pkg/constants"
)

// Execute runs the tally CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Referendum results by region",
		Version: a.version,
		Long: `Tally joins referendum results published per department and town to
the region each department belongs to, and sums the votes per region.

Department codes are normalized before the join, so "1", "01" and "001"
refer to the same department. Overseas and abroad results are excluded,
and every dropped row is counted in the run report.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "inspect",
		Title: "Inspection Commands:",
	})

	// Global flags. Values are read back in setupCommand, only when set.
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/"+constants.ConfigFileName+".yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml, markdown, csv")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("data-dir", "", "directory holding the dataset files")
	flags.Bool("sample", false, "use the bundled sample datasets instead of --data-dir")

	rootCmd.SetVersionTemplate("tally {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("config") {
		config, err := LoadConfig(mustGetString(cmd, "config"))
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.ApplyFlags(cmd.Flags())

	logger := NewLogger(a.config, cmd.ErrOrStderr())
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(a.NewAggregateCommand())
	rootCmd.AddCommand(a.NewValidateCommand())

	// Inspection commands
	rootCmd.AddCommand(a.NewAreasCommand())
	rootCmd.AddCommand(a.NewNormalizeCommand())

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
	rootCmd.AddCommand(a.NewManCommand())
}

// ExitOnError is a helper that prints an error alert and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_ = writeError(os.Stderr, err)
		os.Exit(1)
	}
}

// writeError writes err as an error alert. Color follows NO_COLOR and
// whether w is a terminal, since no config is loaded at this point.
func writeError(w io.Writer, err error) error {
	alert := alerts.NewError("Error").WithError(err)
	return alerts.NewWriter(w, os.Getenv("NO_COLOR") != "").WriteAlert(alert)
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

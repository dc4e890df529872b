package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/agentstation/tally/cmd/tally/cmd/aggregate"
	"github.com/agentstation/tally/cmd/tally/cmd/areas"
	"github.com/agentstation/tally/cmd/tally/cmd/normalize"
	"github.com/agentstation/tally/cmd/tally/cmd/validate"
)

// NewAggregateCommand creates the aggregate command with app dependencies.
func (a *App) NewAggregateCommand() *cobra.Command {
	return aggregate.NewCommand(a)
}

// NewValidateCommand creates the validate command with app dependencies.
func (a *App) NewValidateCommand() *cobra.Command {
	return validate.NewCommand(a)
}

// NewAreasCommand creates the areas command with app dependencies.
func (a *App) NewAreasCommand() *cobra.Command {
	return areas.NewCommand(a)
}

// NewNormalizeCommand creates the normalize command with app dependencies.
func (a *App) NewNormalizeCommand() *cobra.Command {
	return normalize.NewCommand(a)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for the tally CLI.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tally version %s\n", a.Version())
			fmt.Fprintf(out, "commit: %s\n", a.Commit())
			fmt.Fprintf(out, "built: %s\n", a.Date())
			fmt.Fprintf(out, "built by: %s\n", a.BuiltBy())
			fmt.Fprintf(out, "go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// NewManCommand creates the hidden man page generator.
func (a *App) NewManCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  "Generate man page",
		Long:   `Generate man page for the tally CLI.`,
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header := &doc.GenManHeader{
				Title:   "TALLY",
				Section: "1",
				Source:  "tally " + a.Version(),
				Manual:  "tally Manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}

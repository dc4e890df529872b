// Package areas provides the areas command, which prints the department
// to region table built from the regions and departments datasets.
package areas

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/tally/internal/cmd/application"
	"github.com/agentstation/tally/internal/output"
	pkgareas "github.com/agentstation/tally/pkg/areas"
	"github.com/agentstation/tally/pkg/constants"
	"github.com/agentstation/tally/pkg/logging"
)

// NewCommand creates the areas command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var duplicates string

	cmd := &cobra.Command{
		Use:     "areas",
		GroupID: "inspect",
		Short:   "Show the department to region table",
		Long: `Areas joins the departments dataset to the regions dataset and prints
one row per department with its region. Departments whose region code is
unknown, and repeated codes, are listed below the table.

The referendum dataset is not read.`,
		Example: `  tally areas                        # Table of departments and regions
  tally areas --duplicates reject    # Fail on a repeated code
  tally areas -o csv > areas.csv     # Export the table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings := app.Settings()
			if cmd.Flags().Changed("duplicates") {
				settings.Duplicates = duplicates
			}
			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			return Execute(ctx, app, settings, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&duplicates, "duplicates", "",
		"repeated region or department codes: keep-first or reject")

	return cmd
}

// Execute loads regions and departments, joins them and renders the areas.
func Execute(ctx context.Context, app application.Application, settings application.Settings, w io.Writer) error {
	format, err := output.Resolve(app.OutputFormat())
	if err != nil {
		return err
	}

	files := settings.Files
	files.Referendum = ""
	in, _, err := app.Load(ctx, files)
	if err != nil {
		return err
	}

	result, err := pkgareas.Join(in.Regions, in.Departments,
		pkgareas.WithDuplicatePolicy(pkgareas.DuplicatePolicy(settings.Duplicates)))
	if err != nil {
		return err
	}

	logging.FromContext(logging.WithStage(ctx, constants.StageAreas)).Debug().
		Int("areas", len(result.Areas)).
		Int("dropped", result.Dropped()).
		Msg("Areas joined")

	return output.Render(w, format, result, output.AreasDocument(result))
}

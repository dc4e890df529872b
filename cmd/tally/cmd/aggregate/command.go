// Package aggregate provides the aggregate command, which runs the full
// pipeline and prints the referendum results per region.
package aggregate

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/tally/internal/cmd/alerts"
	"github.com/agentstation/tally/internal/cmd/application"
	"github.com/agentstation/tally/internal/output"
	"github.com/agentstation/tally/pkg/logging"
	"github.com/agentstation/tally/pkg/pipeline"
)

// NewCommand creates the aggregate command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "aggregate",
		GroupID: "core",
		Short:   "Sum referendum results per region",
		Long: `Aggregate loads the regions, departments and referendum datasets,
joins every referendum record to its department and region, and prints the
vote counts summed per region with the share of choice A.

Records from overseas departments and French citizens abroad are excluded.
Rows that cannot be placed are dropped and counted; use --report to list
them, or --fail-on-unmatched to stop on the first one.`,
		Example: `  tally aggregate                            # Aggregate data/*.csv
  tally aggregate --data-dir ./exports       # Read datasets from another directory
  tally aggregate --denominator turnout      # Ratio over valid ballots cast
  tally aggregate --report -o markdown       # Full report as markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			notify := alerts.For(cmd.ErrOrStderr(), app.Quiet(), app.NoColor())
			return Execute(ctx, app, flags.Merge(cmd, app.Settings()), flags.Report, cmd.OutOrStdout(), notify)
		},
	}

	flags = addFlags(cmd)

	return cmd
}

// Execute loads the datasets, runs the pipeline and renders the result.
// Without report, pipeline warnings go to notify instead of the output.
func Execute(ctx context.Context, app application.Application, settings application.Settings, report bool, w io.Writer, notify alerts.Writer) error {
	format, err := output.Resolve(app.OutputFormat())
	if err != nil {
		return err
	}

	in, load, err := app.Load(ctx, settings.Files)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, in, settings.PipelineOptions()...)
	if err != nil {
		return err
	}

	if report {
		return output.Render(w, format, result, output.ReportDocument(result, load))
	}

	if err := output.Render(w, format, result.Aggregates, output.AggregatesData(result.Aggregates, &result.Total)); err != nil {
		return err
	}
	if len(result.Warnings) > 0 {
		return notify.WriteAlert(alerts.NewWarning(result.Summary()).WithDetails(result.Warnings...))
	}
	return nil
}

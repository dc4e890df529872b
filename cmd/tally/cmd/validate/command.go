// Package validate provides the validate command, which checks the
// datasets without printing the aggregates.
package validate

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/tally/internal/cmd/alerts"
	"github.com/agentstation/tally/internal/cmd/application"
	"github.com/agentstation/tally/internal/loader"
	"github.com/agentstation/tally/internal/output"
	"github.com/agentstation/tally/pkg/aggregate"
	"github.com/agentstation/tally/pkg/errors"
	"github.com/agentstation/tally/pkg/logging"
	"github.com/agentstation/tally/pkg/pipeline"
)

// Report is the structured output of the validate command.
type Report struct {
	Valid            bool                       `json:"valid" yaml:"valid"`
	Issues           int                        `json:"issues" yaml:"issues"`
	Files            []loader.FileReport        `json:"files" yaml:"files"`
	Stages           []pipeline.StageReport     `json:"stages" yaml:"stages"`
	Drops            pipeline.Report            `json:"drops" yaml:"drops"`
	BallotMismatches []aggregate.BallotMismatch `json:"ballot_mismatches,omitempty" yaml:"ballot_mismatches,omitempty"`
	Warnings         []string                   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewCommand creates the validate command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "validate",
		GroupID: "core",
		Short:   "Check the datasets for rows that would be dropped",
		Long: `Validate loads the datasets and runs the whole pipeline, then lists
every row skipped by the loader or dropped by a stage, and every referendum
record whose counts break the ballot identity.

Overseas records and departments without results are expected and are not
counted as issues. Fatal errors (missing files, missing columns, duplicate
codes under the reject policy) always exit non-zero. With --strict, any
issue does.`,
		Example: `  tally validate                 # Report issues, exit 0 unless fatal
  tally validate --strict        # Exit non-zero on any issue
  tally validate -o json         # Machine-readable report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			notify := alerts.For(cmd.ErrOrStderr(), app.Quiet(), app.NoColor())
			return Execute(ctx, app, app.Settings(), strict, cmd.OutOrStdout(), notify)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false,
		"fail on any skipped row, dropped row or ballot identity break")

	return cmd
}

// Execute validates the datasets and renders the findings, then writes
// the verdict to notify. In strict mode the findings are written before
// the error is returned.
func Execute(ctx context.Context, app application.Application, settings application.Settings, strict bool, w io.Writer, notify alerts.Writer) error {
	format, err := output.Resolve(app.OutputFormat())
	if err != nil {
		return err
	}

	in, load, err := app.Load(ctx, settings.Files)
	if err != nil {
		return err
	}

	// Issues are collected here rather than failing the first stage.
	settings.StrictBallots = false
	settings.FailOnUnmatched = false
	result, err := pipeline.Run(ctx, in, settings.PipelineOptions()...)
	if err != nil {
		return err
	}

	if load == nil {
		load = &loader.Report{}
	}

	issues := Issues(result, load)
	report := Report{
		Valid:            issues == 0,
		Issues:           issues,
		Files:            load.Files,
		Stages:           result.Report.Stages,
		Drops:            result.Report,
		BallotMismatches: result.Report.BallotMismatches,
		Warnings:         result.Warnings,
	}
	report.Drops.Stages = nil
	report.Drops.BallotMismatches = nil

	if err := output.Render(w, format, report, output.ValidationDocument(result, load, issues)); err != nil {
		return err
	}

	if issues == 0 {
		return notify.WriteAlert(alerts.NewSuccess("No issues found"))
	}
	if err := notify.WriteAlert(alerts.NewWarning(pluralIssues(issues))); err != nil {
		return err
	}

	if strict {
		return errors.NewValidationError("datasets", issues, pluralIssues(issues))
	}
	return nil
}

// Issues counts the rows that indicate a problem in the datasets.
// Overseas records, out of scope areas and silent departments are
// expected and not counted.
func Issues(result *pipeline.Result, load *loader.Report) int {
	n := len(result.Report.Unresolved) +
		len(result.Report.Invalid) +
		len(result.Report.Unmatched) +
		len(result.Report.ShadowedAreas) +
		len(result.Report.Duplicates) +
		len(result.Report.BallotMismatches)
	if load != nil {
		n += load.Skipped()
	}
	return n
}

func pluralIssues(n int) string {
	if n == 1 {
		return "1 issue found"
	}
	return fmt.Sprintf("%d issues found", n)
}

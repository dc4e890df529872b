package aggregate

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tally/internal/cmd/application"
)

// Flags holds the aggregate command flags.
type Flags struct {
	Denominator     string
	Duplicates      string
	StrictBallots   bool
	FailOnUnmatched bool
	Report          bool
}

// addFlags registers the aggregate flags on cmd.
func addFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}
	cmd.Flags().StringVar(&flags.Denominator, "denominator", "",
		"ratio denominator: expressed (choice A + choice B) or turnout (registered - abstentions - null)")
	cmd.Flags().StringVar(&flags.Duplicates, "duplicates", "",
		"repeated region or department codes: keep-first or reject")
	cmd.Flags().BoolVar(&flags.StrictBallots, "strict-ballots", false,
		"fail when a record breaks the ballot identity")
	cmd.Flags().BoolVar(&flags.FailOnUnmatched, "fail-on-unmatched", false,
		"fail when a department or record cannot be placed")
	cmd.Flags().BoolVar(&flags.Report, "report", false,
		"print the drop report and intermediate counts with the aggregates")
	return flags
}

// Merge overrides settings with the flags given on the command line.
func (f *Flags) Merge(cmd *cobra.Command, s application.Settings) application.Settings {
	if cmd.Flags().Changed("denominator") {
		s.Denominator = f.Denominator
	}
	if cmd.Flags().Changed("duplicates") {
		s.Duplicates = f.Duplicates
	}
	if cmd.Flags().Changed("strict-ballots") {
		s.StrictBallots = f.StrictBallots
	}
	if cmd.Flags().Changed("fail-on-unmatched") {
		s.FailOnUnmatched = f.FailOnUnmatched
	}
	return s
}

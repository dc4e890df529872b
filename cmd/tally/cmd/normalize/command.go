// Package normalize provides the normalize command, which shows how
// department codes are classified.
package normalize

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/tally/internal/cmd/application"
	"github.com/agentstation/tally/internal/output"
	"github.com/agentstation/tally/pkg/codes"
)

// Classification is the structured output for one input code.
type Classification struct {
	Input   string     `json:"input" yaml:"input"`
	Code    codes.Code `json:"code" yaml:"code"`
	InScope bool       `json:"in_scope" yaml:"in_scope"`
}

// NewCommand creates the normalize command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "normalize CODE...",
		GroupID: "inspect",
		Short:   "Classify department codes",
		Long: `Normalize prints the canonical form and the kind of each department code:
mainland, corsican, overseas or invalid. Only mainland and Corsican codes
take part in the aggregation.`,
		Example: `  tally normalize 1 01 075 2a ZA 976 abc`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(app, args, cmd.OutOrStdout())
		},
	}
}

// Execute classifies inputs and renders the result.
func Execute(app application.Application, inputs []string, w io.Writer) error {
	format, err := output.Resolve(app.OutputFormat())
	if err != nil {
		return err
	}
	return output.Render(w, format, Classify(inputs), output.CodesData(inputs))
}

// Classify normalizes every input.
func Classify(inputs []string) []Classification {
	list := make([]Classification, 0, len(inputs))
	for _, in := range inputs {
		c := codes.Normalize(in)
		list = append(list, Classification{Input: in, Code: c, InScope: c.InScope()})
	}
	return list
}

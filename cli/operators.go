package cli

import (
	"github.com/asaidimu/go-mongosql/core/query"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// OperatorListing is the JSON payload of the operators command.
type OperatorListing struct {
	Filter     []string `json:"filter"`
	Expression []string `json:"expression"`
	Stage      []string `json:"stage"`
}

// NewOperatorsCommand creates the operators command.
func NewOperatorsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "operators",
		Short: "List the available operators",
		Long: `List every filter operator, expression operator and pipeline stage the
compiler knows, including functions declared in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperators(opts, cmd)
		},
	}
}

func runOperators(opts *RootOptions, cmd *cobra.Command) error {
	registry := opts.compiler.Registry()
	listing := OperatorListing{
		Filter:     registry.Tags(query.KindFilter),
		Expression: registry.Tags(query.KindExpression),
		Stage:      registry.Tags(query.KindStage),
	}

	formatter := opts.formatter(cmd)
	if formatter.Format == "json" {
		return formatter.JSON(listing)
	}

	table := tablewriter.NewWriter(formatter.Writer)
	table.SetHeader([]string{"Kind", "Operator"})
	table.SetAutoMergeCells(true)
	table.SetRowLine(false)
	for _, group := range []struct {
		kind query.OperatorKind
		tags []string
	}{
		{query.KindFilter, listing.Filter},
		{query.KindExpression, listing.Expression},
		{query.KindStage, listing.Stage},
	} {
		for _, tag := range group.tags {
			table.Append([]string{string(group.kind), tag})
		}
	}
	table.Render()
	return nil
}

package cli

import (
	"github.com/spf13/cobra"
)

// NewPathCommand creates the path command.
func NewPathCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path <field.path>",
		Short: "Translate a dotted field path into a column accessor",
		Long: `Translate a dotted field path into a JSON accessor on its first segment.

Example:
  mongosql path user.orders.0.item
  mongosql path -d pg user.orders.0.item`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.formatter(cmd).SQL(opts.compiler.TranslatePath(args[0], opts.dialect), opts.dialect)
		},
	}
}

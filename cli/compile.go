package cli

import (
	"github.com/spf13/cobra"
)

// CompileOptions holds flags shared by the filter, expr and pipeline commands.
type CompileOptions struct {
	*RootOptions
	Input InputOptions
}

// PipelineOptions holds flags for the pipeline command.
type PipelineOptions struct {
	CompileOptions
	From string // relation the pipeline reads from
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter [spec]",
		Short: "Compile a filter into a WHERE condition",
		Long: `Compile a MongoDB-style filter document into a boolean SQL condition.

Example:
  mongosql filter '{"age": {"$gte": 21}, "profile.city": "Paris"}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd, args, func(spec any) (string, error) {
				return opts.compiler.CompileFilter(spec, opts.dialect)
			})
		},
	}
	opts.Input.addFlags(cmd)

	return cmd
}

// NewExprCommand creates the expr command.
func NewExprCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expr [expression]",
		Short: "Compile an aggregation expression",
		Long: `Compile an aggregation expression into a scalar SQL expression.

Example:
  mongosql expr '{"$cond": [{"$gte": ["$age", 18]}, "adult", "minor"]}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd, args, func(expr any) (string, error) {
				return opts.compiler.CompileExpression(expr, opts.dialect)
			})
		},
	}
	opts.Input.addFlags(cmd)

	return cmd
}

// NewPipelineCommand creates the pipeline command.
func NewPipelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PipelineOptions{CompileOptions: CompileOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "pipeline --from <relation> [stages]",
		Short: "Compile an aggregation pipeline into a SELECT statement",
		Long: `Compile a list of aggregation stages into a single SELECT statement over
the relation given with --from.

Example:
  mongosql pipeline --from users '[{"$match": {"age": {"$gt": 18}}}, {"$count": "adults"}]'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(&opts.CompileOptions, cmd, args, func(stages any) (string, error) {
				fn, err := opts.compiler.CompilePipeline(stages)
				if err != nil {
					return "", err
				}
				return fn(opts.From, opts.dialect)
			})
		},
	}
	opts.Input.addFlags(cmd)
	cmd.Flags().StringVar(&opts.From, "from", "", "relation (table or subquery) the pipeline reads from")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func runCompile(opts *CompileOptions, cmd *cobra.Command, args []string, compile func(any) (string, error)) error {
	formatter := opts.formatter(cmd)

	spec, err := opts.Input.Load(cmd, args)
	if err != nil {
		return formatter.Fail(err)
	}

	sql, err := compile(spec)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.SQL(sql, opts.dialect)
}

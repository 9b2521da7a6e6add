// Package cli implements the mongosql command line tool.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/asaidimu/go-mongosql/core/query"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RootOptions holds global flags for all commands, plus the state built from
// them before a command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Dialect    string
	ConfigPath string
	Strict     bool

	compiler *query.Compiler
	dialect  query.Dialect
	logger   *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the mongosql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mongosql",
		Short: "Translate MongoDB-style queries into SQL",
		Long: `mongosql compiles MongoDB-style filters, expressions and aggregation
pipelines into SQL for SQLite and PostgreSQL.

Queries are read as JSON, YAML or CUE from an argument, a file or stdin.
String values are embedded without escaping: only feed trusted input.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log compilation details to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Dialect, "dialect", "d", string(query.DefaultDialect), "SQL dialect (sqlite|pg)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+DefaultConfigFile+" if present)")
	cmd.PersistentFlags().BoolVar(&opts.Strict, "strict", false, "reject unknown pipeline stages")

	cmd.AddCommand(NewFilterCommand(opts))
	cmd.AddCommand(NewExprCommand(opts))
	cmd.AddCommand(NewPipelineCommand(opts))
	cmd.AddCommand(NewPathCommand(opts))
	cmd.AddCommand(NewOperatorsCommand(opts))

	return cmd
}

// setup merges the config file with the flags and builds the compiler. Flags
// set on the command line win over the file.
func (opts *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "", err)
	}

	flags := cmd.Flags()
	if cfg.Format != "" && !flags.Changed("format") {
		opts.Format = cfg.Format
	}
	if cfg.Dialect != "" && !flags.Changed("dialect") {
		opts.Dialect = cfg.Dialect
	}
	if cfg.StrictStages && !flags.Changed("strict") {
		opts.Strict = true
	}

	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}
	opts.dialect, err = query.ParseDialect(opts.Dialect)
	if err != nil {
		return WrapExitError(ExitCommandError, "", err)
	}

	opts.logger = zap.NewNop()
	if opts.Verbose {
		opts.logger = newLogger(cmd.ErrOrStderr())
	}

	compilerOpts := []query.Option{
		query.WithLogger(opts.logger),
		query.WithEmptyCondition(cfg.EmptyCondition),
	}
	if opts.Strict {
		compilerOpts = append(compilerOpts, query.WithStrictStages())
	}
	opts.compiler, err = query.NewCompiler(compilerOpts...)
	if err != nil {
		return err
	}
	if err := cfg.RegisterFunctions(opts.compiler); err != nil {
		return WrapExitError(ExitCommandError, "config", err)
	}
	return nil
}

func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}

func newLogger(w io.Writer) *zap.Logger {
	config := zap.NewDevelopmentEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(config), zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Execute runs the command tree with the given arguments and streams and
// returns the process exit code. Errors not already reported by a command are
// printed to stderr.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	ok := errors.As(err, &exitErr)
	if !ok || !exitErr.reported {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	if !ok {
		// Flag and argument errors raised by cobra itself.
		return ExitCommandError
	}
	return exitErr.Code
}

package query

// Translator is the compile surface shared by every Compiler. Consumers such as
// the command line tool depend on it rather than on *Compiler.
type Translator interface {
	// CompileFilter renders a filter spec as a boolean SQL expression.
	CompileFilter(spec any, d Dialect) (string, error)

	// CompileExpression renders an expression spec as a scalar SQL expression.
	CompileExpression(expr any, d Dialect) (string, error)

	// CompilePipeline validates a stage list and returns the function that
	// renders it against a relation.
	CompilePipeline(stages any) (PipelineFunc, error)

	// TranslatePath renders a dotted field path as a JSON accessor.
	TranslatePath(path string, d Dialect) string
}

var _ Translator = (*Compiler)(nil)

// Package query compiles MongoDB-style filters, expressions and aggregation
// pipelines into SQL text for SQLite and PostgreSQL.
//
// Generated SQL embeds string values between single quotes without escaping.
// The compilers are meant for trusted, diagnostic input and must never be fed
// user supplied values.
package query

import (
	"fmt"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"go.uber.org/zap"
)

// Compiler is a compilation session. It owns an operator registry, so
// operators registered on one Compiler are invisible to the others. A Compiler
// is safe for concurrent use.
type Compiler struct {
	registry       *Registry
	logger         *zap.Logger
	bus            *events.TypedEventBus[CompilerEvent]
	strictStages   bool
	emptyCondition string

	subMu         sync.RWMutex
	subscriptions map[string]func()
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegistry makes the Compiler use r instead of a fresh built-in registry.
// Compilers sharing a registry share their registrations.
func WithRegistry(r *Registry) Option {
	return func(c *Compiler) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithStrictStages makes pipelines with unknown stage tags fail to compile
// instead of skipping those stages.
func WithStrictStages() Option {
	return func(c *Compiler) {
		c.strictStages = true
	}
}

// WithEmptyCondition sets what an empty filter compiles to. The default is the
// empty string, which adds no WHERE clause to a pipeline.
func WithEmptyCondition(condition string) Option {
	return func(c *Compiler) {
		c.emptyCondition = condition
	}
}

// NewCompiler creates a Compiler holding the built-in operators.
func NewCompiler(opts ...Option) (*Compiler, error) {
	bus, err := events.NewTypedEventBus[CompilerEvent](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	c := &Compiler{
		logger:        zap.NewNop(),
		bus:           bus,
		subscriptions: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	return c, nil
}

// MustNewCompiler is like NewCompiler but panics on error.
func MustNewCompiler(opts ...Option) *Compiler {
	c, err := NewCompiler(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	defaultOnce     sync.Once
	defaultCompiler *Compiler
)

// Default returns the process-wide Compiler used by the package-level
// functions.
func Default() *Compiler {
	defaultOnce.Do(func() {
		defaultCompiler = MustNewCompiler()
	})
	return defaultCompiler
}

// Registry returns the registry the Compiler dispatches through.
func (c *Compiler) Registry() *Registry {
	return c.registry
}

// RegisterFilter adds or replaces a filter operator on this Compiler.
func (c *Compiler) RegisterFilter(tag string, h FilterHandler) error {
	return c.Register(KindFilter, tag, h)
}

// RegisterFieldFilter adds or replaces a filter operator that renders its own
// field accessor.
func (c *Compiler) RegisterFieldFilter(tag string, h FilterHandler) error {
	if err := c.registry.RegisterFieldFilter(tag, h); err != nil {
		return err
	}
	c.registered(KindFilter, tag)
	return nil
}

// RegisterExpression adds or replaces an expression operator on this Compiler.
func (c *Compiler) RegisterExpression(tag string, h ExpressionHandler) error {
	return c.Register(KindExpression, tag, h)
}

// Register adds or replaces an operator of the given kind. Replacing a tag,
// built-in or not, is silent.
func (c *Compiler) Register(kind OperatorKind, tag string, handler any) error {
	if err := c.registry.Register(kind, tag, handler); err != nil {
		return err
	}
	c.registered(kind, tag)
	return nil
}

func (c *Compiler) registered(kind OperatorKind, tag string) {
	tag, _ = normalizeTag(tag)
	c.logger.Info("Registered operator", zap.String("kind", string(kind)), zap.String("tag", tag))
	c.emit(CompilerEvent{Type: OperatorRegistered, Operation: "register", Kind: kind, Tag: tag})
}

// CompileFilter compiles a filter spec into a boolean SQL expression.
func (c *Compiler) CompileFilter(spec any, d Dialect) (string, error) {
	return c.observe("filter", spec, d, func() (string, error) {
		return c.Filter(spec, d)
	})
}

// CompileExpression compiles an expression spec into a scalar SQL expression.
func (c *Compiler) CompileExpression(expr any, d Dialect) (string, error) {
	return c.observe("expression", expr, d, func() (string, error) {
		return c.Expression(expr, d)
	})
}

// TranslatePath converts a dotted field path, like the package-level
// TranslatePath.
func (c *Compiler) TranslatePath(path string, d Dialect) string {
	return TranslatePath(path, d)
}

func (c *Compiler) observe(operation string, input any, d Dialect, fn func() (string, error)) (string, error) {
	start := time.Now()
	out, err := fn()
	elapsed := time.Since(start)

	if err != nil {
		msg := err.Error()
		c.logger.Debug("Compilation failed",
			zap.String("operation", operation),
			zap.String("dialect", d.String()),
			zap.Error(err))
		c.emit(CompilerEvent{Type: CompileFailed, Operation: operation, Dialect: d, Input: input, Error: &msg, Duration: elapsed})
		return "", err
	}

	c.logger.Debug("Compiled",
		zap.String("operation", operation),
		zap.String("dialect", d.String()),
		zap.String("sql", out),
		zap.Duration("elapsed", elapsed))
	c.emit(CompilerEvent{Type: CompileSuccess, Operation: operation, Dialect: d, Input: input, Output: out, Duration: elapsed})
	return out, nil
}

// Package-level entry points delegate to Default().

// CompileFilter compiles spec with the default Compiler.
func CompileFilter(spec any, d Dialect) (string, error) {
	return Default().CompileFilter(spec, d)
}

// CompileExpression compiles expr with the default Compiler.
func CompileExpression(expr any, d Dialect) (string, error) {
	return Default().CompileExpression(expr, d)
}

// CompilePipeline compiles stages with the default Compiler.
func CompilePipeline(stages any) (PipelineFunc, error) {
	return Default().CompilePipeline(stages)
}

// Register adds an operator to the default Compiler, affecting every later
// package-level call.
func Register(kind OperatorKind, tag string, handler any) error {
	return Default().Register(kind, tag, handler)
}

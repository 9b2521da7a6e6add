package query

import (
	"fmt"
	"sort"
	"sync"
)

// FilterArg is what a filter operator receives. Value holds the operand with
// string values already wrapped in quotes; Raw holds it untouched. Field is the
// rendered accessor of the field the operator applies to and is empty for
// operators used at the top level of a filter.
type FilterArg struct {
	Value   any
	Raw     any
	Field   string
	Dialect Dialect
}

// FilterHandler renders a filter operator. For operators applied to a field,
// the result is the predicate suffix, e.g. ">= 25", and the compiler prefixes
// the field itself.
type FilterHandler func(c *Compiler, arg FilterArg) (string, error)

// ExpressionHandler renders an expression operator. A non-list argument has
// already been promoted to a one-element list. The compiler wraps the result
// in parentheses.
type ExpressionHandler func(c *Compiler, args []any, d Dialect) (string, error)

type filterEntry struct {
	handler FilterHandler
	// ownsField marks handlers that render the complete predicate, field
	// included.
	ownsField bool
}

// Registry maps operator tags to their handlers. Filter and expression tags
// live in separate tables, so one tag may mean different things in each.
type Registry struct {
	mu          sync.RWMutex
	filters     map[string]filterEntry
	expressions map[string]ExpressionHandler
}

// NewRegistry returns a registry holding the built-in operators.
func NewRegistry() *Registry {
	r := &Registry{
		filters:     make(map[string]filterEntry, len(builtinFilters)),
		expressions: make(map[string]ExpressionHandler, len(builtinExpressions)),
	}
	for tag, entry := range builtinFilters {
		r.filters[tag] = entry
	}
	for tag, h := range builtinExpressions {
		r.expressions[tag] = h
	}
	return r
}

// RegisterFilter adds or replaces a filter operator. The tag is prefixed with
// the sentinel when it does not carry one.
func (r *Registry) RegisterFilter(tag string, h FilterHandler) error {
	return r.setFilter(tag, h, false)
}

// RegisterFieldFilter adds or replaces a filter operator that renders the whole
// predicate, including the field accessor it receives in FilterArg.Field.
func (r *Registry) RegisterFieldFilter(tag string, h FilterHandler) error {
	return r.setFilter(tag, h, true)
}

func (r *Registry) setFilter(tag string, h FilterHandler, ownsField bool) error {
	tag, err := normalizeTag(tag)
	if err != nil {
		return err
	}
	if h == nil {
		return fmt.Errorf("filter operator %s: handler cannot be nil", tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters[tag] = filterEntry{handler: h, ownsField: ownsField}
	return nil
}

// RegisterExpression adds or replaces an expression operator.
func (r *Registry) RegisterExpression(tag string, h ExpressionHandler) error {
	tag, err := normalizeTag(tag)
	if err != nil {
		return err
	}
	if h == nil {
		return fmt.Errorf("expression operator %s: handler cannot be nil", tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expressions[tag] = h
	return nil
}

// Register adds a handler of either kind. handler must be a FilterHandler for
// KindFilter and an ExpressionHandler for KindExpression; plain functions with
// the same signatures are accepted too.
func (r *Registry) Register(kind OperatorKind, tag string, handler any) error {
	switch kind {
	case KindFilter:
		switch h := handler.(type) {
		case FilterHandler:
			return r.RegisterFilter(tag, h)
		case func(*Compiler, FilterArg) (string, error):
			return r.RegisterFilter(tag, h)
		}
	case KindExpression:
		switch h := handler.(type) {
		case ExpressionHandler:
			return r.RegisterExpression(tag, h)
		case func(*Compiler, []any, Dialect) (string, error):
			return r.RegisterExpression(tag, h)
		}
	default:
		return fmt.Errorf("cannot register operators of kind %q", kind)
	}
	return fmt.Errorf("handler of type %T cannot be registered as a %s operator", handler, kind)
}

// Tags lists the registered tags of one kind in sorted order.
func (r *Registry) Tags(kind OperatorKind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tags []string
	switch kind {
	case KindFilter:
		for tag := range r.filters {
			tags = append(tags, tag)
		}
	case KindExpression:
		for tag := range r.expressions {
			tags = append(tags, tag)
		}
	case KindStage:
		for tag := range pipelineStages {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Registry{
		filters:     make(map[string]filterEntry, len(r.filters)),
		expressions: make(map[string]ExpressionHandler, len(r.expressions)),
	}
	for tag, entry := range r.filters {
		c.filters[tag] = entry
	}
	for tag, h := range r.expressions {
		c.expressions[tag] = h
	}
	return c
}

func (r *Registry) filter(tag string) (filterEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.filters[tag]
	return entry, ok
}

func (r *Registry) expression(tag string) (ExpressionHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.expressions[tag]
	return h, ok
}

func normalizeTag(tag string) (string, error) {
	if tag == "" || tag == Sentinel {
		return "", fmt.Errorf("operator tag cannot be empty")
	}
	if !IsOperatorTag(tag) {
		tag = Sentinel + tag
	}
	return tag, nil
}

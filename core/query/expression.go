package query

import (
	"strings"

	"github.com/asaidimu/go-mongosql/core/schema"
)

// Expression renders an expression spec. Operator handlers call it to compile
// their operands; unlike CompileExpression it neither logs nor publishes
// events.
//
//   - "$a.b" is a field reference, translated with TranslatePath.
//   - {"$op": args} dispatches to the registered expression operator and
//     parenthesizes the result.
//   - A dotted string without the sentinel is also treated as a field path.
//   - Any other string is a quoted literal, other scalars render as is.
func (c *Compiler) Expression(expr any, d Dialect) (string, error) {
	switch e := schema.Normalize(expr).(type) {
	case string:
		if IsOperatorTag(e) {
			return TranslatePath(strings.TrimPrefix(e, Sentinel), d), nil
		}
		if strings.Contains(e, ".") {
			return TranslatePath(e, d), nil
		}
		return QuoteLiteral(e), nil
	case schema.Document:
		f, ok := e.Single()
		if !ok || !IsOperatorTag(f.Key) {
			return "", malformed("", "an expression object must hold exactly one operator, got keys %v", e.Keys())
		}
		h, ok := c.registry.expression(f.Key)
		if !ok {
			return "", UnknownOperatorError{Kind: KindExpression, Tag: f.Key}
		}
		out, err := h(c, operandList(f.Value), d)
		if err != nil {
			return "", err
		}
		return "(" + out + ")", nil
	case []any:
		return "", malformed("", "a list is not an expression")
	default:
		return FormatScalar(e)
	}
}

// Expressions compiles each operand in turn.
func (c *Compiler) Expressions(operands []any, d Dialect) ([]string, error) {
	out := make([]string, len(operands))
	for i, op := range operands {
		s, err := c.Expression(op, d)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// operandList promotes a bare operator argument to a one-element list.
func operandList(v any) []any {
	if list, ok := schema.Normalize(v).([]any); ok {
		return list
	}
	return []any{v}
}

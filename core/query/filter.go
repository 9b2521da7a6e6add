package query

import (
	"strings"

	"github.com/asaidimu/go-mongosql/core/schema"
)

// Filter renders a filter spec into a boolean SQL expression. Top-level keys
// are joined with AND in document order. A string spec is taken as an already
// rendered fragment and returned unchanged.
func (c *Compiler) Filter(spec any, d Dialect) (string, error) {
	switch s := schema.Normalize(spec).(type) {
	case nil:
		return c.emptyCondition, nil
	case string:
		return s, nil
	case schema.Document:
		if len(s) == 0 {
			return c.emptyCondition, nil
		}
		parts := make([]string, 0, len(s))
		for _, f := range s {
			part, err := c.filterField(f, d)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return strings.Join(parts, " AND "), nil
	default:
		return "", malformed("", "a filter must be an object, got %T", spec)
	}
}

func (c *Compiler) filterField(f schema.Field, d Dialect) (string, error) {
	if IsOperatorTag(f.Key) {
		return c.applyFilterOperator(f.Key, "", f.Value, d)
	}

	field := f.Key
	if strings.Contains(field, ".") {
		field = TranslatePath(field, d)
	}

	switch v := schema.Normalize(f.Value).(type) {
	case string:
		return field + " = " + QuoteLiteral(v), nil
	case schema.Document:
		return c.fieldOperators(f.Key, field, v, d)
	case []any:
		return "", malformed(f.Key, "a list cannot be compared to a field; use $in")
	default:
		return c.applyFilterOperator("$eq", field, v, d)
	}
}

// fieldOperators renders {"field": {"$op": v, ...}}. Several operators are
// joined with AND and grouped.
func (c *Compiler) fieldOperators(key, field string, ops schema.Document, d Dialect) (string, error) {
	if len(ops) == 0 {
		return "", malformed(key, "operator object is empty")
	}
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		if !IsOperatorTag(op.Key) {
			return "", malformed(key, "%q is not an operator", op.Key)
		}
		part, err := c.applyFilterOperator(op.Key, field, op.Value, d)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " AND ") + ")", nil
}

func (c *Compiler) applyFilterOperator(tag, field string, raw any, d Dialect) (string, error) {
	entry, ok := c.registry.filter(tag)
	if !ok {
		return "", UnknownOperatorError{Kind: KindFilter, Tag: tag}
	}

	raw = schema.Normalize(raw)
	value := raw
	if s, ok := raw.(string); ok {
		value = QuoteLiteral(s)
	}

	out, err := entry.handler(c, FilterArg{Value: value, Raw: raw, Field: field, Dialect: d})
	if err != nil {
		return "", err
	}
	if field == "" || entry.ownsField {
		return out, nil
	}
	return field + " " + out, nil
}

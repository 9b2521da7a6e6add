package query

import (
	"strings"

	"github.com/asaidimu/go-mongosql/core/schema"
)

var builtinFilters = map[string]filterEntry{
	"$eq":  {handler: comparisonFilter("$eq", "=", "IS NULL")},
	"$ne":  {handler: comparisonFilter("$ne", "!=", "IS NOT NULL")},
	"$gt":  {handler: comparisonFilter("$gt", ">", "")},
	"$gte": {handler: comparisonFilter("$gte", ">=", "")},
	"$lt":  {handler: comparisonFilter("$lt", "<", "")},
	"$lte": {handler: comparisonFilter("$lte", "<=", "")},

	"$in":  {handler: membershipFilter("$in", "IN")},
	"$nin": {handler: membershipFilter("$nin", "NOT IN")},

	"$and": {handler: logicalFilter("$and", " AND ")},
	"$or":  {handler: logicalFilter("$or", " OR ")},
	"$nor": {handler: norFilter},
	"$not": {handler: notFilter},

	"$exists": {handler: existsFilter},
	"$expr":   {handler: exprFilter},

	"$like":   {handler: patternFilter("$like", "LIKE", false)},
	"$ilike":  {handler: patternFilter("$ilike", "LIKE", true)},
	"$nlike":  {handler: patternFilter("$nlike", "NOT LIKE", false)},
	"$nilike": {handler: patternFilter("$nilike", "NOT LIKE", true)},
	"$regex":  {handler: regexFilter},

	"$size": {handler: sizeFilter, ownsField: true},
}

// operandText renders a scalar operand. Strings arrive already quoted.
func operandText(op string, arg FilterArg) (string, error) {
	if s, ok := arg.Value.(string); ok {
		return s, nil
	}
	return filterOperand(op, arg.Value)
}

// comparisonFilter renders "<symbol> <operand>". A null operand renders
// nullForm instead when one is given.
func comparisonFilter(op, symbol, nullForm string) FilterHandler {
	return func(c *Compiler, arg FilterArg) (string, error) {
		if arg.Value == nil && nullForm != "" {
			return nullForm, nil
		}
		v, err := operandText(op, arg)
		if err != nil {
			return "", err
		}
		return symbol + " " + v, nil
	}
}

func membershipFilter(op, keyword string) FilterHandler {
	return func(c *Compiler, arg FilterArg) (string, error) {
		list, ok := schema.Normalize(arg.Raw).([]any)
		if !ok {
			return "", malformed(op, "operand must be a list, got %T", arg.Raw)
		}
		items := make([]string, len(list))
		for i, item := range list {
			v, err := filterOperand(op, item)
			if err != nil {
				return "", err
			}
			items[i] = v
		}
		return keyword + " (" + strings.Join(items, ", ") + ")", nil
	}
}

func subFilters(c *Compiler, op string, arg FilterArg) ([]string, error) {
	list, ok := schema.Normalize(arg.Raw).([]any)
	if !ok || len(list) == 0 {
		return nil, malformed(op, "operand must be a non-empty list of filters")
	}
	parts := make([]string, len(list))
	for i, item := range list {
		part, err := c.Filter(item, arg.Dialect)
		if err != nil {
			return nil, err
		}
		if part == "" {
			return nil, malformed(op, "filter %d is empty", i)
		}
		parts[i] = part
	}
	return parts, nil
}

func logicalFilter(op, sep string) FilterHandler {
	return func(c *Compiler, arg FilterArg) (string, error) {
		parts, err := subFilters(c, op, arg)
		if err != nil {
			return "", err
		}
		return "(" + strings.Join(parts, sep) + ")", nil
	}
}

func norFilter(c *Compiler, arg FilterArg) (string, error) {
	parts, err := subFilters(c, "$nor", arg)
	if err != nil {
		return "", err
	}
	return "NOT (" + strings.Join(parts, " OR ") + ")", nil
}

func notFilter(c *Compiler, arg FilterArg) (string, error) {
	inner, err := c.Filter(arg.Raw, arg.Dialect)
	if err != nil {
		return "", err
	}
	if inner == "" {
		return "", malformed("$not", "filter is empty")
	}
	return "NOT (" + inner + ")", nil
}

func existsFilter(c *Compiler, arg FilterArg) (string, error) {
	present, ok := asFlag(arg.Raw)
	if !ok {
		return "", malformed("$exists", "operand must be a boolean, got %T", arg.Raw)
	}
	if present {
		return "IS NOT NULL", nil
	}
	return "IS NULL", nil
}

func exprFilter(c *Compiler, arg FilterArg) (string, error) {
	return c.Expression(arg.Raw, arg.Dialect)
}

// patternFilter renders the LIKE family. The case-insensitive variants lower
// the pattern only, never the column.
func patternFilter(op, keyword string, lower bool) FilterHandler {
	return func(c *Compiler, arg FilterArg) (string, error) {
		v, err := operandText(op, arg)
		if err != nil {
			return "", err
		}
		if lower {
			v = "LOWER(" + v + ")"
		}
		return keyword + " " + v, nil
	}
}

func regexFilter(c *Compiler, arg FilterArg) (string, error) {
	if _, ok := arg.Raw.(string); !ok {
		return "", malformed("$regex", "pattern must be a string, got %T", arg.Raw)
	}
	return regexpMatch(arg.Value.(string), arg.Dialect), nil
}

func sizeFilter(c *Compiler, arg FilterArg) (string, error) {
	if arg.Field == "" {
		return "", malformed("$size", "must be applied to a field")
	}
	if !schema.IsNumber(arg.Raw) {
		return "", malformed("$size", "operand must be a number, got %T", arg.Raw)
	}
	length, err := arrayLength(arg.Field, arg.Dialect)
	if err != nil {
		return "", err
	}
	n, err := FormatScalar(arg.Raw)
	if err != nil {
		return "", err
	}
	return length + " = " + n, nil
}

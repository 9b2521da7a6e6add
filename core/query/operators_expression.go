package query

import (
	"strings"

	"github.com/asaidimu/go-mongosql/core/schema"
)

var builtinExpressions = map[string]ExpressionHandler{
	"$add":      joinedOperator("$add", " + "),
	"$subtract": joinedOperator("$subtract", " - "),
	"$multiply": joinedOperator("$multiply", " * "),
	"$divide":   joinedOperator("$divide", " / "),

	"$concat": functionOperator("$concat", "CONCAT", 1),
	"$min":    functionOperator("$min", "MIN", 1),
	"$max":    functionOperator("$max", "MAX", 1),
	"$avg":    functionOperator("$avg", "AVG", 1),
	"$sum":    functionOperator("$sum", "SUM", 1),

	"$eq":  comparisonOperator("$eq", "="),
	"$ne":  comparisonOperator("$ne", "<>"),
	"$gt":  comparisonOperator("$gt", ">"),
	"$gte": comparisonOperator("$gte", ">="),
	"$lt":  comparisonOperator("$lt", "<"),
	"$lte": comparisonOperator("$lte", "<="),

	"$in":  membershipOperator("$in", "IN"),
	"$nin": membershipOperator("$nin", "NOT IN"),

	"$and": logicalOperator("$and", " AND "),
	"$or":  logicalOperator("$or", " OR "),
	"$not": notExpression,

	"$cond":   condExpression,
	"$switch": switchExpression,
	"$exists": existsExpression,
	"$toInt":  toIntExpression,
}

// Argument records. Each operator decodes its argument list into one of these
// before rendering, so arity mistakes surface as MalformedSpecError.

type binaryArgs struct {
	Left, Right any
}

func decodeBinary(op string, args []any) (binaryArgs, error) {
	if len(args) != 2 {
		return binaryArgs{}, malformed(op, "expected 2 operands, got %d", len(args))
	}
	return binaryArgs{Left: args[0], Right: args[1]}, nil
}

type condArgs struct {
	If, Then, Else any
}

// decodeCond accepts the positional form [if, then, else] and the named form
// {if, then, else}.
func decodeCond(args []any) (condArgs, error) {
	if len(args) == 1 {
		doc, ok := schema.Normalize(args[0]).(schema.Document)
		if !ok {
			return condArgs{}, malformed("$cond", "expected 3 operands, got 1")
		}
		for _, key := range []string{"if", "then", "else"} {
			if !doc.Has(key) {
				return condArgs{}, malformed("$cond", "missing %q", key)
			}
		}
		ifv, _ := doc.Get("if")
		thenv, _ := doc.Get("then")
		elsev, _ := doc.Get("else")
		return condArgs{If: ifv, Then: thenv, Else: elsev}, nil
	}
	if len(args) != 3 {
		return condArgs{}, malformed("$cond", "expected 3 operands, got %d", len(args))
	}
	return condArgs{If: args[0], Then: args[1], Else: args[2]}, nil
}

type membershipArgs struct {
	Probe any
	Set   []any
}

func decodeMembership(op string, args []any) (membershipArgs, error) {
	if len(args) != 2 {
		return membershipArgs{}, malformed(op, "expected a value and a list, got %d operands", len(args))
	}
	set, ok := schema.Normalize(args[1]).([]any)
	if !ok {
		return membershipArgs{}, malformed(op, "second operand must be a list, got %T", args[1])
	}
	return membershipArgs{Probe: args[0], Set: set}, nil
}

type existsArgs struct {
	Expr    any
	Present bool
}

func decodeExists(args []any) (existsArgs, error) {
	if len(args) != 2 {
		return existsArgs{}, malformed("$exists", "expected an expression and a flag, got %d operands", len(args))
	}
	present, ok := asFlag(args[1])
	if !ok {
		return existsArgs{}, malformed("$exists", "flag must be a boolean, got %T", args[1])
	}
	return existsArgs{Expr: args[0], Present: present}, nil
}

type switchBranch struct {
	Case, Then any
}

type switchArgs struct {
	Branches   []switchBranch
	Default    any
	HasDefault bool
}

func decodeSwitch(args []any) (switchArgs, error) {
	if len(args) != 1 {
		return switchArgs{}, malformed("$switch", "expected one argument object, got %d", len(args))
	}
	doc, ok := schema.Normalize(args[0]).(schema.Document)
	if !ok {
		return switchArgs{}, malformed("$switch", "argument must be an object, got %T", args[0])
	}
	rawBranches, ok := doc.Get("branches")
	if !ok {
		return switchArgs{}, malformed("$switch", "missing branches")
	}
	list, ok := schema.Normalize(rawBranches).([]any)
	if !ok || len(list) == 0 {
		return switchArgs{}, malformed("$switch", "branches must be a non-empty list")
	}

	var out switchArgs
	for i, item := range list {
		b, ok := schema.Normalize(item).(schema.Document)
		if !ok {
			return switchArgs{}, malformed("$switch", "branch %d must be an object", i)
		}
		c, hasCase := b.Get("case")
		t, hasThen := b.Get("then")
		if !hasCase || !hasThen {
			return switchArgs{}, malformed("$switch", "branch %d needs both case and then", i)
		}
		out.Branches = append(out.Branches, switchBranch{Case: c, Then: t})
	}
	out.Default, out.HasDefault = doc.Get("default")
	return out, nil
}

func requireOperands(op string, args []any, atLeast int) error {
	if len(args) < atLeast {
		return malformed(op, "expected at least %d operand(s), got %d", atLeast, len(args))
	}
	return nil
}

// asFlag reads a boolean switch. Numbers count as true unless zero.
func asFlag(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	if f, ok := schema.ToFloat64(v); ok {
		return f != 0, true
	}
	return false, false
}

// Handlers.

func joinedOperator(op, sep string) ExpressionHandler {
	return func(c *Compiler, args []any, d Dialect) (string, error) {
		if err := requireOperands(op, args, 1); err != nil {
			return "", err
		}
		parts, err := c.Expressions(args, d)
		if err != nil {
			return "", err
		}
		return strings.Join(parts, sep), nil
	}
}

func functionOperator(op, name string, atLeast int) ExpressionHandler {
	return func(c *Compiler, args []any, d Dialect) (string, error) {
		if err := requireOperands(op, args, atLeast); err != nil {
			return "", err
		}
		parts, err := c.Expressions(args, d)
		if err != nil {
			return "", err
		}
		return name + "(" + strings.Join(parts, ", ") + ")", nil
	}
}

// FunctionOperator returns a handler rendering a call to the SQL function name
// with every operand compiled as an expression, e.g. UPPER(name).
func FunctionOperator(name string) ExpressionHandler {
	return functionOperator(name, name, 0)
}

func comparisonOperator(op, symbol string) ExpressionHandler {
	return func(c *Compiler, args []any, d Dialect) (string, error) {
		in, err := decodeBinary(op, args)
		if err != nil {
			return "", err
		}
		left, err := c.Expression(in.Left, d)
		if err != nil {
			return "", err
		}
		right, err := c.Expression(in.Right, d)
		if err != nil {
			return "", err
		}
		return left + " " + symbol + " " + right, nil
	}
}

func membershipOperator(op, keyword string) ExpressionHandler {
	return func(c *Compiler, args []any, d Dialect) (string, error) {
		in, err := decodeMembership(op, args)
		if err != nil {
			return "", err
		}
		probe, err := c.Expression(in.Probe, d)
		if err != nil {
			return "", err
		}
		items, err := c.Expressions(in.Set, d)
		if err != nil {
			return "", err
		}
		return probe + " " + keyword + " (" + strings.Join(items, ", ") + ")", nil
	}
}

func logicalOperator(op, sep string) ExpressionHandler {
	return func(c *Compiler, args []any, d Dialect) (string, error) {
		if err := requireOperands(op, args, 1); err != nil {
			return "", err
		}
		parts, err := c.Expressions(args, d)
		if err != nil {
			return "", err
		}
		for i, p := range parts {
			parts[i] = "(" + p + ")"
		}
		return strings.Join(parts, sep), nil
	}
}

func notExpression(c *Compiler, args []any, d Dialect) (string, error) {
	if len(args) != 1 {
		return "", malformed("$not", "expected 1 operand, got %d", len(args))
	}
	inner, err := c.Expression(args[0], d)
	if err != nil {
		return "", err
	}
	return "NOT (" + inner + ")", nil
}

func condExpression(c *Compiler, args []any, d Dialect) (string, error) {
	in, err := decodeCond(args)
	if err != nil {
		return "", err
	}
	parts, err := c.Expressions([]any{in.If, in.Then, in.Else}, d)
	if err != nil {
		return "", err
	}
	return "CASE WHEN " + parts[0] + " THEN " + parts[1] + " ELSE " + parts[2] + " END", nil
}

func switchExpression(c *Compiler, args []any, d Dialect) (string, error) {
	in, err := decodeSwitch(args)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("CASE")
	for _, branch := range in.Branches {
		when, err := c.Expression(branch.Case, d)
		if err != nil {
			return "", err
		}
		then, err := c.Expression(branch.Then, d)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHEN " + when + " THEN " + then)
	}
	if in.HasDefault {
		def, err := c.Expression(in.Default, d)
		if err != nil {
			return "", err
		}
		b.WriteString(" ELSE " + def)
	}
	b.WriteString(" END")
	return b.String(), nil
}

func existsExpression(c *Compiler, args []any, d Dialect) (string, error) {
	in, err := decodeExists(args)
	if err != nil {
		return "", err
	}
	expr, err := c.Expression(in.Expr, d)
	if err != nil {
		return "", err
	}
	if in.Present {
		return expr + " IS NOT NULL", nil
	}
	return expr + " IS NULL", nil
}

func toIntExpression(c *Compiler, args []any, d Dialect) (string, error) {
	if len(args) != 1 {
		return "", malformed("$toInt", "expected 1 operand, got %d", len(args))
	}
	expr, err := c.Expression(args[0], d)
	if err != nil {
		return "", err
	}
	return castInt(expr, d)
}

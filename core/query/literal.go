package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/asaidimu/go-mongosql/core/schema"
)

// Sentinel marks operator tags and field references.
const Sentinel = "$"

// IsOperatorTag reports whether key names an operator rather than a field.
func IsOperatorTag(key string) bool {
	return strings.HasPrefix(key, Sentinel)
}

// QuoteLiteral wraps s in single quotes. It is the only place string literals
// enter the generated SQL.
//
// The value is NOT escaped: a quote inside s ends the literal. Never pass
// untrusted input through the compilers.
func QuoteLiteral(s string) string {
	return "'" + s + "'"
}

// FormatScalar renders a scalar value as SQL text. Strings are quoted, numbers
// use their shortest form, booleans render as true/false and nil as NULL.
func FormatScalar(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return QuoteLiteral(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", t), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", t), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case json.Number:
		return t.String(), nil
	default:
		return "", malformed("", "value of type %T is not a scalar", v)
	}
}

// filterOperand renders the value handed to a filter operator. Strings are
// quoted, other scalars keep their natural form.
func filterOperand(op string, v any) (string, error) {
	if !schema.IsScalar(v) {
		return "", malformed(op, "expected a scalar operand, got %T", v)
	}
	return FormatScalar(v)
}

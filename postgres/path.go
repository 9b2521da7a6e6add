// Package postgres holds the PostgreSQL spellings of the dialect-sensitive
// fragments produced by the query compilers.
package postgres

import (
	"fmt"
	"strings"
)

// JSONPath renders the #> operator applied to column with the traversal
// segments as a brace list, e.g. (user::json #> {orders,0,item}). Index
// segments are kept as bare numbers.
func JSONPath(column string, segments []string) string {
	return fmt.Sprintf("(%s::json #> {%s})", column, strings.Join(segments, ","))
}

// CastInt casts an already rendered expression to integer.
func CastInt(expr string) string {
	return "(" + expr + ")::int"
}

// Regexp renders the case-sensitive POSIX match operator.
func Regexp(pattern string) string {
	return "~ " + pattern
}

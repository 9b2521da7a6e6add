// Package sqlite holds the SQLite spellings of the dialect-sensitive fragments
// produced by the query compilers: JSON path literals, json_extract accessors,
// array length and regular expression matching.
package sqlite

import (
	"fmt"
	"strings"
)

// JSONPathLiteral builds an SQLite JSON path from traversal segments. Segments
// made only of digits become array subscripts, so [orders 0 item] renders as
// $.orders[0].item.
func JSONPathLiteral(segments []string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, s := range segments {
		if isIndex(s) {
			b.WriteString("[")
			b.WriteString(s)
			b.WriteString("]")
			continue
		}
		b.WriteString(".")
		b.WriteString(s)
	}
	return b.String()
}

// JSONExtract renders a json_extract call reaching into column.
func JSONExtract(column string, segments []string) string {
	return fmt.Sprintf("json_extract(%s, '%s')", column, JSONPathLiteral(segments))
}

// ArrayLength renders the length of the JSON array held by expr.
func ArrayLength(expr string) string {
	return "json_array_length(" + expr + ")"
}

// Regexp renders the REGEXP operator applied to an already rendered pattern.
// SQLite only evaluates it when the connection provides a regexp() function.
func Regexp(pattern string) string {
	return "REGEXP " + pattern
}

func isIndex(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

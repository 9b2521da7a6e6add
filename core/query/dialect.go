package query

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-mongosql/postgres"
	"github.com/asaidimu/go-mongosql/sqlite"
)

// Dialect selects the SQL flavour produced by the compilers.
type Dialect string

const (
	// DialectSQLite renders JSON access with json_extract. It is the default.
	DialectSQLite Dialect = "sqlite"
	// DialectPostgres renders JSON access with the #> operator.
	DialectPostgres Dialect = "pg"

	// DefaultDialect is used when no dialect is chosen.
	DefaultDialect = DialectSQLite
)

// IsPostgres reports whether d selects PostgreSQL output. Every other value,
// recognised or not, renders SQLite output.
func (d Dialect) IsPostgres() bool {
	return d == DialectPostgres
}

func (d Dialect) String() string {
	if d == "" {
		return string(DefaultDialect)
	}
	return string(d)
}

// ParseDialect validates a user supplied dialect name. The compilers themselves
// never reject a dialect; this is for command line and config input.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "pg", "postgres", "postgresql":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (expected sqlite or pg)", name)
	}
}

// TranslatePath converts a dotted field path into an accessor reaching into the
// JSON document held by the first segment's column. Paths without a dot are
// plain column references and are returned unchanged.
func TranslatePath(path string, d Dialect) string {
	column, rest, found := strings.Cut(path, ".")
	if !found {
		return path
	}
	segments := strings.Split(rest, ".")
	if d.IsPostgres() {
		return postgres.JSONPath(column, segments)
	}
	return sqlite.JSONExtract(column, segments)
}

func castInt(expr string, d Dialect) (string, error) {
	if !d.IsPostgres() {
		return "", UnsupportedDialectError{Operator: "$toInt", Dialect: d}
	}
	return postgres.CastInt(expr), nil
}

func arrayLength(field string, d Dialect) (string, error) {
	if d.IsPostgres() {
		return "", UnsupportedDialectError{Operator: "$size", Dialect: d}
	}
	return sqlite.ArrayLength(field), nil
}

func regexpMatch(pattern string, d Dialect) string {
	if d.IsPostgres() {
		return postgres.Regexp(pattern)
	}
	return sqlite.Regexp(pattern)
}

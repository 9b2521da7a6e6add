package query

import (
	"errors"
	"testing"

	"github.com/asaidimu/go-mongosql/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		dialect  Dialect
		expected string
	}{
		{"implicit equality", `{"age": 25}`, DialectSQLite, "age = 25"},
		{"eq", `{"age": {"$eq": 25}}`, DialectSQLite, "age = 25"},
		{"ne", `{"age": {"$ne": 25}}`, DialectSQLite, "age != 25"},
		{"gt", `{"age": {"$gt": 25}}`, DialectSQLite, "age > 25"},
		{"gte", `{"age": {"$gte": 25}}`, DialectSQLite, "age >= 25"},
		{"lt", `{"age": {"$lt": 25}}`, DialectSQLite, "age < 25"},
		{"lte", `{"age": {"$lte": 25}}`, DialectSQLite, "age <= 25"},
		{"in", `{"age": {"$in": [25, 30, 35]}}`, DialectSQLite, "age IN (25, 30, 35)"},
		{"nin", `{"age": {"$nin": [25, 30, 35]}}`, DialectSQLite, "age NOT IN (25, 30, 35)"},
		{"and", `{"$and": [{"age": {"$gte": 25}}, {"age": {"$lte": 30}}]}`, DialectSQLite, "(age >= 25 AND age <= 30)"},
		{"or", `{"$or": [{"age": {"$lt": 20}}, {"age": {"$gte": 30}}]}`, DialectSQLite, "(age < 20 OR age >= 30)"},
		{"not", `{"$not": {"age": {"$gte": 25}}}`, DialectSQLite, "NOT (age >= 25)"},
		{"exists true", `{"age": {"$exists": true}}`, DialectSQLite, "age IS NOT NULL"},
		{"exists false", `{"age": {"$exists": false}}`, DialectSQLite, "age IS NULL"},
		{"expr", `{"$expr": {"$eq": ["$age", 25]}}`, DialectSQLite, "(age = 25)"},
		{"like", `{"name": {"$like": "%John%"}}`, DialectSQLite, "name LIKE '%John%'"},
		{"ilike", `{"name": {"$ilike": "%john%"}}`, DialectSQLite, "name LIKE LOWER('%john%')"},
		{"nlike", `{"name": {"$nlike": "%John%"}}`, DialectSQLite, "name NOT LIKE '%John%'"},
		{"nilike", `{"name": {"$nilike": "%john%"}}`, DialectSQLite, "name NOT LIKE LOWER('%john%')"},
		{
			"nested logical operators",
			`{"$and": [{"profile.age": {"$gte": 25}}, {"$or": [{"profile.name": {"$like": "%John%"}}, {"profile.age": {"$gt": 30}}]}]}`,
			DialectSQLite,
			"(json_extract(profile, '$.age') >= 25 AND (json_extract(profile, '$.name') LIKE '%John%' OR json_extract(profile, '$.age') > 30))",
		},
		{
			"nested logical operators pg",
			`{"$and": [{"profile.age": {"$gte": 25}}, {"$or": [{"profile.name": {"$ilike": "%john%"}}, {"profile.age": {"$gt": 30}}]}]}`,
			DialectPostgres,
			"((profile::json #> {age}) >= 25 AND ((profile::json #> {name}) LIKE LOWER('%john%') OR (profile::json #> {age}) > 30))",
		},
		{"path comparison", `{"profile.age": {"$gt": 18}}`, DialectSQLite, "json_extract(profile, '$.age') > 18"},
		{"array index path", `{"orders.0.item": "pen"}`, DialectSQLite, "json_extract(orders, '$[0].item') = 'pen'"},
		{"string equality", `{"name": "John"}`, DialectSQLite, "name = 'John'"},
		{"bool equality", `{"active": true}`, DialectSQLite, "active = true"},
		{"null equality", `{"deleted_at": null}`, DialectSQLite, "deleted_at IS NULL"},
		{"ne null", `{"deleted_at": {"$ne": null}}`, DialectSQLite, "deleted_at IS NOT NULL"},
		{"float", `{"score": {"$gte": 9.5}}`, DialectSQLite, "score >= 9.5"},
		{"keys joined with AND", `{"age": {"$gte": 18}, "city": "Paris"}`, DialectSQLite, "age >= 18 AND city = 'Paris'"},
		{"several operators on one field", `{"age": {"$gte": 18, "$lt": 65}}`, DialectSQLite, "(age >= 18 AND age < 65)"},
		{"in strings", `{"city": {"$in": ["Paris", "London"]}}`, DialectSQLite, "city IN ('Paris', 'London')"},
		{"nor", `{"$nor": [{"age": {"$lt": 18}}, {"city": "Paris"}]}`, DialectSQLite, "NOT (age < 18 OR city = 'Paris')"},
		{"not keeps dialect", `{"$not": {"profile.age": {"$gt": 18}}}`, DialectPostgres, "NOT ((profile::json #> {age}) > 18)"},
		{"exists on path", `{"profile.email": {"$exists": true}}`, DialectSQLite, "json_extract(profile, '$.email') IS NOT NULL"},
		{"exists on path pg", `{"profile.email": {"$exists": 0}}`, DialectPostgres, "(profile::json #> {email}) IS NULL"},
		{"size", `{"tags": {"$size": 3}}`, DialectSQLite, "json_array_length(tags) = 3"},
		{"size on path", `{"profile.tags": {"$size": 2}}`, DialectSQLite, "json_array_length(json_extract(profile, '$.tags')) = 2"},
		{"regex", `{"name": {"$regex": "^J"}}`, DialectSQLite, "name REGEXP '^J'"},
		{"regex pg", `{"name": {"$regex": "^J"}}`, DialectPostgres, "name ~ '^J'"},
		{"expr with path pg", `{"$expr": {"$gt": ["$stats.wins", "$stats.losses"]}}`, DialectPostgres, "((stats::json #> {wins}) > (stats::json #> {losses}))"},
		{"raw fragment", `"age > 5"`, DialectSQLite, "age > 5"},
		{"empty filter", `{}`, DialectSQLite, ""},
	}

	c := newTestCompiler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := c.CompileFilter(schema.MustParse(tt.input), tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sql)
		})
	}
}

func TestCompileFilter_ScalarMatchesEq(t *testing.T) {
	c := newTestCompiler(t)
	for _, v := range []any{25, int64(-3), 2.5, true, false, "x", nil} {
		implicit, err := c.CompileFilter(schema.D("f", v), DialectSQLite)
		require.NoError(t, err)
		explicit, err := c.CompileFilter(schema.D("f", schema.D("$eq", v)), DialectSQLite)
		require.NoError(t, err)
		assert.Equal(t, explicit, implicit, "value %v", v)
	}
}

func TestCompileFilter_GoMap(t *testing.T) {
	c := newTestCompiler(t)

	// Map keys are sorted, so the output is stable.
	sql, err := c.CompileFilter(map[string]any{
		"name": "Alice",
		"age":  map[string]any{"$gt": 30},
	}, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, "age > 30 AND name = 'Alice'", sql)
}

func TestCompileFilter_TypedGoMaps(t *testing.T) {
	c := newTestCompiler(t)

	sql, err := c.CompileFilter(map[string]map[string]int{
		"age":   {"$gte": 25, "$lt": 65},
		"score": {"$ne": 0},
	}, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, "(age >= 25 AND age < 65) AND score != 0", sql)

	sql, err = c.CompileFilter(map[string]any{
		"city": map[string][]string{"$in": {"Paris", "Rome"}},
	}, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, "city IN ('Paris', 'Rome')", sql)
}

func TestCompileFilter_EmptyCondition(t *testing.T) {
	c := newTestCompiler(t, WithEmptyCondition("TRUE"))

	sql, err := c.CompileFilter(schema.D(), DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", sql)

	sql, err = c.CompileFilter(nil, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", sql)
}

func TestCompileFilter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		dialect Dialect
		target  error
	}{
		{"unknown field operator", `{"age": {"$foo": 1}}`, DialectSQLite, ErrUnknownOperator},
		{"unknown top-level operator", `{"$foo": 1}`, DialectSQLite, ErrUnknownOperator},
		{"unknown operator inside and", `{"$and": [{"a": {"$bar": 1}}]}`, DialectSQLite, ErrUnknownOperator},
		{"unknown expression inside expr", `{"$expr": {"$pow": [1, 2]}}`, DialectSQLite, ErrUnknownOperator},
		{"list value", `{"tags": [1, 2]}`, DialectSQLite, ErrMalformedSpec},
		{"empty operator object", `{"age": {}}`, DialectSQLite, ErrMalformedSpec},
		{"mixed operator object", `{"age": {"$gt": 1, "x": 2}}`, DialectSQLite, ErrMalformedSpec},
		{"empty and", `{"$and": []}`, DialectSQLite, ErrMalformedSpec},
		{"and without list", `{"$and": {"a": 1}}`, DialectSQLite, ErrMalformedSpec},
		{"and with empty filter", `{"$or": [{}, {"a": 1}]}`, DialectSQLite, ErrMalformedSpec},
		{"not empty", `{"$not": {}}`, DialectSQLite, ErrMalformedSpec},
		{"in without list", `{"age": {"$in": 5}}`, DialectSQLite, ErrMalformedSpec},
		{"in with object", `{"age": {"$in": [{"a": 1}]}}`, DialectSQLite, ErrMalformedSpec},
		{"comparison with list", `{"age": {"$gt": [1]}}`, DialectSQLite, ErrMalformedSpec},
		{"exists with string", `{"age": {"$exists": "yes"}}`, DialectSQLite, ErrMalformedSpec},
		{"size at top level", `{"$size": 3}`, DialectSQLite, ErrMalformedSpec},
		{"size with string", `{"tags": {"$size": "3"}}`, DialectSQLite, ErrMalformedSpec},
		{"regex with number", `{"name": {"$regex": 5}}`, DialectSQLite, ErrMalformedSpec},
		{"list spec", `[{"a": 1}]`, DialectSQLite, ErrMalformedSpec},
		{"size pg", `{"tags": {"$size": 3}}`, DialectPostgres, ErrUnsupportedForDialect},
	}

	c := newTestCompiler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CompileFilter(schema.MustParse(tt.input), tt.dialect)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestCompileFilter_UnknownOperatorIdentifiesKind(t *testing.T) {
	c := newTestCompiler(t)

	_, err := c.CompileFilter(schema.D("age", schema.D("$between", []any{1, 2})), DialectSQLite)
	var unknown UnknownOperatorError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, KindFilter, unknown.Kind)
	assert.Equal(t, "$between", unknown.Tag)
}

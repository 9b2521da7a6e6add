package sqlite

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONPathLiteral(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		expected string
	}{
		{"no segments", nil, "$"},
		{"single key", []string{"name"}, "$.name"},
		{"nested keys", []string{"address", "city"}, "$.address.city"},
		{"array index", []string{"orders", "0", "item"}, "$.orders[0].item"},
		{"nested indexes", []string{"orders", "0", "items", "1", "name"}, "$.orders[0].items[1].name"},
		{"trailing index", []string{"tags", "2"}, "$.tags[2]"},
		{"digits inside a key", []string{"item2"}, "$.item2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JSONPathLiteral(tt.segments))
		})
	}
}

func TestJSONExtract(t *testing.T) {
	assert.Equal(t, "json_extract(user, '$.orders[0].item')", JSONExtract("user", []string{"orders", "0", "item"}))
	assert.Equal(t, "json_extract(profile, '$.age')", JSONExtract("profile", []string{"age"}))
}

func TestArrayLengthAndRegexp(t *testing.T) {
	assert.Equal(t, "json_array_length(tags)", ArrayLength("tags"))
	assert.Equal(t, "REGEXP '^a'", Regexp("'^a'"))
}

func TestFragmentsEvaluateInSQLite(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE docs (body TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO docs (body) VALUES (?)`, `{"orders":[{"item":"book"},{"item":"pen"}],"tags":["a","b","c"]}`)
	require.NoError(t, err)

	var item string
	err = db.QueryRow("SELECT " + JSONExtract("body", []string{"orders", "1", "item"}) + " FROM docs").Scan(&item)
	require.NoError(t, err)
	assert.Equal(t, "pen", item)

	var n int
	err = db.QueryRow("SELECT " + ArrayLength(JSONExtract("body", []string{"tags"})) + " FROM docs").Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

package query

import (
	"encoding/json"
	"testing"

	"github.com/asaidimu/go-mongosql/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatScalar(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, "NULL"},
		{"string", "Paris", "'Paris'"},
		{"embedded quote is not escaped", "O'Brien", "'O'Brien'"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"uint8", uint8(255), "255"},
		{"float", 2.5, "2.5"},
		{"whole float", float64(3), "3"},
		{"float32", float32(0.25), "0.25"},
		{"json number", json.Number("12345678901234567890"), "12345678901234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatScalar(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := FormatScalar([]any{1})
	assert.ErrorIs(t, err, ErrMalformedSpec)
}

func TestFilterOperandRejectsComposites(t *testing.T) {
	_, err := filterOperand("$gt", schema.D("a", 1))
	var malformedErr MalformedSpecError
	require.ErrorAs(t, err, &malformedErr)
	assert.Equal(t, "$gt", malformedErr.Operator)
}

func TestIsOperatorTag(t *testing.T) {
	assert.True(t, IsOperatorTag("$eq"))
	assert.True(t, IsOperatorTag("$name"))
	assert.False(t, IsOperatorTag("name"))
	assert.False(t, IsOperatorTag(""))
}

func TestDecodeCond(t *testing.T) {
	positional, err := decodeCond([]any{true, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, condArgs{If: true, Then: 1, Else: 2}, positional)

	named, err := decodeCond([]any{schema.D("else", 2, "if", true, "then", 1)})
	require.NoError(t, err)
	assert.Equal(t, positional, named)

	_, err = decodeCond([]any{schema.D("if", true, "then", 1)})
	assert.ErrorIs(t, err, ErrMalformedSpec)

	_, err = decodeCond([]any{true, 1})
	assert.ErrorIs(t, err, ErrMalformedSpec)
}

func TestDecodeSwitch(t *testing.T) {
	arg := schema.D(
		"branches", []any{schema.D("case", true, "then", "a")},
		"default", "z",
	)
	in, err := decodeSwitch([]any{arg})
	require.NoError(t, err)
	require.Len(t, in.Branches, 1)
	assert.Equal(t, "a", in.Branches[0].Then)
	assert.True(t, in.HasDefault)
	assert.Equal(t, "z", in.Default)

	invalid := []any{
		"not an object",
		schema.D("default", 1),
		schema.D("branches", []any{}),
		schema.D("branches", []any{schema.D("case", true)}),
	}
	for _, a := range invalid {
		_, err := decodeSwitch([]any{a})
		assert.ErrorIs(t, err, ErrMalformedSpec, "%v", a)
	}
}

func TestAsFlag(t *testing.T) {
	for _, v := range []any{true, 1, 2.5, int64(-1)} {
		flag, ok := asFlag(v)
		assert.True(t, ok)
		assert.True(t, flag, "%v", v)
	}
	for _, v := range []any{false, 0, 0.0} {
		flag, ok := asFlag(v)
		assert.True(t, ok)
		assert.False(t, flag, "%v", v)
	}
	_, ok := asFlag("yes")
	assert.False(t, ok)
}

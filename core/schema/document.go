// Package schema defines the ordered document model shared by the query
// compilers. Query structures arrive as JSON, YAML, CUE or plain Go values and
// are normalised into Document and []any trees before compilation. Key order is
// significant: filters are conjoined in input order and projections select
// columns in input order, so a Document keeps its fields as a slice instead of
// a map.
package schema

import (
	"fmt"
	"reflect"
	"sort"
)

// Field is a single key/value entry of a Document.
type Field struct {
	Key   string
	Value any
}

// Document is an ordered mapping from keys to values. It is the in-memory form
// of every filter spec, expression object and pipeline stage.
type Document []Field

// D builds a Document from alternating key/value arguments. It panics when the
// arguments are not pairs or a key is not a string, so it is meant for literals
// in code and tests.
//
// Example:
//
//	schema.D("age", schema.D("$gte", 25), "name", "John")
func D(pairs ...any) Document {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("schema.D: odd number of arguments (%d)", len(pairs)))
	}
	doc := make(Document, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("schema.D: key at position %d is %T, not string", i, pairs[i]))
		}
		doc = append(doc, Field{Key: key, Value: pairs[i+1]})
	}
	return doc
}

// Len returns the number of fields in the document.
func (d Document) Len() int {
	return len(d)
}

// Get returns the value stored under key. When a key appears more than once,
// the first occurrence wins.
func (d Document) Get(key string) (any, bool) {
	for _, f := range d {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (d Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Keys returns the keys in document order.
func (d Document) Keys() []string {
	keys := make([]string, len(d))
	for i, f := range d {
		keys[i] = f.Key
	}
	return keys
}

// Single returns the only field of a one-entry document.
func (d Document) Single() (Field, bool) {
	if len(d) != 1 {
		return Field{}, false
	}
	return d[0], true
}

// Map converts the document into a plain map, recursively. Order is lost.
func (d Document) Map() map[string]any {
	m := make(map[string]any, len(d))
	for _, f := range d {
		m[f.Key] = toPlain(f.Value)
	}
	return m
}

func toPlain(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toPlain(e)
		}
		return out
	default:
		return v
	}
}

// FromMap converts a plain Go map into a Document. Go maps carry no order, so
// keys are sorted alphabetically to keep the generated SQL deterministic.
func FromMap(m map[string]any) Document {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := make(Document, 0, len(keys))
	for _, k := range keys {
		doc = append(doc, Field{Key: k, Value: Normalize(m[k])})
	}
	return doc
}

// Normalize converts the top-level shape of v into the document model: maps
// with string keys become Documents and typed slices become []any. Documents
// and []any are returned unchanged; their children are normalised by whoever
// inspects them. Byte slices are left alone.
func Normalize(v any) any {
	switch t := v.(type) {
	case Document, []any, []byte:
		return v
	case map[string]any:
		return FromMap(t)
	case []Document:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = FromMap(e)
		}
		return out
	case []string:
		return toAnySlice(t)
	case []int:
		return toAnySlice(t)
	case []int64:
		return toAnySlice(t)
	case []float64:
		return toAnySlice(t)
	case []bool:
		return toAnySlice(t)
	default:
		return normalizeReflect(v)
	}
}

// normalizeReflect handles the typed maps and slices the switch in Normalize
// does not name, e.g. map[string]map[string]int.
func normalizeReflect(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return FromMap(m)
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	default:
		return v
	}
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, e := range in {
		out[i] = e
	}
	return out
}

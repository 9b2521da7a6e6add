package schema

import "encoding/json"

// IsScalar reports whether v is a primitive value: nil, a bool, a string or a
// number.
func IsScalar(v any) bool {
	if v == nil {
		return true
	}
	switch v.(type) {
	case bool, string, json.Number:
		return true
	}
	_, ok := ToFloat64(v)
	return ok
}

// IsNumber reports whether v holds any Go numeric kind.
func IsNumber(v any) bool {
	_, ok := ToFloat64(v)
	return ok
}

// ToFloat64 converts a value of the various numeric types to a float64. It
// returns the converted value and whether the conversion was possible. Strings
// are not parsed.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// IsOne reports whether v is the numeric value 1 or the boolean true, the two
// spellings used for inclusion flags and ascending sort directions.
func IsOne(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	f, ok := ToFloat64(v)
	return ok && f == 1
}

package value

import "encoding/base64"

// ToParameter converts a Value into a driver argument.
// Null maps to nil (SQL NULL); the other variants map to their native Go type.
func ToParameter(v Value) any {
	switch val := v.(type) {
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Text:
		return string(val)
	default:
		return nil
	}
}

// Params converts an ordered Value list into positional driver arguments.
func Params(vals []Value) []any {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = ToParameter(v)
	}
	return args
}

// FromColumn converts one driver cell value into a Value.
//
// Extraction order is text, then integer, then float, then boolean, then
// blob (as base64 Text). Anything else, including NULL, is Null.
// Do not reorder: callers rely on text-stored numerals reading back as Text.
func FromColumn(raw any) Value {
	if s, ok := raw.(string); ok {
		return Text(s)
	}
	if i, ok := raw.(int64); ok {
		return Int(i)
	}
	if f, ok := raw.(float64); ok {
		return Float(f)
	}
	if b, ok := raw.(bool); ok {
		return Bool(b)
	}
	if blob, ok := raw.([]byte); ok {
		return Text(base64.StdEncoding.EncodeToString(blob))
	}
	return Null{}
}

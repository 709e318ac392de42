package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a sealed interface over the untyped scalar model.
// Only Null, Bool, Int, Float and Text implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents SQL NULL / JSON null.
type Null struct{}

func (Null) value() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Int represents a 64-bit signed integer.
type Int int64

func (Int) value() {}

// Float represents a 64-bit float.
type Float float64

func (Float) value() {}

// MarshalJSON implements json.Marshaler for Float.
// Non-finite floats have no JSON form and encode as null.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// Text represents a UTF-8 string. Blobs are carried as base64 Text.
type Text string

func (Text) value() {}

// Decode parses a single JSON document into a Value.
// Numbers are read with json.Number so integers beyond 2^53 keep full precision.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode value: unexpected data after JSON value")
	}
	return FromJSON(raw), nil
}

// DecodeParams parses a JSON array into an ordered parameter list.
// An empty input is an empty list.
func DecodeParams(data []byte) ([]Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}

	params := make([]Value, len(raw))
	for i, elem := range raw {
		params[i] = FromJSON(elem)
	}
	return params, nil
}

// FromJSON converts a value produced by encoding/json into a Value.
//
// Numbers become Int when they fit in int64, Float when they parse as a
// finite float64, and their decimal Text otherwise. Arrays and objects have
// no scalar form and become their JSON Text. Every input has a mapping.
func FromJSON(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null{}
	case bool:
		return Bool(val)
	case string:
		return Text(val)
	case json.Number:
		return fromNumber(val)
	case float64:
		// Decoders without UseNumber hand us float64 directly.
		if val == math.Trunc(val) && val >= math.MinInt64 && val < math.MaxInt64 {
			return Int(int64(val))
		}
		return Float(val)
	case int:
		return Int(int64(val))
	case int64:
		return Int(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return Text(fmt.Sprint(val))
		}
		return Text(data)
	}
}

func fromNumber(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil {
		return Float(f)
	}
	return Text(n.String())
}

// Marshal encodes a Value as JSON.
// Uses type-switch dispatch to handle every Value type.
func Marshal(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(bool(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		return val.MarshalJSON()
	case Text:
		return json.Marshal(string(val))
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one query result row: an ordered mapping from column name to Value.
//
// Columns keep the position of their first appearance. Setting a name that
// already exists overwrites its value in place, so duplicate column names in
// a result set resolve left-to-right with the last one winning.
type Row struct {
	columns []string
	values  map[string]Value
}

// NewRow creates an empty row with room for n columns.
func NewRow(n int) Row {
	return Row{
		columns: make([]string, 0, n),
		values:  make(map[string]Value, n),
	}
}

// Set assigns v to column name.
func (r *Row) Set(name string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, exists := r.values[name]; !exists {
		r.columns = append(r.columns, name)
	}
	r.values[name] = v
}

// Get returns the value for column name.
func (r Row) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Columns returns the distinct column names in order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of distinct columns.
func (r Row) Len() int {
	return len(r.columns)
}

// MarshalJSON encodes the row as a JSON object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, name := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(name)
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", name, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := Marshal(r.values[name])
		if err != nil {
			return nil, fmt.Errorf("marshal value for column %q: %w", name, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Well-known columns.
const (
	FieldAccounts = "Accounts"
	FieldMonth    = "Month"
	FieldWeek     = "Week"
	FieldYear     = "Year"
)

// Cell is a single column/value pair used to build rows.
type Cell struct {
	Key   string
	Value Value
}

// Row is one record of a dataset. Keys keep their insertion order, which only matters
// for rendering; lookups are by name.
type Row struct {
	keys   []string
	values map[string]Value
}

func NewRow(cells ...Cell) Row {
	r := Row{
		keys:   make([]string, 0, len(cells)),
		values: make(map[string]Value, len(cells)),
	}
	for _, c := range cells {
		r.Set(c.Key, c.Value)
	}
	return r
}

// Get returns the value under key, Absent when the key is missing.
func (r Row) Get(key string) Value {
	return r.values[key]
}

func (r Row) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Field returns the trimmed string form of key, "" when missing or Absent.
func (r Row) Field(key string) string {
	return strings.TrimSpace(r.values[key].String())
}

func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r Row) Len() int { return len(r.keys) }

// Set writes key. Existing keys keep their position.
func (r *Row) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

func (r Row) Clone() Row {
	out := Row{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]Value, len(r.values)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Dataset is the uploaded row sequence plus the column order the decoder discovered.
type Dataset struct {
	ID      string
	Name    string
	Columns []string
	Rows    []Row
}

// CalcColumn is a user-defined derived column.
type CalcColumn struct {
	Name    string `json:"name" mapstructure:"name" validate:"required"`
	Formula string `json:"formula" mapstructure:"formula" validate:"required"`
}

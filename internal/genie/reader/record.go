package reader

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/genie/internal/genie/schema"
)

// Slot is one present element of a repeated block. Exactly one of Record and
// Loader is set.
type Slot struct {
	Index  int
	Record *Record
	Loader *DynamicLoader
}

// Record is the parse context of one record: every field read so far, in read
// order. Integers are held as int64 (uint64_t as uint64), floats as float64,
// numeric arrays as []int64, []uint64 or []float64, character data as string,
// enum fields as schema.EnumValue, groups as *Record and repeated blocks as
// []Slot.
type Record struct {
	schema string
	names  []string
	values map[string]any
}

// NewRecord returns an empty record for the named schema.
func NewRecord(schemaName string) *Record {
	return &Record{schema: schemaName, values: make(map[string]any)}
}

// Schema returns the schema name.
func (r *Record) Schema() string { return r.schema }

// Names returns field names in read order.
func (r *Record) Names() []string { return r.names }

// Set stores v under name. Setting an existing name replaces the value in place.
func (r *Record) Set(name string, v any) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = v
}

// Get returns the value at a dotted path such as "graphic.layer".
func (r *Record) Get(path string) (any, bool) {
	cur := r
	for {
		head, rest, nested := strings.Cut(path, ".")
		v, ok := cur.values[head]
		if !ok {
			return nil, false
		}
		if !nested {
			return v, true
		}
		child, ok := v.(*Record)
		if !ok {
			return nil, false
		}
		cur, path = child, rest
	}
}

func (r *Record) lookup(path string) (any, error) {
	v, ok := r.Get(path)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", r.schema, path, ErrUnknownField)
	}
	return v, nil
}

// Int returns an integer field. Enum fields yield their code.
func (r *Record) Int(path string) (int64, error) {
	v, err := r.lookup(path)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case int64:
		return x, nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%s.%s: %w: %d overflows int64", r.schema, path, ErrFieldType, x)
		}
		return int64(x), nil
	case schema.EnumValue:
		return x.Code, nil
	}
	return 0, fmt.Errorf("%s.%s: %w: %T is not an integer", r.schema, path, ErrFieldType, v)
}

// Ints returns an integer array field.
func (r *Record) Ints(path string) ([]int64, error) {
	v, err := r.lookup(path)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case []int64:
		return x, nil
	case []uint64:
		out := make([]int64, len(x))
		for i, u := range x {
			out[i] = int64(u)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s.%s: %w: %T is not an integer array", r.schema, path, ErrFieldType, v)
}

// Float returns a numeric field as float64.
func (r *Record) Float(path string) (float64, error) {
	v, err := r.lookup(path)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("%s.%s: %w: %T is not numeric", r.schema, path, ErrFieldType, v)
}

// String returns a text field. Enum fields yield their name.
func (r *Record) String(path string) (string, error) {
	v, err := r.lookup(path)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case schema.EnumValue:
		return x.Name, nil
	}
	return "", fmt.Errorf("%s.%s: %w: %T is not text", r.schema, path, ErrFieldType, v)
}

// Child returns a group field's record.
func (r *Record) Child(path string) (*Record, error) {
	v, err := r.lookup(path)
	if err != nil {
		return nil, err
	}
	c, ok := v.(*Record)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w: %T is not a record", r.schema, path, ErrFieldType, v)
	}
	return c, nil
}

// Slots returns a repeated block's present slots.
func (r *Record) Slots(path string) ([]Slot, error) {
	v, err := r.lookup(path)
	if err != nil {
		return nil, err
	}
	s, ok := v.([]Slot)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w: %T is not a repeated block", r.schema, path, ErrFieldType, v)
	}
	return s, nil
}

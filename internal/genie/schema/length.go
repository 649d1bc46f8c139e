package schema

// Lookup gives length and offset expressions access to the fields already
// decoded in the current record. Dotted names reach into group records.
type Lookup interface {
	Int(name string) (int64, error)
	Ints(name string) ([]int64, error)
}

// Length resolves an element or byte count against the current record.
type Length interface {
	Resolve(rec Lookup) (int, error)
}

// Fixed is a constant length.
type Fixed int

// Resolve returns n.
func (n Fixed) Resolve(Lookup) (int, error) { return int(n), nil }

// FieldLength takes its value from a previously read integer field.
type FieldLength string

// Resolve reads the named field.
func (f FieldLength) Resolve(rec Lookup) (int, error) {
	v, err := rec.Int(string(f))
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// LengthFunc computes a length from several fields.
type LengthFunc func(rec Lookup) (int, error)

// Resolve calls f.
func (f LengthFunc) Resolve(rec Lookup) (int, error) { return f(rec) }

// OffsetGate marks which slots of a repeated block are present. Field names an
// integer array in the current record; slot i exists when Present(Field[i])
// returns true.
type OffsetGate struct {
	Field   string
	Present func(offset int64) bool
}

// Positive is the usual Present test: the slot exists when its pointer is
// positive. Zero and negative pointers mark absent slots.
func Positive(offset int64) bool { return offset > 0 }

// GatePositive returns an OffsetGate over field using Positive.
func GatePositive(field string) *OffsetGate {
	return &OffsetGate{Field: field, Present: Positive}
}

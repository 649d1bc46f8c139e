package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotZero is returned by Zero members that decode a non-zero value.
var ErrNotZero = errors.New("expected zero value")

// ErrUnknownEnumValue is returned by EnumLookup members for codes missing from
// the lookup table.
var ErrUnknownEnumValue = errors.New("unknown enum value")

// Flow tells the reader whether to keep reading the current record.
type Flow uint8

// Flow values.
const (
	Continue Flow = iota
	// Stop marks the rest of the record as absent; remaining fields take their
	// empty values.
	Stop
)

// Encoding selects how character data is decoded.
type Encoding uint8

// Encodings.
const (
	// EncodingDefault is UTF-8 for DE editions and Windows-1252 otherwise.
	EncodingDefault Encoding = iota
	EncodingUTF8
	EncodingWindows1252
)

// ReadMember describes how one entry's bytes are decoded. The set of
// implementations is closed: Raw and the pointer types declared in this file.
type ReadMember interface {
	readMember()
}

// Primitive is a ReadMember decoded from a run of fixed-width values.
//
// Scalars have a nil Count. char-typed primitives decode to a string of Count
// bytes; other typed primitives with a Count decode to a slice.
type Primitive interface {
	ReadMember
	// RawType is the base wire type, e.g. "int16_t" or "char".
	RawType() string
	// Count is the element count, or nil for a scalar.
	Count() Length
	// EntryHook transforms a freshly decoded value before it is stored.
	EntryHook(v any) (any, Flow, error)
	// Verify checks a hooked value.
	Verify(v any) error
	// Empty is the value used when the field is absent.
	Empty() any
}

// Raw is a plain type descriptor such as "int32_t", "float[6]" or
// "char[name_len]". A bracketed suffix is either a constant count or the name
// of a previously read field.
type Raw string

func (Raw) readMember() {}

// RawType returns the descriptor without its count suffix.
func (r Raw) RawType() string {
	base, _ := r.split()
	return base
}

// Count returns the bracketed count, or nil.
func (r Raw) Count() Length {
	_, count := r.split()
	return count
}

func (r Raw) split() (string, Length) {
	s := string(r)
	i := strings.IndexByte(s, '[')
	if i < 0 || !strings.HasSuffix(s, "]") {
		return s, nil
	}
	inner := s[i+1 : len(s)-1]
	if n, err := strconv.Atoi(inner); err == nil {
		return s[:i], Fixed(n)
	}
	return s[:i], FieldLength(inner)
}

// EntryHook passes v through.
func (Raw) EntryHook(v any) (any, Flow, error) { return v, Continue, nil }

// Verify accepts any value.
func (Raw) Verify(any) error { return nil }

// Empty returns the zero value for the descriptor.
func (r Raw) Empty() any {
	base, count := r.split()
	return emptyFor(base, count != nil)
}

// Number is a single numeric value.
type Number struct {
	Type string
}

func (*Number) readMember() {}

// RawType returns n.Type.
func (n *Number) RawType() string { return n.Type }

// Count returns nil.
func (*Number) Count() Length { return nil }

// EntryHook passes v through.
func (*Number) EntryHook(v any) (any, Flow, error) { return v, Continue, nil }

// Verify accepts any value.
func (*Number) Verify(any) error { return nil }

// Empty returns 0 of the matching kind.
func (n *Number) Empty() any { return emptyFor(n.Type, false) }

// Zero is a numeric value that must always decode to zero.
type Zero struct {
	Type string
}

func (*Zero) readMember() {}

// RawType returns z.Type.
func (z *Zero) RawType() string { return z.Type }

// Count returns nil.
func (*Zero) Count() Length { return nil }

// EntryHook passes v through.
func (*Zero) EntryHook(v any) (any, Flow, error) { return v, Continue, nil }

// Verify fails with ErrNotZero unless v is zero.
func (z *Zero) Verify(v any) error {
	if !isZero(v) {
		return fmt.Errorf("%w: got %v", ErrNotZero, v)
	}
	return nil
}

// Empty returns 0 of the matching kind.
func (z *Zero) Empty() any { return emptyFor(z.Type, false) }

// ContinueRead is a sentinel value. When it decodes to zero the rest of the
// record is absent.
type ContinueRead struct {
	Type string
}

func (*ContinueRead) readMember() {}

// RawType returns c.Type.
func (c *ContinueRead) RawType() string { return c.Type }

// Count returns nil.
func (*ContinueRead) Count() Length { return nil }

// EntryHook returns Stop when v is zero.
func (*ContinueRead) EntryHook(v any) (any, Flow, error) {
	if isZero(v) {
		return v, Stop, nil
	}
	return v, Continue, nil
}

// Verify accepts any value.
func (*ContinueRead) Verify(any) error { return nil }

// Empty returns 0 of the matching kind.
func (c *ContinueRead) Empty() any { return emptyFor(c.Type, false) }

// EnumValue is the decoded form of an EnumLookup field.
type EnumValue struct {
	Code int64
	Name string
}

func (e EnumValue) String() string { return e.Name }

// EnumLookup maps an integer code to a symbolic name.
type EnumLookup struct {
	Type   string
	Name   string
	Lookup map[int64]string
}

func (*EnumLookup) readMember() {}

// RawType returns e.Type.
func (e *EnumLookup) RawType() string { return e.Type }

// Count returns nil.
func (*EnumLookup) Count() Length { return nil }

// EntryHook replaces the decoded code with an EnumValue.
//
// Postcondition: returns ErrUnknownEnumValue for codes absent from Lookup.
func (e *EnumLookup) EntryHook(v any) (any, Flow, error) {
	code, ok := asInt(v)
	if !ok {
		return nil, Continue, fmt.Errorf("%s: %w: non-integer %v", e.Name, ErrUnknownEnumValue, v)
	}
	name, ok := e.Lookup[code]
	if !ok {
		return nil, Continue, fmt.Errorf("%s: %w: %d", e.Name, ErrUnknownEnumValue, code)
	}
	return EnumValue{Code: code, Name: name}, Continue, nil
}

// Verify accepts any value.
func (*EnumLookup) Verify(any) error { return nil }

// Empty returns the zero EnumValue.
func (*EnumLookup) Empty() any { return EnumValue{} }

// CharArray is fixed-size character data, trimmed at the first NUL.
type CharArray struct {
	Length   Length
	Encoding Encoding
}

func (*CharArray) readMember() {}

// RawType returns "char".
func (*CharArray) RawType() string { return "char" }

// Count returns the byte count.
func (c *CharArray) Count() Length { return c.Length }

// EntryHook passes v through.
func (*CharArray) EntryHook(v any) (any, Flow, error) { return v, Continue, nil }

// Verify accepts any value.
func (*CharArray) Verify(any) error { return nil }

// Empty returns "".
func (*CharArray) Empty() any { return "" }

// TextEncoding returns c.Encoding.
func (c *CharArray) TextEncoding() Encoding { return c.Encoding }

// Text is character data. A nil Length reads up to and including a NUL
// terminator.
type Text struct {
	Length   Length
	Encoding Encoding
}

func (*Text) readMember() {}

// RawType returns "char".
func (*Text) RawType() string { return "char" }

// Count returns the byte count, or nil for terminated strings.
func (s *Text) Count() Length { return s.Length }

// EntryHook passes v through.
func (*Text) EntryHook(v any) (any, Flow, error) { return v, Continue, nil }

// Verify accepts any value.
func (*Text) Verify(any) error { return nil }

// Empty returns "".
func (*Text) Empty() any { return "" }

// TextEncoding returns s.Encoding.
func (s *Text) TextEncoding() Encoding { return s.Encoding }

// Array is a run of Length numeric values. It always decodes to a slice.
type Array struct {
	Type   string
	Length Length
}

func (*Array) readMember() {}

// RawType returns a.Type.
func (a *Array) RawType() string { return a.Type }

// Count returns a.Length.
func (a *Array) Count() Length { return a.Length }

// EntryHook passes v through.
func (*Array) EntryHook(v any) (any, Flow, error) { return v, Continue, nil }

// Verify accepts any value.
func (*Array) Verify(any) error { return nil }

// Empty returns an empty slice of the matching kind.
func (a *Array) Empty() any { return emptyFor(a.Type, true) }

// Group reads a nested schema once into a child record.
type Group struct {
	Schema *Schema
}

func (*Group) readMember() {}

// Include reads a schema's entries into the current record, as if they were
// declared in place.
type Include struct {
	Schema *Schema
}

func (*Include) readMember() {}

// Subdata reads Length consecutive records of one schema.
//
// When OffsetTo is set, slots whose offset entry is not present are absent and
// consume no bytes. PassedArgs names fields of the current record copied into
// every child record before it is read.
type Subdata struct {
	Schema     *Schema
	Length     Length
	OffsetTo   *OffsetGate
	PassedArgs []string
}

func (*Subdata) readMember() {}

// Multisubtype reads Length records whose schema is chosen per slot.
//
// Discriminant is decoded at each slot's start without advancing the cursor;
// its stored value (or enum name) selects the schema from Classes.
type Multisubtype struct {
	TypeName     string
	Discriminant Entry
	Classes      map[string]*Schema
	Length       Length
	OffsetTo     *OffsetGate
	PassedArgs   []string
}

func (*Multisubtype) readMember() {}

// DiscriminantKey renders a decoded discriminant as a Classes key.
func DiscriminantKey(v any) string {
	if e, ok := v.(EnumValue); ok {
		return e.Name
	}
	return fmt.Sprint(v)
}

func isFloatType(t string) bool {
	return t == "float" || t == "double"
}

func emptyFor(base string, array bool) any {
	switch {
	case base == "char":
		return ""
	case isFloatType(base) && array:
		return []float64{}
	case isFloatType(base):
		return float64(0)
	case base == "uint64_t" && array:
		return []uint64{}
	case base == "uint64_t":
		return uint64(0)
	case array:
		return []int64{}
	}
	return int64(0)
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case uint64:
		return int64(x), true
	}
	return 0, false
}

func isZero(v any) bool {
	switch x := v.(type) {
	case int64:
		return x == 0
	case uint64:
		return x == 0
	case float64:
		return x == 0
	}
	return false
}

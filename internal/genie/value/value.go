// Package value provides the typed output tree produced by the dat reader.
// Scalars carry one decoded field each; containers and arrays compose them in
// the order the schema declared the fields.
package value

import (
	"errors"
	"fmt"
)

// ErrKindMismatch is returned when a member is added to an array whose
// declared element kind it does not share.
var ErrKindMismatch = errors.New("member kind does not match array element kind")

// ErrUnnamed is returned when a member without a name is added to a composite.
var ErrUnnamed = errors.New("member has no name")

// ErrDuplicateMember is returned when a container already holds a member of the same name.
var ErrDuplicateMember = errors.New("duplicate member name")

// Kind classifies a member.
type Kind uint8

// Member kinds.
const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindID
	KindBitfield
	KindString
	KindContainer
	KindArray
	KindDeferred
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindInt:       "int",
	KindFloat:     "float",
	KindBool:      "bool",
	KindID:        "id",
	KindBitfield:  "bitfield",
	KindString:    "string",
	KindContainer: "container",
	KindArray:     "array",
	KindDeferred:  "deferred",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Scalar reports whether k is one of the scalar kinds.
func (k Kind) Scalar() bool {
	return k >= KindInt && k <= KindString
}

// Member is a named node of the output tree.
type Member interface {
	Name() string
	Kind() Kind
}

// Deferred is a member whose container is materialized on demand. It may
// stand in for a container inside a container array.
type Deferred interface {
	Member
	// Materialize returns a transient copy of the deferred container.
	Materialize() (*Container, error)
}

// Int is a signed integer member.
type Int struct {
	name  string
	Value int64
}

// NewInt returns an Int member.
func NewInt(name string, v int64) *Int { return &Int{name: name, Value: v} }

// Name returns the member name.
func (m *Int) Name() string { return m.name }

// Kind returns KindInt.
func (m *Int) Kind() Kind { return KindInt }

// Float is a floating point member.
type Float struct {
	name  string
	Value float64
}

// NewFloat returns a Float member.
func NewFloat(name string, v float64) *Float { return &Float{name: name, Value: v} }

// Name returns the member name.
func (m *Float) Name() string { return m.name }

// Kind returns KindFloat.
func (m *Float) Kind() Kind { return KindFloat }

// Bool is a boolean member.
type Bool struct {
	name  string
	Value bool
}

// NewBool returns a Bool member.
func NewBool(name string, v bool) *Bool { return &Bool{name: name, Value: v} }

// Name returns the member name.
func (m *Bool) Name() string { return m.name }

// Kind returns KindBool.
func (m *Bool) Kind() Kind { return KindBool }

// ID is an identifier member. Enum lookups produce symbolic ids: Symbol holds
// the looked-up name and Value the raw code.
type ID struct {
	name   string
	Value  int64
	Symbol string
}

// NewID returns a numeric ID member.
func NewID(name string, v int64) *ID { return &ID{name: name, Value: v} }

// NewSymbolID returns a symbolic ID member.
func NewSymbolID(name string, code int64, symbol string) *ID {
	return &ID{name: name, Value: code, Symbol: symbol}
}

// Name returns the member name.
func (m *ID) Name() string { return m.name }

// Kind returns KindID.
func (m *ID) Kind() Kind { return KindID }

// Bitfield is an unsigned flag set member.
type Bitfield struct {
	name  string
	Value uint64
}

// NewBitfield returns a Bitfield member.
func NewBitfield(name string, v uint64) *Bitfield { return &Bitfield{name: name, Value: v} }

// Name returns the member name.
func (m *Bitfield) Name() string { return m.name }

// Kind returns KindBitfield.
func (m *Bitfield) Kind() Kind { return KindBitfield }

// String is a text member.
type String struct {
	name  string
	Value string
}

// NewString returns a String member.
func NewString(name, v string) *String { return &String{name: name, Value: v} }

// Name returns the member name.
func (m *String) Name() string { return m.name }

// Kind returns KindString.
func (m *String) Kind() Kind { return KindString }

// Container is an ordered set of uniquely named members.
//
// Invariant: members appear in the order they were added and every name
// occurs at most once.
type Container struct {
	name    string
	typ     string
	members []Member
	index   map[string]int
}

// NewContainer returns an empty container. typ records the schema (or
// subtype) name that produced it.
func NewContainer(name, typ string) *Container {
	return &Container{name: name, typ: typ, index: make(map[string]int)}
}

// Name returns the member name.
func (c *Container) Name() string { return c.name }

// Kind returns KindContainer.
func (c *Container) Kind() Kind { return KindContainer }

// Type returns the name of the schema that produced the container.
func (c *Container) Type() string { return c.typ }

// Add appends m.
//
// Precondition: m must be named and its name unused in c.
// Postcondition: c.Len() grows by one, or an error is returned and c is unchanged.
func (c *Container) Add(m Member) error {
	if m.Name() == "" {
		return fmt.Errorf("adding to container %q: %w", c.name, ErrUnnamed)
	}
	if _, ok := c.index[m.Name()]; ok {
		return fmt.Errorf("adding %q to container %q: %w", m.Name(), c.name, ErrDuplicateMember)
	}
	c.index[m.Name()] = len(c.members)
	c.members = append(c.members, m)
	return nil
}

// Get returns the member called name.
func (c *Container) Get(name string) (Member, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.members[i], true
}

// Members returns the members in insertion order. The slice must not be modified.
func (c *Container) Members() []Member { return c.members }

// Len returns the number of members.
func (c *Container) Len() int { return len(c.members) }

// Array is a sequence of members sharing one element kind.
//
// Invariant: every member's kind is compatible with Elem().
type Array struct {
	name    string
	elem    Kind
	members []Member
}

// NewArray returns an empty array of elem-kind members.
func NewArray(name string, elem Kind) *Array {
	return &Array{name: name, elem: elem}
}

// Name returns the member name.
func (a *Array) Name() string { return a.name }

// Kind returns KindArray.
func (a *Array) Kind() Kind { return KindArray }

// Elem returns the declared element kind.
func (a *Array) Elem() Kind { return a.elem }

// Append adds m to the end of a.
//
// Precondition: m must be named and share the element kind (deferred members
// are accepted by container arrays).
// Postcondition: a.Len() grows by one, or an error is returned and a is unchanged.
func (a *Array) Append(m Member) error {
	if m.Name() == "" {
		return fmt.Errorf("appending to array %q: %w", a.name, ErrUnnamed)
	}
	k := m.Kind()
	if k != a.elem && !(a.elem == KindContainer && k == KindDeferred) {
		return fmt.Errorf("appending %s member %q to %s array %q: %w", k, m.Name(), a.elem, a.name, ErrKindMismatch)
	}
	a.members = append(a.members, m)
	return nil
}

// Members returns the elements in order. The slice must not be modified.
func (a *Array) Members() []Member { return a.members }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.members) }

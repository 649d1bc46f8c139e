package value

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether a and b are deep-equal trees. Deferred members are
// compared by their materialized containers.
func Equal(a, b Member) bool {
	a, errA := resolve(a)
	b, errB := resolve(b)
	if errA != nil || errB != nil {
		return false
	}
	if a.Name() != b.Name() || a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Int:
		return x.Value == b.(*Int).Value
	case *Float:
		y := b.(*Float).Value
		return x.Value == y || (math.IsNaN(x.Value) && math.IsNaN(y))
	case *Bool:
		return x.Value == b.(*Bool).Value
	case *ID:
		y := b.(*ID)
		return x.Value == y.Value && x.Symbol == y.Symbol
	case *Bitfield:
		return x.Value == b.(*Bitfield).Value
	case *String:
		return x.Value == b.(*String).Value
	case *Container:
		y := b.(*Container)
		if x.typ != y.typ || len(x.members) != len(y.members) {
			return false
		}
		for i := range x.members {
			if !Equal(x.members[i], y.members[i]) {
				return false
			}
		}
		return true
	case *Array:
		y := b.(*Array)
		if x.elem != y.elem || len(x.members) != len(y.members) {
			return false
		}
		for i := range x.members {
			if !Equal(x.members[i], y.members[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// resolve replaces a deferred member with its materialized container.
func resolve(m Member) (Member, error) {
	d, ok := m.(Deferred)
	if !ok {
		return m, nil
	}
	c, err := d.Materialize()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Fingerprint returns a 64-bit xxhash of the canonical walk of m. Deep-equal
// trees have equal fingerprints.
//
// Postcondition: returns the fingerprint, or an error if a deferred member
// fails to materialize.
func Fingerprint(m Member) (uint64, error) {
	d := xxhash.New()
	if err := writeCanonical(d, m); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}

func writeCanonical(d *xxhash.Digest, m Member) error {
	r, err := resolve(m)
	if err != nil {
		return fmt.Errorf("fingerprinting %q: %w", m.Name(), err)
	}
	m = r
	var scratch [8]byte
	putUint := func(v uint64) {
		binary.LittleEndian.PutUint64(scratch[:], v)
		_, _ = d.Write(scratch[:])
	}
	putString := func(s string) {
		putUint(uint64(len(s)))
		_, _ = d.WriteString(s)
	}

	putUint(uint64(m.Kind()))
	putString(m.Name())
	switch x := m.(type) {
	case *Int:
		putUint(uint64(x.Value))
	case *Float:
		putUint(math.Float64bits(x.Value))
	case *Bool:
		if x.Value {
			putUint(1)
		} else {
			putUint(0)
		}
	case *ID:
		putUint(uint64(x.Value))
		putString(x.Symbol)
	case *Bitfield:
		putUint(x.Value)
	case *String:
		putString(x.Value)
	case *Container:
		putString(x.typ)
		putUint(uint64(len(x.members)))
		for _, c := range x.members {
			if err := writeCanonical(d, c); err != nil {
				return err
			}
		}
	case *Array:
		putUint(uint64(x.elem))
		putUint(uint64(len(x.members)))
		for _, c := range x.members {
			if err := writeCanonical(d, c); err != nil {
				return err
			}
		}
	}
	return nil
}

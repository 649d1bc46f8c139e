package reader

import (
	"fmt"
	"strconv"

	"github.com/cory-johannsen/genie/internal/genie/schema"
	"github.com/cory-johannsen/genie/internal/genie/value"
)

var elemKinds = map[schema.StorageType]value.Kind{
	schema.Int:      value.KindInt,
	schema.Float:    value.KindFloat,
	schema.Bool:     value.KindBool,
	schema.ID:       value.KindID,
	schema.Bitfield: value.KindBitfield,
	schema.String:   value.KindString,
}

// primitiveMember converts a stored primitive value into an output member of
// the declared storage type.
func primitiveMember(name string, st schema.StorageType, v any) (value.Member, error) {
	if !st.IsArray() {
		if _, ok := elemKinds[st]; !ok {
			return nil, mismatch(st, v)
		}
		return scalarMember(name, st, v)
	}

	kind, ok := elemKinds[st.Elem()]
	if !ok {
		return nil, mismatch(st, v)
	}
	var elems []any
	switch x := v.(type) {
	case []int64:
		for _, e := range x {
			elems = append(elems, e)
		}
	case []uint64:
		for _, e := range x {
			elems = append(elems, e)
		}
	case []float64:
		for _, e := range x {
			elems = append(elems, e)
		}
	default:
		return nil, mismatch(st, v)
	}
	arr := value.NewArray(name, kind)
	for i, e := range elems {
		m, err := scalarMember(strconv.Itoa(i), st.Elem(), e)
		if err != nil {
			return nil, err
		}
		if err := arr.Append(m); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

func scalarMember(name string, st schema.StorageType, v any) (value.Member, error) {
	switch x := v.(type) {
	case int64:
		switch st {
		case schema.Int:
			return value.NewInt(name, x), nil
		case schema.Float:
			return value.NewFloat(name, float64(x)), nil
		case schema.Bool:
			return value.NewBool(name, x != 0), nil
		case schema.ID:
			return value.NewID(name, x), nil
		case schema.Bitfield:
			return value.NewBitfield(name, uint64(x)), nil
		}
	case uint64:
		switch st {
		case schema.Int:
			return value.NewInt(name, int64(x)), nil
		case schema.Float:
			return value.NewFloat(name, float64(x)), nil
		case schema.Bool:
			return value.NewBool(name, x != 0), nil
		case schema.ID:
			return value.NewID(name, int64(x)), nil
		case schema.Bitfield:
			return value.NewBitfield(name, x), nil
		}
	case float64:
		if st == schema.Float {
			return value.NewFloat(name, x), nil
		}
	case string:
		if st == schema.String {
			return value.NewString(name, x), nil
		}
	case schema.EnumValue:
		switch st {
		case schema.ID:
			return value.NewSymbolID(name, x.Code, x.Name), nil
		case schema.String:
			return value.NewString(name, x.Name), nil
		case schema.Int:
			return value.NewInt(name, x.Code), nil
		}
	}
	return nil, mismatch(st, v)
}

func mismatch(st schema.StorageType, v any) error {
	return fmt.Errorf("%w: %s storage cannot hold %T", ErrStorageTypeMismatch, st, v)
}

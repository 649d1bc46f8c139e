package schema

import "fmt"

// StorageType is the declared output kind of an entry.
type StorageType uint8

// Storage types.
const (
	None StorageType = iota
	Int
	Float
	Bool
	ID
	Bitfield
	String
	Container
	ArrayInt
	ArrayFloat
	ArrayBool
	ArrayID
	ArrayBitfield
	ArrayString
	ArrayContainer
)

var storageNames = [...]string{
	None:           "NONE",
	Int:            "INT",
	Float:          "FLOAT",
	Bool:           "BOOL",
	ID:             "ID",
	Bitfield:       "BITFIELD",
	String:         "STRING",
	Container:      "CONTAINER",
	ArrayInt:       "ARRAY_INT",
	ArrayFloat:     "ARRAY_FLOAT",
	ArrayBool:      "ARRAY_BOOL",
	ArrayID:        "ARRAY_ID",
	ArrayBitfield:  "ARRAY_BITFIELD",
	ArrayString:    "ARRAY_STRING",
	ArrayContainer: "ARRAY_CONTAINER",
}

func (t StorageType) String() string {
	if int(t) < len(storageNames) {
		return storageNames[t]
	}
	return fmt.Sprintf("StorageType(%d)", uint8(t))
}

// IsArray reports whether t is one of the ARRAY_* types.
func (t StorageType) IsArray() bool {
	return t >= ArrayInt && t <= ArrayContainer
}

// Elem returns the scalar storage type of an ARRAY_* type's elements, or t
// itself for scalar types.
func (t StorageType) Elem() StorageType {
	if t.IsArray() {
		return t - ArrayInt + Int
	}
	return t
}

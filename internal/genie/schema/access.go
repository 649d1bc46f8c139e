package schema

import "fmt"

// Access controls whether an entry is read, exported, or both.
type Access uint8

// Access modes.
const (
	// Read fields are parsed and stored for later length and offset lookups but
	// are not exported.
	Read Access = iota + 1
	// ReadGen fields are parsed, stored, and exported.
	ReadGen
	// NoReadExport fields consume no bytes; their empty value is exported.
	NoReadExport
	// ReadUnknown fields have no known meaning. They are parsed and exported
	// under a generated name when unnamed.
	ReadUnknown
	// Skip fields are parsed to advance the cursor and then discarded.
	Skip
)

var accessNames = [...]string{
	Read:         "READ",
	ReadGen:      "READ_GEN",
	NoReadExport: "NOREAD_EXPORT",
	ReadUnknown:  "READ_UNKNOWN",
	Skip:         "SKIP",
}

// String returns the upper-case mode name.
func (a Access) String() string {
	if a >= Read && a <= Skip {
		return accessNames[a]
	}
	return fmt.Sprintf("Access(%d)", uint8(a))
}

// Emits reports whether fields with this mode appear in exported trees.
func (a Access) Emits() bool {
	return a == ReadGen || a == ReadUnknown || a == NoReadExport
}

// AccessSet is a set of access modes used to filter schema entries.
type AccessSet uint8

// Modes returns the set holding the given modes.
func Modes(modes ...Access) AccessSet {
	var s AccessSet
	for _, m := range modes {
		s |= 1 << m
	}
	return s
}

// AllAccess matches every mode.
var AllAccess = Modes(Read, ReadGen, NoReadExport, ReadUnknown, Skip)

// ExportAccess matches the modes that appear in exported trees.
var ExportAccess = Modes(ReadGen, NoReadExport, ReadUnknown)

// Contains reports whether a is in s.
func (s AccessSet) Contains(a Access) bool {
	return s&(1<<a) != 0
}

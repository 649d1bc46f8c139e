// Package schema describes the on-disk layout of dat records. A Schema maps a
// game version to an ordered list of entries; each entry says how its bytes are
// decoded (ReadMember), whether the result is kept or exported (Access), and
// what output kind it becomes (StorageType).
package schema

import (
	"sync"

	"github.com/cory-johannsen/genie/internal/genie/version"
)

// Entry is one field of a record layout.
type Entry struct {
	Access  Access
	Name    string
	Storage StorageType
	Read    ReadMember
}

// Schema is a versioned, ordered list of entries.
//
// Invariant: Members returns the same slice for the same version on every call.
type Schema struct {
	// Name identifies the record type in errors, logs and exported trees.
	Name string
	// Lazy records are wrapped in a deferred loader when the reader runs lazily.
	Lazy bool

	layout func(v version.GameVersion) []Entry
	cache  sync.Map // version.GameVersion -> []Entry
}

// New returns a schema whose entries are produced by layout.
//
// Precondition: layout must be deterministic in its argument.
func New(name string, layout func(v version.GameVersion) []Entry) *Schema {
	return &Schema{Name: name, layout: layout}
}

// NewLazy is New for a schema whose records are materialized on demand.
func NewLazy(name string, layout func(v version.GameVersion) []Entry) *Schema {
	s := New(name, layout)
	s.Lazy = true
	return s
}

// Members returns the entries for v. Results are memoized per version.
func (s *Schema) Members(v version.GameVersion) []Entry {
	if cached, ok := s.cache.Load(v); ok {
		return cached.([]Entry)
	}
	entries, _ := s.cache.LoadOrStore(v, s.layout(v))
	return entries.([]Entry)
}

// Format returns the entries for v whose access is in modes. When flatten is
// set, Include entries are replaced by the included schema's formatted entries.
//
// Postcondition: the relative order of the selected entries is preserved.
func (s *Schema) Format(v version.GameVersion, modes AccessSet, flatten bool) []Entry {
	var out []Entry
	for _, e := range s.Members(v) {
		if inc, ok := e.Read.(*Include); ok && flatten {
			out = append(out, inc.Schema.Format(v, modes, true)...)
			continue
		}
		if modes.Contains(e.Access) {
			out = append(out, e)
		}
	}
	return out
}

// Names returns the names of the entries Format selects.
func (s *Schema) Names(v version.GameVersion, modes AccessSet, flatten bool) []string {
	entries := s.Format(v, modes, flatten)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

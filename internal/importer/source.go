package importer

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/genie/internal/genie/value"
	"github.com/cory-johannsen/genie/internal/genie/version"
)

// Section is one top-level part of a decoded dat file. Each section is
// written as its own YAML document and stored as its own snapshot row.
type Section struct {
	// ID is the snake_case file stem, e.g. "sounds" or "header".
	ID string
	// Tree is the section's value tree. It may contain deferred members.
	Tree value.Member
}

// Dataset is everything a Source produced for one input file.
type Dataset struct {
	// RunID identifies this import run.
	RunID uuid.UUID
	// Digest is the hex blake2b-256 digest of the decoded buffer.
	Digest string
	// Version is the layout the file was read with.
	Version version.GameVersion
	// Size is the decoded buffer length in bytes.
	Size int
	// Consumed is the offset just past the last decoded block.
	Consumed int
	// Sections are in file order.
	Sections []*Section
}

// Source loads a dat file and splits it into sections.
//
// Precondition: path must name a readable file in the source's format.
// Postcondition: returns a Dataset with at least one section, or a non-nil error.
type Source interface {
	Load(path string) (*Dataset, error)
}

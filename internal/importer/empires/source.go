// Package empires reads empires*.dat files into importer sections.
package empires

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/cory-johannsen/genie/internal/genie/datfile"
	"github.com/cory-johannsen/genie/internal/genie/reader"
	"github.com/cory-johannsen/genie/internal/genie/value"
	"github.com/cory-johannsen/genie/internal/genie/version"
	"github.com/cory-johannsen/genie/internal/importer"
)

var _ importer.Source = (*Source)(nil)

// HeaderSection is the ID of the section holding the media section's scalars.
const HeaderSection = "header"

// ErrUnknownBlock is returned for a block name datfile does not declare.
var ErrUnknownBlock = errors.New("unknown dat block")

// Source implements importer.Source for empires*.dat files. The media section
// is always read; further blocks are read in the order given.
type Source struct {
	version    version.GameVersion
	compressed bool
	lazy       bool
	blocks     []string
	logger     *zap.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithCompressed marks input files as raw deflate streams.
func WithCompressed(compressed bool) Option {
	return func(s *Source) { s.compressed = compressed }
}

// WithLazy defers lazily loadable records.
func WithLazy(lazy bool) Option {
	return func(s *Source) { s.lazy = lazy }
}

// WithBlocks names extra blocks to read after the media section. A block is
// "name" to continue where the previous block ended, or "name@offset" to
// start at an absolute offset (decimal or 0x-prefixed hex).
func WithBlocks(blocks []string) Option {
	return func(s *Source) { s.blocks = blocks }
}

// WithLogger sets the logger passed to the reader.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Source) { s.logger = logger }
}

// NewSource constructs a Source reading files laid out for v.
func NewSource(v version.GameVersion, opts ...Option) *Source {
	s := &Source{version: v, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load reads path, inflating it when the source is compressed.
//
// Precondition: path names a readable empires*.dat file.
// Postcondition: returns a Dataset whose first section is the header, or a
// non-nil error.
func (s *Source) Load(path string) (*importer.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dat file %s: %w", path, err)
	}
	buf := raw
	if s.compressed {
		if buf, err = datfile.Decompress(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
	}
	return s.Decode(buf)
}

// Decode splits an already decompressed buffer into sections.
//
// Postcondition: the header section holds every scalar member of the media
// section in order; every composite member becomes its own section; each
// extra block becomes one section named after it.
func (s *Source) Decode(buf []byte) (*importer.Dataset, error) {
	sum := blake2b.Sum256(buf)
	ds := &importer.Dataset{
		RunID:   uuid.New(),
		Digest:  hex.EncodeToString(sum[:]),
		Version: s.version,
		Size:    len(buf),
	}

	r := reader.New(reader.WithLogger(s.logger), reader.WithLazy(s.lazy))
	res, err := r.Read(buf, 0, datfile.EmpiresDat, s.version, reader.Export)
	if err != nil {
		return nil, fmt.Errorf("reading media section: %w", err)
	}
	sections, err := split(res.Tree)
	if err != nil {
		return nil, err
	}
	ds.Sections = sections

	offset := res.Offset
	for _, b := range s.blocks {
		name, at, err := parseBlock(b)
		if err != nil {
			return nil, err
		}
		sch, ok := datfile.Blocks()[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, name)
		}
		if at >= 0 {
			offset = at
		}
		res, err := r.Read(buf, offset, sch, s.version, reader.Export)
		if err != nil {
			return nil, fmt.Errorf("reading block %s: %w", name, err)
		}
		s.logger.Debug("read dat block",
			zap.String("block", name),
			zap.Int("offset", offset),
			zap.Int("consumed", res.Consumed),
		)
		ds.Sections = append(ds.Sections, &importer.Section{ID: importer.NameToID(name), Tree: res.Tree})
		offset = res.Offset
	}
	ds.Consumed = offset
	return ds, nil
}

// split moves scalars into the header and gives each composite its own section.
func split(root *value.Container) ([]*importer.Section, error) {
	header := value.NewContainer(HeaderSection, root.Type())
	var rest []*importer.Section
	for _, m := range root.Members() {
		if m.Kind().Scalar() {
			if err := header.Add(m); err != nil {
				return nil, fmt.Errorf("building header: %w", err)
			}
			continue
		}
		rest = append(rest, &importer.Section{ID: importer.NameToID(m.Name()), Tree: m})
	}
	return append([]*importer.Section{{ID: HeaderSection, Tree: header}}, rest...), nil
}

func parseBlock(b string) (string, int, error) {
	name, off, ok := strings.Cut(b, "@")
	if !ok {
		return name, -1, nil
	}
	at, err := strconv.ParseInt(off, 0, 64)
	if err != nil || at < 0 {
		return "", 0, fmt.Errorf("block %q: invalid offset %q", b, off)
	}
	return name, int(at), nil
}

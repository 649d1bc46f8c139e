package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/genie/internal/genie/value"
)

// ErrDuplicateSection is returned when two sections share an ID.
var ErrDuplicateSection = errors.New("duplicate section id")

// Importer orchestrates export from a Source to an output directory.
type Importer struct {
	source Source
	logger *zap.Logger
}

// New constructs an Importer backed by the given Source. A nil logger
// discards progress output.
//
// Precondition: source must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{source: source, logger: logger}
}

// Run loads inputPath and writes each section as YAML to outputDir. Each
// output file is named <section_id>.yaml.
//
// Precondition: inputPath must satisfy the source's format; outputDir must
// exist or be creatable.
// Postcondition: one YAML file per section is written to outputDir and the
// dataset is returned, or an error is returned.
func (imp *Importer) Run(inputPath, outputDir string) (*Dataset, error) {
	overall := time.Now()

	t0 := time.Now()
	ds, err := imp.source.Load(inputPath)
	if err != nil {
		return nil, fmt.Errorf("loading source: %w", err)
	}
	imp.logger.Info("loaded dat file",
		zap.String("path", inputPath),
		zap.String("size", humanize.Bytes(uint64(ds.Size))),
		zap.String("version", ds.Version.String()),
		zap.Int("sections", len(ds.Sections)),
		zap.Duration("elapsed", time.Since(t0).Round(time.Millisecond)),
	)

	seen := make(map[string]bool, len(ds.Sections))
	for _, s := range ds.Sections {
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSection, s.ID)
		}
		seen[s.ID] = true
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	for _, s := range ds.Sections {
		t1 := time.Now()

		data, err := Encode(s)
		if err != nil {
			return nil, err
		}

		// The document must parse back before it is written.
		if err := validate(data); err != nil {
			return nil, fmt.Errorf("section %q failed validation: %w", s.ID, err)
		}

		outPath := filepath.Join(outputDir, s.ID+".yaml")
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return nil, fmt.Errorf("writing section %q to %s: %w", s.ID, outPath, err)
		}

		imp.logger.Info("wrote section",
			zap.String("path", outPath),
			zap.String("size", humanize.Bytes(uint64(len(data)))),
			zap.Duration("elapsed", time.Since(t1).Round(time.Millisecond)),
		)
	}

	imp.logger.Info("import complete",
		zap.String("digest", ds.Digest),
		zap.Duration("total", time.Since(overall).Round(time.Millisecond)),
	)
	return ds, nil
}

// Encode renders a section as an ordered YAML document. Deferred members
// are materialized transiently.
func Encode(s *Section) ([]byte, error) {
	n, err := value.Node(s.Tree)
	if err != nil {
		return nil, fmt.Errorf("building section %q: %w", s.ID, err)
	}
	data, err := yaml.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("serialising section %q: %w", s.ID, err)
	}
	return data, nil
}

func validate(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return fmt.Errorf("expected a single YAML document")
	}
	return nil
}

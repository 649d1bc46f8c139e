package reader

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/genie/internal/genie/schema"
	"github.com/cory-johannsen/genie/internal/genie/value"
	"github.com/cory-johannsen/genie/internal/genie/version"
)

type passedArg struct {
	name  string
	value any
}

// DynamicLoader stands in for a lazily read record. It remembers where the
// record lives and decodes it on demand.
//
// Invariant: every decode of the record consumes exactly Len() bytes.
type DynamicLoader struct {
	name    string
	schema  *schema.Schema
	buf     []byte
	offset  int
	length  int
	version version.GameVersion
	passed  []passedArg
	logger  *zap.Logger

	mu     sync.Mutex
	tree   *value.Container
	record *Record
}

func newDynamicLoader(
	name string,
	sch *schema.Schema,
	buf []byte,
	offset, length int,
	v version.GameVersion,
	passed []passedArg,
	logger *zap.Logger,
) *DynamicLoader {
	return &DynamicLoader{
		name:    name,
		schema:  sch,
		buf:     buf,
		offset:  offset,
		length:  length,
		version: v,
		passed:  passed,
		logger:  logger,
	}
}

// Name returns the member name (the slot index within its array).
func (l *DynamicLoader) Name() string { return l.name }

// Kind returns value.KindDeferred.
func (l *DynamicLoader) Kind() value.Kind { return value.KindDeferred }

// Schema returns the record's schema.
func (l *DynamicLoader) Schema() *schema.Schema { return l.schema }

// Offset returns the record's start offset in the source buffer.
func (l *DynamicLoader) Offset() int { return l.offset }

// Len returns the record's size in bytes.
func (l *DynamicLoader) Len() int { return l.length }

// Loaded reports whether the record is resident.
func (l *DynamicLoader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tree != nil
}

// Load decodes the record and keeps it resident. Loading a resident record is
// a no-op.
func (l *DynamicLoader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tree != nil {
		return nil
	}
	tree, rec, err := l.decode()
	if err != nil {
		return err
	}
	l.tree, l.record = tree, rec
	l.logger.Debug("loaded deferred record",
		zap.String("schema", l.schema.Name),
		zap.String("name", l.name),
		zap.Int("offset", l.offset),
	)
	return nil
}

// Unload drops the resident record.
func (l *DynamicLoader) Unload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tree, l.record = nil, nil
}

// Tree returns the resident tree, if loaded.
func (l *DynamicLoader) Tree() (*value.Container, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tree, l.tree != nil
}

// Record returns the resident parse record, if loaded.
func (l *DynamicLoader) Record() (*Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.record, l.record != nil
}

// Materialize returns the record's tree. A resident tree is returned as is;
// otherwise the record is decoded without being kept.
func (l *DynamicLoader) Materialize() (*value.Container, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tree != nil {
		return l.tree, nil
	}
	tree, _, err := l.decode()
	return tree, err
}

// Member returns one member of the record. When the record is not resident it
// is loaded for the lookup and unloaded again.
func (l *DynamicLoader) Member(name string) (value.Member, error) {
	tree, err := l.Materialize()
	if err != nil {
		return nil, err
	}
	m, ok := tree.Get(name)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w: %q", l.schema.Name, l.name, ErrUnknownField, name)
	}
	return m, nil
}

// decode reads the record from the captured window of the source buffer.
func (l *DynamicLoader) decode() (*value.Container, *Record, error) {
	window := l.buf[:l.offset+l.length]
	d := &decoder{reader: &Reader{logger: l.logger}, buf: window, version: l.version}
	rec := NewRecord(l.schema.Name)
	for _, a := range l.passed {
		rec.Set(a.name, a.value)
	}
	tree := value.NewContainer(l.name, l.schema.Name)
	end, err := d.record(l.schema, l.offset, rec, tree, l.schema.Name+"["+l.name+"]")
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s %s: %w", l.schema.Name, l.name, err)
	}
	if end-l.offset != l.length {
		return nil, nil, fmt.Errorf("loading %s %s: %w: consumed %d bytes, expected %d",
			l.schema.Name, l.name, ErrInvalidLength, end-l.offset, l.length)
	}
	return tree, rec, nil
}

// Package reader decodes dat records from a byte buffer by walking a schema.
//
// A read produces two views of the same bytes: a Record holding every stored
// field (used to resolve lengths and offsets while reading) and, in Export
// mode, a value.Container holding only the exported fields.
package reader

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/genie/internal/genie/schema"
	"github.com/cory-johannsen/genie/internal/genie/value"
	"github.com/cory-johannsen/genie/internal/genie/version"
)

// Mode selects whether a read builds an output tree.
type Mode uint8

// Read modes.
const (
	// Internal reads fill the parse record only.
	Internal Mode = iota
	// Export reads also build the exported value tree.
	Export
)

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reader) { r.logger = l }
}

// WithLazy enables deferred loading of schemas marked Lazy.
func WithLazy(lazy bool) Option {
	return func(r *Reader) { r.lazy = lazy }
}

// Reader decodes records. A Reader holds no per-read state and may be shared.
type Reader struct {
	logger *zap.Logger
	lazy   bool
}

// New returns a Reader.
func New(opts ...Option) *Reader {
	r := &Reader{logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Result is the outcome of a top-level read.
type Result struct {
	// Offset is the cursor position after the record.
	Offset int
	// Consumed is the number of bytes the record occupies.
	Consumed int
	// Record is the parse context. It is nil when Loader is set.
	Record *Record
	// Tree is the exported tree. It is nil for Internal reads and when Loader is set.
	Tree *value.Container
	// Loader is set when the top-level schema is lazy and the reader runs lazily.
	Loader *DynamicLoader
}

// Read decodes one sch record starting at offset.
//
// Precondition: 0 <= offset <= len(buf).
// Postcondition: on success Offset == offset + Consumed; on failure the error
// is a *ReadError wrapping one of the Err* kinds.
func (r *Reader) Read(buf []byte, offset int, sch *schema.Schema, v version.GameVersion, mode Mode) (*Result, error) {
	if offset < 0 || offset > len(buf) {
		return nil, &ReadError{Path: sch.Name, Offset: offset, Err: fmt.Errorf("%w: start outside buffer of %d bytes", ErrInvalidLength, len(buf))}
	}
	d := &decoder{reader: r, buf: buf, version: v}
	rec := NewRecord(sch.Name)

	if r.lazy && sch.Lazy {
		end, err := d.record(sch, offset, rec, nil, sch.Name)
		if err != nil {
			return nil, err
		}
		l := newDynamicLoader(sch.Name, sch, buf, offset, end-offset, v, nil, r.logger)
		return &Result{Offset: end, Consumed: end - offset, Loader: l}, nil
	}

	var tree *value.Container
	if mode == Export {
		tree = value.NewContainer(sch.Name, sch.Name)
	}
	end, err := d.record(sch, offset, rec, tree, sch.Name)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("read record",
		zap.String("schema", sch.Name),
		zap.Int("offset", offset),
		zap.Int("consumed", end-offset),
	)
	return &Result{Offset: end, Consumed: end - offset, Record: rec, Tree: tree}, nil
}

// decoder carries the per-read state shared by all frames.
type decoder struct {
	reader  *Reader
	buf     []byte
	version version.GameVersion
}

// frame is one record being filled. Include shares its frame with the
// including record so a sentinel stop crosses the include boundary.
type frame struct {
	offset  int
	rec     *Record
	out     *value.Container
	stopped bool
	path    string
}

func (d *decoder) record(sch *schema.Schema, offset int, rec *Record, out *value.Container, path string) (int, error) {
	f := &frame{offset: offset, rec: rec, out: out, path: path}
	if err := d.entries(sch.Members(d.version), f); err != nil {
		return 0, err
	}
	return f.offset, nil
}

func (d *decoder) entries(entries []schema.Entry, f *frame) error {
	for _, e := range entries {
		if err := d.entry(e, f); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) entry(e schema.Entry, f *frame) error {
	name := e.Name
	if name == "" && e.Access == schema.ReadUnknown {
		name = fmt.Sprintf("unknown-0x%08x", f.offset)
	}
	emit := f.out != nil && e.Access.Emits()

	switch m := e.Read.(type) {
	case *schema.Include:
		return d.entries(m.Schema.Members(d.version), f)
	case *schema.Group:
		return d.group(e, name, m, f, emit)
	case *schema.Subdata:
		pick := func(int) (*schema.Schema, error) { return m.Schema, nil }
		return d.repeated(e, name, m.Length, m.OffsetTo, m.PassedArgs, pick, f, emit)
	case *schema.Multisubtype:
		pick := func(at int) (*schema.Schema, error) { return d.subtype(m, name, at, f) }
		return d.repeated(e, name, m.Length, m.OffsetTo, m.PassedArgs, pick, f, emit)
	case schema.Primitive:
		return d.primitive(e, name, m, f, emit)
	}
	return d.fail(f, name, fmt.Errorf("%w: %T", ErrUnknownRawType, e.Read))
}

func (d *decoder) fail(f *frame, field string, err error) error {
	path := f.path
	if field != "" {
		path += "." + field
	}
	return &ReadError{Path: path, Offset: f.offset, Err: err}
}

func (d *decoder) group(e schema.Entry, name string, m *schema.Group, f *frame, emit bool) error {
	var out *value.Container
	if emit {
		switch e.Storage {
		case schema.Container:
			out = value.NewContainer(name, m.Schema.Name)
		case schema.ArrayContainer:
			out = value.NewContainer("0", m.Schema.Name)
		default:
			return d.fail(f, name, fmt.Errorf("%w: group stored as %s", ErrStorageTypeMismatch, e.Storage))
		}
	}

	child := NewRecord(m.Schema.Name)
	cf := &frame{
		offset:  f.offset,
		rec:     child,
		out:     out,
		stopped: f.stopped || e.Access == schema.NoReadExport,
		path:    f.path + "." + name,
	}
	if err := d.entries(m.Schema.Members(d.version), cf); err != nil {
		return err
	}
	f.offset = cf.offset
	if e.Access != schema.Skip {
		f.rec.Set(name, child)
	}
	if !emit {
		return nil
	}
	var member value.Member = out
	if e.Storage == schema.ArrayContainer {
		arr := value.NewArray(name, value.KindContainer)
		if err := arr.Append(out); err != nil {
			return d.fail(f, name, err)
		}
		member = arr
	}
	if err := f.out.Add(member); err != nil {
		return d.fail(f, name, err)
	}
	return nil
}

// subtype peeks the discriminant at offset and selects the slot's schema.
func (d *decoder) subtype(m *schema.Multisubtype, name string, at int, f *frame) (*schema.Schema, error) {
	peek := &frame{offset: at, rec: NewRecord(m.TypeName), path: f.path + "." + name}
	if err := d.entry(m.Discriminant, peek); err != nil {
		var re *ReadError
		if errors.As(err, &re) && errors.Is(err, schema.ErrUnknownEnumValue) && !errors.Is(err, ErrUnknownSubtype) {
			re.Err = fmt.Errorf("%w: %w", ErrUnknownSubtype, re.Err)
		}
		return nil, err
	}
	v, ok := peek.rec.Get(m.Discriminant.Name)
	if !ok {
		return nil, d.fail(f, name, fmt.Errorf("%w: discriminant %q not stored", ErrUnknownSubtype, m.Discriminant.Name))
	}
	key := schema.DiscriminantKey(v)
	sch, ok := m.Classes[key]
	if !ok {
		return nil, d.fail(f, name, fmt.Errorf("%w: %s %q", ErrUnknownSubtype, m.TypeName, key))
	}
	return sch, nil
}

func (d *decoder) repeated(
	e schema.Entry,
	name string,
	length schema.Length,
	gate *schema.OffsetGate,
	passed []string,
	pick func(at int) (*schema.Schema, error),
	f *frame,
	emit bool,
) error {
	if emit && e.Storage != schema.ArrayContainer {
		return d.fail(f, name, fmt.Errorf("%w: repeated block stored as %s", ErrStorageTypeMismatch, e.Storage))
	}
	var arr *value.Array
	if emit {
		arr = value.NewArray(name, value.KindContainer)
	}

	if f.stopped || e.Access == schema.NoReadExport {
		if e.Access != schema.Skip {
			f.rec.Set(name, []Slot{})
		}
		if emit {
			if err := f.out.Add(arr); err != nil {
				return d.fail(f, name, err)
			}
		}
		return nil
	}

	n, err := length.Resolve(f.rec)
	if err != nil {
		return d.fail(f, name, fmt.Errorf("%w: %w", ErrInvalidLength, err))
	}
	if n < 0 {
		return d.fail(f, name, fmt.Errorf("%w: %d", ErrInvalidLength, n))
	}
	var offsets []int64
	if gate != nil {
		offsets, err = f.rec.Ints(gate.Field)
		if err != nil {
			return d.fail(f, name, fmt.Errorf("%w: %w", ErrInvalidLength, err))
		}
		if len(offsets) < n {
			return d.fail(f, name, fmt.Errorf("%w: %d slots but %s has %d entries", ErrInvalidLength, n, gate.Field, len(offsets)))
		}
	}

	args := make([]passedArg, 0, len(passed))
	for _, p := range passed {
		v, ok := f.rec.Get(p)
		if !ok {
			return d.fail(f, name, fmt.Errorf("%w: passed argument %q", ErrUnknownField, p))
		}
		args = append(args, passedArg{name: p, value: v})
	}

	// n is read from the file; only the remaining bytes bound the capacity.
	slots := make([]Slot, 0, min(n, len(d.buf)-f.offset))
	deferred := 0
	for i := 0; i < n; i++ {
		if gate != nil && !gate.Present(offsets[i]) {
			continue
		}
		sch, err := pick(f.offset)
		if err != nil {
			return err
		}
		slotName := strconv.Itoa(i)
		slotPath := f.path + "." + name + "[" + slotName + "]"
		child := NewRecord(sch.Name)
		for _, a := range args {
			child.Set(a.name, a.value)
		}

		if d.reader.lazy && sch.Lazy {
			start := f.offset
			end, err := d.record(sch, start, child, nil, slotPath)
			if err != nil {
				return err
			}
			l := newDynamicLoader(slotName, sch, d.buf, start, end-start, d.version, args, d.reader.logger)
			slots = append(slots, Slot{Index: i, Loader: l})
			if emit {
				if err := arr.Append(l); err != nil {
					return d.fail(f, name, err)
				}
			}
			f.offset = end
			deferred++
			continue
		}

		var out *value.Container
		if emit {
			out = value.NewContainer(slotName, sch.Name)
		}
		end, err := d.record(sch, f.offset, child, out, slotPath)
		if err != nil {
			return err
		}
		f.offset = end
		slots = append(slots, Slot{Index: i, Record: child})
		if emit {
			if err := arr.Append(out); err != nil {
				return d.fail(f, name, err)
			}
		}
	}

	if e.Access != schema.Skip {
		f.rec.Set(name, slots)
	}
	if emit {
		if err := f.out.Add(arr); err != nil {
			return d.fail(f, name, err)
		}
	}
	d.reader.logger.Debug("read repeated block",
		zap.String("path", f.path+"."+name),
		zap.Int("length", n),
		zap.Int("present", len(slots)),
		zap.Int("deferred", deferred),
	)
	return nil
}

func (d *decoder) primitive(e schema.Entry, name string, m schema.Primitive, f *frame, emit bool) error {
	if f.stopped || e.Access == schema.NoReadExport {
		empty := m.Empty()
		if e.Access != schema.Skip {
			f.rec.Set(name, empty)
		}
		if emit {
			return d.emit(f, e, name, empty)
		}
		return nil
	}

	base := m.RawType()
	c, ok := codecs[base]
	if !ok {
		return d.fail(f, name, fmt.Errorf("%w: %q", ErrUnknownRawType, base))
	}

	var (
		v     any
		width int
		err   error
	)
	if t, ok := m.(*schema.Text); ok && t.Length == nil {
		v, width, err = d.terminated(f.offset, encodingOf(m, d.version))
		if err != nil {
			return d.fail(f, name, err)
		}
	} else {
		count, array := 1, false
		if l := m.Count(); l != nil {
			count, err = l.Resolve(f.rec)
			if err != nil {
				return d.fail(f, name, fmt.Errorf("%w: %w", ErrInvalidLength, err))
			}
			array = base != "char"
		}
		if count < 0 {
			return d.fail(f, name, fmt.Errorf("%w: %d", ErrInvalidLength, count))
		}
		left := len(d.buf) - f.offset
		if count > left/c.size {
			return d.fail(f, name, fmt.Errorf("%w: need %d x %d bytes, %d left", ErrIncompleteBuffer, count, c.size, left))
		}
		width = count * c.size
		raw := d.buf[f.offset : f.offset+width]
		switch {
		case base == "char":
			v, err = decodeText(raw, encodingOf(m, d.version))
		case array:
			v, err = decodeSlice(base, c, raw, count)
		default:
			v = c.decode(raw)
			if x, ok := v.(float64); ok && (math.IsNaN(x) || math.IsInf(x, 0)) {
				err = fmt.Errorf("%w: %v", ErrNonFiniteFloat, x)
			}
		}
		if err != nil {
			return d.fail(f, name, err)
		}
	}

	v, flow, err := m.EntryHook(v)
	if err != nil {
		return d.fail(f, name, err)
	}
	if err := m.Verify(v); err != nil {
		return d.fail(f, name, fmt.Errorf("%w: %w", ErrVerifyFailed, err))
	}
	if e.Access != schema.Skip {
		f.rec.Set(name, v)
	}
	if flow == schema.Stop {
		f.stopped = true
	}
	if emit {
		if err := d.emit(f, e, name, v); err != nil {
			return err
		}
	}
	f.offset += width
	return nil
}

// terminated reads a NUL-terminated string. The terminator is consumed.
func (d *decoder) terminated(offset int, enc schema.Encoding) (string, int, error) {
	for i := offset; i < len(d.buf); i++ {
		if d.buf[i] == 0 {
			s, err := decodeText(d.buf[offset:i], enc)
			return s, i - offset + 1, err
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string", ErrIncompleteBuffer)
}

func encodingOf(m schema.Primitive, v version.GameVersion) schema.Encoding {
	if t, ok := m.(interface{ TextEncoding() schema.Encoding }); ok && t.TextEncoding() != schema.EncodingDefault {
		return t.TextEncoding()
	}
	if v.IsDE() {
		return schema.EncodingUTF8
	}
	return schema.EncodingWindows1252
}

func (d *decoder) emit(f *frame, e schema.Entry, name string, v any) error {
	m, err := primitiveMember(name, e.Storage, v)
	if err != nil {
		return d.fail(f, name, err)
	}
	if err := f.out.Add(m); err != nil {
		return d.fail(f, name, err)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/genie/internal/genie/value"
	"github.com/cory-johannsen/genie/internal/importer"
)

// ErrSnapshotNotFound is returned when a snapshot lookup yields no results.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is one stored section of an imported dat file.
type Snapshot struct {
	ID      int64
	RunID   uuid.UUID
	Digest  string
	Edition string
	Section string
	// Body is the section decoded from JSON: maps, slices, float64, bool,
	// string or nil.
	Body      any
	CreatedAt time.Time
}

// SnapshotRepository stores imported sections as JSONB rows keyed by file
// digest, edition and section id.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save stores every section of ds in one transaction. A section already
// stored for the same digest and edition is replaced.
//
// Precondition: ds must be non-nil with unique section ids.
// Postcondition: every section is stored under ds.RunID, or nothing is.
func (r *SnapshotRepository) Save(ctx context.Context, ds *importer.Dataset) error {
	edition := ds.Version.String()
	bodies := make([][]byte, len(ds.Sections))
	for i, s := range ds.Sections {
		b, err := EncodeBody(s.Tree)
		if err != nil {
			return fmt.Errorf("encoding section %q: %w", s.ID, err)
		}
		bodies[i] = b
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, s := range ds.Sections {
		_, err := tx.Exec(ctx,
			`INSERT INTO dat_snapshots (run_id, digest, edition, section, body)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (digest, edition, section)
			 DO UPDATE SET run_id = EXCLUDED.run_id, body = EXCLUDED.body, created_at = NOW()`,
			ds.RunID, ds.Digest, edition, s.ID, string(bodies[i]),
		)
		if err != nil {
			return fmt.Errorf("inserting section %q: %w", s.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// Get retrieves one stored section.
//
// Postcondition: Returns the Snapshot or ErrSnapshotNotFound.
func (r *SnapshotRepository) Get(ctx context.Context, digest, edition, section string) (Snapshot, error) {
	var (
		s    Snapshot
		body []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, run_id, digest, edition, section, body, created_at
		 FROM dat_snapshots WHERE digest = $1 AND edition = $2 AND section = $3`,
		digest, edition, section,
	).Scan(&s.ID, &s.RunID, &s.Digest, &s.Edition, &s.Section, &body, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrSnapshotNotFound
		}
		return Snapshot{}, fmt.Errorf("querying snapshot: %w", err)
	}
	if s.Body, err = DecodeBody(body); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot %d: %w", s.ID, err)
	}
	return s, nil
}

// ListSections returns the section ids stored for a file, sorted.
//
// Postcondition: Returns an empty slice when nothing is stored.
func (r *SnapshotRepository) ListSections(ctx context.Context, digest, edition string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT section FROM dat_snapshots
		 WHERE digest = $1 AND edition = $2 ORDER BY section`,
		digest, edition,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	sections, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning sections: %w", err)
	}
	return sections, nil
}

// EncodeBody renders a tree as JSON through structpb. Deferred members are
// materialized transiently.
func EncodeBody(m value.Member) ([]byte, error) {
	native, err := value.ToNative(m)
	if err != nil {
		return nil, err
	}
	v, err := structpb.NewValue(native)
	if err != nil {
		return nil, fmt.Errorf("converting to structpb: %w", err)
	}
	return protojson.Marshal(v)
}

// DecodeBody parses a JSON body produced by EncodeBody.
func DecodeBody(body []byte) (any, error) {
	var v structpb.Value
	if err := protojson.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v.AsInterface(), nil
}

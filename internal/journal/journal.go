// Package journal records runs and per-file placements in a SQLite
// database so a reorganization can be audited or undone by hand later.
//
// Usage:
//
//	j, err := journal.Open("fontsort.db")
//	id, err := j.BeginRun(ctx, journal.Run{Root: root, ...})
//	err = j.Record(ctx, journal.Placement{RunID: id, ...})
//	err = j.FinishRun(ctx, id, summary)
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	root          TEXT NOT NULL,
	output_dir    TEXT NOT NULL,
	scheme        TEXT NOT NULL,
	dry_run       INTEGER NOT NULL DEFAULT 0,
	started_at    TEXT NOT NULL,
	finished_at   TEXT,
	organized     INTEGER NOT NULL DEFAULT 0,
	skipped       INTEGER NOT NULL DEFAULT 0,
	duplicate     INTEGER NOT NULL DEFAULT 0,
	failed        INTEGER NOT NULL DEFAULT 0,
	not_processed INTEGER NOT NULL DEFAULT 0,
	bytes_moved   INTEGER NOT NULL DEFAULT 0,
	interrupted   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS placements (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id   TEXT NOT NULL REFERENCES runs(id),
	seq      INTEGER NOT NULL,
	source   TEXT NOT NULL,
	target   TEXT NOT NULL DEFAULT '',
	outcome  TEXT NOT NULL,
	reason   TEXT NOT NULL DEFAULT '',
	hash     TEXT NOT NULL DEFAULT '',
	bytes    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_placements_run ON placements(run_id, seq);
`

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Journal is a handle on the run database. It is safe for concurrent use;
// writes are serialized over a single connection.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal at path and applies the
// schema.
func Open(path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("journal: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error { return j.db.Close() }

// Run describes a run as it starts.
type Run struct {
	Root      string
	OutputDir string
	Scheme    string
	DryRun    bool
	StartedAt time.Time
}

// Summary holds a run's final counters.
type Summary struct {
	Organized    int
	Skipped      int
	Duplicate    int
	Failed       int
	NotProcessed int
	BytesMoved   int64
	Interrupted  bool
	FinishedAt   time.Time
}

// Placement is one file's terminal outcome within a run.
type Placement struct {
	RunID   string
	Seq     int // position in the run's sorted file list
	Source  string
	Target  string
	Outcome string
	Reason  string
	Hash    uint64
	Bytes   int64
}

// BeginRun inserts a run row and returns its new id.
func (j *Journal) BeginRun(ctx context.Context, r Run) (string, error) {
	id := uuid.NewString()
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, root, output_dir, scheme, dry_run, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, r.Root, r.OutputDir, r.Scheme, boolInt(r.DryRun), r.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("journal: begin run: %w", err)
	}
	return id, nil
}

// Record inserts one placement.
func (j *Journal) Record(ctx context.Context, p Placement) error {
	hash := ""
	if p.Hash != 0 {
		hash = fmt.Sprintf("%016x", p.Hash)
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO placements (run_id, seq, source, target, outcome, reason, hash, bytes) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.RunID, p.Seq, p.Source, p.Target, p.Outcome, p.Reason, hash, p.Bytes)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", p.Source, err)
	}
	return nil
}

// FinishRun stores the final counters of run id.
func (j *Journal) FinishRun(ctx context.Context, id string, s Summary) error {
	if s.FinishedAt.IsZero() {
		s.FinishedAt = time.Now()
	}
	res, err := j.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, organized = ?, skipped = ?, duplicate = ?, failed = ?,
			not_processed = ?, bytes_moved = ?, interrupted = ? WHERE id = ?`,
		s.FinishedAt.UTC().Format(time.RFC3339Nano), s.Organized, s.Skipped, s.Duplicate, s.Failed,
		s.NotProcessed, s.BytesMoved, boolInt(s.Interrupted), id)
	if err != nil {
		return fmt.Errorf("journal: finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("journal: finish run: unknown run %s", id)
	}
	return nil
}

// Placements returns the placements of run id in file order.
func (j *Journal) Placements(ctx context.Context, id string) ([]Placement, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT seq, source, target, outcome, reason, hash, bytes FROM placements WHERE run_id = ? ORDER BY seq, id`, id)
	if err != nil {
		return nil, fmt.Errorf("journal: placements: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		p := Placement{RunID: id}
		var hash string
		if err := rows.Scan(&p.Seq, &p.Source, &p.Target, &p.Outcome, &p.Reason, &hash, &p.Bytes); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		if hash != "" {
			p.Hash, _ = strconv.ParseUint(hash, 16, 64)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Summary returns the stored counters of run id.
func (j *Journal) Summary(ctx context.Context, id string) (Summary, error) {
	var s Summary
	var finished sql.NullString
	var interrupted int
	err := j.db.QueryRowContext(ctx,
		`SELECT finished_at, organized, skipped, duplicate, failed, not_processed, bytes_moved, interrupted
		 FROM runs WHERE id = ?`, id).
		Scan(&finished, &s.Organized, &s.Skipped, &s.Duplicate, &s.Failed, &s.NotProcessed, &s.BytesMoved, &interrupted)
	if err != nil {
		return s, fmt.Errorf("journal: summary %s: %w", id, err)
	}
	s.Interrupted = interrupted != 0
	if finished.Valid {
		s.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return s, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"stringpuller/internal/detect"
	_ "modernc.org/sqlite"
)

// ErrUnknownRun is returned when a run ID has no row.
var ErrUnknownRun = errors.New("unknown run")

// timeLayout has fixed-width fractions so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run summarizes one extraction run.
type Run struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Files      int        `json:"files"`
	Streams    int        `json:"streams"`
	Failures   int        `json:"failures"`
}

// Summary carries the totals written by FinishRun.
type Summary struct {
	Files    int
	Streams  int
	Failures int
}

// Stream is one written output file.
type Stream struct {
	Source     string            `json:"source"`
	FileName   string            `json:"file_name"`
	Start      int               `json:"start"`
	Length     int               `json:"length"`
	Method     detect.Method     `json:"method"`
	Confidence detect.Confidence `json:"confidence"`
}

// FileRecord is the outcome for one input file.
type FileRecord struct {
	Source  string
	Outcome string
	Detail  string
	Streams []Stream
}

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Batch workers share one connection so writes never contend.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts a new run and returns its UUID.
func (s *Store) BeginRun(ctx context.Context, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at) VALUES (?, ?)",
		id, startedAt.UTC().Format(timeLayout),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordFile stores a file outcome and its streams in one transaction.
func (s *Store) RecordFile(ctx context.Context, runID string, rec FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO files (run_id, source, outcome, detail) VALUES (?, ?, ?, ?)",
		runID, rec.Source, rec.Outcome, nullableString(rec.Detail),
	); err != nil {
		return fmt.Errorf("insert file %s: %w", rec.Source, err)
	}
	for _, st := range rec.Streams {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO streams (run_id, source, file_name, start, length, method, confidence)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, rec.Source, st.FileName, st.Start, st.Length, string(st.Method), st.Confidence.String(),
		); err != nil {
			return fmt.Errorf("insert stream %s: %w", st.FileName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

// FinishRun stamps the run's finish time and totals.
func (s *Store) FinishRun(ctx context.Context, runID string, finishedAt time.Time, sum Summary) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, files = ?, streams = ?, failures = ? WHERE id = ?",
		finishedAt.UTC().Format(timeLayout), sum.Files, sum.Streams, sum.Failures, runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, files, streams, failures
         FROM runs ORDER BY started_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.Files, &run.Streams, &run.Failures); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if finished.Valid {
			ts, err := time.Parse(timeLayout, finished.String)
			if err != nil {
				return nil, fmt.Errorf("parse finished_at: %w", err)
			}
			run.FinishedAt = &ts
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunStreams lists the streams written during runID in source and start order.
func (s *Store) RunStreams(ctx context.Context, runID string) ([]Stream, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, file_name, start, length, method, confidence
         FROM streams WHERE run_id = ? ORDER BY source, start`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer rows.Close()

	var streams []Stream
	for rows.Next() {
		var (
			st         Stream
			method     string
			confidence string
		)
		if err := rows.Scan(&st.Source, &st.FileName, &st.Start, &st.Length, &method, &confidence); err != nil {
			return nil, fmt.Errorf("scan stream: %w", err)
		}
		st.Method = detect.Method(method)
		if err := st.Confidence.UnmarshalText([]byte(confidence)); err != nil {
			return nil, fmt.Errorf("stream %s: %w", st.FileName, err)
		}
		streams = append(streams, st)
	}
	return streams, rows.Err()
}

// FileOutcomes maps each source recorded for runID to its outcome label.
func (s *Store) FileOutcomes(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT source, outcome FROM files WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var source, outcome string
		if err := rows.Scan(&source, &outcome); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out[source] = outcome
	}
	return out, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/records"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"
)

// Run describes one prediction pass stored in the results database.
type Run struct {
	ID        uuid.UUID
	ModelPath string
	Source    string
	Count     int
	Timestamp time.Time
}

// ResultStore persists prediction runs and their per-row probabilities.
type ResultStore struct {
	db *sql.DB
}

// ConnectToDB opens a libsql database. Plain paths are turned into file: URLs.
func ConnectToDB(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	if !strings.Contains(dsn, ":") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("could not create database directory: %w", err)
		}
		dsn = "file:" + dsn
	}
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewResultStore connects and makes sure the schema exists.
func NewResultStore(dsn string) (*ResultStore, error) {
	db, err := ConnectToDB(dsn)
	if err != nil {
		return nil, err
	}
	s := &ResultStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *ResultStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY UNIQUE,
		model_path TEXT,
		source TEXT,
		count INTEGER NOT NULL,
		time_stamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS predictions (
		run_id TEXT NOT NULL,
		row_id INTEGER NOT NULL,
		positive REAL NOT NULL,
		PRIMARY KEY (run_id, row_id)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create predictions table: %w", err)
	}
	return nil
}

func (s *ResultStore) Close() error { return s.db.Close() }

// SaveRun stores a run and all of its results in one transaction and returns
// the run's new ID.
func (s *ResultStore) SaveRun(ctx context.Context, modelPath, source string, results []records.Result) (uuid.UUID, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be a no-op if transaction is committed

	id := uuid.New()
	res, err := tx.ExecContext(ctx, "INSERT INTO runs (id, model_path, source, count) VALUES (?, ?, ?, ?)",
		id.String(), modelPath, source, len(results))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != 1 {
		return uuid.Nil, fmt.Errorf("expected 1 row affected, got %d", rowsAffected)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO predictions (run_id, row_id, positive) VALUES (?, ?, ?)")
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to prepare prediction insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, id.String(), r.ID, r.Positive); err != nil {
			return uuid.Nil, fmt.Errorf("failed to insert prediction %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// Results returns a run's predictions ordered by row id.
func (s *ResultStore) Results(ctx context.Context, runID uuid.UUID) ([]records.Result, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT row_id, positive FROM predictions WHERE run_id = ? ORDER BY row_id", runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var out []records.Result
	for rows.Next() {
		var r records.Result
		if err := rows.Scan(&r.ID, &r.Positive); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs lists stored runs, newest first.
func (s *ResultStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, model_path, source, count, time_stamp FROM runs ORDER BY time_stamp DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r     Run
			id    string
			stamp any
		)
		if err := rows.Scan(&id, &r.ModelPath, &r.Source, &r.Count, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", id, err)
		}
		if r.Timestamp, err = parseTimestamp(stamp); err != nil {
			return nil, fmt.Errorf("run %s: %w", id, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// timestampLayouts are the forms SQLite and libsql use for DATETIME columns.
var timestampLayouts = []string{
	time.DateTime,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
}

// parseTimestamp reads a DATETIME value as the driver returned it. NULL maps to
// the zero time.
func parseTimestamp(v any) (time.Time, error) {
	var text string
	switch s := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return s.UTC(), nil
	case string:
		text = s
	case []byte:
		text = string(s)
	case int64:
		return time.Unix(s, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", text)
}

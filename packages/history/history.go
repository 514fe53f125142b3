// Package history records executed requests in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/abdul-hamid-achik/reqfile/packages/core/runner"
)

const schema = `CREATE TABLE IF NOT EXISTS executions (
	id          TEXT PRIMARY KEY,
	executed_at TEXT NOT NULL,
	file        TEXT NOT NULL,
	line        INTEGER NOT NULL,
	environment TEXT NOT NULL,
	method      TEXT NOT NULL,
	url         TEXT NOT NULL,
	status_line TEXT NOT NULL,
	elapsed_ms  INTEGER NOT NULL,
	failure     TEXT NOT NULL
)`

// timeLayout has a fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one executed request.
type Entry struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	ExecutedAt  time.Time `json:"executedAt" yaml:"executedAt"`
	File        string    `json:"file" yaml:"file"`
	Line        int       `json:"line" yaml:"line"`
	Environment string    `json:"environment,omitempty" yaml:"environment,omitempty"`
	Method      string    `json:"method" yaml:"method"`
	URL         string    `json:"url" yaml:"url"`
	StatusLine  string    `json:"statusLine" yaml:"statusLine"`
	ElapsedMs   int64     `json:"elapsedMs" yaml:"elapsedMs"`
	Failure     string    `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// NewEntry builds an entry from an execution result.
func NewEntry(file, environment string, r *runner.Result) Entry {
	e := Entry{
		ID:          r.ID,
		ExecutedAt:  time.Now().UTC(),
		File:        file,
		Environment: environment,
		StatusLine:  r.StatusLine,
		ElapsedMs:   r.Elapsed.Milliseconds(),
	}
	if r.Section != nil {
		e.Line = r.Section.StartLine
		e.Method = r.Section.Verb
		e.URL = r.Section.URL
	}
	if r.Request != nil {
		e.Method = r.Request.Method
		e.URL = r.Request.URL
	}
	if r.Err != nil {
		e.Failure = r.Err.Error()
	}
	return e
}

// Store is an execution history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path. The sqlite:// and
// sqlite: prefixes are accepted.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSource(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func dataSource(path string) string {
	path = strings.TrimSpace(path)
	if p, ok := strings.CutPrefix(path, "sqlite://"); ok {
		return p
	}
	return strings.TrimPrefix(path, "sqlite:")
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores an entry. A zero ID or time is filled in.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO executions (id, executed_at, file, line, environment, method, url, status_line, elapsed_ms, failure)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.ExecutedAt.UTC().Format(timeLayout), e.File, e.Line, e.Environment,
		e.Method, e.URL, e.StatusLine, e.ElapsedMs, e.Failure,
	)
	if err != nil {
		return e, fmt.Errorf("failed to record execution: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first. A limit of zero or
// less returns every entry.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, executed_at, file, line, environment, method, url, status_line, elapsed_ms, failure
		 FROM executions ORDER BY executed_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e         Entry
			id, stamp string
		)
		if err := rows.Scan(&id, &stamp, &e.File, &e.Line, &e.Environment, &e.Method, &e.URL, &e.StatusLine, &e.ElapsedMs, &e.Failure); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid execution id %q: %w", id, err)
		}
		if e.ExecutedAt, err = time.Parse(timeLayout, stamp); err != nil {
			return nil, fmt.Errorf("invalid execution time %q: %w", stamp, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runstore persists completed review runs to a SQLite database. The
// pipeline itself holds everything in memory; the CLI saves the result here
// after a run finishes so reviews can be listed and re-read later.
package runstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview-engine/pkg/types"
)

// Store manages the review run database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		created_at TEXT NOT NULL,
		iterations INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		score INTEGER NOT NULL,
		payload TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Save inserts a run. An empty ID or zero CreatedAt is filled in; the
// updated run is returned.
func (s *Store) Save(run types.ReviewRun) (types.ReviewRun, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	payload, err := yaml.Marshal(run)
	if err != nil {
		return run, fmt.Errorf("marshaling run: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, query, created_at, iterations, passed, score, payload) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Query, run.CreatedAt.Format(time.RFC3339), run.Iterations,
		boolToInt(run.Critique.Pass), run.Critique.Score, string(payload),
	)
	if err != nil {
		return run, fmt.Errorf("inserting run: %w", err)
	}
	return run, nil
}

// Get loads one run by ID.
func (s *Store) Get(id string) (types.ReviewRun, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return types.ReviewRun{}, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return types.ReviewRun{}, fmt.Errorf("querying run: %w", err)
	}

	var run types.ReviewRun
	if err := yaml.Unmarshal([]byte(payload), &run); err != nil {
		return types.ReviewRun{}, fmt.Errorf("parsing run payload: %w", err)
	}
	return run, nil
}

// Summary is one row of run metadata for listings.
type Summary struct {
	ID         string
	Query      string
	CreatedAt  time.Time
	Iterations int
	Passed     bool
	Score      int
}

// List returns the most recent runs, newest first, capped at limit
// (default 20).
func (s *Store) List(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, query, created_at, iterations, passed, score FROM runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var createdAt string
		var passed int
		if err := rows.Scan(&sum.ID, &sum.Query, &createdAt, &sum.Iterations, &passed, &sum.Score); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			sum.CreatedAt = t
		}
		sum.Passed = passed != 0
		out = append(out, sum)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

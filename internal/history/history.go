// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a ledger of batch runs and per-file outcomes in
// SQLite so previous processing can be inspected after the fact.
package history

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/mesh-intelligence/scribe/pkg/types"
)

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Run is one recorded batch run.
type Run struct {
	ID         int64     `yaml:"id"`
	Model      string    `yaml:"model"`
	Total      int       `yaml:"total"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at,omitempty"`
}

// FileRecord is one file's outcome within a run.
type FileRecord struct {
	SourcePath string `yaml:"source_path"`
	Success    bool   `yaml:"success"`
	NotePath   string `yaml:"note_path,omitempty"`
	Err        string `yaml:"error,omitempty"`
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			model TEXT NOT NULL,
			total INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			source_path TEXT NOT NULL,
			success INTEGER NOT NULL,
			note_path TEXT,
			error TEXT,
			PRIMARY KEY (run_id, source_path)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_run ON files(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// BeginRun records the start of a batch and returns its run ID.
func (s *Store) BeginRun(model string, total int) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (model, total, started_at) VALUES (?, ?, ?)`,
		model, total, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("recording run start: %w", err)
	}
	return res.LastInsertId()
}

// RecordOutcome upserts one file's outcome for a run.
func (s *Store) RecordOutcome(runID int64, sourcePath string, out types.Outcome) error {
	_, err := s.db.Exec(
		`INSERT INTO files (run_id, source_path, success, note_path, error)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, source_path) DO UPDATE SET
			success = excluded.success,
			note_path = excluded.note_path,
			error = excluded.error`,
		runID, sourcePath, out.Success, out.NotePath, out.Err,
	)
	if err != nil {
		return fmt.Errorf("recording outcome for %s: %w", sourcePath, err)
	}
	return nil
}

// FinishRun stamps a run's completion time.
func (s *Store) FinishRun(runID int64) error {
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), runID,
	)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, model, total, started_at, COALESCE(finished_at, '')
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Model, &r.Total, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunOutcomes returns the per-file records of one run, ordered by path.
func (s *Store) RunOutcomes(runID int64) ([]FileRecord, error) {
	rows, err := s.db.Query(
		`SELECT source_path, success, COALESCE(note_path, ''), COALESCE(error, '')
		 FROM files WHERE run_id = ? ORDER BY source_path`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(&rec.SourcePath, &rec.Success, &rec.NotePath, &rec.Err); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// export is the YAML document shape produced by Export.
type export struct {
	Run   Run          `yaml:"run"`
	Files []FileRecord `yaml:"files"`
}

// Export writes the most recent limit runs with their file records as a
// YAML stream.
func (s *Store) Export(w io.Writer, limit int) error {
	runs, err := s.RecentRuns(limit)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	for _, r := range runs {
		files, err := s.RunOutcomes(r.ID)
		if err != nil {
			return err
		}
		if err := enc.Encode(export{Run: r, Files: files}); err != nil {
			return fmt.Errorf("encoding run %d: %w", r.ID, err)
		}
	}
	return nil
}

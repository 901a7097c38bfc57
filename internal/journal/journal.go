// Package journal persists completed conversion jobs to SQLite.
package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/normanking/lipsyncd/internal/viseme"
)

// Common errors
var (
	ErrJobNotFound = errors.New("job not found")
	ErrInvalidID   = errors.New("job id cannot be empty")
)

// Job statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job is one recorded conversion run. The event timeline is stored
// alongside it and retrieved separately via EventsFor.
type Job struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`   // Original filename
	Provider   string    `json:"provider"` // Transcription provider used
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	AudioMs    int64     `json:"audio_ms"`
	Words      int       `json:"words"`
	EventCount int       `json:"event_count"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists jobs to a SQLite database. Safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (creating if needed) the journal database at dbPath.
// The parent directory is created if it doesn't exist.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal database: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		provider TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		audio_ms INTEGER NOT NULL DEFAULT 0,
		words INTEGER NOT NULL DEFAULT 0,
		event_count INTEGER NOT NULL DEFAULT 0,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		events TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record persists a job and its event timeline. Recording the same job
// ID again replaces the previous row.
func (s *Store) Record(job *Job, events []viseme.Event) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	if job.ID == "" {
		return ErrInvalidID
	}

	blob, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	job.EventCount = len(events)

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT INTO jobs (id, source, provider, status, error, audio_ms, words, event_count, elapsed_ms, events, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		source = excluded.source,
		provider = excluded.provider,
		status = excluded.status,
		error = excluded.error,
		audio_ms = excluded.audio_ms,
		words = excluded.words,
		event_count = excluded.event_count,
		elapsed_ms = excluded.elapsed_ms,
		events = excluded.events
	`

	_, err = s.db.Exec(query,
		job.ID,
		job.Source,
		job.Provider,
		job.Status,
		job.Error,
		job.AudioMs,
		job.Words,
		job.EventCount,
		job.ElapsedMs,
		string(blob),
		// Stored in UTC so lexical comparison in SQL matches time order.
		job.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record job: %w", err)
	}

	return nil
}

// Get retrieves a job by ID
func (s *Store) Get(id string) (*Job, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
	SELECT id, source, provider, status, error, audio_ms, words, event_count, elapsed_ms, created_at
	FROM jobs
	WHERE id = ?
	`

	job, err := scanJob(s.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Recent returns the newest jobs, most recent first. A non-positive
// limit returns up to 20.
func (s *Store) Recent(limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
	SELECT id, source, provider, status, error, audio_ms, words, event_count, elapsed_ms, created_at
	FROM jobs
	ORDER BY created_at DESC
	LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}

	return jobs, nil
}

// EventsFor returns the stored event timeline for a job
func (s *Store) EventsFor(id string) ([]viseme.Event, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var blob string
	err := s.db.QueryRow("SELECT events FROM jobs WHERE id = ?", id).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("load events: %w", err)
	}

	var events []viseme.Event
	if err := json.Unmarshal([]byte(blob), &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// PruneBefore deletes jobs created before the cutoff and reports how
// many rows were removed
func (s *Store) PruneBefore(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(
		"DELETE FROM jobs WHERE created_at < ?",
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune jobs: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return removed, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*Job, error) {
	var job Job
	var createdAt string

	err := row.Scan(
		&job.ID,
		&job.Source,
		&job.Provider,
		&job.Status,
		&job.Error,
		&job.AudioMs,
		&job.Words,
		&job.EventCount,
		&job.ElapsedMs,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	job.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &job, nil
}

// Package sqlite persists the cohort store to an embedded SQLite file. The
// full state is snapshotted as a JSON payload after every successful write,
// which keeps the schema trivial and crash recovery a pure re-read.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"phetools/internal/infra/persistence/memory"
	"phetools/pkg/domain"
)

var _ domain.CohortStore = (*Store)(nil)

const stateBucket = "cohorts"

// Store wraps the in-memory store and snapshots it to SQLite after every
// mutation.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the SQLite file and hydrates the in-memory
// state from the last snapshot.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "phetools.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM state WHERE bucket = ?`, stateBucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	var snap memory.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	s.ImportState(snap)
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := json.Marshal(s.ExportState())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO state(bucket, payload) VALUES(?, ?)
		ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`, stateBucket, payload)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// SaveCohort writes through to memory and snapshots to disk.
func (s *Store) SaveCohort(ctx context.Context, c domain.Cohort) error {
	if err := s.Store.SaveCohort(ctx, c); err != nil {
		return err
	}
	return s.persist(ctx)
}

// DeleteCohort removes the cohort and snapshots to disk when it existed.
func (s *Store) DeleteCohort(ctx context.Context, importID string) (bool, error) {
	ok, err := s.Store.DeleteCohort(ctx, importID)
	if err != nil || !ok {
		return ok, err
	}
	return true, s.persist(ctx)
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Package postgres persists the cohort store to PostgreSQL, mirroring the
// in-memory semantics and snapshotting the full state as JSONB after every
// successful write.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"phetools/internal/infra/persistence/memory"
	"phetools/pkg/domain"
)

var _ domain.CohortStore = (*Store)(nil)

const (
	driverName = "pgx"
	defaultDSN = "postgres://localhost/phetools?sslmode=disable"

	stateBucket = "cohorts"
)

// Store wraps the in-memory store and snapshots it to Postgres after every
// mutation.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN), ensures the snapshot table exists, and hydrates the
// in-memory state from any existing snapshot.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = $1`, stateBucket).Scan(&payload)
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
	_, err = s.db.ExecContext(ctx, `INSERT INTO state(bucket, payload) VALUES($1, $2)
		ON CONFLICT(bucket) DO UPDATE SET payload = EXCLUDED.payload`, stateBucket, payload)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// SaveCohort writes through to memory and snapshots to Postgres.
func (s *Store) SaveCohort(ctx context.Context, c domain.Cohort) error {
	if err := s.Store.SaveCohort(ctx, c); err != nil {
		return err
	}
	return s.persist(ctx)
}

// DeleteCohort removes the cohort and snapshots when it existed.
func (s *Store) DeleteCohort(ctx context.Context, importID string) (bool, error) {
	ok, err := s.Store.DeleteCohort(ctx, importID)
	if err != nil || !ok {
		return ok, err
	}
	return true, s.persist(ctx)
}

// DB exposes the underlying handle for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

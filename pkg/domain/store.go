package domain

import (
	"context"
	"errors"
	"time"
)

// Cohort is one accepted import: the records built from a validated table,
// stored under the import identifier that produced them.
type Cohort struct {
	ImportID string    `json:"import_id"`
	Name     string    `json:"name,omitempty"`
	Created  time.Time `json:"created"`
	Records  []Record  `json:"records"`
}

// ErrCohortNotFound is returned by store lookups for unknown import ids.
var ErrCohortNotFound = errors.New("cohort not found")

// CohortStore persists accepted cohorts. Implementations must be safe for
// concurrent use; writes are whole-cohort and last-writer-wins.
type CohortStore interface {
	SaveCohort(ctx context.Context, c Cohort) error
	GetCohort(ctx context.Context, importID string) (Cohort, error)
	ListCohorts(ctx context.Context) ([]Cohort, error)
	DeleteCohort(ctx context.Context, importID string) (bool, error)
	Close() error
}

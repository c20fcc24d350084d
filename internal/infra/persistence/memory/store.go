// Package memory provides the in-memory cohort store: the reference
// implementation the persistent backends snapshot through.
package memory

import (
	"context"
	"sort"
	"sync"

	"phetools/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.CohortStore = (*Store)(nil)

// Snapshot is the full serializable state of a store. Persistent backends
// export it after every write and hydrate from it on startup.
type Snapshot struct {
	Cohorts []domain.Cohort `json:"cohorts"`
}

// Store keeps cohorts in memory under a read-write mutex.
type Store struct {
	mu      sync.RWMutex
	cohorts map[string]domain.Cohort
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{cohorts: make(map[string]domain.Cohort)}
}

// SaveCohort stores or replaces the cohort under its import id.
func (s *Store) SaveCohort(_ context.Context, c domain.Cohort) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cohorts[c.ImportID] = cloneCohort(c)
	return nil
}

// GetCohort returns the cohort stored under importID.
func (s *Store) GetCohort(_ context.Context, importID string) (domain.Cohort, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cohorts[importID]
	if !ok {
		return domain.Cohort{}, domain.ErrCohortNotFound
	}
	return cloneCohort(c), nil
}

// ListCohorts returns every stored cohort ordered by import id.
func (s *Store) ListCohorts(_ context.Context) ([]domain.Cohort, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Cohort, 0, len(s.cohorts))
	for _, c := range s.cohorts {
		out = append(out, cloneCohort(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ImportID < out[j].ImportID })
	return out, nil
}

// DeleteCohort removes the cohort and reports whether it existed.
func (s *Store) DeleteCohort(_ context.Context, importID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cohorts[importID]
	delete(s.cohorts, importID)
	return ok, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// ExportState snapshots the full store state, ordered by import id.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Cohorts: make([]domain.Cohort, 0, len(s.cohorts))}
	for _, c := range s.cohorts {
		snap.Cohorts = append(snap.Cohorts, cloneCohort(c))
	}
	sort.Slice(snap.Cohorts, func(i, j int) bool { return snap.Cohorts[i].ImportID < snap.Cohorts[j].ImportID })
	return snap
}

// ImportState replaces the store state with the snapshot contents.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cohorts = make(map[string]domain.Cohort, len(snap.Cohorts))
	for _, c := range snap.Cohorts {
		s.cohorts[c.ImportID] = cloneCohort(c)
	}
}

// cloneCohort copies every slice and pointer a Record reaches so callers can
// never alias store-owned state.
func cloneCohort(c domain.Cohort) domain.Cohort {
	out := c
	out.Records = make([]domain.Record, len(c.Records))
	for i := range c.Records {
		out.Records[i] = cloneRecord(c.Records[i])
	}
	return out
}

func cloneRecord(r domain.Record) domain.Record {
	out := r
	out.Subject.TimeAtLastEncounter = cloneTime(r.Subject.TimeAtLastEncounter)
	out.PhenotypicFeatures = cloneFeatures(r.PhenotypicFeatures)
	out.ExcludedFeatures = cloneFeatures(r.ExcludedFeatures)
	if r.Interpretations != nil {
		out.Interpretations = make([]domain.VariantInterpretation, len(r.Interpretations))
		copy(out.Interpretations, r.Interpretations)
	}
	out.Disease.Onset = cloneTime(r.Disease.Onset)
	if r.MetaData.Resources != nil {
		out.MetaData.Resources = make([]domain.Resource, len(r.MetaData.Resources))
		copy(out.MetaData.Resources, r.MetaData.Resources)
	}
	return out
}

func cloneFeatures(fs []domain.PhenotypicFeature) []domain.PhenotypicFeature {
	if fs == nil {
		return nil
	}
	out := make([]domain.PhenotypicFeature, len(fs))
	for i, f := range fs {
		f.Onset = cloneTime(f.Onset)
		f.Resolution = cloneTime(f.Resolution)
		out[i] = f
	}
	return out
}

func cloneTime(t *domain.TimeElement) *domain.TimeElement {
	if t == nil {
		return nil
	}
	out := *t
	if t.OntologyClass != nil {
		oc := *t.OntologyClass
		out.OntologyClass = &oc
	}
	return &out
}

// Package core wires the validation pipeline to persistence, export, and
// observability: the service layer behind the CLI.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	blobcore "phetools/internal/blob/core"
	"phetools/internal/observe"
	"phetools/internal/ontology"
	"phetools/internal/record"
	"phetools/internal/validate"
	"phetools/pkg/domain"
)

// Service exposes the import pipeline: validate a table, build records from
// accepted rows, persist the cohort, and export record bundles.
type Service struct {
	schema    *domain.TemplateSchema
	index     *ontology.Index
	validator *validate.TableValidator
	builder   *record.Builder
	store     domain.CohortStore
	blobs     blobcore.Store
	metrics   observe.Recorder
	log       *zap.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithMetrics replaces the default no-op recorder.
func WithMetrics(rec observe.Recorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// WithLogger replaces the default no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithBlobStore attaches an export target. Without one, ExportCohort fails.
func WithBlobStore(blobs blobcore.Store) Option {
	return func(s *Service) { s.blobs = blobs }
}

// NewService constructs a service over the given schema, ontology, store,
// and curator identity.
func NewService(schema *domain.TemplateSchema, index *ontology.Index, store domain.CohortStore, createdBy string, opts ...Option) *Service {
	s := &Service{
		schema:    schema,
		index:     index,
		validator: validate.NewTableValidator(schema, index),
		builder:   record.NewBuilder(index, createdBy),
		store:     store,
		metrics:   observe.NopRecorder{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportTable validates the table and, when accepted, builds the records and
// persists them as a cohort under a fresh import id. The returned result
// carries either the accepted rows or the full defect list; a rejected table
// persists nothing.
func (s *Service) ImportTable(ctx context.Context, name string, table *domain.Table) (domain.ImportResult, *domain.Cohort, error) {
	start := time.Now()
	result := s.validator.Validate(table)
	if !result.Accepted() {
		s.metrics.ObserveImport(false, result.Errors, 0)
		s.metrics.ObserveOperation(ctx, "import", false, time.Since(start))
		s.log.Info("import rejected",
			zap.String("table", name),
			zap.Int("rows", len(table.Rows)),
			zap.Int("defects", len(result.Errors)))
		return result, nil, nil
	}

	importID := uuid.NewString()
	cohort := domain.Cohort{
		ImportID: importID,
		Name:     name,
		Created:  time.Now().UTC(),
		Records:  s.builder.BuildAll(importID, result.Rows),
	}
	if err := s.store.SaveCohort(ctx, cohort); err != nil {
		s.metrics.ObserveOperation(ctx, "import", false, time.Since(start))
		return result, nil, fmt.Errorf("persist cohort: %w", err)
	}
	s.metrics.ObserveImport(true, nil, len(cohort.Records))
	s.metrics.ObserveOperation(ctx, "import", true, time.Since(start))
	s.log.Info("import accepted",
		zap.String("table", name),
		zap.String("import_id", importID),
		zap.Int("records", len(cohort.Records)))
	return result, &cohort, nil
}

// GetCohort returns a stored cohort by import id.
func (s *Service) GetCohort(ctx context.Context, importID string) (domain.Cohort, error) {
	return s.store.GetCohort(ctx, importID)
}

// ListCohorts returns every stored cohort.
func (s *Service) ListCohorts(ctx context.Context) ([]domain.Cohort, error) {
	return s.store.ListCohorts(ctx)
}

// DeleteCohort removes a stored cohort.
func (s *Service) DeleteCohort(ctx context.Context, importID string) (bool, error) {
	ok, err := s.store.DeleteCohort(ctx, importID)
	if err == nil && ok {
		s.log.Info("cohort deleted", zap.String("import_id", importID))
	}
	return ok, err
}

// ExportCohort writes the cohort to the configured blob store.
func (s *Service) ExportCohort(ctx context.Context, importID string) ([]blobcore.Info, error) {
	start := time.Now()
	if s.blobs == nil {
		return nil, fmt.Errorf("no blob store configured")
	}
	infos, err := ExportCohort(ctx, s.store, s.blobs, importID)
	s.metrics.ObserveOperation(ctx, "export", err == nil, time.Since(start))
	if err != nil {
		return nil, err
	}
	s.log.Info("cohort exported",
		zap.String("import_id", importID),
		zap.Int("blobs", len(infos)),
		zap.String("driver", string(s.blobs.Driver())))
	return infos, nil
}

// ExportCohort writes one JSON blob per record plus a cohort manifest. Keys
// are stable, so re-exporting an unchanged cohort fails on the create-only
// Put and leaves the original bundle intact.
func ExportCohort(ctx context.Context, store domain.CohortStore, blobs blobcore.Store, importID string) ([]blobcore.Info, error) {
	cohort, err := store.GetCohort(ctx, importID)
	if err != nil {
		return nil, err
	}

	var infos []blobcore.Info
	for i := range cohort.Records {
		rec := &cohort.Records[i]
		key := fmt.Sprintf("exports/%s/records/%s.json", importID, rec.ID)
		info, err := putJSON(ctx, blobs, key, rec, map[string]string{
			"import_id": importID,
			"subject":   rec.Subject.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("export record %s: %w", rec.ID, err)
		}
		infos = append(infos, info)
	}

	manifest := struct {
		ImportID string    `json:"import_id"`
		Name     string    `json:"name,omitempty"`
		Created  time.Time `json:"created"`
		Records  int       `json:"records"`
	}{cohort.ImportID, cohort.Name, cohort.Created, len(cohort.Records)}
	info, err := putJSON(ctx, blobs, fmt.Sprintf("exports/%s/manifest.json", importID), manifest, nil)
	if err != nil {
		return nil, fmt.Errorf("export manifest: %w", err)
	}
	return append(infos, info), nil
}

func putJSON(ctx context.Context, blobs blobcore.Store, key string, v any, metadata map[string]string) (blobcore.Info, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return blobcore.Info{}, err
	}
	return blobs.Put(ctx, key, bytes.NewReader(payload), blobcore.PutOptions{
		ContentType: "application/json",
		Metadata:    metadata,
	})
}

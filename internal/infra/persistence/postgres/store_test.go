package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"phetools/pkg/domain"
)

// Integration test: runs only against a live server named by
// PHETOOLS_POSTGRES_TEST_DSN.
func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("PHETOOLS_POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("PHETOOLS_POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	s, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()

	cohort := domain.Cohort{
		ImportID: "it-" + time.Now().UTC().Format("20060102150405"),
		Created:  time.Now().UTC(),
		Records:  []domain.Record{{ID: "r1", Subject: domain.Subject{ID: "patient_1", Sex: "MALE"}}},
	}
	if err := s.SaveCohort(ctx, cohort); err != nil {
		t.Fatalf("save: %v", err)
	}
	defer func() { _, _ = s.DeleteCohort(ctx, cohort.ImportID) }()

	reopened, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, err := reopened.GetCohort(ctx, cohort.ImportID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if len(got.Records) != 1 || got.Records[0].Subject.ID != "patient_1" {
		t.Fatalf("hydrated cohort mismatch: %+v", got)
	}
}

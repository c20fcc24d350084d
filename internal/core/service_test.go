package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	blobmem "phetools/internal/infra/blob/memory"
	"phetools/internal/infra/persistence/memory"
	"phetools/internal/observe"
	"phetools/internal/ontology"
	"phetools/pkg/domain"
)

func testIndex(t *testing.T) *ontology.Index {
	t.Helper()
	idx, err := ontology.NewIndex(ontology.GraphDocument{
		Version: "2026-06-03",
		Terms: []domain.OntologyTerm{
			{ID: "HP:0000001", Label: "Phenotypic abnormality"},
			{ID: "HP:0001250", Label: "Seizure", Parents: []domain.TermID{"HP:0000001"}},
			{ID: "HP:0001166", Label: "Arachnodactyly", Parents: []domain.TermID{"HP:0000001"}},
		},
	})
	if err != nil {
		t.Fatalf("build test index: %v", err)
	}
	return idx
}

func testTable(rows ...[]string) *domain.Table {
	schema := domain.MendelianSchema()
	table := &domain.Table{}
	for _, c := range schema.Columns {
		table.Header1 = append(table.Header1, c.Name)
		table.Header2 = append(table.Header2, c.Subheader)
	}
	table.Header1 = append(table.Header1, "Seizure", "Arachnodactyly")
	table.Header2 = append(table.Header2, "HP:0001250", "HP:0001166")
	table.Rows = rows
	return table
}

func testRow(subjectID string, status ...string) []string {
	row := []string{
		"PMID:30057029", "Novel FBN1 variants in two families", subjectID, "",
		"OMIM:154700", "Marfan syndrome", "HGNC:3603", "FBN1", "NM_000138.5",
		"c.1234A>G", "na", "", "P10Y", "P20Y", "no", "F", "",
	}
	return append(row, status...)
}

func newTestService(t *testing.T, opts ...Option) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(domain.MendelianSchema(), testIndex(t), store, "curator@example.org", opts...)
	return svc, store
}

func TestImportTablePersistsCohort(t *testing.T) {
	rec := observe.NewExpvarRecorder("")
	svc, store := newTestService(t, WithMetrics(rec))
	ctx := context.Background()

	result, cohort, err := svc.ImportTable(ctx, "fbn1 families", testTable(
		testRow("patient_1", "observed", "excluded"),
		testRow("patient_2", "P3Y", ""),
	))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !result.Accepted() || cohort == nil {
		t.Fatalf("expected acceptance: %+v", result.Errors)
	}
	if len(cohort.Records) != 2 || cohort.ImportID == "" {
		t.Fatalf("cohort: %+v", cohort)
	}

	stored, err := store.GetCohort(ctx, cohort.ImportID)
	if err != nil {
		t.Fatalf("stored cohort: %v", err)
	}
	if len(stored.Records) != 2 || stored.Name != "fbn1 families" {
		t.Fatalf("stored: %+v", stored)
	}
	snap := rec.Snapshot()
	if snap.Imports["accepted"] != 1 || snap.Records != 2 {
		t.Fatalf("metrics: %+v", snap)
	}
}

func TestImportTableRejectsAtomically(t *testing.T) {
	rec := observe.NewExpvarRecorder("")
	svc, store := newTestService(t, WithMetrics(rec))
	ctx := context.Background()

	result, cohort, err := svc.ImportTable(ctx, "bad", testTable(
		testRow("patient_1", "observed", ""),
		testRow("patient_1", "observed", ""), // duplicate id
	))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Accepted() || cohort != nil {
		t.Fatalf("expected rejection: %+v", result)
	}
	cohorts, _ := store.ListCohorts(ctx)
	if len(cohorts) != 0 {
		t.Fatalf("rejected import must persist nothing: %+v", cohorts)
	}
	snap := rec.Snapshot()
	if snap.Imports["rejected"] != 1 || snap.Defects[domain.KindDuplicateSubjectID] != 1 {
		t.Fatalf("metrics: %+v", snap)
	}
}

func TestExportCohortWritesBundle(t *testing.T) {
	blobs := blobmem.New()
	svc, _ := newTestService(t, WithBlobStore(blobs))
	ctx := context.Background()

	_, cohort, err := svc.ImportTable(ctx, "fbn1", testTable(testRow("patient_1", "observed", "")))
	if err != nil || cohort == nil {
		t.Fatalf("import: %v", err)
	}

	infos, err := svc.ExportCohort(ctx, cohort.ImportID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	// one record blob plus the manifest
	if len(infos) != 2 {
		t.Fatalf("infos: %+v", infos)
	}

	_, rc, err := blobs.Get(ctx, "exports/"+cohort.ImportID+"/manifest.json")
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	var manifest struct {
		ImportID string `json:"import_id"`
		Records  int    `json:"records"`
	}
	if err := json.Unmarshal(body, &manifest); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if manifest.ImportID != cohort.ImportID || manifest.Records != 1 {
		t.Fatalf("manifest: %+v", manifest)
	}

	recordKey := "exports/" + cohort.ImportID + "/records/" + cohort.Records[0].ID + ".json"
	info, err := blobs.Head(ctx, recordKey)
	if err != nil {
		t.Fatalf("record blob: %v", err)
	}
	if info.ContentType != "application/json" || info.Metadata["subject"] != "patient_1" {
		t.Fatalf("record blob info: %+v", info)
	}

	// Re-export collides with the immutable bundle.
	if _, err := svc.ExportCohort(ctx, cohort.ImportID); err == nil ||
		!strings.Contains(err.Error(), "already exists") {
		t.Fatalf("re-export should collide: %v", err)
	}
}

func TestExportWithoutBlobStore(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.ExportCohort(context.Background(), "whatever"); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestCohortLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, cohort, err := svc.ImportTable(ctx, "fbn1", testTable(testRow("patient_1", "observed", "")))
	if err != nil || cohort == nil {
		t.Fatalf("import: %v", err)
	}
	list, err := svc.ListCohorts(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
	}
	ok, err := svc.DeleteCohort(ctx, cohort.ImportID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if _, err := svc.GetCohort(ctx, cohort.ImportID); !errors.Is(err, domain.ErrCohortNotFound) {
		t.Fatalf("expected not-found after delete: %v", err)
	}
}

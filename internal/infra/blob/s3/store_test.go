package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"phetools/internal/blob/core"
)

func TestMockRoundTrip(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()

	if s.Driver() != core.DriverS3 {
		t.Fatalf("driver: %v", s.Driver())
	}
	info, err := s.Put(ctx, "exports/import-1/records.json", strings.NewReader(`{"id":"r1"}`),
		core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 11 || info.ContentType != "application/json" {
		t.Fatalf("put info: %+v", info)
	}

	if _, err := s.Put(ctx, "exports/import-1/records.json", strings.NewReader("{}"), core.PutOptions{}); err == nil {
		t.Fatal("put must be create-only")
	}

	got, rc, err := s.Get(ctx, "exports/import-1/records.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"id":"r1"}` || got.Size != 11 {
		t.Fatalf("get: %q %+v", body, got)
	}
}

func TestMockListAndDelete(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()
	for _, key := range []string{"exports/a/1.json", "exports/a/2.json", "exports/b/1.json"} {
		if _, err := s.Put(ctx, key, strings.NewReader("{}"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := s.List(ctx, "exports/a/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "exports/a/1.json" {
		t.Fatalf("list: %+v", infos)
	}

	ok, err := s.Delete(ctx, "exports/a/1.json")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = s.Delete(ctx, "exports/a/1.json")
	if err != nil || ok {
		t.Fatalf("double delete: ok=%v err=%v", ok, err)
	}
}

package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"phetools/internal/blob/core"
)

func TestRoundTripAndIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Put(ctx, "exports/i/1.json", strings.NewReader("{}"), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, "exports/i/1.json", strings.NewReader("{}"), core.PutOptions{}); err == nil {
		t.Fatal("put must be create-only")
	}

	info, rc, err := s.Get(ctx, "exports/i/1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "{}" || info.ContentType != "application/json" {
		t.Fatalf("get: %q %+v", body, info)
	}

	if _, _, err := s.Get(ctx, "missing"); err == nil {
		t.Fatal("missing key must error")
	}
}

func TestListPrefixOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, key := range []string{"b/2", "a/1", "b/1"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := s.List(ctx, "b/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "b/1" || infos[1].Key != "b/2" {
		t.Fatalf("list: %+v", infos)
	}
}

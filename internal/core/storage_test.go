package core

import (
	"context"
	"path/filepath"
	"testing"

	blobcore "phetools/internal/blob/core"
	"phetools/internal/infra/persistence/sqlite"
)

func TestOpenCohortStoreDefaultsToSQLite(t *testing.T) {
	t.Setenv("PHETOOLS_STORAGE_DRIVER", "")
	t.Setenv("PHETOOLS_SQLITE_PATH", filepath.Join(t.TempDir(), "cohorts.db"))

	store, err := OpenCohortStore(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if _, ok := store.(*sqlite.Store); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
}

func TestOpenCohortStoreMemory(t *testing.T) {
	t.Setenv("PHETOOLS_STORAGE_DRIVER", "memory")
	store, err := OpenCohortStore(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
}

func TestOpenCohortStoreUnknownDriver(t *testing.T) {
	t.Setenv("PHETOOLS_STORAGE_DRIVER", "etcd")
	if _, err := OpenCohortStore(context.Background()); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

func TestOpenBlobStoreSelection(t *testing.T) {
	t.Setenv("PHETOOLS_BLOB_DRIVER", "memory")
	store, err := OpenBlobStore(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != blobcore.DriverMemory {
		t.Fatalf("driver: %v", store.Driver())
	}

	t.Setenv("PHETOOLS_BLOB_DRIVER", "fs")
	t.Setenv("PHETOOLS_BLOB_FS_ROOT", t.TempDir())
	store, err = OpenBlobStore(context.Background())
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != blobcore.DriverFilesystem {
		t.Fatalf("driver: %v", store.Driver())
	}

	t.Setenv("PHETOOLS_BLOB_DRIVER", "s3")
	t.Setenv("PHETOOLS_BLOB_S3_BUCKET", "")
	if _, err := OpenBlobStore(context.Background()); err == nil {
		t.Fatal("s3 driver without bucket must fail")
	}

	t.Setenv("PHETOOLS_BLOB_DRIVER", "gcs")
	if _, err := OpenBlobStore(context.Background()); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

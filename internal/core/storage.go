package core

import (
	"context"
	"fmt"
	"os"

	blobcore "phetools/internal/blob/core"
	blobfs "phetools/internal/infra/blob/fs"
	blobmem "phetools/internal/infra/blob/memory"
	blobs3 "phetools/internal/infra/blob/s3"
	"phetools/internal/infra/persistence/memory"
	"phetools/internal/infra/persistence/postgres"
	"phetools/internal/infra/persistence/sqlite"
	"phetools/pkg/domain"
)

// StorageDriver identifies a concrete cohort store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenCohortStore selects a backend using environment variables. Defaults to
// sqlite when unset.
//
//	PHETOOLS_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	PHETOOLS_SQLITE_PATH: path to sqlite file (default ./phetools.db)
//	PHETOOLS_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenCohortStore(ctx context.Context) (domain.CohortStore, error) {
	driver := os.Getenv("PHETOOLS_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("PHETOOLS_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.NewStore(ctx, os.Getenv("PHETOOLS_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// OpenBlobStore selects an export target using environment variables.
// Defaults to the local filesystem.
//
//	PHETOOLS_BLOB_DRIVER: fs|s3|memory (default fs)
//	PHETOOLS_BLOB_FS_ROOT: root directory for the fs driver
//	PHETOOLS_BLOB_S3_*: see the s3 package
func OpenBlobStore(ctx context.Context) (blobcore.Store, error) {
	driver := os.Getenv("PHETOOLS_BLOB_DRIVER")
	if driver == "" {
		driver = string(blobcore.DriverFilesystem)
	}
	switch blobcore.Driver(driver) {
	case blobcore.DriverFilesystem:
		return blobfs.New(os.Getenv("PHETOOLS_BLOB_FS_ROOT"))
	case blobcore.DriverS3:
		return blobs3.OpenFromEnv(ctx)
	case blobcore.DriverMemory:
		return blobmem.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

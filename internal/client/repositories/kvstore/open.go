package kvstore

import (
	"context"
	"fmt"
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and parameterizes a backend.
type Options struct {
	Backend string
	// Path is the SQLite DSN or the JSON file path.
	Path  string
	Redis RedisOptions
}

// Open returns the repository for opts.Backend.
func Open(ctx context.Context, opts Options) (Repository, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		return OpenSQLite(ctx, opts.Path)
	case BackendFile:
		return NewFileRepository(opts.Path), nil
	case BackendRedis:
		return OpenRedis(ctx, opts.Redis)
	case BackendMemory:
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

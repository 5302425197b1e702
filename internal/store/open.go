package store

import (
	"context"
	"fmt"
	"strings"
)

// Backend names a Store implementation.
type Backend string

const (
	BackendMongo    Backend = "mongo"
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// BackendForURI derives the backend from a connection string's scheme.
// Anything that is not postgres or memory is handed to MongoDB.
func BackendForURI(uri string) Backend {
	lower := strings.ToLower(uri)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return BackendPostgres
	case strings.HasPrefix(lower, "memory://"):
		return BackendMemory
	default:
		return BackendMongo
	}
}

// Options selects and configures a backend.
type Options struct {
	Backend  Backend
	URI      string
	Database string // MongoDB only
}

// Open connects the configured backend. A connection failure is returned to
// the caller, which treats it as fatal.
func Open(ctx context.Context, opts Options) (Store, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendForURI(opts.URI)
	}
	switch backend {
	case BackendMongo:
		return OpenMongo(ctx, opts.URI, opts.Database)
	case BackendPostgres:
		return OpenPostgres(ctx, opts.URI)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

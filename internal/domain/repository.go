package domain

import (
	"context"
	"time"
)

// CatalogSearcher is the external catalog lookup collaborator. It returns
// zero or more candidate records for a set of free-text search terms.
// Implementations may fail (network, timeout); callers must tolerate that.
type CatalogSearcher interface {
	Search(ctx context.Context, terms string) ([]CatalogEntry, error)
}

// CatalogRepository provides the site's own catalog for label-scan matching.
type CatalogRepository interface {
	List(ctx context.Context) ([]CatalogEntry, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

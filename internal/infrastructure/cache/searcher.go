package cache

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/cocoamatch/backend/internal/domain"
)

// Package-level compiled regex pattern for performance
var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)

// CachedSearcher wraps a catalog searcher with a TTL cache keyed on the
// normalized search terms. Lookup results are immutable once cached; a
// cache write failure never fails a successful lookup.
type CachedSearcher struct {
	inner domain.CatalogSearcher
	cache domain.CacheRepository
	ttl   time.Duration
}

// NewCachedSearcher creates a caching decorator around the given searcher.
func NewCachedSearcher(inner domain.CatalogSearcher, cache domain.CacheRepository, ttl time.Duration) *CachedSearcher {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedSearcher{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

// Search returns cached candidates when available, otherwise delegates to
// the wrapped searcher and caches its result.
func (s *CachedSearcher) Search(ctx context.Context, terms string) ([]domain.CatalogEntry, error) {
	key := cacheKey(terms)

	if value, err := s.cache.Get(ctx, key); err == nil {
		if entries, ok := value.([]domain.CatalogEntry); ok {
			return entries, nil
		}
	}

	entries, err := s.inner.Search(ctx, terms)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, key, entries, s.ttl)

	return entries, nil
}

// cacheKey normalizes search terms into a stable cache key.
// Format: "lookup:{normalized terms}"
func cacheKey(terms string) string {
	key := strings.ToLower(terms)
	key = nonAlphanumericRegex.ReplaceAllString(key, "")
	key = strings.Join(strings.Fields(key), " ")
	return "lookup:" + key
}

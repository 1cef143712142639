// Package catalog provides the site's own product catalog for label-scan
// matching. Persistence lives elsewhere; this repository serves an
// immutable snapshot loaded at startup.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cocoamatch/backend/internal/domain"
)

// MemoryCatalog is an immutable in-memory catalog snapshot. Safe for
// concurrent use: entries are copied on the way in and on the way out.
type MemoryCatalog struct {
	entries []domain.CatalogEntry
}

// NewMemoryCatalog creates a catalog over a copy of the given entries.
func NewMemoryCatalog(entries []domain.CatalogEntry) *MemoryCatalog {
	snapshot := make([]domain.CatalogEntry, len(entries))
	copy(snapshot, entries)
	return &MemoryCatalog{entries: snapshot}
}

// List returns a copy of the catalog entries.
func (c *MemoryCatalog) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	entries := make([]domain.CatalogEntry, len(c.entries))
	copy(entries, c.entries)
	return entries, nil
}

// Len returns the number of entries in the snapshot.
func (c *MemoryCatalog) Len() int {
	return len(c.entries)
}

// LoadSeedFile reads catalog entries from a JSON file: an array of
// CatalogEntry objects.
func LoadSeedFile(path string) ([]domain.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog seed: %w", err)
	}

	var entries []domain.CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog seed: %w", err)
	}

	for i, entry := range entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("catalog seed: entry %d has no id", i)
		}
	}

	return entries, nil
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cocoamatch/backend/internal/domain"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		c := NewMemoryCache(time.Hour)

		if err := c.Set(ctx, "key", "value", time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}

		value, err := c.Get(ctx, "key")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if value != "value" {
			t.Errorf("value = %v, want value", value)
		}
	})

	t.Run("miss for unknown key", func(t *testing.T) {
		c := NewMemoryCache(time.Hour)

		_, err := c.Get(ctx, "missing")
		if !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("miss after expiration", func(t *testing.T) {
		c := NewMemoryCache(time.Hour)

		if err := c.Set(ctx, "key", "value", -time.Second); err != nil {
			t.Fatalf("Set: %v", err)
		}

		_, err := c.Get(ctx, "key")
		if !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("delete removes key", func(t *testing.T) {
		c := NewMemoryCache(time.Hour)

		_ = c.Set(ctx, "key", "value", time.Minute)
		if err := c.Delete(ctx, "key"); err != nil {
			t.Fatalf("Delete: %v", err)
		}

		_, err := c.Get(ctx, "key")
		if !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("error = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("exists reflects expiration", func(t *testing.T) {
		c := NewMemoryCache(time.Hour)

		_ = c.Set(ctx, "live", "v", time.Minute)
		_ = c.Set(ctx, "dead", "v", -time.Second)

		if ok, _ := c.Exists(ctx, "live"); !ok {
			t.Error("Exists(live) = false, want true")
		}
		if ok, _ := c.Exists(ctx, "dead"); ok {
			t.Error("Exists(dead) = true, want false")
		}
		if ok, _ := c.Exists(ctx, "missing"); ok {
			t.Error("Exists(missing) = true, want false")
		}
	})

	t.Run("size counts entries", func(t *testing.T) {
		c := NewMemoryCache(time.Hour)

		_ = c.Set(ctx, "a", 1, time.Minute)
		_ = c.Set(ctx, "b", 2, time.Minute)

		if size := c.Size(); size != 2 {
			t.Errorf("Size = %d, want 2", size)
		}
	})
}

func TestCachedSearcher(t *testing.T) {
	ctx := context.Background()

	entries := []domain.CatalogEntry{
		{ID: "c1", Brand: "Valrhona", Name: "Guanaja 70%"},
	}

	t.Run("caches successful lookups", func(t *testing.T) {
		calls := 0
		inner := searcherFunc(func(ctx context.Context, terms string) ([]domain.CatalogEntry, error) {
			calls++
			return entries, nil
		})
		s := NewCachedSearcher(inner, NewMemoryCache(time.Hour), time.Minute)

		for i := 0; i < 3; i++ {
			got, err := s.Search(ctx, "Valrhona Guanaja")
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(got) != 1 || got[0].ID != "c1" {
				t.Fatalf("entries = %+v, want c1", got)
			}
		}
		if calls != 1 {
			t.Errorf("inner calls = %d, want 1", calls)
		}
	})

	t.Run("equivalent terms share a cache entry", func(t *testing.T) {
		calls := 0
		inner := searcherFunc(func(ctx context.Context, terms string) ([]domain.CatalogEntry, error) {
			calls++
			return entries, nil
		})
		s := NewCachedSearcher(inner, NewMemoryCache(time.Hour), time.Minute)

		_, _ = s.Search(ctx, "Valrhona Guanaja")
		_, _ = s.Search(ctx, "valrhona   guanaja!")

		if calls != 1 {
			t.Errorf("inner calls = %d, want 1", calls)
		}
	})

	t.Run("does not cache failures", func(t *testing.T) {
		calls := 0
		lookupErr := errors.New("boom")
		inner := searcherFunc(func(ctx context.Context, terms string) ([]domain.CatalogEntry, error) {
			calls++
			return nil, lookupErr
		})
		s := NewCachedSearcher(inner, NewMemoryCache(time.Hour), time.Minute)

		for i := 0; i < 2; i++ {
			if _, err := s.Search(ctx, "anything"); !errors.Is(err, lookupErr) {
				t.Fatalf("error = %v, want %v", err, lookupErr)
			}
		}
		if calls != 2 {
			t.Errorf("inner calls = %d, want 2", calls)
		}
	})
}

// searcherFunc adapts a function to domain.CatalogSearcher.
type searcherFunc func(ctx context.Context, terms string) ([]domain.CatalogEntry, error)

func (f searcherFunc) Search(ctx context.Context, terms string) ([]domain.CatalogEntry, error) {
	return f(ctx, terms)
}

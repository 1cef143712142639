package match

import (
	"reflect"
	"strings"
	"testing"

	"github.com/cocoamatch/backend/internal/domain"
)

func newTestRanker(t *testing.T) *Ranker {
	t.Helper()
	return NewRanker(newTestScorer(t))
}

func TestRank(t *testing.T) {
	ranker := newTestRanker(t)

	t.Run("ranks label scan above weaker candidate", func(t *testing.T) {
		q := NormalizedQuery{
			Tokens:   []string{"valrhona", "guanaja", "70"},
			Percents: map[int]struct{}{70: {}},
		}
		candidates := []domain.CatalogEntry{
			{ID: "c1", Brand: "Valrhona", Name: "Guanaja 70%", CacaoPct: intPtr(70)},
			{ID: "c2", Brand: "Lindt", Name: "Excellence 70%", CacaoPct: intPtr(70)},
		}

		results := ranker.Rank(q, candidates, 5)
		if len(results) != 2 {
			t.Fatalf("len(results) = %d, want 2", len(results))
		}
		if results[0].CandidateID != "c1" || results[1].CandidateID != "c2" {
			t.Fatalf("order = [%s %s], want [c1 c2]", results[0].CandidateID, results[1].CandidateID)
		}
		if results[0].Score <= results[1].Score {
			t.Errorf("c1 score %v not strictly above c2 score %v", results[0].Score, results[1].Score)
		}

		joined := strings.Join(results[0].Reasons, "; ")
		for _, keyword := range []string{"brand", "name", "cacao"} {
			if !strings.Contains(joined, keyword) {
				t.Errorf("c1 reasons %v missing %q hit", results[0].Reasons, keyword)
			}
		}
	})

	t.Run("floor excludes zero-factor candidates even with large topN", func(t *testing.T) {
		q := Normalize("valrhona guanaja")
		candidates := []domain.CatalogEntry{
			{ID: "c1", Brand: "Valrhona", Name: "Guanaja"},
			{ID: "c2", Brand: "Amedei", Name: "Porcelana"},
		}

		results := ranker.Rank(q, candidates, 1000)
		if len(results) != 1 {
			t.Fatalf("len(results) = %d, want 1", len(results))
		}
		if results[0].CandidateID != "c1" {
			t.Errorf("CandidateID = %s, want c1", results[0].CandidateID)
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		q := Normalize("madagascar noir")
		// Identical candidates except for ID score the same.
		candidates := []domain.CatalogEntry{
			{ID: "first", Origins: []string{"Madagascar"}, Categories: []string{"dark"}},
			{ID: "second", Origins: []string{"Madagascar"}, Categories: []string{"dark"}},
		}

		results := ranker.Rank(q, candidates, 5)
		if len(results) != 2 {
			t.Fatalf("len(results) = %d, want 2", len(results))
		}
		if results[0].Score != results[1].Score {
			t.Fatalf("scores differ (%v vs %v), fixture broken", results[0].Score, results[1].Score)
		}
		if results[0].CandidateID != "first" || results[1].CandidateID != "second" {
			t.Errorf("order = [%s %s], want input order", results[0].CandidateID, results[1].CandidateID)
		}
	})

	t.Run("truncates to topN", func(t *testing.T) {
		q := Normalize("madagascar beans")
		candidates := make([]domain.CatalogEntry, 6)
		for i := range candidates {
			candidates[i] = domain.CatalogEntry{
				ID:      string(rune('a' + i)),
				Origins: []string{"Madagascar"},
			}
		}

		results := ranker.Rank(q, candidates, 4)
		if len(results) != 4 {
			t.Errorf("len(results) = %d, want 4", len(results))
		}
	})

	t.Run("empty query against non-empty catalog returns empty", func(t *testing.T) {
		q := Normalize("")
		candidates := []domain.CatalogEntry{
			{ID: "c1", Brand: "Valrhona", Name: "Guanaja 70%", CacaoPct: intPtr(70)},
		}

		results := ranker.Rank(q, candidates, 5)
		if len(results) != 0 {
			t.Errorf("len(results) = %d, want 0", len(results))
		}
	})

	t.Run("no candidates clearing the floor yields empty, not error", func(t *testing.T) {
		q := Normalize("completely unrelated text")
		candidates := []domain.CatalogEntry{
			{ID: "c1", Brand: "Valrhona", Name: "Guanaja 70%"},
		}

		if results := ranker.Rank(q, candidates, 5); len(results) != 0 {
			t.Errorf("len(results) = %d, want 0", len(results))
		}
	})

	t.Run("non-positive topN yields empty", func(t *testing.T) {
		q := Normalize("valrhona")
		candidates := []domain.CatalogEntry{{ID: "c1", Brand: "Valrhona"}}

		if results := ranker.Rank(q, candidates, 0); len(results) != 0 {
			t.Errorf("len(results) = %d, want 0", len(results))
		}
	})
}

func TestRankConfidence(t *testing.T) {
	ranker := newTestRanker(t)

	t.Run("confidence is clamped below certainty", func(t *testing.T) {
		q := Normalize("valrhona guanaja grand cru 70% madagascar noir")
		candidates := []domain.CatalogEntry{{
			ID:         "c1",
			Brand:      "Valrhona",
			Name:       "Guanaja Grand Cru 70%",
			CacaoPct:   intPtr(70),
			Origins:    []string{"Madagascar"},
			Categories: []string{"dark"},
		}}

		results := ranker.Rank(q, candidates, 1)
		if len(results) != 1 {
			t.Fatalf("len(results) = %d, want 1", len(results))
		}
		if results[0].Confidence > maxConfidence {
			t.Errorf("Confidence = %v, want <= %v", results[0].Confidence, maxConfidence)
		}
		if results[0].Confidence >= 1.0 {
			t.Errorf("Confidence = %v, want < 1.0", results[0].Confidence)
		}
	})

	t.Run("buckets follow normalized cutoffs", func(t *testing.T) {
		tests := []struct {
			confidence float64
			want       Bucket
		}{
			{0.90, BucketHigh},
			{0.66, BucketHigh},
			{0.50, BucketMedium},
			{0.33, BucketMedium},
			{0.10, BucketLow},
		}
		for _, tt := range tests {
			if got := bucketFor(tt.confidence); got != tt.want {
				t.Errorf("bucketFor(%v) = %s, want %s", tt.confidence, got, tt.want)
			}
		}
	})
}

func TestRankDeterminism(t *testing.T) {
	ranker := newTestRanker(t)

	raw := "Va1rhona Guanaja 70% cacao, Madagascar noir grand cru"
	candidates := []domain.CatalogEntry{
		{ID: "c1", Brand: "Valrhona", Name: "Guanaja 70%", CacaoPct: intPtr(70), Categories: []string{"dark"}},
		{ID: "c2", Brand: "Lindt", Name: "Excellence 70%", CacaoPct: intPtr(70)},
		{ID: "c3", Brand: "Amedei", Name: "Chuao", Origins: []string{"Venezuela"}},
	}

	a := ranker.Rank(Normalize(raw), candidates, 5)
	b := ranker.Rank(Normalize(raw), candidates, 5)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("Rank not deterministic:\n%+v\n%+v", a, b)
	}
}

package match

import (
	"sort"

	"github.com/cocoamatch/backend/internal/domain"
)

// Ranking constants.
const (
	// minRelevanceFloor is the score at or below which a candidate is
	// considered noise and excluded from results entirely.
	minRelevanceFloor = 10.0

	// typicalMaxScore is the assumed typical maximum achievable score,
	// used to normalize raw scores into a confidence value.
	typicalMaxScore = 250.0

	// maxConfidence caps displayed confidence: a match is never reported
	// as absolutely certain.
	maxConfidence = 0.95

	highConfidenceCutoff   = 0.66
	mediumConfidenceCutoff = 0.33
)

// Bucket is a coarse classification of how trustworthy a match is.
type Bucket string

// Confidence buckets. BucketNone only describes the absence of any result:
// the relevance floor guarantees a zero-score match is never emitted.
const (
	BucketHigh   Bucket = "high"
	BucketMedium Bucket = "medium"
	BucketLow    Bucket = "low"
	BucketNone   Bucket = "none"
)

// Result is the engine's output for one (query, candidate) pair.
type Result struct {
	CandidateID string   `json:"candidateId"`
	Score       float64  `json:"score"`
	Confidence  float64  `json:"confidence"`
	Bucket      Bucket   `json:"bucket"`
	Reasons     []string `json:"reasons,omitempty"`
}

// Ranker applies the scorer across an entire candidate set, sorts,
// tie-breaks, truncates, and assigns confidence buckets.
type Ranker struct {
	scorer *Scorer
}

// NewRanker creates a ranker backed by the given scorer.
func NewRanker(scorer *Scorer) *Ranker {
	return &Ranker{scorer: scorer}
}

// Rank scores every candidate against the query, drops candidates at or
// below the relevance floor, sorts by score descending, and truncates to
// topN. Ties keep input order: the candidate appearing first in the input
// wins, so output is deterministic for a fixed input sequence. Returns an
// empty slice, not an error, when no candidate clears the floor.
func (r *Ranker) Rank(q NormalizedQuery, candidates []domain.CatalogEntry, topN int) []Result {
	if topN <= 0 {
		return nil
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		score, reasons := r.scorer.Score(q, c)
		if score <= minRelevanceFloor {
			continue
		}
		results = append(results, Result{
			CandidateID: c.ID,
			Score:       score,
			Reasons:     reasons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topN {
		results = results[:topN]
	}

	for i := range results {
		confidence := results[i].Score / typicalMaxScore
		if confidence > maxConfidence {
			confidence = maxConfidence
		}
		results[i].Confidence = confidence
		results[i].Bucket = bucketFor(confidence)
	}

	return results
}

func bucketFor(confidence float64) Bucket {
	switch {
	case confidence >= highConfidenceCutoff:
		return BucketHigh
	case confidence >= mediumConfidenceCutoff:
		return BucketMedium
	default:
		return BucketLow
	}
}

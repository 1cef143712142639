package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cocoamatch/backend/internal/domain"
	"github.com/cocoamatch/backend/internal/match"
)

// ReviewBucket classifies a reconciled item by what should happen next.
type ReviewBucket string

// Outcome buckets for reconciled items.
const (
	BucketAutoAccept   ReviewBucket = "auto_accept"   // high confidence, auto-accept candidate
	BucketQuickReview  ReviewBucket = "quick_review"  // medium confidence, needs a quick look
	BucketManualReview ReviewBucket = "manual_review" // low confidence, needs manual review
	BucketNoMatch      ReviewBucket = "no_match"      // nothing cleared the relevance floor
)

// ReviewItem is one reconciled source record with its ranked matches.
type ReviewItem struct {
	SourceID   string         `json:"sourceId"`
	TopMatch   match.Result   `json:"topMatch"`
	AllMatches []match.Result `json:"allMatches,omitempty"`
}

// LookupFailure records a source record whose external lookup failed.
type LookupFailure struct {
	SourceID string `json:"sourceId"`
	Reason   string `json:"reason"`
}

// ReconciliationBatch is the resumable state of a reconciliation run. The
// cursor is the index of the next unprocessed source record and never
// decreases; results and failures are append-only in discovery order.
type ReconciliationBatch struct {
	Cursor   int                           `json:"cursor"`
	Results  map[ReviewBucket][]ReviewItem `json:"results"`
	Failures []LookupFailure               `json:"failures"`
}

// NewReconciliationBatch creates an empty batch at cursor 0.
func NewReconciliationBatch() *ReconciliationBatch {
	return &ReconciliationBatch{
		Results: make(map[ReviewBucket][]ReviewItem),
	}
}

// ReconcileConfig holds configuration for the reconciliation pipeline
type ReconcileConfig struct {
	TopN                 int
	AutoAcceptThreshold  float64
	QuickReviewThreshold float64
	LookupTimeout        time.Duration
}

// ReconcileService drives the ranker across a list of source records
// against the external catalog collaborator, in resumable batches. One
// item's lookup failure never aborts the batch; failures are reported as
// data. The service performs no retries of its own.
type ReconcileService struct {
	searcher             domain.CatalogSearcher
	ranker               *match.Ranker
	topN                 int
	autoAcceptThreshold  float64
	quickReviewThreshold float64
	lookupTimeout        time.Duration
	log                  *zap.Logger
}

// NewReconcileService creates a reconciliation service with dependencies
func NewReconcileService(searcher domain.CatalogSearcher, ranker *match.Ranker, config ReconcileConfig, log *zap.Logger) *ReconcileService {
	topN := config.TopN
	if topN <= 0 {
		topN = 4
	}
	autoAccept := config.AutoAcceptThreshold
	if autoAccept <= 0 {
		autoAccept = 120
	}
	quickReview := config.QuickReviewThreshold
	if quickReview <= 0 {
		quickReview = 60
	}
	lookupTimeout := config.LookupTimeout
	if lookupTimeout <= 0 {
		lookupTimeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &ReconcileService{
		searcher:             searcher,
		ranker:               ranker,
		topN:                 topN,
		autoAcceptThreshold:  autoAccept,
		quickReviewThreshold: quickReview,
		lookupTimeout:        lookupTimeout,
		log:                  log,
	}
}

// Reconcile processes up to batchSize records starting at batch.Cursor,
// in source order. A nil batch starts a fresh run at cursor 0; passing a
// prior batch resumes it, so consecutive sub-batches cover every record
// exactly once. batchSize <= 0 processes all remaining records. On
// cancellation the cursor is left at the next unprocessed record.
func (s *ReconcileService) Reconcile(
	ctx context.Context,
	records []domain.SourceRecord,
	batch *ReconciliationBatch,
	batchSize int,
) (*ReconciliationBatch, error) {
	if batch == nil {
		batch = NewReconciliationBatch()
	}
	if batch.Results == nil {
		batch.Results = make(map[ReviewBucket][]ReviewItem)
	}

	end := len(records)
	if batchSize > 0 && batch.Cursor+batchSize < end {
		end = batch.Cursor + batchSize
	}

	for i := batch.Cursor; i < end; i++ {
		select {
		case <-ctx.Done():
			return batch, ctx.Err()
		default:
		}

		s.processRecord(ctx, records[i], batch)
		batch.Cursor = i + 1
	}

	return batch, nil
}

// processRecord runs one source record through lookup, scoring, and
// bucketing, appending the outcome to the batch.
func (s *ReconcileService) processRecord(ctx context.Context, record domain.SourceRecord, batch *ReconciliationBatch) {
	terms := buildSearchTerms(record)
	if terms == "" {
		batch.Failures = append(batch.Failures, LookupFailure{
			SourceID: record.ID,
			Reason:   "record has no searchable fields",
		})
		return
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	candidates, err := s.searcher.Search(lookupCtx, terms)
	cancel()

	if err != nil {
		s.log.Warn("catalog lookup failed",
			zap.String("sourceId", record.ID),
			zap.Error(err))
		batch.Failures = append(batch.Failures, LookupFailure{
			SourceID: record.ID,
			Reason:   err.Error(),
		})
		return
	}
	if len(candidates) == 0 {
		batch.Failures = append(batch.Failures, LookupFailure{
			SourceID: record.ID,
			Reason:   "lookup returned no candidates",
		})
		return
	}

	query := match.Normalize(terms)
	results := s.ranker.Rank(query, candidates, s.topN)
	if len(results) == 0 {
		batch.Results[BucketNoMatch] = append(batch.Results[BucketNoMatch], ReviewItem{
			SourceID: record.ID,
		})
		return
	}

	top := results[0]
	bucket := s.bucketForScore(top.Score)
	batch.Results[bucket] = append(batch.Results[bucket], ReviewItem{
		SourceID:   record.ID,
		TopMatch:   top,
		AllMatches: results,
	})

	s.log.Debug("record reconciled",
		zap.String("sourceId", record.ID),
		zap.String("bucket", string(bucket)),
		zap.Float64("topScore", top.Score))
}

func (s *ReconcileService) bucketForScore(score float64) ReviewBucket {
	switch {
	case score >= s.autoAcceptThreshold:
		return BucketAutoAccept
	case score >= s.quickReviewThreshold:
		return BucketQuickReview
	default:
		return BucketManualReview
	}
}

// buildSearchTerms assembles a lookup query from the record's available
// fields. Absent fields are omitted, never substituted with placeholders.
func buildSearchTerms(record domain.SourceRecord) string {
	var parts []string
	if record.Brand != "" {
		parts = append(parts, record.Brand)
	}
	if record.Name != "" {
		parts = append(parts, record.Name)
	}
	if record.Category != "" {
		parts = append(parts, record.Category)
	}
	if record.CacaoPct != nil {
		parts = append(parts, fmt.Sprintf("%d%%", *record.CacaoPct))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

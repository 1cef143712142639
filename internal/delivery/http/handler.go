package http

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cocoamatch/backend/internal/domain"
	"github.com/cocoamatch/backend/internal/match"
	"github.com/cocoamatch/backend/internal/usecase"
)

// LabelMatcher ranks raw label text against the catalog.
type LabelMatcher interface {
	MatchLabel(ctx context.Context, rawText string, topN int) ([]match.Result, error)
}

// Reconciler reconciles source records against the external catalog.
type Reconciler interface {
	Reconcile(ctx context.Context, records []domain.SourceRecord, batch *usecase.ReconciliationBatch, batchSize int) (*usecase.ReconciliationBatch, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scanner    LabelMatcher
	reconciler Reconciler
	log        *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(scanner LabelMatcher, reconciler Reconciler, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		scanner:    scanner,
		reconciler: reconciler,
		log:        log,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "cocoamatch-backend",
		"version": "1.0.0",
	})
}

type scanMatchRequest struct {
	Text string `json:"text" binding:"required"`
	TopN int    `json:"topN,omitempty"`
}

type scanMatch struct {
	CandidateID   string   `json:"candidateId"`
	Score         float64  `json:"score"`
	ConfidencePct float64  `json:"confidencePct"`
	Bucket        string   `json:"bucket"`
	Reasons       []string `json:"reasons,omitempty"`
}

// ScanMatch ranks scanned label text against the catalog. "No match found"
// is a normal 200 response with an empty match list.
func (h *Handler) ScanMatch(c *gin.Context) {
	if h.scanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scan matching unavailable"})
		return
	}

	var req scanMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	results, err := h.scanner.MatchLabel(c.Request.Context(), req.Text, req.TopN)
	if err != nil {
		h.log.Error("label matching failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "matching failed"})
		return
	}

	matches := make([]scanMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, scanMatch{
			CandidateID:   r.CandidateID,
			Score:         r.Score,
			ConfidencePct: math.Round(r.Confidence * 100),
			Bucket:        string(r.Bucket),
			Reasons:       r.Reasons,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"count":   len(matches),
	})
}

type reconcileRequest struct {
	Records   []domain.SourceRecord `json:"records" binding:"required"`
	BatchSize int                   `json:"batchSize,omitempty"`
}

// Reconcile runs a reconciliation batch over the posted source records and
// returns the confidence-bucketed results for the review queue.
func (h *Handler) Reconcile(c *gin.Context) {
	if h.reconciler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reconciliation unavailable"})
		return
	}

	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records are required"})
		return
	}

	batch, err := h.reconciler.Reconcile(c.Request.Context(), req.Records, nil, req.BatchSize)
	if err != nil {
		// The batch carries everything completed before cancellation.
		h.log.Warn("reconciliation interrupted", zap.Error(err))
	}
	if batch == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, batch)
}

package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cocoamatch/backend/internal/domain"
	"github.com/cocoamatch/backend/internal/match"
)

// ScanConfig holds configuration for the scan service
type ScanConfig struct {
	DefaultTopN int
}

// ScanService ranks raw label text (OCR output) against the site's own
// catalog. "No match found" is a normal outcome inside the interactive
// scanning loop, so an empty result is returned as data, never as an error.
type ScanService struct {
	catalog     domain.CatalogRepository
	ranker      *match.Ranker
	defaultTopN int
	log         *zap.Logger
}

// NewScanService creates a scan service with dependencies
func NewScanService(catalog domain.CatalogRepository, ranker *match.Ranker, config ScanConfig, log *zap.Logger) *ScanService {
	topN := config.DefaultTopN
	if topN <= 0 {
		topN = 5
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &ScanService{
		catalog:     catalog,
		ranker:      ranker,
		defaultTopN: topN,
		log:         log,
	}
}

// MatchLabel normalizes raw label text and returns the ranked matches from
// the catalog. topN <= 0 selects the configured default.
func (s *ScanService) MatchLabel(ctx context.Context, rawText string, topN int) ([]match.Result, error) {
	if topN <= 0 {
		topN = s.defaultTopN
	}

	query := match.Normalize(rawText)
	if len(query.Tokens) == 0 && len(query.Percents) == 0 {
		s.log.Debug("label text normalized to nothing", zap.Int("rawLength", query.RawLength))
		return nil, nil
	}

	entries, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}

	results := s.ranker.Rank(query, entries, topN)
	s.log.Debug("label matched",
		zap.Int("tokens", len(query.Tokens)),
		zap.Int("candidates", len(entries)),
		zap.Int("matches", len(results)))

	return results, nil
}

// Package service holds the scrape use case: classify the URL, run the
// platform's extractor and record the outcome.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mediascraper/internal/assembler"
	"mediascraper/internal/domain"
	"mediascraper/internal/extractor"
	"mediascraper/internal/monitoring"
	"mediascraper/internal/platform"
)

// Extractors resolves the extractor for a platform.
type Extractors interface {
	For(p domain.Platform) (extractor.Extractor, error)
}

// Scraper runs one extraction per call and keeps no state between calls.
type Scraper struct {
	extractors Extractors
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// NewScraper creates the use case. metrics may be nil.
func NewScraper(ex Extractors, m *monitoring.Metrics, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{extractors: ex, metrics: m, logger: logger}
}

// Scrape extracts the media behind rawURL. Caller errors are returned before
// any network I/O.
func (s *Scraper) Scrape(ctx context.Context, rawURL string, mode domain.Mode) (*domain.Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		s.record(domain.Unsupported, domain.ErrURLRequired, 0)
		return nil, domain.ErrURLRequired
	}

	p := platform.Classify(rawURL)
	if p == domain.Unsupported {
		s.record(p, domain.ErrUnsupportedURL, 0)
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedURL, rawURL)
	}

	ex, err := s.extractors.For(p)
	if err != nil {
		s.record(p, err, 0)
		return nil, err
	}

	start := time.Now()
	res, err := ex.Extract(ctx, domain.ExtractionRequest{URL: rawURL, Mode: mode})
	elapsed := time.Since(start)
	s.record(p, err, elapsed)
	if err != nil {
		s.logger.Warn("extraction failed",
			zap.String("platform", p.String()),
			zap.String("url", rawURL),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("extraction completed",
		zap.String("platform", p.String()),
		zap.String("mode", mode.String()),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (s *Scraper) record(p domain.Platform, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveExtraction(p.String(), assembler.Outcome(err), elapsed.Seconds())
}

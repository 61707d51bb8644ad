package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"mediascraper/internal/domain"
	"mediascraper/internal/extractor"
	"mediascraper/internal/monitoring"
)

type stubExtractor struct {
	p     domain.Platform
	res   *domain.Result
	err   error
	calls []domain.ExtractionRequest
}

func (s *stubExtractor) Platform() domain.Platform { return s.p }

func (s *stubExtractor) Extract(_ context.Context, req domain.ExtractionRequest) (*domain.Result, error) {
	s.calls = append(s.calls, req)
	return s.res, s.err
}

type stubRegistry map[domain.Platform]*stubExtractor

func (r stubRegistry) For(p domain.Platform) (extractor.Extractor, error) {
	if ex, ok := r[p]; ok {
		return ex, nil
	}
	return nil, domain.ErrUnsupportedURL
}

func TestScrapeCallerErrorsSkipExtraction(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"empty", "", domain.ErrURLRequired},
		{"blank", "   ", domain.ErrURLRequired},
		{"unsupported", "https://example.com/not-a-platform", domain.ErrUnsupportedURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tiktok := &stubExtractor{p: domain.TikTok}
			s := NewScraper(stubRegistry{domain.TikTok: tiktok}, nil, zaptest.NewLogger(t))

			_, err := s.Scrape(context.Background(), tt.url, domain.Raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(tiktok.calls) != 0 {
				t.Error("extractor was invoked for a caller error")
			}
		})
	}
}

func TestScrapeDispatchesByPlatform(t *testing.T) {
	t.Parallel()
	want := &domain.Result{Platform: domain.Instagram, Mode: domain.Cut}
	insta := &stubExtractor{p: domain.Instagram, res: want}
	tiktok := &stubExtractor{p: domain.TikTok}
	s := NewScraper(stubRegistry{domain.Instagram: insta, domain.TikTok: tiktok}, nil, zaptest.NewLogger(t))

	got, err := s.Scrape(context.Background(), "  https://www.instagram.com/p/abc/  ", domain.Cut)
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if got != want {
		t.Errorf("Scrape() = %+v, want %+v", got, want)
	}
	if len(insta.calls) != 1 || insta.calls[0].URL != "https://www.instagram.com/p/abc/" || insta.calls[0].Mode != domain.Cut {
		t.Errorf("instagram calls = %+v", insta.calls)
	}
	if len(tiktok.calls) != 0 {
		t.Error("tiktok extractor invoked")
	}
}

func TestScrapeRecordsOutcome(t *testing.T) {
	t.Parallel()
	m := monitoring.NewMetrics()
	snap := &stubExtractor{p: domain.Snapchat, err: domain.ErrItemNotFound}
	s := NewScraper(stubRegistry{domain.Snapchat: snap}, m, zaptest.NewLogger(t))

	if _, err := s.Scrape(context.Background(), "https://www.snapchat.com/t/abc", domain.Raw); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("error = %v", err)
	}
	s.Scrape(context.Background(), "https://example.com", domain.Raw)

	if got := testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("snapchat", "not_found")); got != 1 {
		t.Errorf("snapchat not_found = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("unsupported", "caller_error")); got != 1 {
		t.Errorf("unsupported caller_error = %v, want 1", got)
	}
}

package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mediascraper/internal/config"
	"mediascraper/internal/domain"
	"mediascraper/internal/monitoring"
)

// Scraper is the use case the HTTP layer drives.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string, mode domain.Mode) (*domain.Result, error)
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	scraper    Scraper
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, sc Scraper, m *monitoring.Metrics, l *zap.Logger) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Server{
		config:  cfg,
		scraper: sc,
		metrics: m,
		logger:  l,
	}
	s.router = s.setupRouter()
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.config.RequestTimeoutDuration() + 10*time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

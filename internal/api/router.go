package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.RequestTimeoutDuration()))
	if s.metrics != nil {
		r.Use(instrument(s.metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         3600,
	}))

	if s.metrics != nil {
		r.Get("/metrics", s.metrics.Handler().ServeHTTP)
	}
	r.Get("/api/health", s.handleHealthCheck)

	for _, path := range []string{"/api", "/api/"} {
		r.Get(path, s.handleExtract)
		r.Post(path, s.handleExtract)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondWithJSON(w, http.StatusNotFound, map[string]any{"error": true, "message": "Not found", "error_message": r.URL.Path})
	})

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/vytor/enemresultados/internal/metrics"
)

func (s *Server) Routes() http.Handler {
	origins := s.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-User-ID", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/students/{id}", func(r chi.Router) {
		r.Post("/performance", s.handleIngestPerformance)
		r.Post("/activity", s.handleIngestActivity)
		r.Post("/simulados", s.handleIngestSimulados)
		r.Post("/essays", s.handleIngestEssays)
		r.Delete("/records", s.handleDeleteRecords)

		r.Get("/snapshot", s.handleGetSnapshot)
		r.Post("/snapshot", s.handleLoadSnapshot)
		r.Post("/snapshot/reload", s.handleReloadSnapshot)
		r.Get("/history", s.handleHistory)

		r.Route("/charts/{kind}", func(r chi.Router) {
			r.Post("/activate", s.handleActivateChart)
			r.Get("/image", s.handleChartImage)
			r.Post("/pointer", s.handlePointerMove)
			r.Post("/leave", s.handlePointerLeave)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNotFound(r))
	})
	return r
}

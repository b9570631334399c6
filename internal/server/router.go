package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.metricsMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8080", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/sync", s.handleSync)
		v1.Get("/summary", s.handleSummary)

		v1.Get("/incidents", s.handleListIncidents)
		v1.Get("/incidents/{incidentID}", s.handleGetIncident)
		v1.Get("/incidents/{incidentID}/candidates", s.handleGetCandidates)

		v1.Get("/stations", s.handleListStations)
		v1.Get("/officers", s.handleListOfficers)
		v1.Get("/officers/{officerID}", s.handleGetOfficer)

		v1.Get("/dispatch/pending", s.handleListPending)
		v1.Get("/dispatch/highest", s.handleGetHighest)

		v1.Post("/routing/calculate", s.handleCalculateRoute)

		v1.Group(func(w chi.Router) {
			w.Use(s.requireDispatcher)

			w.Post("/incidents", s.handleCreateIncident)
			w.Patch("/officers/{officerID}/status", s.handleUpdateOfficerStatus)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", duration).
			Msg("http request")
	})
}

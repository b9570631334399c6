package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// API groups used as the "api" label. Unmatched paths fall under "other".
const (
	apiIncidents = "incidents"
	apiDispatch  = "dispatch"
	apiUnits     = "units"
	apiRouting   = "routing"
	apiRun       = "run"
	apiSystem    = "system"
	apiOther     = "other"
)

// Outcomes of an incident reported through the API.
const (
	reportAssigned = "assigned"
	reportQueued   = "queued"
	reportFailed   = "failed"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fcr_http_requests_total",
			Help: "HTTP requests served by the control room API, by API group and route pattern.",
		},
		[]string{"api", "route", "method", "status"},
	)

	apiRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fcr_http_request_duration_seconds",
			Help:    "Latency of control room API requests. Reads hold the simulation lock.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"api", "method"},
	)

	apiIncidentReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fcr_api_incident_reports_total",
			Help: "Incidents reported through the API, by priority and whether an officer was assigned on the spot.",
		},
		[]string{"priority", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		apiRequestsTotal,
		apiRequestDurationSeconds,
		apiIncidentReportsTotal,
	)
}

// apiGroup maps a route pattern onto the part of the control room it serves.
func apiGroup(route string) string {
	switch route {
	case "/healthz", "/metrics":
		return apiSystem
	}
	rest, ok := strings.CutPrefix(route, "/v1/")
	if !ok {
		return apiOther
	}
	head, _, _ := strings.Cut(rest, "/")
	switch head {
	case "incidents":
		return apiIncidents
	case "dispatch":
		return apiDispatch
	case "stations", "officers":
		return apiUnits
	case "routing":
		return apiRouting
	case "sync", "summary":
		return apiRun
	}
	return apiOther
}

// metricsMiddleware counts requests per route pattern so incident and
// officer IDs never become label values.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		api := apiGroup(route)

		apiRequestsTotal.WithLabelValues(api, route, r.Method, strconv.Itoa(ww.Status())).Inc()
		apiRequestDurationSeconds.WithLabelValues(api, r.Method).Observe(time.Since(start).Seconds())
	})
}

func observeIncidentReport(priority, outcome string) {
	apiIncidentReportsTotal.WithLabelValues(priority, outcome).Inc()
}

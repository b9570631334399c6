// Package metrics exports dispatcher activity to Prometheus.
package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"police/fcr/internal/dispatch"
)

// Observer implements dispatch.Observer by updating Prometheus collectors.
type Observer struct {
	reported        *prometheus.CounterVec
	assigned        *prometheus.CounterVec
	failures        *prometheus.CounterVec
	resolved        *prometheus.CounterVec
	open            *prometheus.GaugeVec
	travelSeconds   *prometheus.HistogramVec
	responseSeconds *prometheus.HistogramVec
	onSceneSeconds  *prometheus.HistogramVec
	resolvedSeconds *prometheus.HistogramVec
}

var _ dispatch.Observer = (*Observer)(nil)

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Observer {
	o := &Observer{
		reported: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcr_incidents_reported_total",
				Help: "Incidents reported to the force control room.",
			},
			[]string{"priority", "crime_type"},
		),
		assigned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcr_incidents_assigned_total",
				Help: "Incidents assigned to an officer, by dispatching station.",
			},
			[]string{"priority", "station"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcr_assignment_failures_total",
				Help: "Assignment attempts that left the incident queued.",
			},
			[]string{"priority", "reason"},
		),
		open: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fcr_incidents_open",
				Help: "Incidents currently in each non-terminal status.",
			},
			[]string{"status"},
		),
		travelSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fcr_incident_travel_duration_seconds",
				Help:    "Time from assignment to arrival at scene.",
				Buckets: []float64{60, 120, 180, 300, 600, 900, 1200, 1800, 2700, 3600},
			},
			[]string{"priority"},
		),
		responseSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fcr_incident_response_duration_seconds",
				Help:    "Time from report to arrival at scene.",
				Buckets: []float64{60, 300, 600, 900, 1200, 1800, 2700, 3600, 7200, 14400},
			},
			[]string{"priority"},
		),
		onSceneSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fcr_incident_on_scene_duration_seconds",
				Help:    "Time from arrival to resolution.",
				Buckets: []float64{120, 300, 600, 900, 1200, 1800, 2700, 3600, 5400, 7200},
			},
			[]string{"priority"},
		),
		resolvedSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fcr_incident_resolution_duration_seconds",
				Help:    "Time from report to resolution.",
				Buckets: []float64{300, 600, 1200, 1800, 2700, 3600, 5400, 7200, 10800, 14400, 28800, 43200},
			},
			[]string{"priority"},
		),
		resolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fcr_incidents_resolved_total",
				Help: "Incidents resolved, by crime type.",
			},
			[]string{"crime_type"},
		),
	}
	reg.MustRegister(
		o.reported,
		o.assigned,
		o.failures,
		o.open,
		o.travelSeconds,
		o.responseSeconds,
		o.onSceneSeconds,
		o.resolvedSeconds,
		o.resolved,
	)
	return o
}

func (o *Observer) IncidentReported(inc *dispatch.Incident) {
	o.reported.WithLabelValues(inc.Priority().String(), inc.CrimeType()).Inc()
	o.open.WithLabelValues(dispatch.StatusReported.String()).Inc()
}

func (o *Observer) IncidentAssigned(inc *dispatch.Incident) {
	station := ""
	if s := inc.Station(); s != nil {
		station = strconv.Itoa(s.ID())
	}
	o.assigned.WithLabelValues(inc.Priority().String(), station).Inc()
	o.open.WithLabelValues(dispatch.StatusReported.String()).Dec()
	o.open.WithLabelValues(dispatch.StatusEnRoute.String()).Inc()
}

func (o *Observer) IncidentArrived(inc *dispatch.Incident) {
	p := inc.Priority().String()
	o.open.WithLabelValues(dispatch.StatusEnRoute.String()).Dec()
	o.open.WithLabelValues(dispatch.StatusAttended.String()).Inc()

	if d := inc.ArrivedAt().Sub(inc.AssignedAt()); d > 0 {
		o.travelSeconds.WithLabelValues(p).Observe(d.Seconds())
	}
	if d := inc.ResponseTime(); d > 0 {
		o.responseSeconds.WithLabelValues(p).Observe(d.Seconds())
	}
}

func (o *Observer) IncidentResolved(inc *dispatch.Incident) {
	p := inc.Priority().String()
	o.open.WithLabelValues(dispatch.StatusAttended.String()).Dec()
	o.resolved.WithLabelValues(inc.CrimeType()).Inc()

	if d := inc.ResolvedAt().Sub(inc.ArrivedAt()); d > 0 {
		o.onSceneSeconds.WithLabelValues(p).Observe(d.Seconds())
	}
	if d := inc.ResolvedAt().Sub(inc.ReportTime()); d > 0 {
		o.resolvedSeconds.WithLabelValues(p).Observe(d.Seconds())
	}
}

func (o *Observer) AssignmentFailed(inc *dispatch.Incident, reason error) {
	o.failures.WithLabelValues(inc.Priority().String(), failureReason(reason)).Inc()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, dispatch.ErrNoResponsibleStation):
		return "no_responsible_station"
	case errors.Is(err, dispatch.ErrNoOfficerAvailable):
		return "no_officer_available"
	default:
		return "other"
	}
}

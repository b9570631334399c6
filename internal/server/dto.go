package server

import (
	"time"

	"github.com/google/uuid"

	"police/fcr/internal/dispatch"
)

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type IncidentResponse struct {
	ID              int        `json:"id"`
	ISR             string     `json:"isr"`
	Priority        string     `json:"priority"`
	CrimeType       string     `json:"crime_type,omitempty"`
	Status          string     `json:"status"`
	Location        GeoPoint   `json:"location"`
	ReportedAt      time.Time  `json:"reported_at"`
	StationID       *int       `json:"station_id,omitempty"`
	StationName     string     `json:"station_name,omitempty"`
	OfficerID       *int       `json:"officer_id,omitempty"`
	AssignedAt      *time.Time `json:"assigned_at,omitempty"`
	ArrivedAt       *time.Time `json:"arrived_at,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	TravelMeters    float64    `json:"travel_distance_meters"`
	TravelSeconds   float64    `json:"travel_seconds"`
	ResponseSeconds *float64   `json:"response_seconds,omitempty"`
	Attempts        int        `json:"attempts"`
}

type CreateIncidentRequest struct {
	Priority  string  `json:"priority" validate:"required,priority"`
	CrimeType string  `json:"crime_type" validate:"max=128"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// CreateIncidentResponse carries the incident and, when it could not be
// assigned yet, the reason it is queued.
type CreateIncidentResponse struct {
	Incident IncidentResponse `json:"incident"`
	Queued   string           `json:"queued_reason,omitempty"`
}

type CandidateResponse struct {
	StationID      int     `json:"station_id"`
	StationName    string  `json:"station_name"`
	DistanceMeters float64 `json:"distance_meters"`
	Available      int     `json:"available_officers"`
	Workload       int     `json:"workload"`
	Covering       bool    `json:"covering"`
}

type OfficerResponse struct {
	ID                int       `json:"id"`
	StationID         int       `json:"station_id"`
	Shift             string    `json:"shift"`
	ShiftEnds         time.Time `json:"shift_ends"`
	Status            string    `json:"status"`
	StatusDescription string    `json:"status_description"`
	Location          GeoPoint  `json:"location"`
	OnDuty            bool      `json:"on_duty"`
	Available         bool      `json:"available"`
	IncidentID        *int      `json:"incident_id,omitempty"`
}

type UpdateOfficerStatusRequest struct {
	Status string `json:"status" validate:"required,len=2,status_code"`
}

type StationResponse struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Location     GeoPoint   `json:"location"`
	ResponseArea []GeoPoint `json:"response_area"`
	Officers     int        `json:"officers"`
	Available    int        `json:"available_officers"`
}

type CalculateRouteRequest struct {
	FromLat float64 `json:"from_lat" validate:"latitude"`
	FromLon float64 `json:"from_lon" validate:"longitude"`
	ToLat   float64 `json:"to_lat" validate:"latitude"`
	ToLon   float64 `json:"to_lon" validate:"longitude"`
}

type RouteResponse struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type SyncResponse struct {
	RunID     uuid.UUID          `json:"run_id"`
	Clock     time.Time          `json:"clock"`
	Counts    dispatch.Counts    `json:"counts"`
	Incidents []IncidentResponse `json:"incidents"`
	Officers  []OfficerResponse  `json:"officers"`
}

type HealthResponse struct {
	Status string    `json:"status"`
	Env    string    `json:"env"`
	Uptime string    `json:"uptime"`
	Clock  time.Time `json:"clock"`
	Auth   bool      `json:"auth"`
}

package dispatch

import (
	"time"

	"police/fcr/internal/geo"
)

// PendingISR is the serial reference of an incident not yet registered.
const PendingISR = "PENDING"

// IncidentSpec carries the externally sampled attributes of a new incident.
type IncidentSpec struct {
	Priority   Priority
	CrimeType  string
	Location   geo.Point
	ReportTime time.Time
}

// Incident is a reported call for service. Only the FCR mutates it.
type Incident struct {
	id         int
	priority   Priority
	crimeType  string
	location   geo.Point
	reportTime time.Time
	isr        string

	status  IncidentStatus
	station *Station
	officer *Officer
	// resolvedBy keeps the officer id after the binding is released.
	resolvedBy int

	travelTime     time.Duration
	travelDistance float64
	resolutionTime time.Duration
	onSceneTime    time.Duration
	attempts       int

	assignedAt time.Time
	arrivedAt  time.Time
	resolvedAt time.Time
}

func newIncident(id int, spec IncidentSpec) *Incident {
	return &Incident{
		id:         id,
		priority:   spec.Priority,
		crimeType:  spec.CrimeType,
		location:   spec.Location,
		reportTime: spec.ReportTime,
		isr:        PendingISR,
		status:     StatusReported,
	}
}

func (i *Incident) ID() int { return i.id }
func (i *Incident) Priority() Priority { return i.priority }
func (i *Incident) CrimeType() string { return i.crimeType }
func (i *Incident) Location() geo.Point { return i.location }
func (i *Incident) ReportTime() time.Time { return i.reportTime }
func (i *Incident) ISR() string { return i.isr }
func (i *Incident) Status() IncidentStatus { return i.status }
func (i *Incident) Station() *Station { return i.station }
func (i *Incident) Officer() *Officer { return i.officer }
func (i *Incident) ResolvedBy() int { return i.resolvedBy }
func (i *Incident) TravelTime() time.Duration { return i.travelTime }
func (i *Incident) TravelDistance() float64 { return i.travelDistance }
func (i *Incident) Attempts() int { return i.attempts }
func (i *Incident) AssignedAt() time.Time { return i.assignedAt }
func (i *Incident) ArrivedAt() time.Time { return i.arrivedAt }
func (i *Incident) ResolvedAt() time.Time { return i.resolvedAt }

// ResolutionTime is the remaining on-scene time.
func (i *Incident) ResolutionTime() time.Duration { return i.resolutionTime }

// OnSceneTime is the on-scene time drawn at arrival.
func (i *Incident) OnSceneTime() time.Duration { return i.onSceneTime }

// ResponseTime is the delay between report and arrival, zero until arrival.
func (i *Incident) ResponseTime() time.Duration {
	if i.arrivedAt.IsZero() {
		return 0
	}
	return i.arrivedAt.Sub(i.reportTime)
}

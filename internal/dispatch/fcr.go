// Package dispatch implements the Force Control Room: it owns stations and
// incidents, assigns officers and moves incidents through their lifecycle.
//
// The FCR is not safe for concurrent use. Callers that share it between
// goroutines must serialise every call so that an assignment (station lookup,
// officer pick and binding) stays atomic.
package dispatch

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"police/fcr/internal/geo"
)

// TravelTimer estimates road travel between two points. ok is false when no
// route is known, in which case the pair is not assignable yet.
type TravelTimer interface {
	TravelTime(origin, dest geo.Point) (distanceMeters, durationSeconds float64, ok bool)
}

// ResolutionPolicy draws the on-scene time of an incident when its officer arrives.
type ResolutionPolicy interface {
	ResolutionTime(inc *Incident) time.Duration
}

// DefaultISRPrefix prefixes generated incident serial references.
const DefaultISRPrefix = "HC"

// FCR is the dispatcher.
type FCR struct {
	stations  []*Station
	incidents []*Incident
	byID      map[int]*Incident
	active    []*Incident
	nextID    int

	oracle    TravelTimer
	log       zerolog.Logger
	observer  Observer
	isrPrefix string
	nearby    int
}

// Option configures an FCR.
type Option func(*FCR)

// WithLogger sets the logger used for dispatch decisions.
func WithLogger(log zerolog.Logger) Option {
	return func(f *FCR) { f.log = log.With().Str("component", "fcr").Logger() }
}

// WithObserver registers a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(f *FCR) {
		if o != nil {
			f.observer = o
		}
	}
}

// WithISRPrefix overrides the serial reference prefix.
func WithISRPrefix(prefix string) Option {
	return func(f *FCR) {
		if prefix != "" {
			f.isrPrefix = prefix
		}
	}
}

// WithNearbyStations sets how many non-responsible stations, nearest by
// response-area centroid, are tried after the covering ones. Zero disables
// the fallback.
func WithNearbyStations(n int) Option {
	return func(f *FCR) {
		if n >= 0 {
			f.nearby = n
		}
	}
}

// New builds a dispatcher over a fixed set of stations. oracle must not be nil.
func New(stations []*Station, oracle TravelTimer, opts ...Option) *FCR {
	f := &FCR{
		stations:  slices.Clone(stations),
		byID:      make(map[int]*Incident),
		nextID:    1,
		oracle:    oracle,
		log:       zerolog.Nop(),
		observer:  NopObserver{},
		isrPrefix: DefaultISRPrefix,
		nearby:    2,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Register records a new incident without trying to assign it. The incident
// receives the next serial id and its ISR.
func (f *FCR) Register(spec IncidentSpec) *Incident {
	inc := newIncident(f.nextID, spec)
	f.nextID++
	f.incidents = append(f.incidents, inc)
	f.byID[inc.id] = inc
	f.GenISR(inc)

	f.log.Info().
		Str("isr", inc.isr).
		Int("incident_id", inc.id).
		Str("priority", inc.priority.String()).
		Str("crime_type", inc.crimeType).
		Float64("lon", inc.location.Lon()).
		Float64("lat", inc.location.Lat()).
		Time("reported_at", inc.reportTime).
		Msg("incident reported")
	f.observer.IncidentReported(inc)
	return inc
}

// AddIncident registers an incident and immediately attempts assignment. The
// returned error is one of the recoverable assignment errors; the incident is
// kept either way.
func (f *FCR) AddIncident(spec IncidentSpec, now time.Time) (*Incident, error) {
	inc := f.Register(spec)
	return inc, f.AssignIncident(inc, now)
}

// GenISR returns the incident serial reference, generating it on first use.
func (f *FCR) GenISR(inc *Incident) string {
	if inc.isr != "" && inc.isr != PendingISR {
		return inc.isr
	}
	inc.isr = fmt.Sprintf("%s-%s-%04d", f.isrPrefix, inc.reportTime.Format("20060102"), inc.id)
	return inc.isr
}

// DispatchPending attempts assignment of every REPORTED incident in priority
// order and returns how many were assigned.
func (f *FCR) DispatchPending(now time.Time) int {
	assigned := 0
	for _, inc := range SortByPriorityAndTime(f.Unattended()) {
		err := f.AssignIncident(inc, now)
		switch {
		case err == nil:
			assigned++
		case errors.Is(err, ErrNoResponsibleStation), errors.Is(err, ErrNoOfficerAvailable):
		default:
			f.log.Error().Err(err).Int("incident_id", inc.id).Msg("assignment failed")
		}
	}
	return assigned
}

// Stations returns the stations in setup order.
func (f *FCR) Stations() []*Station {
	return f.stations
}

// Officers returns every officer, grouped by station.
func (f *FCR) Officers() []*Officer {
	var out []*Officer
	for _, s := range f.stations {
		out = append(out, s.officers...)
	}
	return out
}

// Officer looks an officer up by id.
func (f *FCR) Officer(id int) *Officer {
	for _, s := range f.stations {
		for _, o := range s.officers {
			if o.id == id {
				return o
			}
		}
	}
	return nil
}

// Incidents returns the full history in creation order.
func (f *FCR) Incidents() []*Incident {
	return f.incidents
}

// Incident looks an incident up by id.
func (f *FCR) Incident(id int) *Incident {
	return f.byID[id]
}

// Unattended returns REPORTED incidents in creation order.
func (f *FCR) Unattended() []*Incident {
	return f.filter(func(s IncidentStatus) bool { return s == StatusReported })
}

// Unresolved returns REPORTED and EN_ROUTE incidents.
func (f *FCR) Unresolved() []*Incident {
	return f.filter(func(s IncidentStatus) bool { return s == StatusReported || s == StatusEnRoute })
}

// Active returns incidents with a bound officer, in assignment order.
func (f *FCR) Active() []*Incident {
	return slices.Clone(f.active)
}

// HighestPriorityIncident returns the most urgent unresolved incident.
func (f *FCR) HighestPriorityIncident() *Incident {
	return HighestPriority(f.Unresolved())
}

func (f *FCR) filter(keep func(IncidentStatus) bool) []*Incident {
	var out []*Incident
	for _, inc := range f.incidents {
		if keep(inc.status) {
			out = append(out, inc)
		}
	}
	return out
}

// Counts tallies incidents per status.
type Counts struct {
	Reported int `json:"reported"`
	EnRoute  int `json:"en_route"`
	Attended int `json:"attended"`
	Resolved int `json:"resolved"`
}

// Counts returns the per-status totals over the whole history.
func (f *FCR) Counts() Counts {
	var c Counts
	for _, inc := range f.incidents {
		switch inc.status {
		case StatusReported:
			c.Reported++
		case StatusEnRoute:
			c.EnRoute++
		case StatusAttended:
			c.Attended++
		case StatusResolved:
			c.Resolved++
		}
	}
	return c
}

// SortByPriorityAndTime returns a copy ordered by urgency, then report time.
// The sort is stable.
func SortByPriorityAndTime(incidents []*Incident) []*Incident {
	out := slices.Clone(incidents)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.priority.Rank() != b.priority.Rank() {
			return a.priority.Higher(b.priority)
		}
		return a.reportTime.Before(b.reportTime)
	})
	return out
}

// HighestPriority returns the first incident in priority order that is not
// yet attended, or nil.
func HighestPriority(incidents []*Incident) *Incident {
	for _, inc := range SortByPriorityAndTime(incidents) {
		if inc.status != StatusAttended && inc.status != StatusResolved {
			return inc
		}
	}
	return nil
}

// CheckInvariants verifies the officer/incident bindings.
func (f *FCR) CheckInvariants() error {
	for _, inc := range f.incidents {
		if inc.status.Open() {
			if inc.officer == nil {
				return fmt.Errorf("incident %d is %s without officer", inc.id, inc.status)
			}
			if inc.officer.assigned != inc {
				return fmt.Errorf("incident %d: officer %d does not point back", inc.id, inc.officer.id)
			}
			if inc.station == nil {
				return fmt.Errorf("incident %d is %s without station", inc.id, inc.status)
			}
		} else if inc.officer != nil {
			return fmt.Errorf("incident %d is %s but holds officer %d", inc.id, inc.status, inc.officer.id)
		}
	}
	for _, o := range f.Officers() {
		if o.assigned == nil {
			continue
		}
		if o.assigned.officer != o {
			return fmt.Errorf("officer %d: incident %d does not point back", o.id, o.assigned.id)
		}
		if !o.assigned.status.Open() {
			return fmt.Errorf("officer %d bound to %s incident %d", o.id, o.assigned.status, o.assigned.id)
		}
	}
	return nil
}

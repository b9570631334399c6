package dispatch

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"police/fcr/internal/geo"
)

// ResponsibleStation returns the first station, in setup order, whose
// response area contains p.
func (f *FCR) ResponsibleStation(p geo.Point) *Station {
	for _, s := range f.stations {
		if s.Covers(p) {
			return s
		}
	}
	return nil
}

// StationCandidate is a ranked station for one incident.
type StationCandidate struct {
	Station   *Station
	Distance  float64
	Available int
	Workload  int
	Covering  bool
}

// StationPriority ranks the stations that may serve inc at now. Stations
// whose response area contains the incident come first, ordered by distance
// to the incident, then most available officers, then lightest workload.
// They are followed by the nearest non-covering stations by response-area
// centroid.
func (f *FCR) StationPriority(inc *Incident, now time.Time) []StationCandidate {
	workload := make(map[*Station]int, len(f.stations))
	for _, a := range f.active {
		if a.station != nil {
			workload[a.station]++
		}
	}

	var covering, others []StationCandidate
	for _, s := range f.stations {
		c := StationCandidate{
			Station:   s,
			Available: len(s.AvailableOfficers(now)),
			Workload:  workload[s],
		}
		if s.Covers(inc.location) {
			c.Covering = true
			c.Distance = geo.Distance(s.location, inc.location)
			covering = append(covering, c)
			continue
		}
		c.Distance = geo.Distance(s.Centroid(), inc.location)
		others = append(others, c)
	}

	sort.SliceStable(covering, func(i, j int) bool {
		a, b := covering[i], covering[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Available != b.Available {
			return a.Available > b.Available
		}
		return a.Workload < b.Workload
	})
	sort.SliceStable(others, func(i, j int) bool { return others[i].Distance < others[j].Distance })
	if len(others) > f.nearby {
		others = others[:f.nearby]
	}
	return append(covering, others...)
}

// AssignIncident binds one available officer to a REPORTED incident. It is a
// no-op for incidents that already left REPORTED.
func (f *FCR) AssignIncident(inc *Incident, now time.Time) error {
	if inc.status != StatusReported {
		return nil
	}
	inc.attempts++
	log := f.log.With().Str("isr", inc.isr).Int("incident_id", inc.id).Logger()

	responsible := f.ResponsibleStation(inc.location)
	if responsible == nil {
		f.logFailure(log, inc).
			Float64("lon", inc.location.Lon()).
			Float64("lat", inc.location.Lat()).
			Msg("no responsible station for incident location")
		f.observer.AssignmentFailed(inc, ErrNoResponsibleStation)
		return fmt.Errorf("incident %d: %w", inc.id, ErrNoResponsibleStation)
	}

	for _, c := range f.StationPriority(inc, now) {
		if c.Available == 0 {
			continue
		}
		officer, distance, duration, ok := f.pickOfficer(log, c.Station, inc, now)
		if !ok {
			continue
		}
		f.bind(inc, c.Station, officer, distance, duration, now)
		log.Info().
			Int("station_id", c.Station.id).
			Int("responsible_station_id", responsible.id).
			Bool("fallback", !c.Covering).
			Int("officer_id", officer.id).
			Dur("travel_time", inc.travelTime).
			Float64("travel_distance_m", distance).
			Msg("officer assigned")
		return nil
	}

	f.logFailure(log, inc).
		Int("responsible_station_id", responsible.id).
		Msg("no officer available")
	f.observer.AssignmentFailed(inc, ErrNoOfficerAvailable)
	return fmt.Errorf("incident %d: %w", inc.id, ErrNoOfficerAvailable)
}

// logFailure warns on the first failed attempt and drops to debug for the
// per-tick retries that follow.
func (f *FCR) logFailure(log zerolog.Logger, inc *Incident) *zerolog.Event {
	if inc.attempts > 1 {
		return log.Debug().Int("attempts", inc.attempts)
	}
	return log.Warn()
}

// pickOfficer returns the nearest available officer at s whose travel time to
// inc is known.
func (f *FCR) pickOfficer(log zerolog.Logger, s *Station, inc *Incident, now time.Time) (*Officer, float64, float64, bool) {
	candidates := s.AvailableOfficers(now)
	sort.SliceStable(candidates, func(i, j int) bool {
		return geo.Distance(candidates[i].location, inc.location) < geo.Distance(candidates[j].location, inc.location)
	})
	for _, o := range candidates {
		distance, duration, ok := f.oracle.TravelTime(o.location, inc.location)
		if !ok {
			log.Debug().Int("officer_id", o.id).Int("station_id", s.id).Msg("travel time unknown, skipping officer")
			continue
		}
		return o, distance, duration, true
	}
	return nil, 0, 0, false
}

// bind is the single place where an incident and an officer become linked.
func (f *FCR) bind(inc *Incident, s *Station, o *Officer, distance, durationSeconds float64, now time.Time) {
	inc.status = StatusEnRoute
	inc.station = s
	inc.officer = o
	inc.travelDistance = distance
	inc.travelTime = time.Duration(durationSeconds * float64(time.Second))
	inc.assignedAt = now

	o.assigned = inc
	o.status = OfficerAttendingIncident

	f.active = append(f.active, inc)
	f.observer.IncidentAssigned(inc)
}

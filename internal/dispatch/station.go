package dispatch

import (
	"time"

	"police/fcr/internal/geo"
)

// Station owns a roster of officers and a primary response area.
type Station struct {
	id       int
	name     string
	location geo.Point
	area     geo.Area
	officers []*Officer
}

// NewStation creates a station with an empty roster.
func NewStation(id int, name string, location geo.Point, area geo.Area) *Station {
	return &Station{id: id, name: name, location: location, area: area}
}

func (s *Station) ID() int { return s.id }
func (s *Station) Name() string { return s.name }
func (s *Station) Location() geo.Point { return s.location }
func (s *Station) ResponseArea() geo.Area { return s.area }
func (s *Station) Officers() []*Officer { return s.officers }

// Covers reports whether p lies in the station's response area.
func (s *Station) Covers(p geo.Point) bool {
	return s.area.Contains(p)
}

// Centroid is the centroid of the response area.
func (s *Station) Centroid() geo.Point {
	return s.area.Centroid()
}

// AddOfficer puts a new officer on the roster. setup is the simulation clock
// at which the shift is assigned and fixes the officer's end-of-shift instant.
func (s *Station) AddOfficer(id int, shift ShiftType, setup time.Time) *Officer {
	o := &Officer{
		id:       id,
		station:  s,
		shift:    Shift{Type: shift},
		status:   OfficerAvailableAtStation,
		location: s.location,
	}
	o.shiftEnds = o.shift.EndAfter(setup)
	s.officers = append(s.officers, o)
	return o
}

// AvailableOfficers returns officers that can take an incident at now, in
// roster order.
func (s *Station) AvailableOfficers(now time.Time) []*Officer {
	var out []*Officer
	for _, o := range s.officers {
		if o.Available(now) {
			out = append(out, o)
		}
	}
	return out
}

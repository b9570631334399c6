package server

import (
	"time"

	"police/fcr/internal/dispatch"
	"police/fcr/internal/geo"
)

func toGeoPoint(p geo.Point) GeoPoint {
	return GeoPoint{Latitude: p.Lat(), Longitude: p.Lon()}
}

func mapIncident(inc *dispatch.Incident) IncidentResponse {
	resp := IncidentResponse{
		ID:            inc.ID(),
		ISR:           inc.ISR(),
		Priority:      inc.Priority().String(),
		CrimeType:     inc.CrimeType(),
		Status:        inc.Status().String(),
		Location:      toGeoPoint(inc.Location()),
		ReportedAt:    inc.ReportTime(),
		AssignedAt:    optionalTime(inc.AssignedAt()),
		ArrivedAt:     optionalTime(inc.ArrivedAt()),
		ResolvedAt:    optionalTime(inc.ResolvedAt()),
		TravelMeters:  inc.TravelDistance(),
		TravelSeconds: inc.TravelTime().Seconds(),
		Attempts:      inc.Attempts(),
	}
	if st := inc.Station(); st != nil {
		id := st.ID()
		resp.StationID = &id
		resp.StationName = st.Name()
	}
	switch {
	case inc.Officer() != nil:
		id := inc.Officer().ID()
		resp.OfficerID = &id
	case inc.ResolvedBy() != 0:
		id := inc.ResolvedBy()
		resp.OfficerID = &id
	}
	if rt := inc.ResponseTime(); rt > 0 {
		secs := rt.Seconds()
		resp.ResponseSeconds = &secs
	}
	return resp
}

func mapIncidents(incidents []*dispatch.Incident) []IncidentResponse {
	resp := make([]IncidentResponse, 0, len(incidents))
	for _, inc := range incidents {
		resp = append(resp, mapIncident(inc))
	}
	return resp
}

func mapOfficer(o *dispatch.Officer, now time.Time) OfficerResponse {
	resp := OfficerResponse{
		ID:                o.ID(),
		StationID:         o.Station().ID(),
		Shift:             string(o.Shift().Type),
		ShiftEnds:         o.ShiftEnds(),
		Status:            o.Status().Code(),
		StatusDescription: o.Status().Description(),
		Location:          toGeoPoint(o.Location()),
		OnDuty:            o.OnDuty(now),
		Available:         o.Available(now),
	}
	if inc := o.AssignedIncident(); inc != nil {
		id := inc.ID()
		resp.IncidentID = &id
	}
	return resp
}

func mapStation(st *dispatch.Station, now time.Time) StationResponse {
	ring := st.ResponseArea().Outer()
	area := make([]GeoPoint, 0, len(ring))
	for _, p := range ring {
		area = append(area, toGeoPoint(p))
	}
	return StationResponse{
		ID:           st.ID(),
		Name:         st.Name(),
		Location:     toGeoPoint(st.Location()),
		ResponseArea: area,
		Officers:     len(st.Officers()),
		Available:    len(st.AvailableOfficers(now)),
	}
}

func mapCandidates(cands []dispatch.StationCandidate) []CandidateResponse {
	resp := make([]CandidateResponse, 0, len(cands))
	for _, c := range cands {
		resp = append(resp, CandidateResponse{
			StationID:      c.Station.ID(),
			StationName:    c.Station.Name(),
			DistanceMeters: c.Distance,
			Available:      c.Available,
			Workload:       c.Workload,
			Covering:       c.Covering,
		})
	}
	return resp
}

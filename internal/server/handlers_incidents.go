package server

import (
	"errors"
	"net/http"
	"time"

	"police/fcr/internal/dispatch"
	"police/fcr/internal/geo"
)

// handleListIncidents godoc
// @Title List incidents
// @Description Lists incidents in creation order, optionally filtered by status.
// @Resource Incidents
// @Produce json
// @Param status query string false "REPORTED, EN_ROUTE, ATTENDED or RESOLVED"
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} APIError
// @Route /v1/incidents [get]
func (s *Server) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	var filter dispatch.IncidentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := dispatch.ParseIncidentStatus(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid status", err.Error())
			return
		}
		filter = st
	}

	var resp []IncidentResponse
	s.runner.View(func(fcr *dispatch.FCR, _ time.Time) {
		incidents := fcr.Incidents()
		resp = make([]IncidentResponse, 0, len(incidents))
		for _, inc := range incidents {
			if filter != "" && inc.Status() != filter {
				continue
			}
			resp = append(resp, mapIncident(inc))
		}
	})

	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetIncident godoc
// @Title Get incident
// @Resource Incidents
// @Produce json
// @Param incidentID path int true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 404 {object} APIError
// @Route /v1/incidents/{incidentID} [get]
func (s *Server) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	id, err := s.parseIntParam(r, "incidentID")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidIncidentID, err.Error())
		return
	}

	var (
		resp  IncidentResponse
		found bool
	)
	s.runner.View(func(fcr *dispatch.FCR, _ time.Time) {
		if inc := fcr.Incident(id); inc != nil {
			resp, found = mapIncident(inc), true
		}
	})
	if !found {
		s.writeError(w, http.StatusNotFound, errIncidentNotFound, nil)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetCandidates godoc
// @Title Station candidates
// @Description Ranks the stations that could serve the incident right now.
// @Resource Incidents
// @Produce json
// @Param incidentID path int true "Incident ID"
// @Success 200 {array} CandidateResponse
// @Failure 404 {object} APIError
// @Route /v1/incidents/{incidentID}/candidates [get]
func (s *Server) handleGetCandidates(w http.ResponseWriter, r *http.Request) {
	id, err := s.parseIntParam(r, "incidentID")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidIncidentID, err.Error())
		return
	}

	var (
		resp  []CandidateResponse
		found bool
	)
	s.runner.View(func(fcr *dispatch.FCR, now time.Time) {
		if inc := fcr.Incident(id); inc != nil {
			resp, found = mapCandidates(fcr.StationPriority(inc, now)), true
		}
	})
	if !found {
		s.writeError(w, http.StatusNotFound, errIncidentNotFound, nil)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleCreateIncident godoc
// @Title Report incident
// @Description Reports an incident at the current simulation clock and tries to assign it.
// @Resource Incidents
// @Accept json
// @Produce json
// @Param payload body CreateIncidentRequest true "Incident"
// @Success 201 {object} CreateIncidentResponse
// @Success 202 {object} CreateIncidentResponse
// @Failure 400 {object} APIError
// @Route /v1/incidents [post]
func (s *Server) handleCreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}
	priority, err := dispatch.ParsePriority(req.Priority)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}

	inc, err := s.runner.Inject(dispatch.IncidentSpec{
		Priority:  priority,
		CrimeType: req.CrimeType,
		Location:  geo.NewPoint(req.Longitude, req.Latitude),
	})

	var resp CreateIncidentResponse
	s.runner.View(func(*dispatch.FCR, time.Time) {
		resp.Incident = mapIncident(inc)
	})

	status := http.StatusCreated
	switch {
	case err == nil:
		observeIncidentReport(resp.Incident.Priority, reportAssigned)
	case errors.Is(err, dispatch.ErrNoResponsibleStation), errors.Is(err, dispatch.ErrNoOfficerAvailable):
		observeIncidentReport(resp.Incident.Priority, reportQueued)
		status = http.StatusAccepted
		resp.Queued = err.Error()
	default:
		observeIncidentReport(resp.Incident.Priority, reportFailed)
		s.log.Error().Err(err).Int("incident_id", inc.ID()).Msg("assignment failed")
		s.writeError(w, http.StatusInternalServerError, "failed to assign incident", err.Error())
		return
	}

	s.log.Info().
		Str("isr", resp.Incident.ISR).
		Str("priority", resp.Incident.Priority).
		Str("status", resp.Incident.Status).
		Str("by", actor(r)).
		Msg("incident reported via api")
	s.writeJSON(w, status, resp)
}

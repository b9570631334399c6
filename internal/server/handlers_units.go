package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"police/fcr/internal/dispatch"
)

// handleListStations godoc
// @Title List stations
// @Description Lists stations with their response areas and officer availability.
// @Resource Units
// @Produce json
// @Success 200 {array} StationResponse
// @Route /v1/stations [get]
func (s *Server) handleListStations(w http.ResponseWriter, r *http.Request) {
	var resp []StationResponse
	s.runner.View(func(fcr *dispatch.FCR, now time.Time) {
		stations := fcr.Stations()
		resp = make([]StationResponse, 0, len(stations))
		for _, st := range stations {
			resp = append(resp, mapStation(st, now))
		}
	})
	s.writeJSON(w, http.StatusOK, resp)
}

// handleListOfficers godoc
// @Title List officers
// @Resource Units
// @Produce json
// @Param station_id query int false "Only officers of this station"
// @Param available query bool false "Only officers that can take an incident now"
// @Success 200 {array} OfficerResponse
// @Failure 400 {object} APIError
// @Route /v1/officers [get]
func (s *Server) handleListOfficers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	stationID := 0
	if raw := query.Get("station_id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid station id", err.Error())
			return
		}
		stationID = n
	}
	availableOnly := false
	if raw := query.Get("available"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid available flag", err.Error())
			return
		}
		availableOnly = b
	}

	var resp []OfficerResponse
	s.runner.View(func(fcr *dispatch.FCR, now time.Time) {
		officers := fcr.Officers()
		resp = make([]OfficerResponse, 0, len(officers))
		for _, o := range officers {
			if stationID != 0 && o.Station().ID() != stationID {
				continue
			}
			if availableOnly && !o.Available(now) {
				continue
			}
			resp = append(resp, mapOfficer(o, now))
		}
	})
	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetOfficer godoc
// @Title Get officer
// @Resource Units
// @Produce json
// @Param officerID path int true "Officer ID"
// @Success 200 {object} OfficerResponse
// @Failure 404 {object} APIError
// @Route /v1/officers/{officerID} [get]
func (s *Server) handleGetOfficer(w http.ResponseWriter, r *http.Request) {
	id, err := s.parseIntParam(r, "officerID")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidOfficerID, err.Error())
		return
	}

	var (
		resp  OfficerResponse
		found bool
	)
	s.runner.View(func(fcr *dispatch.FCR, now time.Time) {
		if o := fcr.Officer(id); o != nil {
			resp, found = mapOfficer(o, now), true
		}
	})
	if !found {
		s.writeError(w, http.StatusNotFound, errOfficerNotFound, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleUpdateOfficerStatus godoc
// @Title Update officer status
// @Description Sets the two-digit status code of an officer that is not committed to an incident. Codes 05 and 06 are set by dispatch only.
// @Resource Units
// @Accept json
// @Produce json
// @Param officerID path int true "Officer ID"
// @Param payload body UpdateOfficerStatusRequest true "Status"
// @Success 200 {object} OfficerResponse
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Failure 409 {object} APIError
// @Route /v1/officers/{officerID}/status [patch]
func (s *Server) handleUpdateOfficerStatus(w http.ResponseWriter, r *http.Request) {
	id, err := s.parseIntParam(r, "officerID")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidOfficerID, err.Error())
		return
	}

	var req UpdateOfficerStatusRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}
	status, err := dispatch.OfficerStatusFromCode(req.Status)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}

	var (
		resp      OfficerResponse
		found     bool
		updateErr error
	)
	s.runner.View(func(fcr *dispatch.FCR, now time.Time) {
		o := fcr.Officer(id)
		if o == nil {
			return
		}
		found = true
		if updateErr = o.SetStatus(status); updateErr == nil {
			resp = mapOfficer(o, now)
		}
	})
	switch {
	case !found:
		s.writeError(w, http.StatusNotFound, errOfficerNotFound, nil)
		return
	case errors.Is(updateErr, dispatch.ErrSystemStatus):
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, updateErr.Error())
		return
	case updateErr != nil:
		s.writeError(w, http.StatusConflict, "failed to update officer", updateErr.Error())
		return
	}

	s.log.Info().
		Int("officer_id", id).
		Str("status", status.Code()).
		Str("by", actor(r)).
		Msg("officer status updated via api")
	s.writeJSON(w, http.StatusOK, resp)
}

package server

import (
	"net/http"
	"time"

	"police/fcr/internal/dispatch"
)

// handleListPending godoc
// @Title Pending incidents
// @Description Lists unassigned incidents in the order the dispatcher will try them.
// @Resource Dispatch
// @Produce json
// @Param limit query int false "Maximum incidents" default(100)
// @Success 200 {array} IncidentResponse
// @Route /v1/dispatch/pending [get]
func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	limit := s.limit(r, "limit", 100)

	var resp []IncidentResponse
	s.runner.View(func(fcr *dispatch.FCR, _ time.Time) {
		pending := dispatch.SortByPriorityAndTime(fcr.Unattended())
		if len(pending) > limit {
			pending = pending[:limit]
		}
		resp = mapIncidents(pending)
	})
	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetHighest godoc
// @Title Highest priority incident
// @Description Returns the most urgent incident not yet attended.
// @Resource Dispatch
// @Produce json
// @Success 200 {object} IncidentResponse
// @Success 204
// @Route /v1/dispatch/highest [get]
func (s *Server) handleGetHighest(w http.ResponseWriter, r *http.Request) {
	var resp *IncidentResponse
	s.runner.View(func(fcr *dispatch.FCR, _ time.Time) {
		if inc := fcr.HighestPriorityIncident(); inc != nil {
			mapped := mapIncident(inc)
			resp = &mapped
		}
	})
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

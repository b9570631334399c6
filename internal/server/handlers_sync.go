package server

import (
	"net/http"
	"time"

	"police/fcr/internal/dispatch"
)

// handleSync godoc
// @Title Sync status
// @Description Returns the simulation clock, status counts, open incidents and every officer in one call.
// @Resource Common
// @Produce json
// @Param limit_incidents query int false "Maximum incidents" default(25)
// @Success 200 {object} SyncResponse
// @Route /v1/sync [get]
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	limit := s.limit(r, "limit_incidents", 25)

	resp := SyncResponse{RunID: s.runner.RunID()}
	s.runner.View(func(fcr *dispatch.FCR, now time.Time) {
		resp.Clock = now
		resp.Counts = fcr.Counts()

		open := dispatch.SortByPriorityAndTime(append(fcr.Unattended(), fcr.Active()...))
		if len(open) > limit {
			open = open[:limit]
		}
		resp.Incidents = mapIncidents(open)

		officers := fcr.Officers()
		resp.Officers = make([]OfficerResponse, 0, len(officers))
		for _, o := range officers {
			resp.Officers = append(resp.Officers, mapOfficer(o, now))
		}
	})

	s.writeJSON(w, http.StatusOK, resp)
}

// handleSummary godoc
// @Title Run summary
// @Resource Common
// @Produce json
// @Success 200 {object} sim.Summary
// @Route /v1/summary [get]
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.runner.Summary())
}

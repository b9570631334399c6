package server

import (
	"net/http"

	"police/fcr/internal/geo"
)

// handleCalculateRoute godoc
// @Title Calculate route
// @Description Looks up the travel distance and duration the dispatcher would use between two points.
// @Resource Routing
// @Accept json
// @Produce json
// @Param payload body CalculateRouteRequest true "Origin and destination"
// @Success 200 {object} RouteResponse
// @Failure 400 {object} APIError
// @Failure 404 {object} APIError
// @Route /v1/routing/calculate [post]
func (s *Server) handleCalculateRoute(w http.ResponseWriter, r *http.Request) {
	var req CalculateRouteRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, errInvalidPayload, err.Error())
		return
	}

	from := geo.NewPoint(req.FromLon, req.FromLat)
	to := geo.NewPoint(req.ToLon, req.ToLat)
	distance, duration, ok := s.oracle.TravelTime(from, to)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no route between points", nil)
		return
	}

	s.writeJSON(w, http.StatusOK, RouteResponse{
		DistanceMeters:  distance,
		DurationSeconds: duration,
	})
}

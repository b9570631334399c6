// Package traveltime answers point-to-point travel queries from a table of
// precomputed routes between sampled road points.
package traveltime

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"police/fcr/internal/geo"
)

var ErrNoPoints = errors.New("traveltime: no sampled points")

// Route is the precomputed travel between two sampled points.
type Route struct {
	From            int
	To              int
	DistanceMeters  float64
	DurationSeconds float64
}

type pair struct{ from, to int }

// Table snaps query endpoints to their nearest sampled point and looks the
// pair up in either direction.
type Table struct {
	points []geo.Point
	routes map[pair]Route
}

// NewTable builds a table from sampled points, indexed by position, and the
// routes between them.
func NewTable(points []geo.Point, routes []Route) (*Table, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	t := &Table{points: points, routes: make(map[pair]Route, len(routes))}
	for _, r := range routes {
		if r.From < 0 || r.From >= len(points) || r.To < 0 || r.To >= len(points) {
			return nil, fmt.Errorf("route %d -> %d: point index out of range [0, %d)", r.From, r.To, len(points))
		}
		t.routes[pair{r.From, r.To}] = r
	}
	return t, nil
}

// Len returns the number of sampled points.
func (t *Table) Len() int { return len(t.points) }

// Routes returns the number of stored routes.
func (t *Table) Routes() int { return len(t.routes) }

// Nearest returns the index of the sampled point closest to p by squared
// planar distance. The first point wins on ties.
func (t *Table) Nearest(p geo.Point) int {
	best, bestD := 0, -1.0
	for i, q := range t.points {
		dx, dy := q[0]-p[0], q[1]-p[1]
		d := dx*dx + dy*dy
		if bestD < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// TravelTime returns the distance in metres and duration in seconds between
// the sampled points nearest to origin and dest. ok is false when no route
// was precomputed for the pair.
func (t *Table) TravelTime(origin, dest geo.Point) (float64, float64, bool) {
	i, j := t.Nearest(origin), t.Nearest(dest)
	if i == j {
		return 0, 0, true
	}
	if r, ok := t.routes[pair{i, j}]; ok {
		return r.DistanceMeters, r.DurationSeconds, true
	}
	if r, ok := t.routes[pair{j, i}]; ok {
		return r.DistanceMeters, r.DurationSeconds, true
	}
	return 0, 0, false
}

// LoadCSV reads sampled points from a GeoJSON FeatureCollection and routes
// from a CSV file with the header
// point1_index,point2_index,distance_metres,duration_seconds.
func LoadCSV(pointsPath, routesPath string) (*Table, error) {
	points, err := LoadPoints(pointsPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(routesPath)
	if err != nil {
		return nil, fmt.Errorf("open routes: %w", err)
	}
	defer f.Close()

	routes, err := ReadRoutes(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", routesPath, err)
	}
	return NewTable(points, routes)
}

// LoadPoints reads point features in file order.
func LoadPoints(path string) ([]geo.Point, error) {
	fc, err := geo.LoadFeatureCollection(path)
	if err != nil {
		return nil, err
	}
	return PointsFromFeatures(fc)
}

// PointsFromFeatures extracts the point geometries of a collection.
func PointsFromFeatures(fc *geojson.FeatureCollection) ([]geo.Point, error) {
	points := make([]geo.Point, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: expected Point, got %T", i, f.Geometry)
		}
		points = append(points, p)
	}
	return points, nil
}

var routeColumns = []string{"point1_index", "point2_index", "distance_metres", "duration_seconds"}

// ReadRoutes parses the routes CSV. Columns are matched by header name and
// extra columns are ignored.
func ReadRoutes(r io.Reader) ([]Route, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	cols := make([]int, len(routeColumns))
	for i, name := range routeColumns {
		c, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		cols[i] = c
	}

	var routes []Route
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		from, err := parseIndex(rec[cols[0]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, routeColumns[0], err)
		}
		to, err := parseIndex(rec[cols[1]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, routeColumns[1], err)
		}
		dist, err := strconv.ParseFloat(rec[cols[2]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, routeColumns[2], err)
		}
		dur, err := strconv.ParseFloat(rec[cols[3]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, routeColumns[3], err)
		}
		routes = append(routes, Route{From: from, To: to, DistanceMeters: dist, DurationSeconds: dur})
	}
	return routes, nil
}

// parseIndex accepts integral values written as floats, e.g. "12.0".
func parseIndex(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

// StraightLine estimates travel along the great-circle line at a constant
// speed. It never misses.
type StraightLine struct {
	SpeedMPS float64
}

func (s StraightLine) TravelTime(origin, dest geo.Point) (float64, float64, bool) {
	d := geo.Distance(origin, dest)
	speed := s.SpeedMPS
	if speed <= 0 {
		speed = 1
	}
	return d, d / speed, true
}

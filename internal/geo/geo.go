// Package geo wraps the handful of planar and spherical operations the
// dispatcher needs: points, response areas and distances.
package geo

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Point is a longitude/latitude pair.
type Point = orb.Point

// ErrInvalidArea is returned when a ring cannot form a polygon.
var ErrInvalidArea = errors.New("invalid area")

// NewPoint builds a point from longitude and latitude.
func NewPoint(lon, lat float64) Point {
	return Point{lon, lat}
}

// Distance returns the great-circle distance in meters.
func Distance(a, b Point) float64 {
	return geo.Distance(a, b)
}

// Area is a (multi)polygon with cached bound and centroid.
type Area struct {
	shape    orb.MultiPolygon
	bound    orb.Bound
	centroid Point
}

// NewArea builds an area from a single outer ring. The ring is closed if needed.
func NewArea(ring []Point) (Area, error) {
	if len(ring) < 3 {
		return Area{}, fmt.Errorf("%w: need at least 3 points, got %d", ErrInvalidArea, len(ring))
	}
	r := make(orb.Ring, len(ring), len(ring)+1)
	copy(r, ring)
	if !r.Closed() {
		r = append(r, r[0])
	}
	if len(r) < 4 {
		return Area{}, fmt.Errorf("%w: degenerate ring", ErrInvalidArea)
	}
	return newArea(orb.MultiPolygon{orb.Polygon{r}}), nil
}

// AreaFromGeometry accepts Polygon and MultiPolygon geometries.
func AreaFromGeometry(g orb.Geometry) (Area, error) {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 {
			return Area{}, fmt.Errorf("%w: empty polygon", ErrInvalidArea)
		}
		return newArea(orb.MultiPolygon{v}), nil
	case orb.MultiPolygon:
		if len(v) == 0 {
			return Area{}, fmt.Errorf("%w: empty multipolygon", ErrInvalidArea)
		}
		return newArea(v), nil
	default:
		return Area{}, fmt.Errorf("%w: unsupported geometry %T", ErrInvalidArea, g)
	}
}

func newArea(mp orb.MultiPolygon) Area {
	centroid, _ := planar.CentroidArea(mp)
	return Area{shape: mp, bound: mp.Bound(), centroid: centroid}
}

// Contains reports whether p lies inside the area.
func (a Area) Contains(p Point) bool {
	if len(a.shape) == 0 || !a.bound.Contains(p) {
		return false
	}
	return planar.MultiPolygonContains(a.shape, p)
}

// Centroid returns the area-weighted centroid.
func (a Area) Centroid() Point {
	return a.centroid
}

// Outer returns the outer ring of the first polygon, for display.
func (a Area) Outer() []Point {
	if len(a.shape) == 0 || len(a.shape[0]) == 0 {
		return nil
	}
	return a.shape[0][0]
}

// IsZero reports whether the area was never initialised.
func (a Area) IsZero() bool {
	return len(a.shape) == 0
}

// LoadFeatureCollection reads a GeoJSON FeatureCollection from disk.
func LoadFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

// LoadArea reads a GeoJSON file and merges every polygonal feature into one area.
func LoadArea(path string) (Area, error) {
	fc, err := LoadFeatureCollection(path)
	if err != nil {
		return Area{}, err
	}
	var mp orb.MultiPolygon
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			mp = append(mp, g)
		case orb.MultiPolygon:
			mp = append(mp, g...)
		}
	}
	if len(mp) == 0 {
		return Area{}, fmt.Errorf("%w: %s has no polygon features", ErrInvalidArea, path)
	}
	return newArea(mp), nil
}

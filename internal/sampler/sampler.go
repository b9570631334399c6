// Package sampler draws incident locations from per-crime-type kernel
// density estimates of historical crime points.
package sampler

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"police/fcr/internal/geo"
)

var (
	ErrUnknownCrimeType  = errors.New("unknown crime type")
	ErrSamplingExhausted = errors.New("no sample inside border")
	ErrNoData            = errors.New("no crime points")
)

// CrimeTypeProperty is the feature property holding the crime type.
const CrimeTypeProperty = "crime_type"

// maxAttempts bounds rejection sampling against the border.
const maxAttempts = 1000

// minBandwidth keeps a kernel usable when every point of a type coincides.
const minBandwidth = 1e-4

type kde struct {
	points []geo.Point
	bwLon  float64
	bwLat  float64
}

// Sampler holds one KDE per crime type. It is not safe for concurrent use.
type Sampler struct {
	kdes   map[string]kde
	border geo.Area
	rng    *rand.Rand
}

// New groups points by crime type. A zero border disables rejection.
func New(byType map[string][]geo.Point, border geo.Area, src rand.Source) (*Sampler, error) {
	if len(byType) == 0 {
		return nil, ErrNoData
	}
	s := &Sampler{kdes: make(map[string]kde, len(byType)), border: border, rng: rand.New(src)}
	for name, pts := range byType {
		if len(pts) == 0 {
			return nil, fmt.Errorf("crime type %q: %w", name, ErrNoData)
		}
		lons := make([]float64, len(pts))
		lats := make([]float64, len(pts))
		for i, p := range pts {
			lons[i], lats[i] = p.Lon(), p.Lat()
		}
		s.kdes[name] = kde{points: pts, bwLon: Silverman(lons), bwLat: Silverman(lats)}
	}
	return s, nil
}

// FromFeatures builds a sampler from point features carrying a crime_type
// property. Features of other geometry types are skipped.
func FromFeatures(fc *geojson.FeatureCollection, border geo.Area, src rand.Source) (*Sampler, error) {
	byType := make(map[string][]geo.Point)
	for _, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		name := f.Properties.MustString(CrimeTypeProperty, "")
		if name == "" {
			continue
		}
		byType[name] = append(byType[name], p)
	}
	return New(byType, border, src)
}

// Load reads crime points from a GeoJSON file and, when borderPath is not
// empty, the polygon samples must fall inside.
func Load(pointsPath, borderPath string, src rand.Source) (*Sampler, error) {
	fc, err := geo.LoadFeatureCollection(pointsPath)
	if err != nil {
		return nil, err
	}
	var border geo.Area
	if borderPath != "" {
		if border, err = geo.LoadArea(borderPath); err != nil {
			return nil, err
		}
	}
	s, err := FromFeatures(fc, border, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pointsPath, err)
	}
	return s, nil
}

// CrimeTypes returns the known crime types in sorted order.
func (s *Sampler) CrimeTypes() []string {
	out := make([]string, 0, len(s.kdes))
	for name := range s.kdes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Bandwidth returns the per-axis kernel bandwidth of a crime type.
func (s *Sampler) Bandwidth(crimeType string) (lon, lat float64, ok bool) {
	k, ok := s.kdes[crimeType]
	return k.bwLon, k.bwLat, ok
}

// Sample draws a location for crimeType.
func (s *Sampler) Sample(crimeType string) (geo.Point, error) {
	k, ok := s.kdes[crimeType]
	if !ok {
		return geo.Point{}, fmt.Errorf("%w: %q", ErrUnknownCrimeType, crimeType)
	}
	for i := 0; i < maxAttempts; i++ {
		c := k.points[s.rng.Intn(len(k.points))]
		p := geo.NewPoint(
			c.Lon()+s.rng.NormFloat64()*k.bwLon,
			c.Lat()+s.rng.NormFloat64()*k.bwLat,
		)
		if s.border.IsZero() || s.border.Contains(p) {
			return p, nil
		}
	}
	return geo.Point{}, fmt.Errorf("%q after %d attempts: %w", crimeType, maxAttempts, ErrSamplingExhausted)
}

// Silverman returns 0.9·min(σ, IQR/1.34)·n^(-1/5). When the IQR vanishes σ
// is used alone; when both vanish a small floor is returned.
func Silverman(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return minBandwidth
	}
	sigma := stddev(xs)
	spread := iqr(xs) / 1.34
	switch {
	case spread > 0 && spread < sigma:
		sigma = spread
	case sigma == 0:
		return minBandwidth
	}
	return 0.9 * sigma * math.Pow(float64(n), -0.2)
}

func stddev(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	v := 0.0
	for _, x := range xs {
		v += (x - mean) * (x - mean)
	}
	return math.Sqrt(v / float64(len(xs)))
}

func iqr(xs []float64) float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	return quantile(s, 0.75) - quantile(s, 0.25)
}

// quantile interpolates linearly between closest ranks of sorted data.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

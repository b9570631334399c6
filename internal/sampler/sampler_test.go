package sampler

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"police/fcr/internal/geo"
)

func square(t *testing.T, minX, minY, maxX, maxY float64) geo.Area {
	t.Helper()
	a, err := geo.NewArea([]geo.Point{
		geo.NewPoint(minX, minY), geo.NewPoint(maxX, minY),
		geo.NewPoint(maxX, maxY), geo.NewPoint(minX, maxY),
	})
	require.NoError(t, err)
	return a
}

func cluster() map[string][]geo.Point {
	return map[string][]geo.Point{
		"Burglary": {
			geo.NewPoint(0.50, 0.50), geo.NewPoint(0.52, 0.49),
			geo.NewPoint(0.48, 0.51), geo.NewPoint(0.51, 0.53),
		},
		"Anti-social behaviour": {geo.NewPoint(0.2, 0.2)},
	}
}

func TestSilverman(t *testing.T) {
	assert.InDelta(t, 0.9225, Silverman([]float64{1, 2, 3, 4, 5}), 1e-3)
	assert.Equal(t, minBandwidth, Silverman([]float64{3, 3, 3}))
	assert.Equal(t, minBandwidth, Silverman(nil))

	// A single outlier widens σ but not the IQR.
	xs := []float64{0, 1, 2, 3, 4, 5, 6, 7, 100}
	assert.Less(t, Silverman(xs), 0.9*stddev(xs)*0.65)
}

func TestSampleStaysInsideBorder(t *testing.T) {
	s, err := New(cluster(), square(t, 0, 0, 1, 1), rand.NewSource(3))
	require.NoError(t, err)

	border := square(t, 0, 0, 1, 1)
	for i := 0; i < 200; i++ {
		p, err := s.Sample("Burglary")
		require.NoError(t, err)
		assert.True(t, border.Contains(p))
		assert.InDelta(t, 0.5, p.Lon(), 0.2)
		assert.InDelta(t, 0.5, p.Lat(), 0.2)
	}

	p, err := s.Sample("Anti-social behaviour")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, p.Lon(), 0.01, "single point uses the floor bandwidth")
}

func TestSampleWithoutBorder(t *testing.T) {
	s, err := New(cluster(), geo.Area{}, rand.NewSource(3))
	require.NoError(t, err)
	_, err = s.Sample("Burglary")
	assert.NoError(t, err)
}

func TestSampleErrors(t *testing.T) {
	s, err := New(cluster(), square(t, 10, 10, 11, 11), rand.NewSource(3))
	require.NoError(t, err)

	_, err = s.Sample("Arson")
	assert.ErrorIs(t, err, ErrUnknownCrimeType)

	_, err = s.Sample("Burglary")
	assert.ErrorIs(t, err, ErrSamplingExhausted)

	_, err = New(nil, geo.Area{}, rand.NewSource(1))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	points := filepath.Join(dir, "crimes.geojson")
	require.NoError(t, os.WriteFile(points, []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"crime_type": "Vehicle crime"}, "geometry": {"type": "Point", "coordinates": [-0.22, 51.76]}},
			{"type": "Feature", "properties": {"crime_type": "Burglary"}, "geometry": {"type": "Point", "coordinates": [-0.20, 51.80]}},
			{"type": "Feature", "properties": {"crime_type": "Burglary"}, "geometry": {"type": "Point", "coordinates": [-0.21, 51.81]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [-0.21, 51.81]}}
		]
	}`), 0o600))

	s, err := Load(points, "", rand.NewSource(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"Burglary", "Vehicle crime"}, s.CrimeTypes())

	lon, lat, ok := s.Bandwidth("Burglary")
	require.True(t, ok)
	assert.Greater(t, lon, 0.0)
	assert.Greater(t, lat, 0.0)
}

func TestShippedCrimePoints(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "data", "crime_points.geojson"), "", rand.NewSource(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"Anti-social behaviour", "Burglary", "Vehicle crime", "Violence and sexual offences"}, s.CrimeTypes())

	_, err = s.Sample("Burglary")
	assert.NoError(t, err)
}

package scenario

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"police/fcr/internal/dispatch"
	"police/fcr/internal/geo"
)

func TestLoadAndBuild(t *testing.T) {
	path := filepath.Join("testdata", "two_stations.yaml")
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC), s.Start.UTC())
	assert.Equal(t, "HC", s.ISRPrefix)
	require.NotNil(t, s.NearbyStations)
	assert.Equal(t, DefaultNearbyStations, *s.NearbyStations)
	assert.Equal(t, Resolution{Min: 10 * time.Minute, Max: 20 * time.Minute}, s.Resolution)
	assert.Equal(t, []string{"Burglary", "Violence and sexual offences"}, s.CrimeTypes())
	assert.Equal(t, map[dispatch.Priority]float64{
		dispatch.PriorityImmediate: 1,
		dispatch.PriorityPrompt:    3,
	}, s.Priorities())

	stations, err := s.Build(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, stations, 2)

	hatfield, stevenage := stations[0], stations[1]
	assert.Equal(t, "Hatfield", hatfield.Name())
	assert.True(t, hatfield.Covers(geo.NewPoint(-0.22, 51.76)))
	assert.False(t, hatfield.Covers(geo.NewPoint(-0.20, 51.90)))
	assert.True(t, stevenage.Covers(geo.NewPoint(-0.20, 51.90)), "area loaded from GeoJSON")

	require.Len(t, hatfield.Officers(), 2)
	early, night := hatfield.Officers()[0], hatfield.Officers()[1]
	assert.Equal(t, dispatch.ShiftEarly, early.Shift().Type)
	assert.Equal(t, dispatch.OfficerAvailableAtStation, early.Status())
	assert.Equal(t, hatfield.Location(), early.Location())
	assert.Equal(t, time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC), early.ShiftEnds().UTC())
	assert.Equal(t, dispatch.OfficerOffDuty, night.Status())
	assert.Equal(t, time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC), night.ShiftEnds().UTC(), "night shift running at 06:00")
}

func TestParseDefaults(t *testing.T) {
	s, err := Parse([]byte(`
start: 2024-03-04T06:00:00Z
stations:
  - id: 1
    name: Hatfield
    location: [-0.2235, 51.7636]
    response_area: [[-0.3, 51.7], [-0.15, 51.7], [-0.15, 51.82]]
`))
	require.NoError(t, err)
	assert.Equal(t, dispatch.DefaultISRPrefix, s.ISRPrefix)
	assert.Equal(t, Resolution{Min: DefaultResolutionMin, Max: DefaultResolutionMax}, s.Resolution)
	assert.Len(t, s.Priorities(), len(dispatch.Priorities()))
	assert.Empty(t, s.CrimeTypes())
}

func TestParseValidation(t *testing.T) {
	const head = "start: 2024-03-04T06:00:00Z\n"
	tests := []struct {
		name string
		doc  string
	}{
		{"missing start", `
stations:
  - {id: 1, name: A, location: [0, 0], response_area: [[0, 0], [1, 0], [1, 1]]}
`},
		{"no stations", head + "stations: []\n"},
		{"latitude out of range", head + `
stations:
  - {id: 1, name: A, location: [0, 95], response_area: [[0, 0], [1, 0], [1, 1]]}
`},
		{"ring too short", head + `
stations:
  - {id: 1, name: A, location: [0.5, 0.5], response_area: [[0, 0], [1, 0]]}
`},
		{"no area", head + `
stations:
  - {id: 1, name: A, location: [0.5, 0.5]}
`},
		{"duplicate station", head + `
stations:
  - {id: 1, name: A, location: [0.5, 0.5], response_area: [[0, 0], [1, 0], [1, 1]]}
  - {id: 1, name: B, location: [0.5, 0.5], response_area: [[0, 0], [1, 0], [1, 1]]}
`},
		{"duplicate officer", head + `
stations:
  - id: 1
    name: A
    location: [0.5, 0.5]
    response_area: [[0, 0], [1, 0], [1, 1]]
    officers: [{id: 7, shift: EARLY}, {id: 7, shift: LATE}]
`},
		{"attending without incident", head + `
stations:
  - id: 1
    name: A
    location: [0.5, 0.5]
    response_area: [[0, 0], [1, 0], [1, 1]]
    officers: [{id: 7, shift: EARLY, status: "06"}]
`},
		{"unknown shift", head + `
stations:
  - id: 1
    name: A
    location: [0.5, 0.5]
    response_area: [[0, 0], [1, 0], [1, 1]]
    officers: [{id: 7, shift: GRAVEYARD}]
`},
		{"unknown status", head + `
stations:
  - id: 1
    name: A
    location: [0.5, 0.5]
    response_area: [[0, 0], [1, 0], [1, 1]]
    officers: [{id: 7, shift: EARLY, status: "42"}]
`},
		{"unknown priority", head + `
stations:
  - {id: 1, name: A, location: [0.5, 0.5], response_area: [[0, 0], [1, 0], [1, 1]]}
priority_mix: {URGENT: 1}
`},
		{"negative weight", head + `
stations:
  - {id: 1, name: A, location: [0.5, 0.5], response_area: [[0, 0], [1, 0], [1, 1]]}
crime_mix: {Burglary: -1}
`},
		{"inverted resolution", head + `
stations:
  - {id: 1, name: A, location: [0.5, 0.5], response_area: [[0, 0], [1, 0], [1, 1]]}
resolution: {min: 30m, max: 10m}
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestShippedScenario(t *testing.T) {
	path := filepath.Join("..", "..", "data", "scenario.yaml")
	s, err := Load(path)
	require.NoError(t, err)

	stations, err := s.Build(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, stations, 3)

	// Neighbouring response areas share edges but every station covers its own site.
	for _, st := range stations {
		assert.True(t, st.Covers(st.Location()), st.Name())
	}
	assert.Len(t, s.Priorities(), len(dispatch.Priorities()))
	assert.Equal(t, 15*time.Minute, s.Resolution.Min)
}

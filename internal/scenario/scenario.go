// Package scenario loads the stations, officers and incident mixes a
// simulation runs against.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"police/fcr/internal/dispatch"
	"police/fcr/internal/geo"
)

const (
	DefaultNearbyStations = 2
	DefaultResolutionMin  = 15 * time.Minute
	DefaultResolutionMax  = 30 * time.Minute
)

// Coord is a [longitude, latitude] pair.
type Coord [2]float64

func (c Coord) Point() geo.Point { return geo.NewPoint(c[0], c[1]) }

type Scenario struct {
	Start          time.Time          `yaml:"start" validate:"required"`
	ISRPrefix      string             `yaml:"isr_prefix" validate:"omitempty,alphanum,max=8"`
	NearbyStations *int               `yaml:"nearby_stations" validate:"omitempty,gte=0"`
	Stations       []Station          `yaml:"stations" validate:"required,min=1,dive"`
	CrimeMix       map[string]float64 `yaml:"crime_mix" validate:"omitempty,dive,keys,required,endkeys,gt=0"`
	PriorityMix    map[string]float64 `yaml:"priority_mix" validate:"omitempty,dive,keys,required,endkeys,gt=0"`
	Resolution     Resolution         `yaml:"resolution"`
}

type Station struct {
	ID       int    `yaml:"id" validate:"required,gt=0"`
	Name     string `yaml:"name" validate:"required"`
	Location Coord  `yaml:"location" validate:"required,lonlat"`
	// ResponseArea is an inline ring; ResponseAreaFile names a GeoJSON file
	// resolved relative to the scenario file.
	ResponseArea     []Coord   `yaml:"response_area" validate:"omitempty,min=3,dive,lonlat"`
	ResponseAreaFile string    `yaml:"response_area_file"`
	Officers         []Officer `yaml:"officers" validate:"dive"`
}

type Officer struct {
	ID     int    `yaml:"id" validate:"required,gt=0"`
	Shift  string `yaml:"shift" validate:"required"`
	Status string `yaml:"status" validate:"omitempty,len=2,numeric"`
}

type Resolution struct {
	Min time.Duration `yaml:"min" validate:"gte=0"`
	Max time.Duration `yaml:"max" validate:"gte=0"`
}

// Load reads, defaults and validates the scenario at path.
func Load(path string) (Scenario, error) {
	var s Scenario
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	s, err = Parse(raw)
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario document.
func Parse(raw []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, err
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func (s *Scenario) applyDefaults() {
	if s.ISRPrefix == "" {
		s.ISRPrefix = dispatch.DefaultISRPrefix
	}
	if s.NearbyStations == nil {
		n := DefaultNearbyStations
		s.NearbyStations = &n
	}
	if s.Resolution.Min == 0 && s.Resolution.Max == 0 {
		s.Resolution = Resolution{Min: DefaultResolutionMin, Max: DefaultResolutionMax}
	}
	if len(s.PriorityMix) == 0 {
		s.PriorityMix = make(map[string]float64)
		for _, p := range dispatch.Priorities() {
			s.PriorityMix[p.String()] = 1
		}
	}
}

// Validate checks field rules and the cross-field constraints the tags
// cannot express.
func (s Scenario) Validate() error {
	if err := newValidator().Struct(s); err != nil {
		return err
	}
	if s.Resolution.Max < s.Resolution.Min {
		return fmt.Errorf("resolution: max %s below min %s", s.Resolution.Max, s.Resolution.Min)
	}

	stations := make(map[int]bool, len(s.Stations))
	officers := make(map[int]bool)
	for _, st := range s.Stations {
		if stations[st.ID] {
			return fmt.Errorf("duplicate station id %d", st.ID)
		}
		stations[st.ID] = true
		if len(st.ResponseArea) == 0 && st.ResponseAreaFile == "" {
			return fmt.Errorf("station %d: response_area or response_area_file is required", st.ID)
		}
		for _, o := range st.Officers {
			if officers[o.ID] {
				return fmt.Errorf("duplicate officer id %d", o.ID)
			}
			officers[o.ID] = true
			if _, err := dispatch.ParseShiftType(o.Shift); err != nil {
				return fmt.Errorf("officer %d: %w", o.ID, err)
			}
			if o.Status != "" {
				st, err := dispatch.OfficerStatusFromCode(o.Status)
				if err != nil {
					return fmt.Errorf("officer %d: %w", o.ID, err)
				}
				if st.SystemSet() {
					return fmt.Errorf("officer %d: %w", o.ID, dispatch.ErrSystemStatus)
				}
			}
		}
	}
	for name := range s.PriorityMix {
		if _, err := dispatch.ParsePriority(name); err != nil {
			return fmt.Errorf("priority_mix: %w", err)
		}
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("lonlat", func(fl validator.FieldLevel) bool {
		c, ok := fl.Field().Interface().(Coord)
		if !ok {
			return false
		}
		return c[0] >= -180 && c[0] <= 180 && c[1] >= -90 && c[1] <= 90
	})
	return v
}

// Build creates the stations and their officers. Officer shift ends are
// computed against the scenario start. baseDir resolves response area files.
func (s Scenario) Build(baseDir string) ([]*dispatch.Station, error) {
	out := make([]*dispatch.Station, 0, len(s.Stations))
	for _, st := range s.Stations {
		area, err := st.area(baseDir)
		if err != nil {
			return nil, fmt.Errorf("station %d: %w", st.ID, err)
		}
		station := dispatch.NewStation(st.ID, st.Name, st.Location.Point(), area)
		for _, o := range st.Officers {
			shift, err := dispatch.ParseShiftType(o.Shift)
			if err != nil {
				return nil, fmt.Errorf("officer %d: %w", o.ID, err)
			}
			officer := station.AddOfficer(o.ID, shift, s.Start)
			if o.Status == "" {
				continue
			}
			status, err := dispatch.OfficerStatusFromCode(o.Status)
			if err != nil {
				return nil, fmt.Errorf("officer %d: %w", o.ID, err)
			}
			if err := officer.SetStatus(status); err != nil {
				return nil, err
			}
		}
		out = append(out, station)
	}
	return out, nil
}

func (st Station) area(baseDir string) (geo.Area, error) {
	if len(st.ResponseArea) > 0 {
		ring := make([]geo.Point, len(st.ResponseArea))
		for i, c := range st.ResponseArea {
			ring[i] = c.Point()
		}
		return geo.NewArea(ring)
	}
	if st.ResponseAreaFile == "" {
		return geo.Area{}, errors.New("no response area")
	}
	path := st.ResponseAreaFile
	if baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return geo.LoadArea(path)
}

// Priorities returns the priority weights keyed by parsed priority.
func (s Scenario) Priorities() map[dispatch.Priority]float64 {
	out := make(map[dispatch.Priority]float64, len(s.PriorityMix))
	for name, w := range s.PriorityMix {
		p, err := dispatch.ParsePriority(name)
		if err != nil {
			continue
		}
		out[p] += w
	}
	return out
}

// CrimeTypes returns the crime mix keys in sorted order.
func (s Scenario) CrimeTypes() []string {
	out := make([]string, 0, len(s.CrimeMix))
	for name := range s.CrimeMix {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

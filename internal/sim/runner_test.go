package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"police/fcr/internal/dispatch"
	"police/fcr/internal/geo"
	"police/fcr/internal/traveltime"
)

var start = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

type constEstimator struct {
	perTick float64
	calls   []bool
}

func (e *constEstimator) Estimate(_ time.Weekday, _ time.Time, _ time.Duration, monteCarlo bool) float64 {
	e.calls = append(e.calls, monteCarlo)
	return e.perTick
}

type fixedSampler struct {
	at  geo.Point
	err error
}

func (s fixedSampler) Sample(string) (geo.Point, error) { return s.at, s.err }

// failingSampler succeeds ok times, then fails.
type failingSampler struct {
	ok  int
	err error
}

func (s *failingSampler) Sample(string) (geo.Point, error) {
	if s.ok == 0 {
		return geo.Point{}, s.err
	}
	s.ok--
	return geo.NewPoint(0.005, 0.005), nil
}

type memoryHistory struct {
	summary   Summary
	incidents []*dispatch.Incident
}

func (m *memoryHistory) SaveRun(_ context.Context, s Summary, incidents []*dispatch.Incident) error {
	m.summary, m.incidents = s, incidents
	return nil
}

func newFCR(t *testing.T, officers int) *dispatch.FCR {
	t.Helper()
	area, err := geo.NewArea([]geo.Point{
		geo.NewPoint(0, 0), geo.NewPoint(0.01, 0), geo.NewPoint(0.01, 0.01), geo.NewPoint(0, 0.01),
	})
	require.NoError(t, err)
	station := dispatch.NewStation(1, "Hatfield", geo.NewPoint(0.004, 0.004), area)
	for i := 0; i < officers; i++ {
		station.AddOfficer(100+i, dispatch.ShiftEarly, start)
	}
	return dispatch.New([]*dispatch.Station{station}, traveltime.StraightLine{SpeedMPS: 10})
}

func newRunner(t *testing.T, fcr *dispatch.FCR, est Estimator, sampler Sampler, cfg Config, opts ...Option) *Runner {
	t.Helper()
	crimes, err := NewMix(map[string]float64{"Burglary": 1, "Vehicle crime": 2})
	require.NoError(t, err)
	priorities, err := Uniform(dispatch.Priorities())
	require.NoError(t, err)
	if cfg.Start.IsZero() {
		cfg.Start = start
	}
	r, err := New(fcr, est, sampler, crimes, priorities, cfg, opts...)
	require.NoError(t, err)
	return r
}

func TestStepCarriesFractionalIncidents(t *testing.T) {
	est := &constEstimator{perTick: 0.4}
	r := newRunner(t, newFCR(t, 2), est, fixedSampler{at: geo.NewPoint(0.005, 0.005)}, Config{Tick: 5 * time.Minute})

	var created []int
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Step())
		created = append(created, r.Summary().Created)
	}

	// 0.4, 0.8, 1.2, 1.6, 2.0 accumulated.
	assert.Equal(t, []int{0, 0, 1, 1, 2}, created)
	assert.Equal(t, start.Add(25*time.Minute), r.Now())
	assert.Equal(t, []bool{false, false, false, false, false}, est.calls)
}

func TestStepMonteCarloUsesDrawnCount(t *testing.T) {
	est := &constEstimator{perTick: 3}
	r := newRunner(t, newFCR(t, 1), est, fixedSampler{at: geo.NewPoint(0.005, 0.005)},
		Config{Tick: time.Minute, MonteCarlo: true})

	require.NoError(t, r.Step())
	s := r.Summary()
	assert.Equal(t, 3, s.Created)
	assert.Equal(t, 1, s.Assigned, "one officer takes the most urgent call")
	assert.Equal(t, 2, s.Counts.Reported)
	assert.Equal(t, []bool{true}, est.calls)
}

func TestRunKeepsBindingsConsistentEveryTick(t *testing.T) {
	fcr := newFCR(t, 2)
	r := newRunner(t, fcr, &constEstimator{perTick: 0.75}, fixedSampler{at: geo.NewPoint(0.005, 0.005)},
		Config{Tick: 5 * time.Minute}, WithResolution(NewUniformResolution(10*time.Minute, 25*time.Minute, rand.New(rand.NewSource(9)))))

	for i := 0; i < 60; i++ {
		require.NoError(t, r.Step())
		r.View(func(f *dispatch.FCR, _ time.Time) {
			require.NoError(t, f.CheckInvariants(), "tick %d", i+1)
			for _, inc := range f.Incidents() {
				if o := inc.Officer(); o != nil {
					require.Same(t, inc, o.AssignedIncident())
				}
			}
			for _, o := range f.Officers() {
				if inc := o.AssignedIncident(); inc != nil {
					require.Same(t, o, inc.Officer())
				}
			}
		})
	}

	s := r.Summary()
	assert.Equal(t, 60, s.Ticks)
	assert.Equal(t, 45, s.Created)
	assert.Positive(t, s.Counts.Resolved)
	assert.Positive(t, s.MeanResponse)
	assert.Equal(t, s.Created, s.Counts.Reported+s.Counts.EnRoute+s.Counts.Attended+s.Counts.Resolved)
}

func TestRunStopsAfterDurationAndSavesHistory(t *testing.T) {
	history := &memoryHistory{}
	r := newRunner(t, newFCR(t, 1), &constEstimator{perTick: 0.5}, fixedSampler{at: geo.NewPoint(0.005, 0.005)},
		Config{Tick: 5 * time.Minute, Duration: time.Hour}, WithHistory(history))

	s, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, s.Ticks)
	assert.Equal(t, start.Add(time.Hour), s.End)
	assert.Equal(t, r.RunID(), history.summary.RunID)
	assert.Len(t, history.incidents, s.Created)
}

func TestRunHonoursCancellation(t *testing.T) {
	r := newRunner(t, newFCR(t, 1), &constEstimator{}, fixedSampler{},
		Config{Tick: time.Minute, Pace: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Summary)
	go func() {
		s, err := r.Run(ctx)
		assert.NoError(t, err)
		done <- s
	}()
	cancel()

	select {
	case s := <-done:
		assert.LessOrEqual(t, s.Ticks, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestSamplerFailureAbortsRun(t *testing.T) {
	boom := errors.New("boom")
	r := newRunner(t, newFCR(t, 1), &constEstimator{perTick: 1}, fixedSampler{err: boom}, Config{Duration: time.Hour})

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestInject(t *testing.T) {
	r := newRunner(t, newFCR(t, 1), &constEstimator{}, fixedSampler{}, Config{})

	inc, err := r.Inject(dispatch.IncidentSpec{Priority: dispatch.PriorityImmediate, Location: geo.NewPoint(0.005, 0.005)})
	require.NoError(t, err)
	assert.Equal(t, dispatch.StatusEnRoute, inc.Status())
	assert.Equal(t, start, inc.ReportTime())

	queued, err := r.Inject(dispatch.IncidentSpec{Priority: dispatch.PriorityPrompt, Location: geo.NewPoint(0.005, 0.005)})
	assert.ErrorIs(t, err, dispatch.ErrNoOfficerAvailable)
	assert.Equal(t, dispatch.StatusReported, queued.Status())

	outside, err := r.Inject(dispatch.IncidentSpec{Priority: dispatch.PriorityPrompt, Location: geo.NewPoint(5, 5)})
	assert.ErrorIs(t, err, dispatch.ErrNoResponsibleStation)
	assert.Equal(t, dispatch.StatusReported, outside.Status())
	assert.Equal(t, 3, r.Summary().Created)
	assert.Equal(t, 1, r.Summary().Assigned)
}

func TestStepCountsIncidentsRegisteredBeforeFailure(t *testing.T) {
	boom := errors.New("boom")
	fcr := newFCR(t, 1)
	r := newRunner(t, fcr, &constEstimator{perTick: 3}, &failingSampler{ok: 2, err: boom}, Config{})

	assert.ErrorIs(t, r.Step(), boom)

	c := fcr.Counts()
	assert.Equal(t, 2, c.Reported+c.EnRoute+c.Attended+c.Resolved)
	assert.Equal(t, 2, r.Summary().Created)
	assert.Equal(t, 0, r.Summary().Ticks)
}

func TestStepLogsTick(t *testing.T) {
	var buf bytes.Buffer
	r := newRunner(t, newFCR(t, 2), &constEstimator{perTick: 1}, fixedSampler{at: geo.NewPoint(0.005, 0.005)},
		Config{Tick: 5 * time.Minute}, WithLogger(zerolog.New(&buf)))

	require.NoError(t, r.Step())

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "tick", line["message"])
	assert.Equal(t, "sim", line["component"])
	assert.Equal(t, "info", line["level"])
	assert.EqualValues(t, 1, line["tick"])
	assert.EqualValues(t, 1, line["new"])
	assert.EqualValues(t, 1, line["assigned"])
	assert.EqualValues(t, 0, line["reported"])
	assert.EqualValues(t, 1, line["active"].(float64)+line["resolved"].(float64))
	assert.Equal(t, start.Format(zerolog.TimeFieldFormat), line["clock"])
}

func TestNewValidatesCollaborators(t *testing.T) {
	crimes, err := NewMix(map[string]float64{"Burglary": 1})
	require.NoError(t, err)
	priorities, err := Uniform(dispatch.Priorities())
	require.NoError(t, err)

	_, err = New(nil, &constEstimator{}, fixedSampler{}, crimes, priorities, Config{Start: start})
	assert.Error(t, err)
	_, err = New(newFCR(t, 1), &constEstimator{}, fixedSampler{}, nil, priorities, Config{Start: start})
	assert.ErrorIs(t, err, ErrEmptyMix)
	_, err = New(newFCR(t, 1), &constEstimator{}, fixedSampler{}, crimes, priorities, Config{})
	assert.Error(t, err)
}

// Package sim drives the dispatcher through simulated time: it generates
// incidents from the rate estimator and location sampler, dispatches the
// backlog and ages active incidents once per tick.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"police/fcr/internal/dispatch"
	"police/fcr/internal/geo"
)

// DefaultTick is used when Config.Tick is not set.
const DefaultTick = 5 * time.Minute

// Estimator returns the incident count expected, or drawn when monteCarlo is
// set, for the window [start, start+d) opening on day.
type Estimator interface {
	Estimate(day time.Weekday, start time.Time, d time.Duration, monteCarlo bool) float64
}

// Sampler returns a location for a crime type.
type Sampler interface {
	Sample(crimeType string) (geo.Point, error)
}

// HistoryStore persists a finished run.
type HistoryStore interface {
	SaveRun(ctx context.Context, summary Summary, incidents []*dispatch.Incident) error
}

// Config sets the simulated window and how it is stepped.
type Config struct {
	Start time.Time
	Tick  time.Duration
	// Duration bounds the run; zero runs until the context is cancelled.
	Duration   time.Duration
	MonteCarlo bool
	Seed       int64
	// Pace is the wall-clock delay between ticks; zero runs flat out.
	Pace time.Duration
}

// Summary describes a run.
type Summary struct {
	RunID        uuid.UUID       `json:"run_id"`
	Start        time.Time       `json:"start"`
	End          time.Time       `json:"end"`
	Ticks        int             `json:"ticks"`
	Created      int             `json:"created"`
	Assigned     int             `json:"assigned"`
	Counts       dispatch.Counts `json:"counts"`
	MeanResponse time.Duration   `json:"mean_response"`
}

// Runner owns the FCR and serialises every access to it.
type Runner struct {
	mu sync.Mutex

	fcr        *dispatch.FCR
	estimator  Estimator
	sampler    Sampler
	crimes     *Mix[string]
	priorities *Mix[dispatch.Priority]
	policy     dispatch.ResolutionPolicy
	history    HistoryStore

	cfg   Config
	log   zerolog.Logger
	rng   *rand.Rand
	runID uuid.UUID

	now      time.Time
	ticks    int
	carry    float64
	created  int
	assigned int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger tags the runner's log lines with component=sim.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) { r.log = log.With().Str("component", "sim").Logger() }
}

// WithResolution replaces the default uniform on-scene time.
func WithResolution(p dispatch.ResolutionPolicy) Option {
	return func(r *Runner) { r.policy = p }
}

// WithHistory saves the run when it finishes.
func WithHistory(h HistoryStore) Option {
	return func(r *Runner) { r.history = h }
}

// New wires a runner. crimes and priorities weight the generated incidents.
func New(fcr *dispatch.FCR, est Estimator, sampler Sampler, crimes *Mix[string], priorities *Mix[dispatch.Priority], cfg Config, opts ...Option) (*Runner, error) {
	if fcr == nil || est == nil || sampler == nil {
		return nil, errors.New("sim: fcr, estimator and sampler are required")
	}
	if crimes == nil || priorities == nil {
		return nil, fmt.Errorf("sim: %w", ErrEmptyMix)
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.Start.IsZero() {
		return nil, errors.New("sim: start time is required")
	}
	r := &Runner{
		fcr:        fcr,
		estimator:  est,
		sampler:    sampler,
		crimes:     crimes,
		priorities: priorities,
		cfg:        cfg,
		log:        zerolog.Nop(),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		runID:      uuid.New(),
		now:        cfg.Start,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.policy == nil {
		r.policy = NewUniformResolution(15*time.Minute, 30*time.Minute, r.rng)
	}
	return r, nil
}

// Rand exposes the runner's source so collaborators can share the seed. Use
// it only from the runner goroutine or under View.
func (r *Runner) Rand() *rand.Rand { return r.rng }

// RunID identifies this run in logs and history.
func (r *Runner) RunID() uuid.UUID { return r.runID }

// Now returns the simulation clock.
func (r *Runner) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now
}

// Run ticks until the configured duration has elapsed or ctx is done. A
// cancelled context ends the run without error.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	r.log.Info().
		Str("run_id", r.runID.String()).
		Time("start", r.cfg.Start).
		Dur("tick", r.cfg.Tick).
		Dur("duration", r.cfg.Duration).
		Bool("monte_carlo", r.cfg.MonteCarlo).
		Msg("simulation started")

	var timer *time.Timer
	if r.cfg.Pace > 0 {
		timer = time.NewTimer(r.cfg.Pace)
		defer timer.Stop()
	}

	end := r.cfg.Start.Add(r.cfg.Duration)
	for r.cfg.Duration == 0 || r.Now().Before(end) {
		if ctx.Err() != nil {
			break
		}
		if err := r.Step(); err != nil {
			return r.Summary(), err
		}
		if timer == nil {
			continue
		}
		select {
		case <-ctx.Done():
		case <-timer.C:
			timer.Reset(r.cfg.Pace)
		}
	}

	summary := r.Summary()
	r.log.Info().
		Str("run_id", r.runID.String()).
		Int("ticks", summary.Ticks).
		Int("created", summary.Created).
		Int("resolved", summary.Counts.Resolved).
		Int("queued", summary.Counts.Reported).
		Dur("mean_response", summary.MeanResponse).
		Msg("simulation finished")

	if r.history != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		r.mu.Lock()
		incidents := r.fcr.Incidents()
		r.mu.Unlock()
		if err := r.history.SaveRun(saveCtx, summary, incidents); err != nil {
			return summary, fmt.Errorf("save run history: %w", err)
		}
	}
	return summary, nil
}

// Step advances the simulation by one tick.
func (r *Runner) Step() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now
	tick := r.cfg.Tick

	n := r.incidentCount(now, tick)
	for i := 0; i < n; i++ {
		if err := r.generate(now); err != nil {
			return err
		}
		r.created++
	}
	assigned := r.fcr.DispatchPending(now)
	if err := r.fcr.Advance(tick, now.Add(tick), r.policy); err != nil {
		return fmt.Errorf("advance at %s: %w", now.Format(time.RFC3339), err)
	}
	r.assigned += assigned
	r.ticks++

	c := r.fcr.Counts()
	r.log.Info().
		Int("tick", r.ticks).
		Time("clock", now).
		Int("new", n).
		Int("assigned", assigned).
		Int("reported", c.Reported).
		Int("active", c.EnRoute+c.Attended).
		Int("resolved", c.Resolved).
		Msg("tick")

	r.now = now.Add(tick)
	return nil
}

// incidentCount turns the estimate into a whole count. Expected values carry
// their fractional part into the next tick.
func (r *Runner) incidentCount(now time.Time, tick time.Duration) int {
	est := r.estimator.Estimate(now.Weekday(), now, tick, r.cfg.MonteCarlo)
	if r.cfg.MonteCarlo {
		return int(math.Max(est, 0))
	}
	r.carry += est
	n := math.Floor(r.carry)
	r.carry -= n
	return int(n)
}

func (r *Runner) generate(now time.Time) error {
	crime := r.crimes.Pick(r.rng)
	loc, err := r.sampler.Sample(crime)
	if err != nil {
		return fmt.Errorf("sample %q: %w", crime, err)
	}
	r.fcr.Register(dispatch.IncidentSpec{
		Priority:   r.priorities.Pick(r.rng),
		CrimeType:  crime,
		Location:   loc,
		ReportTime: now,
	})
	return nil
}

// Inject reports an external incident at the current simulation clock and
// tries to assign it straight away. Recoverable assignment errors are
// returned alongside the incident, which stays queued.
func (r *Runner) Inject(spec dispatch.IncidentSpec) (*dispatch.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if spec.ReportTime.IsZero() {
		spec.ReportTime = r.now
	}
	inc, err := r.fcr.AddIncident(spec, r.now)
	r.created++
	if err == nil {
		r.assigned++
	}
	return inc, err
}

// View runs fn with exclusive access to the FCR.
func (r *Runner) View(fn func(fcr *dispatch.FCR, now time.Time)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.fcr, r.now)
}

// Summary reports the run so far.
func (r *Runner) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total time.Duration
	arrived := 0
	for _, inc := range r.fcr.Incidents() {
		if rt := inc.ResponseTime(); rt > 0 {
			total += rt
			arrived++
		}
	}
	s := Summary{
		RunID:    r.runID,
		Start:    r.cfg.Start,
		End:      r.now,
		Ticks:    r.ticks,
		Created:  r.created,
		Assigned: r.assigned,
		Counts:   r.fcr.Counts(),
	}
	if arrived > 0 {
		s.MeanResponse = total / time.Duration(arrived)
	}
	return s
}

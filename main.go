// Package main wires configuration, the force control room simulation and the
// HTTP API together.
//
// @Title FCR Simulation API
// @Version 0.1.0
// @Description Live view of a simulated police force control room.
// @Server http://localhost:8080 Local development
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"police/fcr/internal/config"
	"police/fcr/internal/database"
	"police/fcr/internal/dispatch"
	"police/fcr/internal/estimator"
	"police/fcr/internal/metrics"
	"police/fcr/internal/sampler"
	"police/fcr/internal/scenario"
	"police/fcr/internal/server"
	"police/fcr/internal/sim"
	"police/fcr/internal/traveltime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("fcr stopped")
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	sc, err := scenario.Load(cfg.Simulation.Scenario)
	if err != nil {
		return err
	}
	stations, err := sc.Build(filepath.Dir(cfg.Simulation.Scenario))
	if err != nil {
		return err
	}

	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err = database.Connect(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	oracle, err := travelTimes(ctx, cfg, pool, logger)
	if err != nil {
		return err
	}

	seed := cfg.Simulation.Seed
	rates, err := estimator.Load(cfg.Data.IncidentRates, rand.NewSource(seed+1))
	if err != nil {
		return err
	}
	points, err := sampler.Load(cfg.Data.CrimePoints, cfg.Data.Border, rand.NewSource(seed+2))
	if err != nil {
		return err
	}
	crimes, err := crimeMix(sc, points)
	if err != nil {
		return err
	}
	priorities, err := sim.NewMix(sc.Priorities())
	if err != nil {
		return err
	}

	fcr := dispatch.New(stations, oracle,
		dispatch.WithLogger(logger),
		dispatch.WithObserver(metrics.New(prometheus.DefaultRegisterer)),
		dispatch.WithISRPrefix(sc.ISRPrefix),
		dispatch.WithNearbyStations(*sc.NearbyStations),
	)

	opts := []sim.Option{
		sim.WithLogger(logger),
		sim.WithResolution(sim.NewUniformResolution(sc.Resolution.Min, sc.Resolution.Max, rand.New(rand.NewSource(seed+3)))),
	}
	if pool != nil {
		opts = append(opts, sim.WithHistory(database.NewHistoryStore(pool, logger)))
	}
	runner, err := sim.New(fcr, rates, points, crimes, priorities, sim.Config{
		Start:      sc.Start,
		Tick:       cfg.Simulation.Tick,
		Duration:   cfg.Simulation.Duration,
		MonteCarlo: cfg.Simulation.MonteCarlo,
		Seed:       seed,
		Pace:       cfg.Simulation.Pace,
	}, opts...)
	if err != nil {
		return err
	}

	logger.Info().
		Int("stations", len(stations)).
		Int("officers", len(fcr.Officers())).
		Strs("crime_types", crimes.Values()).
		Str("run_id", runner.RunID().String()).
		Msg("scenario loaded")

	if cfg.HTTP.Address == "" {
		_, err := runner.Run(ctx)
		return err
	}

	srv, err := server.New(ctx, cfg, logger, runner, oracle)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}
	defer srv.Close()

	// The API keeps serving the final state after a bounded run until shutdown.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := runner.Run(ctx)
		return err
	})
	g.Go(func() error {
		return srv.Run(ctx)
	})
	return g.Wait()
}

// travelTimes picks the oracle: the database tables, then CSV files, then
// straight-line travel.
func travelTimes(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (dispatch.TravelTimer, error) {
	if pool != nil {
		table, err := database.LoadTravelTimes(ctx, pool)
		switch {
		case err == nil:
			logger.Info().Int("points", table.Len()).Int("routes", table.Routes()).Msg("travel times loaded from database")
			return table, nil
		case !errors.Is(err, traveltime.ErrNoPoints):
			return nil, err
		}
	}
	if cfg.Data.RoutePoints != "" && cfg.Data.Routes != "" {
		table, err := traveltime.LoadCSV(cfg.Data.RoutePoints, cfg.Data.Routes)
		if err != nil {
			return nil, err
		}
		logger.Info().Int("points", table.Len()).Int("routes", table.Routes()).Msg("travel times loaded from files")
		return table, nil
	}
	logger.Warn().Float64("speed_mps", cfg.Simulation.SpeedMPS).Msg("no route table, using straight-line travel")
	return traveltime.StraightLine{SpeedMPS: cfg.Simulation.SpeedMPS}, nil
}

func crimeMix(sc scenario.Scenario, points *sampler.Sampler) (*sim.Mix[string], error) {
	if len(sc.CrimeMix) == 0 {
		return sim.Uniform(points.CrimeTypes())
	}
	for _, ct := range sc.CrimeTypes() {
		if _, _, ok := points.Bandwidth(ct); !ok {
			return nil, fmt.Errorf("crime mix: %w: %q", sampler.ErrUnknownCrimeType, ct)
		}
	}
	return sim.NewMix(sc.CrimeMix)
}

func newLogger(cfg config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("env", cfg.Env).Str("app", cfg.AppName).Logger()
	if cfg.Env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC822})
	}
	return logger
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"police/fcr/internal/config"
	"police/fcr/internal/dispatch"
	"police/fcr/internal/sim"
)

// Server exposes the live simulation over HTTP.
type Server struct {
	cfg       config.Config
	log       zerolog.Logger
	runner    *sim.Runner
	oracle    dispatch.TravelTimer
	validate  *validator.Validate
	authMw    *AuthMiddleware
	startedAt time.Time
}

// New prepares the HTTP server. Authentication is only set up when Keycloak is configured.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger, runner *sim.Runner, oracle dispatch.TravelTimer) (*Server, error) {
	if runner == nil || oracle == nil {
		return nil, errors.New("server: runner and travel-time oracle are required")
	}

	srv := &Server{
		cfg:       cfg,
		log:       log.With().Str("component", "http").Logger(),
		runner:    runner,
		oracle:    oracle,
		validate:  newValidator(),
		startedAt: time.Now().UTC(),
	}

	if cfg.Keycloak.Enabled() {
		authMw, err := NewAuthMiddleware(ctx, cfg.Keycloak, srv.log)
		if err != nil {
			return nil, fmt.Errorf("init auth middleware: %w", err)
		}
		srv.authMw = authMw
	} else {
		srv.log.Warn().Msg("keycloak not configured, mutating routes are open")
	}

	return srv, nil
}

// Close releases the JWKS refresher.
func (s *Server) Close() {
	if s.authMw != nil {
		s.authMw.Close()
	}
}

// Run starts the HTTP server and blocks until the context is cancelled or an unrecoverable error occurs.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.HTTP.Address,
		Handler:      s.routes(),
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
		IdleTimeout:  s.cfg.HTTP.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	s.log.Info().Str("addr", s.cfg.HTTP.Address).Msg("http server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("latitude", func(fl validator.FieldLevel) bool {
		val, ok := fl.Field().Interface().(float64)
		if !ok {
			return false
		}
		return val >= -90 && val <= 90
	})
	_ = v.RegisterValidation("longitude", func(fl validator.FieldLevel) bool {
		val, ok := fl.Field().Interface().(float64)
		if !ok {
			return false
		}
		return val >= -180 && val <= 180
	})
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		_, err := dispatch.ParsePriority(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("status_code", func(fl validator.FieldLevel) bool {
		_, err := dispatch.OfficerStatusFromCode(fl.Field().String())
		return err == nil
	})
	return v
}

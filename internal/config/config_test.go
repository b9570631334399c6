package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fcr-sim", cfg.AppName)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 5*time.Minute, cfg.Simulation.Tick)
	assert.True(t, cfg.Simulation.MonteCarlo)
	assert.Empty(t, cfg.Database.URL)
	assert.False(t, cfg.Keycloak.Enabled())
	assert.Equal(t, "dispatcher", cfg.Keycloak.Role)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SIM_TICK", "1m")
	t.Setenv("SIM_MONTE_CARLO", "false")
	t.Setenv("SIM_SEED", "42")
	t.Setenv("DB_URL", "postgres://localhost/fcr")
	t.Setenv("KEYCLOAK_URL", "http://keycloak:8080")
	t.Setenv("DATA_ROUTES", "routes.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Simulation.Tick)
	assert.False(t, cfg.Simulation.MonteCarlo)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)
	assert.Equal(t, "postgres://localhost/fcr", cfg.Database.URL)
	assert.True(t, cfg.Keycloak.Enabled())
	assert.Equal(t, "routes.csv", cfg.Data.Routes)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("SIM_TICK", "soon")
	_, err := Load()
	assert.Error(t, err)
}

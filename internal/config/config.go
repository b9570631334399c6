package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centralises every runtime setting so the rest of the codebase can remain deterministic
// and easy to test. All fields can be overridden using environment variables.
type Config struct {
	AppName    string           `env:"APP_NAME" envDefault:"fcr-sim"`
	Env        string           `env:"APP_ENV" envDefault:"development"`
	LogLevel   string           `env:"LOG_LEVEL" envDefault:"info"`
	HTTP       HTTPConfig       `envPrefix:"HTTP_"`
	Database   DatabaseConfig   `envPrefix:"DB_"`
	Keycloak   KeycloakConfig   `envPrefix:"KEYCLOAK_"`
	Simulation SimulationConfig `envPrefix:"SIM_"`
	Data       DataConfig       `envPrefix:"DATA_"`
}

// HTTPConfig controls the HTTP server behaviour. An empty address disables it.
type HTTPConfig struct {
	Address      string        `env:"ADDRESS" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
}

// DatabaseConfig groups the Postgres settings. An empty URL runs without a
// database: travel times come from files and run history is not kept. An empty
// MigrationsDir applies the migrations compiled into the binary.
type DatabaseConfig struct {
	URL             string        `env:"URL"`
	RunMigrations   bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	MigrationsDir   string        `env:"MIGRATIONS_DIR"`
	MaxConns        int32         `env:"MAX_CONNS" envDefault:"10"`
	MaxConnIdleTime time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"5m"`
	MaxConnLifetime time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"30m"`
}

// KeycloakConfig enables JWT authentication on mutating routes when URL is set.
type KeycloakConfig struct {
	URL       string `env:"URL"`
	PublicURL string `env:"PUBLIC_URL"`
	Realm     string `env:"REALM" envDefault:"fcr"`
	Role      string `env:"ROLE" envDefault:"dispatcher"`
}

// Enabled reports whether tokens are checked.
func (k KeycloakConfig) Enabled() bool { return k.URL != "" }

// SimulationConfig drives the tick loop.
type SimulationConfig struct {
	Scenario   string        `env:"SCENARIO" envDefault:"data/scenario.yaml"`
	Tick       time.Duration `env:"TICK" envDefault:"5m"`
	Duration   time.Duration `env:"DURATION" envDefault:"24h"`
	MonteCarlo bool          `env:"MONTE_CARLO" envDefault:"true"`
	Seed       int64         `env:"SEED" envDefault:"1"`
	Pace       time.Duration `env:"PACE" envDefault:"0s"`
	// SpeedMPS is used for straight-line travel when no route table is loaded.
	SpeedMPS float64 `env:"SPEED_MPS" envDefault:"13.4"`
}

// DataConfig points at the input files. Empty paths fall back to simpler
// collaborators where one exists.
type DataConfig struct {
	IncidentRates string `env:"INCIDENT_RATES" envDefault:"data/incident_rates.csv"`
	CrimePoints   string `env:"CRIME_POINTS" envDefault:"data/crime_points.geojson"`
	Border        string `env:"BORDER"`
	RoutePoints   string `env:"ROUTE_POINTS"`
	Routes        string `env:"ROUTES"`
}

// Load reads configuration from the environment, applying defaults defined above.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

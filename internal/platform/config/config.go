// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// devJWTSecret is only accepted outside production.
const devJWTSecret = "dev-insecure-secret"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains all server configuration parameters.
type Config struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	HTTP  HTTP  `envPrefix:"HTTP_"`
	Store Store `envPrefix:"STORE_"`
	DB    DB    `envPrefix:"DB_"`
	Redis Redis `envPrefix:"REDIS_"`
	JWT   JWT   `envPrefix:"JWT_"`
	Auth  Auth  `envPrefix:"AUTH_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// Store selects the user store implementation.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
}

// DB contains database connection parameters for the sqlite and postgres drivers.
type DB struct {
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"gym.db"`
	Host           string        `env:"HOST" envDefault:"localhost"`
	Port           string        `env:"PORT" envDefault:"5432"`
	User           string        `env:"USER" envDefault:"gym"`
	Password       string        `env:"PASSWORD"`
	Name           string        `env:"NAME" envDefault:"gym"`
	SSLMode        string        `env:"SSLMODE" envDefault:"disable"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"60s"`
	RunMigrations  bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
}

// Redis contains cache and session store parameters.
type Redis struct {
	Enabled  bool          `env:"ENABLED" envDefault:"false"`
	Host     string        `env:"HOST" envDefault:"localhost"`
	Port     string        `env:"PORT" envDefault:"6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// Addr returns host:port.
func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

// JWT contains token signing parameters.
type JWT struct {
	Secret     string        `env:"SECRET"`
	Expiration time.Duration `env:"EXPIRATION" envDefault:"24h"`
}

// Auth contains password policy, session and throttling parameters.
type Auth struct {
	MinPasswordLength    int           `env:"MIN_PASSWORD_LENGTH" envDefault:"6"`
	BcryptCost           int           `env:"BCRYPT_COST" envDefault:"10"`
	MaxSessionsPerUser   int           `env:"MAX_SESSIONS_PER_USER" envDefault:"5"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"10m"`
	LoginAttempts        int           `env:"LOGIN_ATTEMPTS" envDefault:"10"`
	LoginWindow          time.Duration `env:"LOGIN_WINDOW" envDefault:"1m"`
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}
	return Parse()
}

// Parse reads the configuration from environment variables only.
func Parse() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET must be set in production")
		}
		slog.Warn("JWT_SECRET is not set. Using an insecure development secret.")
		c.JWT.Secret = devJWTSecret
	}
	if c.JWT.Expiration <= 0 {
		return errors.New("JWT_EXPIRATION must be positive")
	}
	return nil
}

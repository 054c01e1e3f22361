package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gardonyia/basket/internal/models"
)

// KnownSources lists every source adapter in default registration order
var KnownSources = []models.Source{
	models.SourceSofascore,
	models.SourceFIBA,
	models.SourceRealGM,
	models.SourceEurobasket,
	models.SourceEuroleague,
}

// Config holds all application configuration
type Config struct {
	// Upstream calls
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"8s"`
	SourceTimeout  time.Duration `envconfig:"SOURCE_TIMEOUT" default:"30s"`
	UserAgent      string        `envconfig:"USER_AGENT" default:"basket-matchfinder/1.0 (+https://github.com/gardonyia/basket)"`
	Sources        string        `envconfig:"SOURCES" default:"sofascore,fiba,realgm,eurobasket,euroleague"`
	ParallelSearch bool          `envconfig:"PARALLEL_SEARCH" default:"true"`

	// Source base URLs
	SofascoreBaseURL          string `envconfig:"SOFASCORE_BASE_URL" default:"https://www.sofascore.com"`
	FIBABaseURL               string `envconfig:"FIBA_BASE_URL" default:"https://www.fiba.basketball"`
	RealGMBaseURL             string `envconfig:"REALGM_BASE_URL" default:"https://basketball.realgm.com"`
	EurobasketBaseURL         string `envconfig:"EUROBASKET_BASE_URL" default:"https://www.eurobasket.com"`
	EuroleagueBaseURL         string `envconfig:"EUROLEAGUE_BASE_URL" default:"https://api-live.euroleague.net"`
	EuroleagueBoxScoreBaseURL string `envconfig:"EUROLEAGUE_BOXSCORE_URL" default:"https://live.euroleague.net"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:""`

	// Serve mode
	ServeAddr        string        `envconfig:"SERVE_ADDR" default:":8080"`
	CORSOrigins      string        `envconfig:"CORS_ORIGINS" default:"*"`
	SessionStore     string        `envconfig:"SESSION_STORE" default:"memory"`
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SessionSweepCron string        `envconfig:"SESSION_SWEEP_CRON" default:"*/5 * * * *"`

	// Redis (SESSION_STORE=redis)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Database (SESSION_STORE=postgres)
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"matchfinder"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"matchfinder"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`
}

// Load loads configuration from environment variables.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	if _, err := c.SourceList(); err != nil {
		return err
	}

	switch c.SessionStore {
	case "memory", "redis":
	case "postgres":
		if c.DatabasePassword == "" {
			return fmt.Errorf("DATABASE_PASSWORD is required when SESSION_STORE=postgres")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be memory, redis or postgres, got %q", c.SessionStore)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	return nil
}

// SourceList parses SOURCES into an ordered, duplicate-free source list
func (c *Config) SourceList() ([]models.Source, error) {
	var sources []models.Source
	seen := make(map[models.Source]bool)

	for _, name := range strings.Split(c.Sources, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		source := models.Source(name)
		if !isKnown(source) {
			return nil, fmt.Errorf("SOURCES: unknown source %q", name)
		}
		if seen[source] {
			continue
		}
		seen[source] = true
		sources = append(sources, source)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("SOURCES must name at least one source")
	}
	return sources, nil
}

func isKnown(s models.Source) bool {
	for _, known := range KnownSources {
		if s == known {
			return true
		}
	}
	return false
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or exits on error.
// Use this in main() where we want to fail fast.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

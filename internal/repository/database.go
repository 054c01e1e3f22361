package repository

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Database is the PostgreSQL pool behind the session repository
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Sessions *SessionRepository
}

// Config is the PostgreSQL connection setup
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string

	// SessionTTL is how long a saved session stays readable
	SessionTTL time.Duration
}

// DSN builds the connection string; credentials are escaped
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

const schema = `
CREATE TABLE IF NOT EXISTS matchfinder_sessions (
	id         TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS matchfinder_sessions_expires_at_idx
	ON matchfinder_sessions (expires_at);
`

// NewDatabase opens the pool and checks it with a ping
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	// Configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connected to session database")

	db := &Database{Pool: pool}
	db.Sessions = &SessionRepository{db: db, ttl: cfg.SessionTTL, now: time.Now}

	return db, nil
}

// Migrate creates the tables this service needs
func (db *Database) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the pool
func (db *Database) Close() {
	if db.Pool == nil {
		return
	}
	db.Pool.Close()
	log.Info().Msg("Session database closed")
}

// Health pings the database with a short timeout
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

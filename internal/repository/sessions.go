package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/gardonyia/basket/internal/metrics"
	"github.com/gardonyia/basket/internal/session"
)

const sweepTimeout = 10 * time.Second

// SessionRepository stores finder sessions as JSONB rows with an expiry.
// It satisfies session.Store.
type SessionRepository struct {
	db  *Database
	ttl time.Duration
	now func() time.Time
}

// Save inserts or replaces a session and pushes its expiry forward
func (r *SessionRepository) Save(ctx context.Context, s *session.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	query := `
		INSERT INTO matchfinder_sessions (id, state, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`

	if _, err := r.db.Pool.Exec(ctx, query, s.ID, data, r.now().Add(r.ttl)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	log.Debug().
		Str("session", s.ID).
		Int("candidates", len(s.Candidates)).
		Msg("Session saved")

	return nil
}

// Get returns a session that has not expired yet
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.State, error) {
	query := `
		SELECT state FROM matchfinder_sessions
		WHERE id = $1 AND expires_at > $2
	`

	var data []byte
	err := r.db.Pool.QueryRow(ctx, query, id, r.now()).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s session.State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM matchfinder_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every expired session and returns how many were removed
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM matchfinder_sessions WHERE expires_at <= $1`, r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of live sessions
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM matchfinder_sessions WHERE expires_at > $1`, r.now(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

// Sweep is DeleteExpired for the cron scheduler. Failures are logged and
// counted as zero removed.
func (r *SessionRepository) Sweep() int {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	removed, err := r.DeleteExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Session sweep failed")
		metrics.RecordError("repository", "sweep")
		return 0
	}

	if active, err := r.Count(ctx); err == nil {
		metrics.UpdateSessionStats(active)
	}
	metrics.RecordSessionsSwept(int(removed))

	return int(removed)
}

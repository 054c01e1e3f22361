// Package finder ties one interaction cycle together: search every source,
// keep the results as a session, resolve the user's pick and load its box
// score. The CLI, the TUI and the web server all drive this service.
package finder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/search"
	"github.com/gardonyia/basket/internal/session"
	"github.com/gardonyia/basket/internal/stats"
)

// Service runs searches and selections against a session store
type Service struct {
	aggregator *search.Aggregator
	fetcher    *stats.Fetcher
	store      session.Store
	now        func() time.Time
}

// New creates a service. store may be nil when sessions need not outlive
// the call (one-shot CLI use).
func New(aggregator *search.Aggregator, fetcher *stats.Fetcher, store session.Store) *Service {
	return &Service{
		aggregator: aggregator,
		fetcher:    fetcher,
		store:      store,
		now:        time.Now,
	}
}

// Sources lists the registered sources in registration order
func (s *Service) Sources() []models.Source {
	providers := s.aggregator.Providers()
	out := make([]models.Source, len(providers))
	for i, p := range providers {
		out[i] = p.Source()
	}
	return out
}

// Search validates the raw input, queries every source and starts a new
// session. Only input errors are returned.
func (s *Service) Search(ctx context.Context, query, date, league string) (*session.State, error) {
	req, err := search.NewRequest(query, date, league, s.now())
	if err != nil {
		return nil, err
	}

	results, err := s.aggregator.SearchAll(ctx, req)
	if err != nil {
		return nil, err
	}

	state := session.New(results)
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Select picks candidate idx of state and loads its box score. The
// selection is made on a copy; state itself is left as it was. An empty
// session yields session.ErrNoMatches without any upstream call.
func (s *Service) Select(ctx context.Context, state *session.State, idx int) (*session.State, error) {
	next := state.Clone()
	c, err := next.Select(idx)
	if err != nil {
		return state, err
	}

	if next.Stats == nil {
		next.Stats = s.fetcher.Fetch(ctx, c)
	}

	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// SelectByID loads a stored session and selects idx in it
func (s *Service) SelectByID(ctx context.Context, id string, idx int) (*session.State, error) {
	state, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Select(ctx, state, idx)
}

// Session returns a stored session
func (s *Service) Session(ctx context.Context, id string) (*session.State, error) {
	if s.store == nil {
		return nil, session.ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// BoxScore runs the stat fallback chain for a match known only by source
// and id, as the "stats" command does
func (s *Service) BoxScore(ctx context.Context, source models.Source, matchID, detailURL string) (*stats.Outcome, error) {
	if _, ok := s.aggregator.Provider(source); !ok {
		return nil, fmt.Errorf("source %q is not enabled", source)
	}

	c := models.MatchCandidate{Source: source, MatchID: matchID, DetailURL: detailURL}
	return s.fetcher.Fetch(ctx, c), nil
}

func (s *Service) save(ctx context.Context, state *session.State) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, state); err != nil {
		log.Error().Err(err).Str("session", state.ID).Msg("Failed to save session")
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

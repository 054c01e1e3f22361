package search

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/metrics"
	"github.com/gardonyia/basket/internal/models"
)

// Provider is one source adapter. Search returns whatever candidates it
// could parse together with the first failure it hit; a non-nil error does
// not discard the candidates returned alongside it.
type Provider interface {
	Source() models.Source
	Search(ctx context.Context, req Request) ([]models.MatchCandidate, error)
}

// SourceReport summarizes one provider's contribution to a search
type SourceReport struct {
	Source   models.Source `json:"source"`
	Count    int           `json:"count"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// ErrorKind returns the failure category, empty when the source succeeded
func (r SourceReport) ErrorKind() string {
	if r.Err == nil {
		return ""
	}
	if kind := client.KindOf(r.Err); kind != "" {
		return string(kind)
	}
	return "unknown"
}

// Results is the aggregated outcome of one search
type Results struct {
	Request    Request                 `json:"request"`
	Candidates []models.MatchCandidate `json:"candidates"`
	Reports    []SourceReport          `json:"sources"`
}

// Empty reports whether no source produced a candidate
func (r *Results) Empty() bool {
	return len(r.Candidates) == 0
}

// Sources returns the queried sources in registration order
func (r *Results) Sources() []models.Source {
	out := make([]models.Source, len(r.Reports))
	for i, rep := range r.Reports {
		out[i] = rep.Source
	}
	return out
}

// AggregatorConfig tunes the fan-out
type AggregatorConfig struct {
	// Parallel runs providers concurrently; results keep registration order
	Parallel bool
	// SourceTimeout bounds one provider's whole search, all of its calls included
	SourceTimeout time.Duration
}

// Aggregator runs every registered provider and concatenates their output
type Aggregator struct {
	providers []Provider
	cfg       AggregatorConfig
}

// NewAggregator creates an aggregator over providers in registration order
func NewAggregator(providers []Provider, cfg AggregatorConfig) *Aggregator {
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = 30 * time.Second
	}
	return &Aggregator{providers: providers, cfg: cfg}
}

// Providers returns the registered providers
func (a *Aggregator) Providers() []Provider {
	return a.providers
}

// Provider looks up a registered provider by source
func (a *Aggregator) Provider(source models.Source) (Provider, bool) {
	for _, p := range a.providers {
		if p.Source() == source {
			return p, true
		}
	}
	return nil, false
}

// SearchAll validates req and queries every provider. Only validation
// errors are returned; provider failures are recorded in the reports.
func (a *Aggregator) SearchAll(ctx context.Context, req Request) (*Results, error) {
	if err := req.Validate(); err != nil {
		metrics.RecordSearch("invalid", 0)
		return nil, err
	}

	start := time.Now()
	slots := make([][]models.MatchCandidate, len(a.providers))
	reports := make([]SourceReport, len(a.providers))

	run := func(i int) {
		slots[i], reports[i] = a.runProvider(ctx, a.providers[i], req)
	}

	if a.cfg.Parallel {
		var g errgroup.Group
		for i := range a.providers {
			i := i
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range a.providers {
			run(i)
		}
	}

	results := &Results{Request: req, Reports: reports, Candidates: []models.MatchCandidate{}}
	for _, slot := range slots {
		results.Candidates = append(results.Candidates, slot...)
	}

	outcome := "found"
	if results.Empty() {
		outcome = "empty"
	}
	metrics.RecordSearch(outcome, time.Since(start).Seconds())

	log.Info().
		Str("query", req.Query).
		Str("date", req.Day()).
		Str("league", string(req.League)).
		Int("candidates", len(results.Candidates)).
		Dur("duration", time.Since(start)).
		Msg("Search completed")

	return results, nil
}

func (a *Aggregator) runProvider(ctx context.Context, p Provider, req Request) (candidates []models.MatchCandidate, report SourceReport) {
	source := p.Source()
	start := time.Now()
	report.Source = source

	defer func() {
		if r := recover(); r != nil {
			candidates = nil
			report.Count = 0
			report.Err = client.ParseError(string(source), "", fmt.Errorf("adapter panic: %v", r))
			report.Duration = time.Since(start)
			log.Error().Str("source", string(source)).Interface("panic", r).Msg("Source adapter panicked")
			metrics.RecordError("adapter", "panic")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.SourceTimeout)
	defer cancel()

	found, err := p.Search(ctx, req)

	candidates = make([]models.MatchCandidate, 0, len(found))
	for _, c := range found {
		if c.Valid() {
			candidates = append(candidates, c)
		}
	}

	report.Count = len(candidates)
	report.Err = err
	report.Duration = time.Since(start)
	metrics.RecordCandidates(string(source), len(candidates))

	if err != nil {
		log.Warn().
			Err(err).
			Str("source", string(source)).
			Str("kind", report.ErrorKind()).
			Int("candidates", len(candidates)).
			Msg("Source search failed")
	} else {
		log.Debug().
			Str("source", string(source)).
			Int("candidates", len(candidates)).
			Msg("Source search completed")
	}

	return candidates, report
}

// Package stats loads the box score of one selected match. It tries the
// source's structured detail call first, then scrapes the match page for a
// table with a points column, and otherwise gives up with UNAVAILABLE.
package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/metrics"
	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/scrape"
	"github.com/gardonyia/basket/internal/search"
)

// State is a step of one box score lookup
type State string

const (
	StateNotAttempted       State = "NOT_ATTEMPTED"
	StateTryingStructured   State = "TRYING_STRUCTURED"
	StateTryingHTMLFallback State = "TRYING_HTML_FALLBACK"
	StateLoaded             State = "LOADED"
	StateUnavailable        State = "UNAVAILABLE"
)

// Terminal reports whether no further transition can happen
func (s State) Terminal() bool {
	return s == StateLoaded || s == StateUnavailable
}

// Stage names a fetch strategy
type Stage string

const (
	StageStructured Stage = "structured"
	StageHTML       Stage = "html_fallback"
)

// StructuredSource is implemented by providers with a per-match detail call
type StructuredSource interface {
	Source() models.Source
	BoxScore(ctx context.Context, c models.MatchCandidate) ([]models.StatRow, error)
}

// PageSource is implemented by providers that know where a match page
// lives when the candidate carries no detail URL
type PageSource interface {
	MatchPageURL(c models.MatchCandidate) string
}

// Attempt records one strategy that was tried or skipped
type Attempt struct {
	Stage   Stage  `json:"stage"`
	URL     string `json:"url,omitempty"`
	Rows    int    `json:"rows"`
	Skipped string `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// Outcome is the result of one lookup. Rows is empty unless State is LOADED.
type Outcome struct {
	Source   models.Source    `json:"source"`
	MatchID  string           `json:"match_id,omitempty"`
	State    State            `json:"state"`
	Trace    []State          `json:"trace"`
	Rows     []models.StatRow `json:"rows,omitempty"`
	Attempts []Attempt        `json:"attempts"`
}

// Loaded reports whether player rows are available
func (o *Outcome) Loaded() bool {
	return o.State == StateLoaded
}

// Stage returns the stage that produced the rows, or the last one tried
func (o *Outcome) Stage() Stage {
	if len(o.Attempts) == 0 {
		return ""
	}
	return o.Attempts[len(o.Attempts)-1].Stage
}

func (o *Outcome) transition(s State) {
	o.State = s
	o.Trace = append(o.Trace, s)
}

// Fetcher runs the fallback chain
type Fetcher struct {
	structured map[models.Source]StructuredSource
	pages      map[models.Source]PageSource
	html       *client.Client
}

// NewFetcher indexes the providers by the optional capabilities they
// implement. opts configures the client used for the HTML fallback.
func NewFetcher(providers []search.Provider, opts client.Options) *Fetcher {
	f := &Fetcher{
		structured: make(map[models.Source]StructuredSource),
		pages:      make(map[models.Source]PageSource),
		html:       client.New("html_fallback", opts),
	}

	for _, p := range providers {
		if s, ok := p.(StructuredSource); ok {
			f.structured[p.Source()] = s
		}
		if s, ok := p.(PageSource); ok {
			f.pages[p.Source()] = s
		}
	}

	return f
}

// SupportsStructured reports whether source has a detail call
func (f *Fetcher) SupportsStructured(source models.Source) bool {
	_, ok := f.structured[source]
	return ok
}

// Fetch walks the fallback chain for c. It never fails: every path ends in
// LOADED with at least one row or in UNAVAILABLE.
func (f *Fetcher) Fetch(ctx context.Context, c models.MatchCandidate) *Outcome {
	start := time.Now()
	out := &Outcome{Source: c.Source, MatchID: c.MatchID}
	out.transition(StateNotAttempted)

	if rows, ok := f.tryStructured(ctx, c, out); ok {
		return f.finish(out, rows, start)
	}

	if rows, ok := f.tryHTML(ctx, c, out); ok {
		return f.finish(out, rows, start)
	}

	return f.finish(out, nil, start)
}

func (f *Fetcher) tryStructured(ctx context.Context, c models.MatchCandidate, out *Outcome) ([]models.StatRow, bool) {
	src, ok := f.structured[c.Source]
	if !ok {
		out.Attempts = append(out.Attempts, Attempt{Stage: StageStructured, Skipped: "source has no detail endpoint"})
		return nil, false
	}
	if !c.HasMatchID() {
		out.Attempts = append(out.Attempts, Attempt{Stage: StageStructured, Skipped: "no match id"})
		return nil, false
	}

	out.transition(StateTryingStructured)
	rows, err := src.BoxScore(ctx, c)
	out.Attempts = append(out.Attempts, attemptOf(StageStructured, "", rows, err))

	return rows, len(rows) > 0
}

func (f *Fetcher) tryHTML(ctx context.Context, c models.MatchCandidate, out *Outcome) ([]models.StatRow, bool) {
	pageURL := c.DetailURL
	if pageURL == "" {
		if pages, ok := f.pages[c.Source]; ok {
			pageURL = pages.MatchPageURL(c)
		}
	}

	if pageURL == "" {
		out.Attempts = append(out.Attempts, Attempt{Stage: StageHTML, Skipped: "no match page url"})
		return nil, false
	}

	out.transition(StateTryingHTMLFallback)
	var rows []models.StatRow
	doc, err := f.html.GetDocument(ctx, string(c.Source), pageURL)
	if err == nil {
		rows = scrape.StatTables(doc)
	}
	out.Attempts = append(out.Attempts, attemptOf(StageHTML, pageURL, rows, err))

	return rows, len(rows) > 0
}

func (f *Fetcher) finish(out *Outcome, rows []models.StatRow, start time.Time) *Outcome {
	if len(rows) > 0 {
		out.Rows = rows
		out.transition(StateLoaded)
	} else {
		out.Rows = nil
		out.transition(StateUnavailable)
	}

	metrics.RecordStatOutcome(string(out.Source), string(out.State), string(out.Stage()))

	log.Info().
		Str("source", string(out.Source)).
		Str("match_id", out.MatchID).
		Str("state", string(out.State)).
		Str("stage", string(out.Stage())).
		Int("rows", len(out.Rows)).
		Dur("duration", time.Since(start)).
		Msg("Box score lookup finished")

	return out
}

func attemptOf(stage Stage, url string, rows []models.StatRow, err error) Attempt {
	a := Attempt{Stage: stage, URL: url, Rows: len(rows)}
	if err != nil {
		a.Error = err.Error()
		a.Kind = string(client.KindOf(err))
	}
	return a
}

// Package session holds the explicit state of one search interaction: the
// request, its candidates, the user's selection and the loaded box score.
// A new search always starts a new State.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/search"
	"github.com/gardonyia/basket/internal/stats"
)

var (
	ErrNoMatches           = errors.New("no matches found")
	ErrSelectionOutOfRange = errors.New("selection out of range")
	ErrNotFound            = errors.New("session not found")
)

// NoSelection marks a state where the user has not picked a candidate yet
const NoSelection = -1

// SourceStatus is the stored form of a search.SourceReport
type SourceStatus struct {
	Source models.Source `json:"source"`
	Count  int           `json:"count"`
	Error  string        `json:"error,omitempty"`
	Kind   string        `json:"kind,omitempty"`
}

// State is everything one interaction cycle knows
type State struct {
	ID         string                  `json:"id"`
	CreatedAt  time.Time               `json:"created_at"`
	Request    search.Request          `json:"request"`
	Candidates []models.MatchCandidate `json:"candidates"`
	Sources    []SourceStatus          `json:"sources"`
	Selected   int                     `json:"selected"`
	Stats      *stats.Outcome          `json:"stats,omitempty"`
}

// New starts a state from search results
func New(results *search.Results) *State {
	s := &State{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Request:    results.Request,
		Candidates: results.Candidates,
		Selected:   NoSelection,
	}
	if s.Candidates == nil {
		s.Candidates = []models.MatchCandidate{}
	}

	for _, r := range results.Reports {
		status := SourceStatus{Source: r.Source, Count: r.Count}
		if r.Err != nil {
			status.Error = r.Err.Error()
			status.Kind = r.ErrorKind()
		}
		s.Sources = append(s.Sources, status)
	}

	return s
}

// Clone returns a copy that can be changed without touching s. The loaded
// Outcome is shared; nothing mutates it after the fetch.
func (s *State) Clone() *State {
	c := *s
	if s.Candidates != nil {
		c.Candidates = append(make([]models.MatchCandidate, 0, len(s.Candidates)), s.Candidates...)
	}
	if s.Sources != nil {
		c.Sources = append(make([]SourceStatus, 0, len(s.Sources)), s.Sources...)
	}
	return &c
}

// Empty reports whether the search found nothing
func (s *State) Empty() bool {
	return len(s.Candidates) == 0
}

// Select records idx as the chosen candidate. Choosing a candidate drops
// any stats loaded for a previous choice.
func (s *State) Select(idx int) (models.MatchCandidate, error) {
	c, err := Select(s.Candidates, idx)
	if err != nil {
		return models.MatchCandidate{}, err
	}
	if s.Selected != idx {
		s.Stats = nil
	}
	s.Selected = idx
	return c, nil
}

// Selection returns the chosen candidate, if any
func (s *State) Selection() (models.MatchCandidate, bool) {
	if s.Selected == NoSelection {
		return models.MatchCandidate{}, false
	}
	c, err := Select(s.Candidates, s.Selected)
	if err != nil {
		return models.MatchCandidate{}, false
	}
	return c, true
}

// Select resolves a selection index against a candidate list
func Select(candidates []models.MatchCandidate, idx int) (models.MatchCandidate, error) {
	if len(candidates) == 0 {
		return models.MatchCandidate{}, ErrNoMatches
	}
	if idx < 0 || idx >= len(candidates) {
		return models.MatchCandidate{}, fmt.Errorf("%w: %d not in [0, %d)", ErrSelectionOutOfRange, idx, len(candidates))
	}
	return candidates[idx], nil
}

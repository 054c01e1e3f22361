package models

import (
	"fmt"
	"strings"
)

// Source identifies the upstream data source a candidate came from
type Source string

const (
	SourceSofascore  Source = "sofascore"
	SourceFIBA       Source = "fiba"
	SourceRealGM     Source = "realgm"
	SourceEurobasket Source = "eurobasket"
	SourceEuroleague Source = "euroleague"
)

// DisplayName returns the human readable source name
func (s Source) DisplayName() string {
	switch s {
	case SourceSofascore:
		return "Sofascore"
	case SourceFIBA:
		return "FIBA"
	case SourceRealGM:
		return "RealGM"
	case SourceEurobasket:
		return "Eurobasket"
	case SourceEuroleague:
		return "Euroleague"
	default:
		return string(s)
	}
}

// UnknownScore is shown whenever a score value is not known
const UnknownScore = "?"

// MatchCandidate is one unconfirmed match returned by a source adapter
type MatchCandidate struct {
	Source      Source `json:"source"`
	Home        string `json:"home"`
	Away        string `json:"away"`
	Score       string `json:"score"`
	MatchID     string `json:"match_id,omitempty"`
	DetailURL   string `json:"detail_url,omitempty"`
	Competition string `json:"competition,omitempty"`
}

// Valid reports whether both team names are present
func (m MatchCandidate) Valid() bool {
	return strings.TrimSpace(m.Home) != "" && strings.TrimSpace(m.Away) != ""
}

// HasMatchID reports whether the source supplied an id for later lookups
func (m MatchCandidate) HasMatchID() bool {
	return m.MatchID != ""
}

// Label is the single-line label used by every selectable list
func (m MatchCandidate) Label() string {
	return fmt.Sprintf("%s - %s (%s)", m.Home, m.Away, m.Source.DisplayName())
}

// CandidateInput is the loose shape adapters fill in before validation
type CandidateInput struct {
	Home        string
	Away        string
	HomeScore   string
	AwayScore   string
	MatchID     string
	DetailURL   string
	Competition string
}

// ToCandidate trims the input and converts it to a MatchCandidate.
// The second return value is false when the record must be dropped.
func (ci *CandidateInput) ToCandidate(source Source) (MatchCandidate, bool) {
	candidate := MatchCandidate{
		Source:      source,
		Home:        strings.TrimSpace(ci.Home),
		Away:        strings.TrimSpace(ci.Away),
		Score:       UnknownScore,
		MatchID:     strings.TrimSpace(ci.MatchID),
		DetailURL:   strings.TrimSpace(ci.DetailURL),
		Competition: strings.TrimSpace(ci.Competition),
	}

	home := strings.TrimSpace(ci.HomeScore)
	away := strings.TrimSpace(ci.AwayScore)
	if home != "" || away != "" {
		candidate.Score = FormatScore(home, away)
	}

	return candidate, candidate.Valid()
}

// FormatScore joins two score halves, substituting "?" for missing ones
func FormatScore(home, away string) string {
	if home == "" {
		home = UnknownScore
	}
	if away == "" {
		away = UnknownScore
	}
	return home + " - " + away
}

// NormalizeScore renders any stored score in "home - away" form.
// A bare "?" or an empty score becomes "? - ?".
func NormalizeScore(score string) string {
	score = strings.TrimSpace(score)
	if score == "" || score == UnknownScore {
		return FormatScore("", "")
	}

	parts := strings.SplitN(score, "-", 2)
	if len(parts) != 2 {
		return score
	}
	return FormatScore(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
}

package search

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the date format accepted from users and sent upstream
const DateLayout = "2006-01-02"

var (
	ErrEmptyQuery    = errors.New("please enter a team name")
	ErrInvalidDate   = errors.New("date must look like YYYY-MM-DD")
	ErrUnknownLeague = errors.New("unknown league")
)

// League narrows the competition-specific sources
type League string

const (
	LeagueAll        League = ""
	LeagueEuroleague League = "euroleague"
	LeagueEurocup    League = "eurocup"
)

// Leagues lists the selectable leagues in display order
var Leagues = []League{LeagueAll, LeagueEuroleague, LeagueEurocup}

// DisplayName returns the label shown in selectors
func (l League) DisplayName() string {
	switch l {
	case LeagueEuroleague:
		return "EuroLeague"
	case LeagueEurocup:
		return "EuroCup"
	default:
		return "All leagues"
	}
}

// ParseLeague accepts the league names case-insensitively; "all" and ""
// both mean no restriction
func ParseLeague(s string) (League, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return LeagueAll, nil
	case "euroleague", "e":
		return LeagueEuroleague, nil
	case "eurocup", "u":
		return LeagueEurocup, nil
	}
	return LeagueAll, fmt.Errorf("%w: %q", ErrUnknownLeague, s)
}

// Request is one user search: a day and a free-text team query
type Request struct {
	Query  string    `json:"query"`
	Date   time.Time `json:"date"`
	League League    `json:"league,omitempty"`
}

// NewRequest builds a validated request from raw form values.
// An empty date means today.
func NewRequest(query, date, league string, now time.Time) (Request, error) {
	req := Request{Query: strings.TrimSpace(query)}

	if strings.TrimSpace(date) == "" {
		req.Date = truncateDay(now)
	} else {
		d, err := time.Parse(DateLayout, strings.TrimSpace(date))
		if err != nil {
			return Request{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
		req.Date = d
	}

	l, err := ParseLeague(league)
	if err != nil {
		return Request{}, err
	}
	req.League = l

	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks the request before any source is called
func (r Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the date in upstream format
func (r Request) Day() string {
	return r.Date.Format(DateLayout)
}

// Year returns the calendar year of the request date
func (r Request) Year() int {
	return r.Date.Year()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Package present renders a session for terminals: the results count, the
// selectable labels, the chosen match summary and the box score table.
package present

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/search"
	"github.com/gardonyia/basket/internal/session"
	"github.com/gardonyia/basket/internal/stats"
)

// User-facing messages
const (
	MsgNoMatches        = "No matches found for this team on this day. Try another spelling (e.g. the full name)."
	MsgStatsUnavailable = "Statistics unavailable for this match."
	MsgPickOne          = "Pick the one you want."
)

// Output formats
const (
	FormatTable = "table"
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// ValidFormat reports whether f is a known output format
func ValidFormat(f string) bool {
	return f == FormatTable || f == FormatPlain || f == FormatJSON
}

// CountLine is the line shown above a non-empty result list
func CountLine(n int) string {
	noun := "matches"
	if n == 1 {
		noun = "match"
	}
	return fmt.Sprintf("%d %s found. %s", n, noun, MsgPickOne)
}

// ValidationMessage turns an input error into the text shown to the user
func ValidationMessage(err error) string {
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		return "Please enter a team name (e.g. Partizan, Bayern, Szolnok, Falco)."
	case errors.Is(err, search.ErrInvalidDate):
		return "Please enter the date as YYYY-MM-DD."
	case errors.Is(err, search.ErrUnknownLeague):
		return "Unknown league. Choose all, euroleague or eurocup."
	case errors.Is(err, session.ErrSelectionOutOfRange):
		return "That row does not exist. Pick a number from the list."
	default:
		return err.Error()
	}
}

// Summary is the rendered form of the chosen match
type Summary struct {
	Title       string `json:"title"`
	Score       string `json:"score"`
	Source      string `json:"source"`
	Competition string `json:"competition,omitempty"`
	DetailURL   string `json:"detail_url,omitempty"`
}

// Summarize builds the summary of a candidate with a normalized score
func Summarize(c models.MatchCandidate) Summary {
	return Summary{
		Title:       fmt.Sprintf("%s – %s", c.Home, c.Away),
		Score:       models.NormalizeScore(c.Score),
		Source:      c.Source.DisplayName(),
		Competition: c.Competition,
		DetailURL:   c.DetailURL,
	}
}

// StatsView is the box score section as shown to the user
type StatsView struct {
	Available bool       `json:"available"`
	Message   string     `json:"message,omitempty"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows,omitempty"`
}

// ViewStats renders an outcome. Anything but LOADED is "unavailable".
func ViewStats(o *stats.Outcome) StatsView {
	view := StatsView{Columns: models.StatColumns}
	if o == nil || !o.Loaded() || len(o.Rows) == 0 {
		view.Message = MsgStatsUnavailable
		return view
	}

	view.Available = true
	for _, row := range o.Rows {
		view.Rows = append(view.Rows, row.Values())
	}
	return view
}

// SourceLine is one entry of the "Sources" footer
func SourceLine(s session.SourceStatus) string {
	line := fmt.Sprintf("%s: %d", s.Source.DisplayName(), s.Count)
	if s.Kind != "" {
		line += fmt.Sprintf(" (failed: %s)", s.Kind)
	}
	return line
}

// View is the JSON document printed by "search -o json"
type View struct {
	SessionID  string                  `json:"session_id"`
	Query      string                  `json:"query"`
	Date       string                  `json:"date"`
	League     string                  `json:"league,omitempty"`
	Message    string                  `json:"message"`
	Candidates []models.MatchCandidate `json:"candidates"`
	Labels     []string                `json:"labels"`
	Selected   *int                    `json:"selected,omitempty"`
	Summary    *Summary                `json:"summary,omitempty"`
	Stats      *StatsView              `json:"stats,omitempty"`
	Sources    []session.SourceStatus  `json:"sources"`
}

// NewView builds the serializable view of a session
func NewView(s *session.State) View {
	v := View{
		SessionID:  s.ID,
		Query:      s.Request.Query,
		Date:       s.Request.Day(),
		League:     string(s.Request.League),
		Candidates: s.Candidates,
		Labels:     make([]string, 0, len(s.Candidates)),
		Sources:    s.Sources,
	}

	if s.Empty() {
		v.Message = MsgNoMatches
	} else {
		v.Message = CountLine(len(s.Candidates))
	}

	for _, c := range s.Candidates {
		v.Labels = append(v.Labels, c.Label())
	}

	if c, ok := s.Selection(); ok {
		idx := s.Selected
		summary := Summarize(c)
		statsView := ViewStats(s.Stats)
		v.Selected = &idx
		v.Summary = &summary
		v.Stats = &statsView
	}

	return v
}

// Printer writes sessions in one output format
type Printer struct {
	w      io.Writer
	format string
}

// NewPrinter creates a printer; unknown formats fall back to table
func NewPrinter(w io.Writer, format string) *Printer {
	if !ValidFormat(format) {
		format = FormatTable
	}
	return &Printer{w: w, format: format}
}

// Session prints the result list and, when a candidate is selected, its
// summary and box score
func (p *Printer) Session(s *session.State) error {
	if p.format == FormatJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewView(s))
	}

	if s.Empty() {
		fmt.Fprintln(p.w, MsgNoMatches)
		p.sources(s.Sources)
		return nil
	}

	p.candidates(s)

	if _, ok := s.Selection(); ok {
		fmt.Fprintln(p.w)
		p.Match(s)
	}

	p.sources(s.Sources)
	return nil
}

// Match prints the summary and box score of the selected candidate.
// It prints nothing when no candidate is selected.
func (p *Printer) Match(s *session.State) {
	c, ok := s.Selection()
	if !ok {
		return
	}
	p.summary(Summarize(c))
	fmt.Fprintln(p.w)
	p.stats(ViewStats(s.Stats))
}

func (p *Printer) candidates(s *session.State) {
	fmt.Fprintln(p.w, CountLine(len(s.Candidates)))

	if p.format == FormatPlain {
		for i, c := range s.Candidates {
			fmt.Fprintf(p.w, "%d. %s\n", i+1, c.Label())
		}
		return
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "#\tHOME\tAWAY\tSCORE\tSOURCE\n")
	for i, c := range s.Candidates {
		marker := ""
		if i == s.Selected {
			marker = "*"
		}
		fmt.Fprintf(w, "%d%s\t%s\t%s\t%s\t%s\n", i+1, marker, c.Home, c.Away, models.NormalizeScore(c.Score), c.Source.DisplayName())
	}
	w.Flush()
}

func (p *Printer) summary(sum Summary) {
	fmt.Fprintln(p.w, sum.Title)
	fmt.Fprintf(p.w, "Score: %s\n", sum.Score)
	fmt.Fprintf(p.w, "Source: %s\n", sum.Source)
	if sum.Competition != "" {
		fmt.Fprintf(p.w, "Competition: %s\n", sum.Competition)
	}
}

func (p *Printer) stats(view StatsView) {
	if !view.Available {
		fmt.Fprintln(p.w, view.Message)
		return
	}

	if p.format == FormatPlain {
		for _, row := range view.Rows {
			fmt.Fprintln(p.w, strings.Join(row, " | "))
		}
		return
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(view.Columns, "\t")))
	for _, row := range view.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func (p *Printer) sources(list []session.SourceStatus) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "Sources:")
	for _, s := range list {
		fmt.Fprintf(p.w, "- %s\n", SourceLine(s))
	}
}

// Outcome prints a standalone box score lookup ("stats" command)
func (p *Printer) Outcome(o *stats.Outcome) error {
	if p.format == FormatJSON {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*stats.Outcome
			View StatsView `json:"view"`
		}{o, ViewStats(o)})
	}

	p.stats(ViewStats(o))
	return nil
}

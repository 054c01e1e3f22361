// Package sofascore adapts the Sofascore JSON API: team search by name,
// then each team's events on the requested day.
package sofascore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/lookup"
	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/search"
)

const (
	BaseURL = "https://www.sofascore.com"

	// maxTeams caps how many search hits get an events lookup
	maxTeams = 10
)

// Provider searches Sofascore
type Provider struct {
	client  *client.Client
	baseURL string
}

// New creates a Sofascore provider. An empty baseURL uses the public site.
func New(baseURL string, opts client.Options) *Provider {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Provider{
		client:  client.New(string(models.SourceSofascore), opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *Provider) Source() models.Source {
	return models.SourceSofascore
}

// Search finds the teams matching the query and lists their events on the
// requested day. A failed events call skips that team only.
func (p *Provider) Search(ctx context.Context, req search.Request) ([]models.MatchCandidate, error) {
	teamIDs, err := p.searchTeams(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	var candidates []models.MatchCandidate
	var firstErr error

	for _, teamID := range teamIDs {
		events, err := p.teamEvents(ctx, teamID, req.Day())
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, ev := range events {
			if c, ok := toCandidate(ev); ok {
				candidates = append(candidates, c)
			}
		}
	}

	return candidates, firstErr
}

func (p *Provider) searchTeams(ctx context.Context, query string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/team-search/%s", p.baseURL, url.PathEscape(query))

	data, err := p.client.GetJSON(ctx, "team_search", endpoint)
	if err != nil {
		return nil, err
	}

	if _, ok := lookup.Value(data, "teams"); !ok {
		return nil, client.ParseError(p.client.Source(), endpoint, errors.New("response has no teams list"))
	}

	var ids []string
	for _, team := range lookup.Slice(data, "teams") {
		id := lookup.String(team, "", "id", "team.id")
		if id == "" {
			continue
		}
		ids = append(ids, id)
		if len(ids) == maxTeams {
			break
		}
	}

	log.Debug().Str("query", query).Int("teams", len(ids)).Msg("Sofascore team search")
	return ids, nil
}

func (p *Provider) teamEvents(ctx context.Context, teamID, day string) ([]interface{}, error) {
	endpoint := fmt.Sprintf("%s/api/v1/team/%s/events/date/%s", p.baseURL, url.PathEscape(teamID), day)

	data, err := p.client.GetJSON(ctx, "team_events", endpoint)
	if err != nil {
		return nil, err
	}
	return lookup.Slice(data, "events"), nil
}

func toCandidate(ev interface{}) (models.MatchCandidate, bool) {
	input := models.CandidateInput{
		Home:        lookup.String(ev, "", "homeTeam.name", "homeTeam.shortName"),
		Away:        lookup.String(ev, "", "awayTeam.name", "awayTeam.shortName"),
		HomeScore:   lookup.String(ev, "", "homeScore.current", "homeScore.display"),
		AwayScore:   lookup.String(ev, "", "awayScore.current", "awayScore.display"),
		MatchID:     lookup.String(ev, "", "id"),
		Competition: lookup.String(ev, "", "tournament.name", "tournament.uniqueTournament.name"),
	}
	return input.ToCandidate(models.SourceSofascore)
}

// BoxScore fetches the per-player statistics of one event
func (p *Provider) BoxScore(ctx context.Context, c models.MatchCandidate) ([]models.StatRow, error) {
	endpoint := fmt.Sprintf("%s/api/v1/event/%s/statistics", p.baseURL, url.PathEscape(c.MatchID))

	data, err := p.client.GetJSON(ctx, "event_statistics", endpoint)
	if err != nil {
		return nil, err
	}

	var rows []models.StatRow
	for _, block := range lookup.Slice(data, "statistics") {
		team := lookup.String(block, "", "team.name", "team.shortName")
		for _, player := range lookup.Slice(block, "players") {
			input := models.StatRowInput{
				Team:     team,
				Player:   lookup.String(player, "", "player.name", "name"),
				Points:   lookup.Raw(player, "points", "statistics.points"),
				Assists:  lookup.Raw(player, "assists", "statistics.assists"),
				Rebounds: lookup.Raw(player, "rebounds", "statistics.rebounds"),
			}
			if row, ok := input.ToStatRow(); ok {
				rows = append(rows, row)
			}
		}
	}

	return rows, nil
}

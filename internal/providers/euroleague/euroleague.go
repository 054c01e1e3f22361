// Package euroleague adapts the official EuroLeague / EuroCup results API.
// It only covers those two competitions and matches teams by name or by
// three-letter club code.
package euroleague

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/lookup"
	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/search"
)

const (
	BaseURL         = "https://api-live.euroleague.net"
	BoxScoreBaseURL = "https://live.euroleague.net"

	CompetitionEuroleague = "E"
	CompetitionEurocup    = "U"
)

// ErrBadGameID is returned for match ids not produced by this provider
var ErrBadGameID = errors.New("euroleague: match id must look like SEASON:GAMECODE")

// Provider searches the official EuroLeague API
type Provider struct {
	client      *client.Client
	baseURL     string
	boxScoreURL string
}

// New creates a provider. Empty URLs use the public endpoints.
func New(baseURL, boxScoreURL string, opts client.Options) *Provider {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if boxScoreURL == "" {
		boxScoreURL = BoxScoreBaseURL
	}
	return &Provider{
		client:      client.New(string(models.SourceEuroleague), opts),
		baseURL:     strings.TrimRight(baseURL, "/"),
		boxScoreURL: strings.TrimRight(boxScoreURL, "/"),
	}
}

func (p *Provider) Source() models.Source {
	return models.SourceEuroleague
}

// CompetitionCode maps the league selector to the API competition code
func CompetitionCode(league search.League) string {
	if league == search.LeagueEurocup {
		return CompetitionEurocup
	}
	return CompetitionEuroleague
}

// SeasonCode returns the season a date falls in, e.g. E2023 for March 2024.
// Seasons start in August.
func SeasonCode(competition string, date time.Time) string {
	year := date.Year()
	if date.Month() < time.August {
		year--
	}
	return competition + strconv.Itoa(year)
}

// GameID joins a season code and a game code into one match id
func GameID(season, gameCode string) string {
	return season + ":" + gameCode
}

// SplitGameID is the inverse of GameID
func SplitGameID(id string) (season, gameCode string, err error) {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadGameID, id)
	}
	return parts[0], parts[1], nil
}

// Search lists the season's games and keeps those played on the requested
// day where either club matches the query
func (p *Provider) Search(ctx context.Context, req search.Request) ([]models.MatchCandidate, error) {
	competition := CompetitionCode(req.League)
	season := SeasonCode(competition, req.Date)
	gamesURL := fmt.Sprintf("%s/v2/competitions/%s/seasons/%s/games", p.baseURL, competition, season)

	data, err := p.client.GetJSON(ctx, "season_games", gamesURL)
	if err != nil {
		return nil, err
	}

	games := lookup.Slice(data, "data", "games")
	if games == nil {
		return nil, client.ParseError(p.client.Source(), gamesURL, errors.New("response has no games list"))
	}

	var candidates []models.MatchCandidate
	for _, g := range games {
		if !strings.HasPrefix(lookup.String(g, "", "date", "utcDate"), req.Day()) {
			continue
		}
		if !clubMatches(g, "local", req.Query) && !clubMatches(g, "road", req.Query) {
			continue
		}

		input := models.CandidateInput{
			Home:        lookup.String(g, "", "local.club.name", "local.club.abbreviatedName"),
			Away:        lookup.String(g, "", "road.club.name", "road.club.abbreviatedName"),
			HomeScore:   lookup.String(g, "", "local.score"),
			AwayScore:   lookup.String(g, "", "road.score"),
			Competition: lookup.String(g, "", "competition.name", "season.name"),
		}
		if code := lookup.String(g, "", "gameCode", "code"); code != "" {
			input.MatchID = GameID(season, code)
		}

		if c, ok := input.ToCandidate(models.SourceEuroleague); ok {
			candidates = append(candidates, c)
		}
	}

	return candidates, nil
}

func clubMatches(game interface{}, side, query string) bool {
	code := lookup.String(game, "", side+".club.code")
	if code != "" && strings.EqualFold(code, strings.TrimSpace(query)) {
		return true
	}
	for _, path := range []string{".club.name", ".club.abbreviatedName", ".club.tvCode"} {
		if name := lookup.String(game, "", side+path); name != "" && search.MatchesTeam(name, query) {
			return true
		}
	}
	return false
}

// BoxScore reads the official box score of one game
func (p *Provider) BoxScore(ctx context.Context, c models.MatchCandidate) ([]models.StatRow, error) {
	season, gameCode, err := SplitGameID(c.MatchID)
	if err != nil {
		return nil, client.ParseError(p.client.Source(), "", err)
	}

	boxURL := fmt.Sprintf("%s/api/Boxscore?gamecode=%s&seasoncode=%s",
		p.boxScoreURL, url.QueryEscape(gameCode), url.QueryEscape(season))

	data, err := p.client.GetJSON(ctx, "boxscore", boxURL)
	if err != nil {
		return nil, err
	}

	var rows []models.StatRow
	for _, team := range lookup.Slice(data, "Stats") {
		teamName := lookup.String(team, "", "Team")
		for _, player := range lookup.Slice(team, "PlayersStats") {
			input := models.StatRowInput{
				Team:     teamName,
				Player:   lookup.String(player, "", "Player"),
				Points:   lookup.Raw(player, "Points"),
				Assists:  lookup.Raw(player, "Assistances", "Assists"),
				Rebounds: lookup.Raw(player, "TotalRebounds", "Rebounds"),
			}
			if row, ok := input.ToStatRow(); ok {
				rows = append(rows, row)
			}
		}
	}

	return rows, nil
}

// Package eurobasket adapts eurobasket.com. The daily games list comes from
// an undocumented JSON feed when it answers, otherwise from the daily HTML
// listing. Game ids come out of link paths.
package eurobasket

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/lookup"
	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/scrape"
	"github.com/gardonyia/basket/internal/search"
)

const BaseURL = "https://www.eurobasket.com"

// Candidate key paths for the feed payloads. These are guesses.
var (
	gamesPaths     = []string{"games", "events", "ev", "data", ""}
	homePaths      = []string{"home.name", "homeTeam.name", "home_team", "homeName", "home"}
	awayPaths      = []string{"away.name", "awayTeam.name", "away_team", "awayName", "away"}
	homeScorePaths = []string{"home.score", "homeScore", "home_score", "score.home"}
	awayScorePaths = []string{"away.score", "awayScore", "away_score", "score.away"}
	idPaths        = []string{"id", "gameId", "game_id"}
	compPaths      = []string{"competition.name", "league.name", "competition", "league"}

	teamBlockPaths = []string{"teams", "boxscore.teams", "stats"}
	playersPaths   = []string{"players", "playerStats", "stats"}
	playerPaths    = []string{"name", "player.name", "player"}
	pointsPaths    = []string{"points", "pts", "PTS"}
	assistsPaths   = []string{"assists", "ast", "AST"}
	reboundsPaths  = []string{"rebounds", "reb", "totalRebounds", "REB"}
)

var (
	gamePathRegex  = regexp.MustCompile(`/game/(\d+)`)
	gameQueryRegex = regexp.MustCompile(`[?&]id=(\d+)`)
)

// Provider searches eurobasket.com
type Provider struct {
	client  *client.Client
	baseURL string
}

// New creates a Eurobasket provider. An empty baseURL uses the public site.
func New(baseURL string, opts client.Options) *Provider {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Provider{
		client:  client.New(string(models.SourceEurobasket), opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *Provider) Source() models.Source {
	return models.SourceEurobasket
}

// Search lists the day's games and keeps those where either team contains
// the query
func (p *Provider) Search(ctx context.Context, req search.Request) ([]models.MatchCandidate, error) {
	games, err := p.feedGames(ctx, req.Day())
	if err != nil {
		log.Debug().Err(err).Str("date", req.Day()).Msg("Eurobasket feed unavailable, scraping listing")

		games, err = p.listingGames(ctx, req.Day())
		if err != nil {
			return nil, err
		}
	}

	return search.Filter(games, req.Query), nil
}

func (p *Provider) feedGames(ctx context.Context, day string) ([]models.MatchCandidate, error) {
	feedURL := fmt.Sprintf("%s/feed/games/%s.json", p.baseURL, day)

	data, err := p.client.GetJSON(ctx, "games_feed", feedURL)
	if err != nil {
		return nil, err
	}

	var list []interface{}
	found := false
	for _, path := range gamesPaths {
		if v, ok := lookup.Value(data, path); ok {
			if s, ok := v.([]interface{}); ok {
				list, found = s, true
				break
			}
		}
	}
	if !found {
		return nil, client.ParseError(p.client.Source(), feedURL, errors.New("feed has no games list"))
	}

	var games []models.MatchCandidate
	for _, g := range list {
		id := lookup.String(g, "", idPaths...)
		input := models.CandidateInput{
			Home:        lookup.String(g, "", homePaths...),
			Away:        lookup.String(g, "", awayPaths...),
			HomeScore:   lookup.String(g, "", homeScorePaths...),
			AwayScore:   lookup.String(g, "", awayScorePaths...),
			MatchID:     id,
			DetailURL:   lookup.String(g, "", "url", "link"),
			Competition: lookup.String(g, "", compPaths...),
		}
		if input.DetailURL != "" {
			input.DetailURL = client.Resolve(p.baseURL+"/", input.DetailURL)
		} else if id != "" {
			input.DetailURL = p.gameURL(id)
		}

		if c, ok := input.ToCandidate(models.SourceEurobasket); ok {
			games = append(games, c)
		}
	}

	return games, nil
}

func (p *Provider) listingGames(ctx context.Context, day string) ([]models.MatchCandidate, error) {
	pageURL := fmt.Sprintf("%s/games/%s", p.baseURL, day)

	doc, err := p.client.GetDocument(ctx, "games_listing", pageURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var games []models.MatchCandidate

	for _, a := range scrape.Anchors(doc) {
		home, away, ok := anchorPair(a)
		if !ok {
			continue
		}

		key := search.Fold(home) + "|" + search.Fold(away)
		if seen[key] {
			continue
		}

		input := models.CandidateInput{
			Home:    home,
			Away:    away,
			MatchID: GameID(a.Href),
		}
		if a.Href != "" {
			input.DetailURL = client.Resolve(pageURL, a.Href)
		}

		if c, ok := input.ToCandidate(models.SourceEurobasket); ok {
			seen[key] = true
			games = append(games, c)
		}
	}

	return games, nil
}

// anchorPair reads the teams from the link text, then from each
// neighbouring cell on its own and last from all of them together
func anchorPair(a scrape.Anchor) (home, away string, ok bool) {
	if home, away, ok = scrape.SplitPair(a.Text); ok {
		return home, away, true
	}
	for _, text := range a.Siblings {
		if home, away, ok = scrape.SplitPair(text); ok {
			return home, away, true
		}
	}
	return scrape.SplitPair(a.Context)
}

// GameID extracts the numeric game id from a link, "" when there is none
func GameID(href string) string {
	if m := gamePathRegex.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	if m := gameQueryRegex.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}

func (p *Provider) gameURL(id string) string {
	return fmt.Sprintf("%s/game/%s", p.baseURL, url.PathEscape(id))
}

// MatchPageURL returns the HTML page that carries the game's box score
func (p *Provider) MatchPageURL(c models.MatchCandidate) string {
	if c.DetailURL != "" {
		return c.DetailURL
	}
	if c.MatchID != "" {
		return p.gameURL(c.MatchID)
	}
	return ""
}

// BoxScore reads the game detail feed
func (p *Provider) BoxScore(ctx context.Context, c models.MatchCandidate) ([]models.StatRow, error) {
	detailURL := fmt.Sprintf("%s/feed/game/%s.json", p.baseURL, url.PathEscape(c.MatchID))

	data, err := p.client.GetJSON(ctx, "game_feed", detailURL)
	if err != nil {
		return nil, err
	}

	var blocks []interface{}
	if teams := lookup.Slice(data, teamBlockPaths...); teams != nil {
		blocks = teams
	} else {
		for _, side := range []string{"home", "away"} {
			if block := lookup.Map(data, side, side+"Team"); block != nil {
				blocks = append(blocks, block)
			}
		}
	}

	var rows []models.StatRow
	for _, block := range blocks {
		team := lookup.String(block, "", "name", "team.name", "team")
		for _, player := range lookup.Slice(block, playersPaths...) {
			input := models.StatRowInput{
				Team:     team,
				Player:   lookup.String(player, "", playerPaths...),
				Points:   lookup.Raw(player, pointsPaths...),
				Assists:  lookup.Raw(player, assistsPaths...),
				Rebounds: lookup.Raw(player, reboundsPaths...),
			}
			if row, ok := input.ToStatRow(); ok {
				rows = append(rows, row)
			}
		}
	}

	return rows, nil
}

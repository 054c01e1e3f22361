// Package fiba scrapes the FIBA site search page for game links.
// FIBA has no structured detail endpoint; box scores only come from the
// generic HTML scrape of the game page.
package fiba

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/scrape"
	"github.com/gardonyia/basket/internal/search"
)

const BaseURL = "https://www.fiba.basketball"

// Provider searches fiba.basketball
type Provider struct {
	client  *client.Client
	baseURL string
}

// New creates a FIBA provider. An empty baseURL uses the public site.
func New(baseURL string, opts client.Options) *Provider {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Provider{
		client:  client.New(string(models.SourceFIBA), opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *Provider) Source() models.Source {
	return models.SourceFIBA
}

// Search keeps links to game pages that mention the requested year and
// splits their text on the first dash
func (p *Provider) Search(ctx context.Context, req search.Request) ([]models.MatchCandidate, error) {
	pageURL := fmt.Sprintf("%s/search?q=%s", p.baseURL, url.QueryEscape(req.Query))

	doc, err := p.client.GetDocument(ctx, "search", pageURL)
	if err != nil {
		return nil, err
	}

	year := strconv.Itoa(req.Year())
	var candidates []models.MatchCandidate

	for _, a := range scrape.Anchors(doc) {
		if !strings.Contains(a.Href, "/game/") {
			continue
		}
		if !strings.Contains(a.Href, year) && !strings.Contains(a.Text, year) {
			continue
		}

		home, away, ok := scrape.SplitFirstDash(a.Text)
		if !ok {
			continue
		}

		input := models.CandidateInput{
			Home:      home,
			Away:      away,
			MatchID:   a.Href,
			DetailURL: client.Resolve(pageURL, a.Href),
		}
		if c, ok := input.ToCandidate(models.SourceFIBA); ok {
			candidates = append(candidates, c)
		}
	}

	return candidates, nil
}

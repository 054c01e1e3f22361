// Package realgm scrapes the RealGM basketball search page
package realgm

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/scrape"
	"github.com/gardonyia/basket/internal/search"
)

const BaseURL = "https://basketball.realgm.com"

// Provider searches basketball.realgm.com
type Provider struct {
	client  *client.Client
	baseURL string
}

// New creates a RealGM provider. An empty baseURL uses the public site.
func New(baseURL string, opts client.Options) *Provider {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Provider{
		client:  client.New(string(models.SourceRealGM), opts),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *Provider) Source() models.Source {
	return models.SourceRealGM
}

// Search keeps links whose text looks like "Team A 82 - 77 Team B": a dash
// and a digit, exactly two parts around the dash. The score is not parsed
// out of the text.
func (p *Provider) Search(ctx context.Context, req search.Request) ([]models.MatchCandidate, error) {
	pageURL := fmt.Sprintf("%s/search?q=%s", p.baseURL, url.QueryEscape(req.Query))

	doc, err := p.client.GetDocument(ctx, "search", pageURL)
	if err != nil {
		return nil, err
	}

	var candidates []models.MatchCandidate
	for _, a := range scrape.Anchors(doc) {
		if !strings.Contains(a.Text, "-") || !scrape.ContainsDigit(a.Text) {
			continue
		}

		parts := strings.Split(a.Text, "-")
		if len(parts) != 2 {
			continue
		}

		input := models.CandidateInput{
			Home:    parts[0],
			Away:    parts[1],
			MatchID: a.Href,
		}
		if a.Href != "" {
			input.DetailURL = client.Resolve(pageURL, a.Href)
		}
		if c, ok := input.ToCandidate(models.SourceRealGM); ok {
			candidates = append(candidates, c)
		}
	}

	return candidates, nil
}

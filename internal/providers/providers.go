// Package providers builds the configured source adapters in registration
// order
package providers

import (
	"fmt"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/config"
	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/providers/eurobasket"
	"github.com/gardonyia/basket/internal/providers/euroleague"
	"github.com/gardonyia/basket/internal/providers/fiba"
	"github.com/gardonyia/basket/internal/providers/realgm"
	"github.com/gardonyia/basket/internal/providers/sofascore"
	"github.com/gardonyia/basket/internal/search"
)

// Build returns one provider per entry of cfg's source list, in that order
func Build(cfg *config.Config) ([]search.Provider, error) {
	sources, err := cfg.SourceList()
	if err != nil {
		return nil, err
	}

	opts := client.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	}

	list := make([]search.Provider, 0, len(sources))
	for _, source := range sources {
		p, err := newProvider(cfg, source, opts)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	return list, nil
}

func newProvider(cfg *config.Config, source models.Source, opts client.Options) (search.Provider, error) {
	switch source {
	case models.SourceSofascore:
		return sofascore.New(cfg.SofascoreBaseURL, opts), nil
	case models.SourceFIBA:
		return fiba.New(cfg.FIBABaseURL, opts), nil
	case models.SourceRealGM:
		return realgm.New(cfg.RealGMBaseURL, opts), nil
	case models.SourceEurobasket:
		return eurobasket.New(cfg.EurobasketBaseURL, opts), nil
	case models.SourceEuroleague:
		return euroleague.New(cfg.EuroleagueBaseURL, cfg.EuroleagueBoxScoreBaseURL, opts), nil
	default:
		return nil, fmt.Errorf("no adapter for source %q", source)
	}
}

// Package cli is the matchfinder command tree: one-shot search and stats
// lookups, the terminal UI and the web server.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/config"
	"github.com/gardonyia/basket/internal/finder"
	"github.com/gardonyia/basket/internal/present"
	"github.com/gardonyia/basket/internal/providers"
	"github.com/gardonyia/basket/internal/search"
	"github.com/gardonyia/basket/internal/session"
	"github.com/gardonyia/basket/internal/stats"
)

var (
	// Build info - set via -ldflags at build time
	ProjectName = "matchfinder"
	Version     = "dev"
	CommitID    = "unknown"
	BuildDate   = "unknown"
)

// globalFlags override individual configuration values
type globalFlags struct {
	output     string
	timeout    time.Duration
	sources    string
	sequential bool
}

// NewRootCommand builds the command tree over cfg. Flags are applied to
// cfg before any subcommand runs.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          ProjectName,
		Short:        "Find a basketball match by team and day and show its box score",
		Long:         `matchfinder searches several basketball sources for the games of one team on one day, lets you pick one and loads its player statistics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return flags.apply(cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.output, "output", "o", present.FormatTable, "output format: table, json, plain")
	pf.DurationVar(&flags.timeout, "timeout", 0, "timeout of one upstream request (overrides HTTP_TIMEOUT)")
	pf.StringVar(&flags.sources, "sources", "", "comma separated sources in query order (overrides SOURCES)")
	pf.BoolVar(&flags.sequential, "sequential", false, "query sources one after another")

	root.AddCommand(newSearchCmd(cfg, flags))
	root.AddCommand(newStatsCmd(cfg, flags))
	root.AddCommand(newTUICmd(cfg))
	root.AddCommand(newServeCmd(cfg))
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the command tree with os.Args
func Execute(cfg *config.Config) error {
	return NewRootCommand(cfg).Execute()
}

func (f *globalFlags) apply(cfg *config.Config) error {
	if !present.ValidFormat(f.output) {
		return fmt.Errorf("unknown output format %q (want table, json or plain)", f.output)
	}
	if f.timeout > 0 {
		cfg.HTTPTimeout = f.timeout
	}
	if f.sources != "" {
		cfg.Sources = f.sources
	}
	if f.sequential {
		cfg.ParallelSearch = false
	}
	return cfg.Validate()
}

// newService wires the configured sources into a finder service
func newService(cfg *config.Config, store session.Store) (*finder.Service, error) {
	list, err := providers.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("building sources: %w", err)
	}

	aggregator := search.NewAggregator(list, search.AggregatorConfig{
		Parallel:      cfg.ParallelSearch,
		SourceTimeout: cfg.SourceTimeout,
	})
	fetcher := stats.NewFetcher(list, client.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})

	return finder.New(aggregator, fetcher, store), nil
}

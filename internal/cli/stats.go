package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gardonyia/basket/internal/config"
	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/present"
)

func newStatsCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var source, id, pageURL string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Load the box score of one known match",
		Long: `Run the statistics fallback chain for a match identified by its source and id.
The structured feed of the source is tried first, then the match page given with --url.`,
		Example: `  matchfinder stats --source sofascore --id 11830442
  matchfinder stats --source fiba --url https://www.fiba.basketball/game/123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" && pageURL == "" {
				return fmt.Errorf("either --id or --url is required")
			}

			svc, err := newService(cfg, nil)
			if err != nil {
				return err
			}

			outcome, err := svc.BoxScore(cmd.Context(), models.Source(strings.ToLower(source)), id, pageURL)
			if err != nil {
				return err
			}

			return present.NewPrinter(cmd.OutOrStdout(), flags.output).Outcome(outcome)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source of the match: sofascore, fiba, realgm, eurobasket, euroleague")
	cmd.Flags().StringVar(&id, "id", "", "match id at the source")
	cmd.Flags().StringVar(&pageURL, "url", "", "match page for the HTML fallback")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

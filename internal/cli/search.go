package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gardonyia/basket/internal/config"
	"github.com/gardonyia/basket/internal/present"
)

func newSearchCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var (
		date   string
		league string
		pick   int
	)

	cmd := &cobra.Command{
		Use:   "search <team>",
		Short: "Search all sources for a team's matches on one day",
		Long: `Search every configured source for matches of <team> on --date (default today).
With --pick N the N-th row of the result list is selected and its box score is loaded.`,
		Example: `  matchfinder search Partizan --date 2024-03-10
  matchfinder search "Real Madrid" --league euroleague --pick 1 -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cfg, nil)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			state, err := svc.Search(cmd.Context(), query, date, league)
			if err != nil {
				return errors.New(present.ValidationMessage(err))
			}

			if pick > 0 && !state.Empty() {
				if state, err = svc.Select(cmd.Context(), state, pick-1); err != nil {
					return errors.New(present.ValidationMessage(err))
				}
			}

			return present.NewPrinter(cmd.OutOrStdout(), flags.output).Session(state)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "match day as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&league, "league", "l", "", "league filter: all, euroleague, eurocup")
	cmd.Flags().IntVarP(&pick, "pick", "p", 0, "select row N of the result list (1-based) and load its box score")

	return cmd
}

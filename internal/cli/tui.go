package cli

import (
	"github.com/spf13/cobra"

	"github.com/gardonyia/basket/internal/config"
	"github.com/gardonyia/basket/internal/tui"
)

func newTUICmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cfg, nil)
			if err != nil {
				return err
			}
			// one search may wait for the slowest source, then a box score
			// may take two upstream calls
			return tui.Run(svc, cfg.SourceTimeout+2*cfg.HTTPTimeout)
		},
	}
}
